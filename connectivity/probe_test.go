package connectivity

import (
	"net"
	"testing"
	"time"
)

func TestCheckerReachableEndpoint(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	c := NewChecker(ln.Addr().String(), time.Second)
	if !c.IsConnected() {
		t.Error("local listener reported unreachable")
	}
}

func TestCheckerCachesVerdict(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	c := NewChecker(addr, 100*time.Millisecond)
	if c.IsConnected() {
		t.Fatal("closed listener reported reachable")
	}

	// Verdict stays cached even if nothing changed underneath.
	if c.IsConnected() {
		t.Error("cached verdict flipped")
	}
}

func TestStatic(t *testing.T) {
	if !Static(true).IsConnected() {
		t.Error("Static(true) not connected")
	}
	if Static(false).IsConnected() {
		t.Error("Static(false) connected")
	}
}
