// Package connectivity provides the reachability probe consulted before
// network-dependent playback decisions.
package connectivity

import (
	"net"
	"sync"
	"time"
)

// Probe reports whether the network is reachable.
type Probe interface {
	IsConnected() bool
}

const verdictTTL = 5 * time.Second

// Checker probes reachability by dialing a well-known endpoint.
// Verdicts are cached briefly so command paths that consult the probe
// several times in a row do not dial repeatedly.
type Checker struct {
	endpoint string
	timeout  time.Duration

	mu        sync.Mutex
	lastCheck time.Time
	lastOK    bool
}

// NewChecker creates a probe dialing the given host:port endpoint.
func NewChecker(endpoint string, timeout time.Duration) *Checker {
	return &Checker{
		endpoint: endpoint,
		timeout:  timeout,
	}
}

// IsConnected returns true if the endpoint was reachable within the
// configured timeout.
func (c *Checker) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Since(c.lastCheck) < verdictTTL {
		return c.lastOK
	}

	conn, err := net.DialTimeout("tcp", c.endpoint, c.timeout)
	if err == nil {
		conn.Close()
	}

	c.lastCheck = time.Now()
	c.lastOK = err == nil
	return c.lastOK
}

// Verify Checker implements Probe at compile time.
var _ Probe = (*Checker)(nil)

// Static is a fixed-verdict probe for tests and offline-first embedders.
type Static bool

func (s Static) IsConnected() bool { return bool(s) }
