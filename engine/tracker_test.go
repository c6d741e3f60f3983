package engine

import (
	"errors"
	"testing"
)

func TestTracker_NotifiesTransitions(t *testing.T) {
	var got []State
	tr := newTracker(1.0, func(s State, _ error) {
		got = append(got, s)
	})

	tr.set(StateWaiting)
	tr.set(StateReady)
	tr.set(StatePlaying)

	want := []State{StateWaiting, StateReady, StatePlaying}
	if len(got) != len(want) {
		t.Fatalf("transitions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("transitions = %v, want %v", got, want)
		}
	}
}

func TestTracker_SuppressesRepeats(t *testing.T) {
	count := 0
	tr := newTracker(1.0, func(State, error) { count++ })

	tr.set(StatePlaying)
	tr.set(StatePlaying)
	tr.set(StatePlaying)

	if count != 1 {
		t.Errorf("notifications = %d, want 1", count)
	}
}

func TestTracker_FailCarriesReason(t *testing.T) {
	var gotErr error
	var gotState State
	tr := newTracker(1.0, func(s State, err error) {
		gotState = s
		gotErr = err
	})

	cause := errors.New("decode failed")
	tr.fail(cause)

	if gotState != StateFailed {
		t.Errorf("state = %v, want StateFailed", gotState)
	}
	if !errors.Is(gotErr, cause) {
		t.Errorf("err = %v, want %v", gotErr, cause)
	}
	if tr.current() != StateFailed {
		t.Errorf("current() = %v, want StateFailed", tr.current())
	}
}

func TestTracker_DefaultRate(t *testing.T) {
	tr := newTracker(0, nil)
	if tr.rateValue() != 1.0 {
		t.Errorf("rate = %v, want 1.0", tr.rateValue())
	}
}
