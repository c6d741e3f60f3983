package engine

import "sync"

// tracker is the state-tracking helper both engine variants compose.
// It serializes state bookkeeping and forwards transitions to the
// owner's callback outside the lock.
type tracker struct {
	mu     sync.Mutex
	state  State
	rate   float64
	notify StateFunc
}

func newTracker(rate float64, notify StateFunc) *tracker {
	if rate == 0 {
		rate = 1.0
	}
	return &tracker{
		state:  StateIdle,
		rate:   rate,
		notify: notify,
	}
}

// set records a transition and notifies. Repeating the current state is
// a no-op so backends can report liberally.
func (t *tracker) set(s State) {
	t.mu.Lock()
	if t.state == s {
		t.mu.Unlock()
		return
	}
	t.state = s
	notify := t.notify
	t.mu.Unlock()

	if notify != nil {
		notify(s, nil)
	}
}

// fail records a terminal failure with its reason.
func (t *tracker) fail(err error) {
	t.mu.Lock()
	if t.state == StateFailed {
		t.mu.Unlock()
		return
	}
	t.state = StateFailed
	notify := t.notify
	t.mu.Unlock()

	if notify != nil {
		notify(StateFailed, err)
	}
}

func (t *tracker) current() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *tracker) rateValue() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rate
}

func (t *tracker) setRateValue(rate float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rate = rate
}
