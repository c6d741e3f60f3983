package engine

import (
	"sync"
	"time"
)

// Mock is a scriptable test double for Engine.
type Mock struct {
	mu sync.Mutex

	onState StateFunc

	hasVideo bool
	rate     float64
	position time.Duration
	duration time.Duration
	stopped  bool

	playCalls   []time.Duration
	seekCalls   []time.Duration
	pauseCalls  int
	resumeCalls int
	stopCalls   int
	refuse      bool
}

// NewMock creates a mock engine reporting through onState.
func NewMock(onState StateFunc) *Mock {
	return &Mock{
		onState: onState,
		rate:    1.0,
	}
}

func (m *Mock) PlayAt(pos time.Duration, _ bool) bool {
	m.mu.Lock()
	m.playCalls = append(m.playCalls, pos)
	m.position = pos
	refuse := m.refuse
	m.mu.Unlock()
	return !refuse
}

func (m *Mock) Resume() bool {
	m.mu.Lock()
	m.resumeCalls++
	refuse := m.refuse
	m.mu.Unlock()
	return !refuse
}

func (m *Mock) Pause() bool {
	m.mu.Lock()
	m.pauseCalls++
	refuse := m.refuse
	m.mu.Unlock()
	return !refuse
}

func (m *Mock) Stop() bool {
	m.mu.Lock()
	m.stopCalls++
	m.stopped = true
	m.mu.Unlock()
	return true
}

func (m *Mock) SeekTo(pos time.Duration) bool {
	m.mu.Lock()
	m.seekCalls = append(m.seekCalls, pos)
	m.position = pos
	refuse := m.refuse
	m.mu.Unlock()
	return !refuse
}

func (m *Mock) CurrentTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) TotalDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) HasVideo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasVideo
}

func (m *Mock) Rate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate
}

func (m *Mock) SetRate(rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rate = rate
}

// Test helpers

// Report pushes an engine state to the owner, like a real backend would.
func (m *Mock) Report(s State, err error) {
	m.mu.Lock()
	fn := m.onState
	m.mu.Unlock()
	if fn != nil {
		fn(s, err)
	}
}

func (m *Mock) SetPosition(pos time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = pos
}

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

func (m *Mock) SetHasVideo(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hasVideo = v
}

// Refuse makes subsequent commands report failure.
func (m *Mock) Refuse(refuse bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refuse = refuse
}

func (m *Mock) Stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

func (m *Mock) PlayCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.playCalls...)
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

func (m *Mock) StopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalls
}

func (m *Mock) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

func (m *Mock) ResumeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resumeCalls
}

// Verify Mock implements Engine at compile time.
var _ Engine = (*Mock)(nil)
