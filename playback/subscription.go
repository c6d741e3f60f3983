package playback

const eventBufferSize = 16

// Subscription provides event channels for a subscriber. Delivery is
// serialized: a single dispatch goroutine feeds every subscription, so
// each subscriber observes events in emission order. Sends never block;
// a subscriber that stops draining loses events rather than stalling
// playback.
type Subscription struct {
	Initialized       <-chan Initialized
	StateUpdated      <-chan StateUpdated
	PositionChanged   <-chan PositionChanged
	BulletinChanged   <-chan BulletinChanged
	Finished          <-chan Finished
	Failed            <-chan Failed
	Closed            <-chan Closed
	SettingsUpdated   <-chan SettingsUpdated
	SleepTimerUpdated <-chan SleepTimerUpdated
	Completed         <-chan Completed
	Done              <-chan struct{}

	// Internal write channels
	initCh     chan Initialized
	stateCh    chan StateUpdated
	positionCh chan PositionChanged
	bulletinCh chan BulletinChanged
	finishedCh chan Finished
	failedCh   chan Failed
	closedCh   chan Closed
	settingsCh chan SettingsUpdated
	sleepCh    chan SleepTimerUpdated
	completeCh chan Completed
	doneCh     chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		initCh:     make(chan Initialized, eventBufferSize),
		stateCh:    make(chan StateUpdated, eventBufferSize),
		positionCh: make(chan PositionChanged, eventBufferSize),
		bulletinCh: make(chan BulletinChanged, eventBufferSize),
		finishedCh: make(chan Finished, eventBufferSize),
		failedCh:   make(chan Failed, eventBufferSize),
		closedCh:   make(chan Closed, eventBufferSize),
		settingsCh: make(chan SettingsUpdated, eventBufferSize),
		sleepCh:    make(chan SleepTimerUpdated, eventBufferSize),
		completeCh: make(chan Completed, eventBufferSize),
		doneCh:     make(chan struct{}),
	}
	s.Initialized = s.initCh
	s.StateUpdated = s.stateCh
	s.PositionChanged = s.positionCh
	s.BulletinChanged = s.bulletinCh
	s.Finished = s.finishedCh
	s.Failed = s.failedCh
	s.Closed = s.closedCh
	s.SettingsUpdated = s.settingsCh
	s.SleepTimerUpdated = s.sleepCh
	s.Completed = s.completeCh
	s.Done = s.doneCh
	return s
}

// close signals the subscriber to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// deliver routes an event to its channel (non-blocking).
func (s *Subscription) deliver(event any) {
	switch e := event.(type) {
	case Initialized:
		send(s.initCh, e)
	case StateUpdated:
		send(s.stateCh, e)
	case PositionChanged:
		send(s.positionCh, e)
	case BulletinChanged:
		send(s.bulletinCh, e)
	case Finished:
		send(s.finishedCh, e)
	case Failed:
		send(s.failedCh, e)
	case Closed:
		send(s.closedCh, e)
	case SettingsUpdated:
		send(s.settingsCh, e)
	case SleepTimerUpdated:
		send(s.sleepCh, e)
	case Completed:
		send(s.completeCh, e)
	}
}

func send[T any](ch chan T, e T) {
	select {
	case ch <- e:
	default:
		// Drop if buffer full
	}
}
