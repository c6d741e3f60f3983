// Package playback implements the hybrid playback orchestrator: the
// state machine that owns the active media engine, the current item,
// the queue, and the playback settings, and broadcasts every observable
// change to subscribers.
package playback

import (
	"sync"
	"time"

	"github.com/treble-fm/castkit/api"
	"github.com/treble-fm/castkit/connectivity"
	"github.com/treble-fm/castkit/engine"
	"github.com/treble-fm/castkit/log"
	"github.com/treble-fm/castkit/offsets"
	"github.com/treble-fm/castkit/queue"
)

// NewEngineFunc constructs an engine for a source. Swapped out in tests.
type NewEngineFunc func(src engine.Source, onState engine.StateFunc) (engine.Engine, error)

// Deps are the collaborators the orchestrator coordinates. Nil entries
// disable the corresponding integration.
type Deps struct {
	Client     Client
	Cache      PostCache
	Queue      *queue.Queue
	Offsets    *offsets.Tracker
	Probe      connectivity.Probe
	Files      FileResolver
	Transport  TransportBridge
	NowPlaying NowPlayingSink
	NewEngine  NewEngineFunc
}

// Options are the orchestrator tunables.
type Options struct {
	ForwardLength  time.Duration
	BackwardLength time.Duration
	// PreviousTrackThreshold is how far into an item PlayPrevious
	// restarts it instead of changing tracks.
	PreviousTrackThreshold time.Duration
	ProgressInterval       time.Duration
	// OffsetFlushInterval is the cadence of the periodic offset flush
	// while playing.
	OffsetFlushInterval time.Duration
	SurfaceID           int64
}

// DefaultOptions returns the shipped tunables.
func DefaultOptions() Options {
	return Options{
		ForwardLength:          30 * time.Second,
		BackwardLength:         15 * time.Second,
		PreviousTrackThreshold: 30 * time.Second,
		ProgressInterval:       500 * time.Millisecond,
		OffsetFlushInterval:    10 * time.Second,
	}
}

const eventQueueSize = 128

// Orchestrator is the hybrid playback state machine. All state mutation
// happens under one mutex on the caller's goroutine; all observer
// broadcasts go through a single dispatch goroutine, so observers see
// strictly ordered delivery and can never re-enter a command
// mid-mutation.
type Orchestrator struct {
	mu sync.Mutex

	client     Client
	cache      PostCache
	queue      *queue.Queue
	offsets    *offsets.Tracker
	probe      connectivity.Probe
	files      FileResolver
	transport  TransportBridge
	nowPlaying NowPlayingSink
	newEngine  NewEngineFunc
	opts       Options

	settings Settings
	item     *Item
	post     *api.Post
	playlist []api.Post
	bulletin string

	eng       engine.Engine
	engineGen int

	status     Status
	wasPlaying bool
	reconciled bool

	// Command-intent bookkeeping for the not-yet-ready engine.
	isSeek        bool
	silent        bool
	pendingSeek   *time.Duration
	commandToPlay bool

	sleepTimer    *time.Timer
	sleepDuration time.Duration
	progressStop  chan struct{}

	events   chan any
	quit     chan struct{}
	subs     []*Subscription
	subsMu   sync.RWMutex
	shutdown bool
}

// New creates an orchestrator over the given collaborators.
func New(deps Deps, opts Options) *Orchestrator {
	if opts.ForwardLength <= 0 {
		opts.ForwardLength = DefaultOptions().ForwardLength
	}
	if opts.BackwardLength <= 0 {
		opts.BackwardLength = DefaultOptions().BackwardLength
	}
	if opts.PreviousTrackThreshold <= 0 {
		opts.PreviousTrackThreshold = DefaultOptions().PreviousTrackThreshold
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultOptions().ProgressInterval
	}
	if opts.OffsetFlushInterval <= 0 {
		opts.OffsetFlushInterval = DefaultOptions().OffsetFlushInterval
	}

	newEngine := deps.NewEngine
	if newEngine == nil {
		newEngine = func(src engine.Source, onState engine.StateFunc) (engine.Engine, error) {
			return engine.New(src, onState)
		}
	}

	o := &Orchestrator{
		client:     deps.Client,
		cache:      deps.Cache,
		queue:      deps.Queue,
		offsets:    deps.Offsets,
		probe:      deps.Probe,
		files:      deps.Files,
		transport:  deps.Transport,
		nowPlaying: deps.NowPlaying,
		newEngine:  newEngine,
		opts:       opts,
		settings: Settings{
			Speed:          1.0,
			ForwardLength:  opts.ForwardLength,
			BackwardLength: opts.BackwardLength,
		},
		events: make(chan any, eventQueueSize),
		quit:   make(chan struct{}),
	}

	go o.dispatchLoop()
	return o
}

// SetTransport attaches the OS remote-control bridge. The bridge is
// usually built around the orchestrator and attached right after both
// exist.
func (o *Orchestrator) SetTransport(bridge TransportBridge) {
	o.mu.Lock()
	o.transport = bridge
	o.mu.Unlock()
}

// Subscribe creates a new event subscription.
func (o *Orchestrator) Subscribe() *Subscription {
	o.subsMu.Lock()
	defer o.subsMu.Unlock()
	sub := newSubscription()
	o.subs = append(o.subs, sub)
	return sub
}

// Shutdown closes the session and releases the orchestrator. After
// Shutdown the orchestrator must not be used.
func (o *Orchestrator) Shutdown() {
	o.Close()

	o.mu.Lock()
	if o.shutdown {
		o.mu.Unlock()
		return
	}
	o.shutdown = true
	o.mu.Unlock()

	close(o.quit)

	o.subsMu.Lock()
	for _, sub := range o.subs {
		sub.close()
	}
	o.subs = nil
	o.subsMu.Unlock()
}

// dispatchLoop serializes all observer notifications.
func (o *Orchestrator) dispatchLoop() {
	for {
		select {
		case <-o.quit:
			return
		case event := <-o.events:
			o.subsMu.RLock()
			for _, sub := range o.subs {
				sub.deliver(event)
			}
			o.subsMu.RUnlock()
		}
	}
}

// publish enqueues an event for asynchronous, ordered delivery. It
// never blocks the command path and must be called without o.mu held.
func (o *Orchestrator) publish(event any) {
	select {
	case o.events <- event:
	default:
		log.Warnf("playback: event queue full, dropping %T", event)
	}
}

// setStatusLocked records a status transition and broadcasts it unless
// the silent teardown flag is set. Callers hold o.mu.
func (o *Orchestrator) setStatusLocked(state PrimaryState, flags Flags) {
	if o.status.State == state && o.status.Flags == flags {
		return
	}
	o.status = Status{State: state, Flags: flags}
	if o.silent {
		return
	}

	select {
	case o.events <- StateUpdated{State: state, Flags: flags}:
	default:
		log.Warnf("playback: event queue full, dropping state update")
	}
}

// State queries

// Status returns the current primary state and flags.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// CurrentItem returns a copy of the active item, or nil.
func (o *Orchestrator) CurrentItem() *Item {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.item == nil {
		return nil
	}
	item := *o.item
	return &item
}

// CurrentSettings returns the session settings.
func (o *Orchestrator) CurrentSettings() Settings {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.settings
}

// Position returns the engine playback position, or the item's last
// known position when no engine is alive.
func (o *Orchestrator) Position() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.eng != nil {
		return o.eng.CurrentTime()
	}
	if o.item != nil {
		return o.item.Position
	}
	return 0
}

// TotalDuration returns the active item's duration.
func (o *Orchestrator) TotalDuration() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.eng != nil {
		if d := o.eng.TotalDuration(); d > 0 {
			return d
		}
	}
	if o.item != nil {
		return o.item.Duration
	}
	return 0
}

// HasVideo reports whether the live engine renders video.
func (o *Orchestrator) HasVideo() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.eng != nil && o.eng.HasVideo()
}

// SleepTimer returns the armed sleep duration, 0 when none is pending.
func (o *Orchestrator) SleepTimer() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sleepDuration
}

// Playlist returns a copy of the active playlist.
func (o *Orchestrator) Playlist() []api.Post {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]api.Post(nil), o.playlist...)
}

// HasNext reports whether the playlist has an entry after the active
// item.
func (o *Orchestrator) HasNext() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	idx := o.playlistIndexLocked()
	return idx >= 0 && idx < len(o.playlist)-1
}

// HasPrevious reports whether the playlist has an entry before the
// active item.
func (o *Orchestrator) HasPrevious() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.playlistIndexLocked() > 0
}

// Queue returns the playback queue, or nil when the orchestrator was
// built without one.
func (o *Orchestrator) Queue() *queue.Queue {
	return o.queue
}

func (o *Orchestrator) playlistIndexLocked() int {
	if o.item == nil {
		return -1
	}
	for i, p := range o.playlist {
		if p.ID == o.item.PostID {
			return i
		}
	}
	return -1
}

// detachEngineLocked removes the engine from the orchestrator and bumps
// the generation so late callbacks from it become no-ops. The caller
// must invoke Stop on the returned engine after releasing o.mu.
func (o *Orchestrator) detachEngineLocked() engine.Engine {
	eng := o.eng
	o.eng = nil
	o.engineGen++
	return eng
}

func (o *Orchestrator) pushNowPlaying() {
	if o.nowPlaying == nil {
		return
	}

	o.mu.Lock()
	if o.item == nil {
		o.mu.Unlock()
		o.nowPlaying.Clear()
		return
	}
	info := NowPlayingInfo{
		Title:        o.item.Title,
		Author:       o.item.OwnerName,
		Duration:     o.item.Duration.Seconds(),
		Elapsed:      o.item.Position.Seconds(),
		ArtworkURL:   o.item.OwnerImageURL,
		IsLiveStream: o.item.IsStream,
		Rate:         o.settings.Speed,
	}
	o.mu.Unlock()

	o.nowPlaying.SetNowPlaying(info)
}
