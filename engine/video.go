package engine

import (
	"fmt"
	"sync"
	"time"

	mpv "github.com/supersonic-app/go-mpv"
)

// Video is the audio+video engine variant, built on libmpv. It renders
// into the surface handle passed at construction, or a detached mpv
// window when none is given.
type Video struct {
	track *tracker
	src   Source

	instance *mpv.Mpv
	events   chan *mpv.Event

	mu       sync.Mutex
	loaded   bool
	stopping bool
	stopped  bool
	startPos time.Duration
}

// NewVideo creates and initializes a video engine for the source.
func NewVideo(src Source, onState StateFunc) (*Video, error) {
	instance := mpv.Create()

	if err := instance.SetOptionString("audio-display", "no"); err != nil {
		instance.TerminateDestroy()
		return nil, fmt.Errorf("mpv option: %w", err)
	}
	if err := instance.SetOptionString("keep-open", "no"); err != nil {
		instance.TerminateDestroy()
		return nil, fmt.Errorf("mpv option: %w", err)
	}
	if src.SurfaceID != 0 {
		if err := instance.SetOption("wid", mpv.FORMAT_INT64, src.SurfaceID); err != nil {
			instance.TerminateDestroy()
			return nil, fmt.Errorf("mpv surface: %w", err)
		}
	}

	if err := instance.Initialize(); err != nil {
		instance.TerminateDestroy()
		return nil, fmt.Errorf("mpv init: %w", err)
	}

	v := &Video{
		track:    newTracker(src.Rate, onState),
		src:      src,
		instance: instance,
		events:   make(chan *mpv.Event),
	}

	if err := instance.ObserveProperty(0, "pause", mpv.FORMAT_FLAG); err != nil {
		instance.TerminateDestroy()
		return nil, fmt.Errorf("mpv observe: %w", err)
	}
	if err := instance.ObserveProperty(0, "paused-for-cache", mpv.FORMAT_FLAG); err != nil {
		instance.TerminateDestroy()
		return nil, fmt.Errorf("mpv observe: %w", err)
	}

	go v.pumpEvents()
	go v.eventLoop()

	return v, nil
}

func (v *Video) pumpEvents() {
	for {
		evt := v.instance.WaitEvent(1)
		if evt != nil && evt.Event_Id == mpv.EVENT_SHUTDOWN {
			close(v.events)
			return
		}
		v.mu.Lock()
		stopped := v.stopped
		v.mu.Unlock()
		if stopped {
			close(v.events)
			return
		}
		v.events <- evt
	}
}

func (v *Video) eventLoop() {
	for evt := range v.events {
		if evt == nil {
			continue
		}
		switch evt.Event_Id {
		case mpv.EVENT_START_FILE:
			v.track.set(StateWaiting)

		case mpv.EVENT_FILE_LOADED:
			v.handleFileLoaded()

		case mpv.EVENT_PLAYBACK_RESTART:
			if !v.isPausedProperty() {
				v.track.set(StatePlaying)
			}

		case mpv.EVENT_PROPERTY_CHANGE:
			v.handlePropertyChange()

		case mpv.EVENT_END_FILE:
			v.handleEndFile()
		}
	}
}

func (v *Video) handleFileLoaded() {
	v.mu.Lock()
	v.loaded = true
	start := v.startPos
	v.startPos = 0
	v.mu.Unlock()

	v.track.set(StateReady)

	if start > 0 {
		v.SeekTo(start)
	}
	if rate := v.track.rateValue(); rate != 1.0 {
		_ = v.instance.SetProperty("speed", mpv.FORMAT_DOUBLE, rate)
	}
	_ = v.instance.SetProperty("pause", mpv.FORMAT_FLAG, false)
}

func (v *Video) handlePropertyChange() {
	v.mu.Lock()
	loaded := v.loaded
	v.mu.Unlock()
	if !loaded {
		return
	}

	if buffering, err := v.getPropertyBool("paused-for-cache"); err == nil && buffering {
		v.track.set(StateWaiting)
		return
	}
	if v.isPausedProperty() {
		v.track.set(StatePaused)
	} else {
		v.track.set(StatePlaying)
	}
}

func (v *Video) handleEndFile() {
	v.mu.Lock()
	loaded := v.loaded
	stopping := v.stopping
	v.loaded = false
	v.mu.Unlock()

	switch {
	case stopping:
		v.track.set(StateIdle)
	case loaded:
		v.track.set(StateEnded)
	default:
		// File never finished loading: a load or stream failure.
		v.track.fail(fmt.Errorf("mpv: failed to load %s", v.sourceURI()))
	}
}

// PlayAt loads the media and starts playback at the given position.
func (v *Video) PlayAt(pos time.Duration, forceResume bool) bool {
	v.mu.Lock()
	if v.stopped {
		v.mu.Unlock()
		return false
	}
	if v.loaded {
		v.mu.Unlock()
		if forceResume {
			return v.Resume()
		}
		return v.SeekTo(pos)
	}
	v.startPos = pos
	v.mu.Unlock()

	return v.instance.Command([]string{"loadfile", v.sourceURI()}) == nil
}

// Resume resumes paused playback.
func (v *Video) Resume() bool {
	return v.instance.SetProperty("pause", mpv.FORMAT_FLAG, false) == nil
}

// Pause pauses playback.
func (v *Video) Pause() bool {
	return v.instance.SetProperty("pause", mpv.FORMAT_FLAG, true) == nil
}

// Stop tears the engine down and destroys the mpv instance. The engine
// cannot be reused afterwards.
func (v *Video) Stop() bool {
	v.mu.Lock()
	if v.stopped {
		v.mu.Unlock()
		return true
	}
	v.stopping = true
	v.stopped = true
	v.mu.Unlock()

	_ = v.instance.Command([]string{"stop"})
	v.instance.TerminateDestroy()
	v.track.set(StateIdle)
	return true
}

// SeekTo moves playback to an absolute position.
func (v *Video) SeekTo(pos time.Duration) bool {
	return v.instance.Command([]string{
		"seek", fmt.Sprintf("%.3f", pos.Seconds()), "absolute",
	}) == nil
}

// CurrentTime returns the current playback position.
func (v *Video) CurrentTime() time.Duration {
	secs, err := v.getPropertyDouble("playback-time")
	if err != nil {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

// TotalDuration returns the media duration, 0 for live streams.
func (v *Video) TotalDuration() time.Duration {
	secs, err := v.getPropertyDouble("duration")
	if err != nil {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

// HasVideo reports true: this variant renders a visual surface.
func (v *Video) HasVideo() bool { return true }

// Surface returns the render-surface handle the engine draws into.
func (v *Video) Surface() int64 { return v.src.SurfaceID }

// Rate returns the playback speed.
func (v *Video) Rate() float64 { return v.track.rateValue() }

// SetRate changes the playback speed.
func (v *Video) SetRate(rate float64) {
	if rate <= 0 {
		return
	}
	v.track.setRateValue(rate)
	_ = v.instance.SetProperty("speed", mpv.FORMAT_DOUBLE, rate)
}

func (v *Video) sourceURI() string {
	if v.src.File != "" {
		return v.src.File
	}
	return v.src.URL
}

func (v *Video) isPausedProperty() bool {
	paused, err := v.getPropertyBool("pause")
	return err == nil && paused
}

func (v *Video) getPropertyBool(name string) (bool, error) {
	value, err := v.instance.GetProperty(name, mpv.FORMAT_FLAG)
	if err != nil {
		return false, err
	}
	if value == nil {
		return false, fmt.Errorf("nil value for %s", name)
	}
	return value.(bool), nil
}

func (v *Video) getPropertyDouble(name string) (float64, error) {
	value, err := v.instance.GetProperty(name, mpv.FORMAT_DOUBLE)
	if err != nil {
		return 0, err
	}
	if value == nil {
		return 0, fmt.Errorf("nil value for %s", name)
	}
	return value.(float64), nil
}

// Verify Video implements Engine and SurfaceProvider at compile time.
var (
	_ Engine          = (*Video)(nil)
	_ SurfaceProvider = (*Video)(nil)
)
