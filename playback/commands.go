package playback

import (
	"context"
	"time"

	"github.com/treble-fm/castkit/api"
	"github.com/treble-fm/castkit/engine"
	"github.com/treble-fm/castkit/log"
	"github.com/treble-fm/castkit/queue"
)

// PlayRequest starts playback of a post within an optional playlist.
//
// Requesting the post that is already active toggles play/pause instead
// of restarting. Otherwise a local file is resolved first; without one,
// the canonical post is fetched over the network. With neither a local
// file nor connectivity, a connectivity-lost failure is signalled and
// no engine is constructed.
func (o *Orchestrator) PlayRequest(ctx context.Context, post api.Post, playlist []api.Post) error {
	o.mu.Lock()
	active := o.item != nil && o.item.PostID == post.ID && o.eng != nil
	o.mu.Unlock()

	if active {
		return o.Toggle()
	}

	file := ""
	if o.files != nil {
		file = o.files.FileURL(post.ID)
	}

	if file == "" {
		if o.probe != nil && !o.probe.IsConnected() {
			o.publish(Failed{Err: ErrNoConnection})
			return ErrNoConnection
		}
		if o.client != nil {
			canonical, err := o.client.GetPost(ctx, post.ID)
			if err != nil {
				// Non-fatal: play optimistically from the snapshot we have.
				log.Warnf("playback: fetch post %s: %v", post.ID, err)
			} else {
				post = *canonical
			}
		}
	}

	if o.cache != nil {
		if err := o.cache.UpsertPost(post); err != nil {
			log.Warnf("playback: cache post %s: %v", post.ID, err)
		}
	}

	item := Item{
		PostID:        post.ID,
		Title:         post.Title,
		OwnerName:     post.OwnerName,
		OwnerImageURL: post.OwnerImageURL,
		URL:           post.MediaURL,
		File:          file,
		Duration:      secondsToDuration(post.Duration),
		ShouldPlay:    true,
		IsStream:      post.IsStream,
	}
	if !post.IsStream && o.offsets != nil {
		if local := o.offsets.Local(post.ID); local != nil && !local.Completed {
			item.Position = secondsToDuration(local.Offset)
		}
	}

	return o.Start(item, post, playlist)
}

// Start begins a fresh playback session for the item: any prior engine
// is stopped, position bookkeeping resets, observers learn about the
// new item, the transport controls are configured, and playback starts
// at the item's position.
func (o *Orchestrator) Start(item Item, post api.Post, playlist []api.Post) error {
	o.mu.Lock()
	o.stopTimersLocked()
	flush := o.finalFlushLocked()
	o.silent = true
	old := o.detachEngineLocked()

	o.item = &item
	o.post = &post
	o.playlist = playlist
	o.reconciled = false
	o.isSeek = false
	o.pendingSeek = nil
	o.commandToPlay = false
	o.wasPlaying = false
	o.bulletin = ""
	if item.IsStream {
		o.settings.StreamMode = StreamLive
	} else {
		o.settings.StreamMode = StreamNone
	}
	o.status = Status{State: Idle}
	o.silent = false
	o.mu.Unlock()

	if old != nil {
		old.Stop()
	}
	if flush != nil {
		go flush()
	}

	o.publish(Initialized{Item: item})
	o.configureTransport()
	o.pushNowPlaying()

	if playlist == nil {
		go o.fetchPlaylist(post.ID)
	}

	return o.PlayAt(item.Position)
}

// PlayAt starts or repositions playback at the given position. With no
// engine alive one is constructed; with a live engine the call becomes
// a seek.
func (o *Orchestrator) PlayAt(pos time.Duration) error {
	o.mu.Lock()
	if o.item == nil {
		o.mu.Unlock()
		return ErrNoActiveItem
	}

	var stale engine.Engine
	if o.status.State == Ended {
		o.silent = true
		stale = o.detachEngineLocked()
		o.silent = false
	}

	if o.eng != nil {
		eng := o.eng
		o.isSeek = true
		o.setStatusLocked(o.status.State, o.status.Flags.With(FlagSeeking))
		o.mu.Unlock()
		eng.SeekTo(pos)
		return nil
	}

	o.setStatusLocked(Idle, 0)
	item := *o.item
	rate := o.settings.Speed
	o.engineGen++
	gen := o.engineGen
	o.mu.Unlock()

	if stale != nil {
		stale.Stop()
	}

	src := engine.Source{
		URL:          item.URL,
		File:         item.File,
		HasVideoHint: o.postHasVideo(),
		Rate:         rate,
		SurfaceID:    o.opts.SurfaceID,
	}
	eng, err := o.newEngine(src, func(s engine.State, engErr error) {
		o.handleEngineState(gen, s, engErr)
	})
	if err != nil {
		o.mu.Lock()
		o.setStatusLocked(Destroyed, FlagError)
		o.mu.Unlock()
		o.publish(Failed{Err: err})
		return err
	}

	o.mu.Lock()
	if o.engineGen != gen {
		// A competing command replaced the session while we were
		// constructing; discard the new engine.
		o.mu.Unlock()
		eng.Stop()
		return nil
	}
	o.eng = eng
	o.mu.Unlock()

	if !eng.PlayAt(pos, false) {
		o.mu.Lock()
		detached := o.detachEngineLocked()
		o.setStatusLocked(Destroyed, FlagError)
		o.mu.Unlock()
		if detached != nil {
			detached.Stop()
		}
		o.publish(Failed{Err: ErrPlaybackFailed})
		return ErrPlaybackFailed
	}
	return nil
}

// Pause pauses playback.
func (o *Orchestrator) Pause() error {
	o.mu.Lock()
	eng := o.eng
	o.mu.Unlock()
	if eng == nil {
		return ErrNoActiveItem
	}
	if !eng.Pause() {
		return ErrPlaybackFailed
	}
	return nil
}

// Resume resumes paused playback. Before the engine is ready the call
// is recorded as intent and applied on the ready signal.
func (o *Orchestrator) Resume() error {
	o.mu.Lock()
	eng := o.eng
	if eng == nil {
		o.mu.Unlock()
		return ErrNoActiveItem
	}
	if o.status.State == Initializing {
		o.commandToPlay = true
		o.mu.Unlock()
		return nil
	}
	o.mu.Unlock()

	if !eng.Resume() {
		return ErrPlaybackFailed
	}
	return nil
}

// Toggle pauses when playing and resumes otherwise.
func (o *Orchestrator) Toggle() error {
	o.mu.Lock()
	playing := o.status.State == Playing
	o.mu.Unlock()
	if playing {
		return o.Pause()
	}
	return o.Resume()
}

// Stop halts playback and releases the engine. The item stays loaded;
// PlayAt starts a fresh engine.
func (o *Orchestrator) Stop() error {
	o.mu.Lock()
	o.stopTimersLocked()
	flush := o.finalFlushLocked()
	o.silent = true
	eng := o.detachEngineLocked()
	o.pendingSeek = nil
	o.commandToPlay = false
	o.isSeek = false
	o.silent = false
	o.setStatusLocked(Idle, 0)
	o.mu.Unlock()

	if eng != nil {
		eng.Stop()
	}
	if flush != nil {
		go flush()
	}
	return nil
}

// SeekTo moves playback to an absolute position. The next position
// notification is suppressed so seek jitter never reaches observers.
// With resume set, playback continues after the seek.
func (o *Orchestrator) SeekTo(pos time.Duration, resume bool) error {
	if pos < 0 {
		pos = 0
	}

	o.mu.Lock()
	eng := o.eng
	if eng == nil {
		o.mu.Unlock()
		return ErrNoActiveItem
	}
	if o.status.State == Initializing {
		// Not ready yet: record intent, applied on the ready signal.
		p := pos
		o.pendingSeek = &p
		o.commandToPlay = o.commandToPlay || resume
		o.mu.Unlock()
		return nil
	}
	o.isSeek = true
	if o.item != nil {
		o.item.Position = pos
	}
	o.setStatusLocked(o.status.State, o.status.Flags.With(FlagSeeking))
	o.mu.Unlock()

	if !eng.SeekTo(pos) {
		o.mu.Lock()
		o.isSeek = false
		o.setStatusLocked(o.status.State, o.status.Flags.Without(FlagSeeking))
		o.mu.Unlock()
		return ErrPlaybackFailed
	}
	if resume {
		eng.Resume()
	}
	return nil
}

// SeekForward skips ahead by the configured forward length, clamped to
// the end of the item.
func (o *Orchestrator) SeekForward() error {
	o.mu.Lock()
	eng := o.eng
	forward := o.settings.ForwardLength
	o.mu.Unlock()
	if eng == nil {
		return ErrNoActiveItem
	}

	cur := eng.CurrentTime()
	limit := eng.TotalDuration()
	if cur > limit {
		limit = cur
	}
	target := cur + forward
	if target > limit {
		target = limit
	}
	return o.SeekTo(target, false)
}

// SeekBackward skips back by the configured backward length, clamped
// to the start.
func (o *Orchestrator) SeekBackward() error {
	o.mu.Lock()
	eng := o.eng
	backward := o.settings.BackwardLength
	o.mu.Unlock()
	if eng == nil {
		return ErrNoActiveItem
	}

	target := eng.CurrentTime() - backward
	if target < 0 {
		target = 0
	}
	return o.SeekTo(target, false)
}

// PlayNext advances to the next playlist entry. At the last entry the
// call is a logged no-op.
func (o *Orchestrator) PlayNext(ctx context.Context) error {
	o.mu.Lock()
	idx := o.playlistIndexLocked()
	if idx < 0 || idx >= len(o.playlist)-1 {
		o.mu.Unlock()
		log.Debugf("playback: next at playlist end, ignoring")
		return nil
	}
	next := o.playlist[idx+1]
	playlist := o.playlist
	o.mu.Unlock()

	return o.PlayRequest(ctx, next, playlist)
}

// PlayPrevious goes to the previous playlist entry. More than the
// configured threshold into the item, or at the first entry, it seeks
// to the start instead.
func (o *Orchestrator) PlayPrevious(ctx context.Context) error {
	o.mu.Lock()
	idx := o.playlistIndexLocked()
	var elapsed time.Duration
	if o.eng != nil {
		elapsed = o.eng.CurrentTime()
	}
	threshold := o.opts.PreviousTrackThreshold
	var prev api.Post
	change := idx > 0 && elapsed <= threshold
	if change {
		prev = o.playlist[idx-1]
	}
	playlist := o.playlist
	o.mu.Unlock()

	if !change {
		return o.SeekTo(0, false)
	}
	return o.PlayRequest(ctx, prev, playlist)
}

// SetPlaybackSpeed changes the playback rate, snapping to the supported
// rate set. Live streams keep rate 1 on the engine; the setting still
// updates for the next on-demand item.
func (o *Orchestrator) SetPlaybackSpeed(speed float64) {
	rate := NearestRate(speed)

	o.mu.Lock()
	o.settings.Speed = rate
	eng := o.eng
	live := o.item != nil && o.item.IsStream
	settings := o.settings
	o.mu.Unlock()

	if eng != nil && !live {
		eng.SetRate(rate)
	}
	o.publish(SettingsUpdated{Settings: settings})
	o.pushNowPlaying()
}

// SetVideoQuality updates the preferred video rendition for the next
// engine construction.
func (o *Orchestrator) SetVideoQuality(q VideoQuality) {
	o.mu.Lock()
	o.settings.VideoQuality = q
	settings := o.settings
	o.mu.Unlock()
	o.publish(SettingsUpdated{Settings: settings})
}

// SetSleepTimer arms a one-shot sleep cutoff. Zero cancels a pending
// timer. The timer runs on the wall clock and keeps counting while
// playback is paused; it is never re-armed implicitly and pauses
// playback when it fires.
func (o *Orchestrator) SetSleepTimer(d time.Duration) {
	o.mu.Lock()
	if o.sleepTimer != nil {
		o.sleepTimer.Stop()
		o.sleepTimer = nil
	}
	o.sleepDuration = d
	if d > 0 {
		o.sleepTimer = time.AfterFunc(d, o.sleepFired)
	}
	o.mu.Unlock()

	o.publish(SleepTimerUpdated{Duration: d})
}

func (o *Orchestrator) sleepFired() {
	o.mu.Lock()
	o.sleepTimer = nil
	o.sleepDuration = 0
	o.mu.Unlock()

	if err := o.Pause(); err != nil {
		log.Debugf("playback: sleep cutoff with no active engine: %v", err)
	}
	o.publish(SleepTimerUpdated{Duration: 0})
}

// SetBulletin updates the live-stream bulletin text.
func (o *Orchestrator) SetBulletin(text string) {
	o.mu.Lock()
	if o.bulletin == text {
		o.mu.Unlock()
		return
	}
	o.bulletin = text
	o.mu.Unlock()

	o.publish(BulletinChanged{Bulletin: text})
}

// HandleInterruption feeds an OS audio interruption (call, alarm) into
// the command path. Interruption begin pauses playback and raises the
// interrupted flag; end resumes only if the interruption paused us.
func (o *Orchestrator) HandleInterruption(began bool) {
	o.mu.Lock()
	if began {
		if o.status.State != Playing {
			o.mu.Unlock()
			return
		}
		o.setStatusLocked(o.status.State, o.status.Flags.With(FlagInterrupted))
		o.mu.Unlock()
		_ = o.Pause()
		return
	}

	interrupted := o.status.Flags.Has(FlagInterrupted)
	o.setStatusLocked(o.status.State, o.status.Flags.Without(FlagInterrupted))
	o.mu.Unlock()

	if interrupted {
		_ = o.Resume()
	}
}

// AddToPlaybackQueue adds a post to the up-next queue.
func (o *Orchestrator) AddToPlaybackQueue(post api.Post, manual bool, moveToTop bool) error {
	if o.queue == nil {
		return nil
	}
	reason := queue.Auto
	if manual {
		reason = queue.Manually
	}
	return o.queue.Add(post, reason, moveToTop)
}

// LoadTranscript fetches the transcript of the active item.
func (o *Orchestrator) LoadTranscript(ctx context.Context) (*api.Transcript, error) {
	o.mu.Lock()
	item := o.item
	o.mu.Unlock()
	if item == nil {
		return nil, ErrNoActiveItem
	}
	if o.client == nil {
		return nil, api.ErrNotFound
	}
	return o.client.GetTranscript(ctx, item.PostID)
}

// Close tears down the whole session: engine, item, playlist, post,
// bulletin, and settings reset to defaults. Observers receive exactly
// one Closed event.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.stopTimersLocked()
	flush := o.finalFlushLocked()
	o.silent = true
	eng := o.detachEngineLocked()
	o.item = nil
	o.post = nil
	o.playlist = nil
	o.bulletin = ""
	o.pendingSeek = nil
	o.commandToPlay = false
	o.isSeek = false
	o.reconciled = false
	o.wasPlaying = false
	o.settings = DefaultSettings()
	o.status = Status{State: Idle}
	o.silent = false
	bridge := o.transport
	o.mu.Unlock()

	if eng != nil {
		eng.Stop()
	}
	if flush != nil {
		go flush()
	}
	if bridge != nil {
		bridge.Deactivate()
	}
	if o.nowPlaying != nil {
		o.nowPlaying.Clear()
	}

	o.publish(Closed{})
}

// configureTransport picks the transport mode for the current session.
func (o *Orchestrator) configureTransport() {
	o.mu.Lock()
	bridge := o.transport
	mode := TransportSingle
	switch {
	case o.item != nil && o.item.IsStream:
		mode = TransportLive
	case len(o.playlist) > 1:
		mode = TransportTrackList
	}
	o.mu.Unlock()

	if bridge != nil {
		bridge.SetMode(mode)
	}
}

// fetchPlaylist populates the playlist with the backend's up-next
// suggestions when the caller provided none.
func (o *Orchestrator) fetchPlaylist(postID string) {
	if o.client == nil {
		return
	}
	if o.probe != nil && !o.probe.IsConnected() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	posts, err := o.client.GetPlaybackQueuePosts(ctx, postID)
	if err != nil {
		log.Warnf("playback: fetch playlist for %s: %v", postID, err)
		return
	}

	o.mu.Lock()
	// Apply only if the session is still about the same post.
	if o.item == nil || o.item.PostID != postID || o.playlist != nil {
		o.mu.Unlock()
		return
	}
	o.playlist = posts
	o.mu.Unlock()

	o.configureTransport()
}

func (o *Orchestrator) postHasVideo() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.post != nil && o.post.HasVideo
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
