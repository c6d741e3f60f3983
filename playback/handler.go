package playback

import (
	"context"
	"fmt"
	"time"

	"github.com/treble-fm/castkit/engine"
	"github.com/treble-fm/castkit/log"
)

// handleEngineState is the engine-to-orchestrator state mapping. The
// generation captured at engine construction guards against callbacks
// from engines that have since been replaced; anything stale is a
// no-op.
func (o *Orchestrator) handleEngineState(gen int, s engine.State, engErr error) {
	o.mu.Lock()
	if gen != o.engineGen {
		o.mu.Unlock()
		return
	}

	switch s {
	case engine.StateIdle:
		o.setStatusLocked(Idle, 0)
		o.mu.Unlock()

	case engine.StateWaiting:
		o.handleWaitingLocked(gen)

	case engine.StateReady:
		o.handleReadyLocked()

	case engine.StatePlaying:
		flags := o.status.Flags.
			Without(FlagBuffering).
			Without(FlagSeeking).
			Without(FlagInterrupted)
		o.setStatusLocked(Playing, flags)
		o.wasPlaying = true
		o.startProgressLocked(gen)
		o.mu.Unlock()
		o.pushNowPlaying()

	case engine.StatePaused:
		o.handlePausedLocked()

	case engine.StateEnded:
		o.handleEndedLocked()

	case engine.StateFailed:
		o.handleFailedLocked(engErr)

	default:
		o.mu.Unlock()
	}
}

// handleWaitingLocked distinguishes the initial load from mid-playback
// buffering. The first wait of an on-demand item also kicks off the
// position reconciliation against the backend.
func (o *Orchestrator) handleWaitingLocked(gen int) {
	if o.status.State == Playing || o.status.State == Paused {
		o.setStatusLocked(o.status.State, o.status.Flags.With(FlagBuffering))
		o.mu.Unlock()
		return
	}

	o.setStatusLocked(Initializing, o.status.Flags)

	needReconcile := false
	var item Item
	hasLocalFile := false
	if o.item != nil && !o.item.IsStream && !o.reconciled {
		o.reconciled = true
		needReconcile = true
		item = *o.item
		hasLocalFile = o.item.File != ""
	}
	o.mu.Unlock()

	if needReconcile && o.offsets != nil {
		go o.reconcile(gen, item, hasLocalFile)
	}
}

// handleReadyLocked applies command intent that arrived while the
// engine was still loading: a recorded seek target and a recorded
// resume.
func (o *Orchestrator) handleReadyLocked() {
	o.setStatusLocked(Initializing, o.status.Flags.Without(FlagBuffering))

	pending := o.pendingSeek
	o.pendingSeek = nil
	resume := o.commandToPlay
	o.commandToPlay = false
	if pending != nil {
		o.isSeek = true
	}
	eng := o.eng
	o.mu.Unlock()

	if eng == nil {
		return
	}
	if pending != nil {
		eng.SeekTo(*pending)
	}
	if resume {
		eng.Resume()
	}
}

func (o *Orchestrator) handlePausedLocked() {
	o.setStatusLocked(Paused, o.status.Flags.Without(FlagBuffering))
	o.stopProgressLocked()

	flush := o.wasPlaying
	o.wasPlaying = false

	var item Item
	var pos, dur time.Duration
	hasItem := o.item != nil
	if hasItem {
		if o.eng != nil {
			pos = o.eng.CurrentTime()
			o.item.Position = pos
		} else {
			pos = o.item.Position
		}
		dur = o.totalDurationLocked()
		item = *o.item
	}
	o.mu.Unlock()

	if !hasItem {
		return
	}
	o.publish(PositionChanged{Position: pos, Duration: dur})
	if flush && !item.IsStream {
		o.flushOffset(item, pos, dur)
	}
	o.pushNowPlaying()
}

// handleEndedLocked finishes the item: the position flushes at full
// duration so completion is recorded, observers get Finished, and the
// head of the playback queue starts automatically.
func (o *Orchestrator) handleEndedLocked() {
	o.stopTimersLocked()
	o.setStatusLocked(Ended, o.status.Flags.With(FlagComplete))
	o.wasPlaying = false

	var item Item
	hasItem := o.item != nil
	dur := o.totalDurationLocked()
	if hasItem {
		o.item.Position = dur
		item = *o.item
	}
	o.mu.Unlock()

	if hasItem {
		o.publish(PositionChanged{Position: dur, Duration: dur})
		if !item.IsStream {
			o.flushOffset(item, dur, dur)
		}
	}
	o.publish(Finished{})
	o.autoAdvance()
}

// handleFailedLocked tears down the engine and reports the failure.
// Without network connectivity the failure is reported as a connection
// loss regardless of what the engine said; a failed live stream is
// reported as a stall.
func (o *Orchestrator) handleFailedLocked(engErr error) {
	o.stopTimersLocked()
	eng := o.detachEngineLocked()
	live := o.item != nil && o.item.IsStream
	localFile := o.item != nil && o.item.File != ""
	o.setStatusLocked(Destroyed, FlagError)
	o.wasPlaying = false
	o.mu.Unlock()

	if eng != nil {
		eng.Stop()
	}

	err := engErr
	switch {
	case !localFile && o.probe != nil && !o.probe.IsConnected():
		err = wrapOr(ErrNoConnection, engErr)
	case live:
		err = wrapOr(ErrStalled, engErr)
	default:
		err = wrapOr(ErrPlaybackFailed, engErr)
	}

	log.Errorf("playback: engine failed: %v", err)
	o.publish(Failed{Err: err})
}

func wrapOr(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %v", sentinel, cause)
}

// reconcile compares the player position with the backend's recorded
// offset and seeks when they diverge beyond the threshold. A manual
// seek issued in the meantime wins over reconciliation.
func (o *Orchestrator) reconcile(gen int, item Item, hasLocalFile bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	o.mu.Lock()
	manualSeek := o.isSeek || o.pendingSeek != nil
	o.mu.Unlock()

	target, seek := o.offsets.Reconcile(ctx, item.PostID, item.Position, hasLocalFile, manualSeek)
	if !seek {
		return
	}

	o.mu.Lock()
	if gen != o.engineGen || o.eng == nil {
		o.mu.Unlock()
		return
	}
	eng := o.eng
	o.isSeek = true
	if o.item != nil {
		o.item.Position = target
	}
	o.mu.Unlock()

	log.Debugf("playback: reconciling %s to %s", item.PostID, target)
	eng.SeekTo(target)
}

// autoAdvance starts the next queued post after the current item ends.
func (o *Orchestrator) autoAdvance() {
	if o.queue == nil {
		return
	}
	head, err := o.queue.PopHead()
	if err != nil {
		log.Warnf("playback: pop queue head: %v", err)
	}
	if head == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := o.PlayRequest(ctx, head.Post, nil); err != nil {
			log.Warnf("playback: auto-advance to %s: %v", head.ID, err)
		}
	}()
}

func (o *Orchestrator) totalDurationLocked() time.Duration {
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
