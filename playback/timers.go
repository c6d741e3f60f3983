package playback

import (
	"context"
	"time"
)

// startProgressLocked launches the position ticker. Callers hold o.mu.
func (o *Orchestrator) startProgressLocked(gen int) {
	if o.progressStop != nil {
		return
	}
	stop := make(chan struct{})
	o.progressStop = stop
	go o.progressLoop(gen, stop)
}

// stopProgressLocked halts the position ticker. Callers hold o.mu.
func (o *Orchestrator) stopProgressLocked() {
	if o.progressStop != nil {
		close(o.progressStop)
		o.progressStop = nil
	}
}

// stopTimersLocked halts the position ticker and cancels a pending
// sleep timer. Callers hold o.mu.
func (o *Orchestrator) stopTimersLocked() {
	o.stopProgressLocked()
	if o.sleepTimer != nil {
		o.sleepTimer.Stop()
		o.sleepTimer = nil
		o.sleepDuration = 0
	}
}

// progressLoop emits position updates while playing, refreshes the
// system now-playing info about once a second, and flushes the offset
// on its configured cadence. Exactly one tick after a manual seek is
// swallowed so observers never see the stale pre-seek position.
func (o *Orchestrator) progressLoop(gen int, stop chan struct{}) {
	ticker := time.NewTicker(o.opts.ProgressInterval)
	defer ticker.Stop()

	lastFlush := time.Now()
	lastPush := time.Now()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		o.mu.Lock()
		if gen != o.engineGen || o.eng == nil || o.item == nil {
			o.mu.Unlock()
			return
		}
		pos := o.eng.CurrentTime()
		dur := o.totalDurationLocked()
		suppress := o.isSeek
		if suppress {
			o.isSeek = false
			o.setStatusLocked(o.status.State, o.status.Flags.Without(FlagSeeking))
		}
		o.item.Position = pos
		item := *o.item
		o.mu.Unlock()

		if suppress {
			continue
		}
		o.publish(PositionChanged{Position: pos, Duration: dur})

		if time.Since(lastPush) >= time.Second {
			lastPush = time.Now()
			o.pushNowPlaying()
		}
		if !item.IsStream && time.Since(lastFlush) >= o.opts.OffsetFlushInterval {
			lastFlush = time.Now()
			o.flushOffset(item, pos, dur)
		}
	}
}

// finalFlushLocked captures the active engine's effective position for
// a last offset flush before teardown, so progress since the previous
// flush is not lost on a track switch, stop, or close. Callers hold
// o.mu; the returned func, when non-nil, must run after the mutex is
// released.
func (o *Orchestrator) finalFlushLocked() func() {
	if o.offsets == nil || !o.wasPlaying || o.item == nil || o.eng == nil || o.item.IsStream {
		return nil
	}
	o.wasPlaying = false
	pos := o.eng.CurrentTime()
	dur := o.totalDurationLocked()
	o.item.Position = pos
	item := *o.item
	return func() { o.flushOffset(item, pos, dur) }
}

// flushOffset persists the effective position and tells observers
// whether the item now counts as completed. Must be called without
// o.mu held.
func (o *Orchestrator) flushOffset(item Item, pos, dur time.Duration) {
	if o.offsets == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	offset := o.offsets.Flush(ctx, item.PostID, pos, dur)
	o.publish(Completed{Item: item, Completed: offset.Completed})
}
