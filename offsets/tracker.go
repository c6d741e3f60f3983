// Package offsets reconciles locally cached playback positions with the
// positions the backend reports, and flushes progress back to both.
package offsets

import (
	"context"
	"sync"
	"time"

	"github.com/treble-fm/castkit/api"
	"github.com/treble-fm/castkit/connectivity"
	"github.com/treble-fm/castkit/log"
)

// LocalStore is the narrow persistence contract the tracker needs.
type LocalStore interface {
	UpsertOffset(offset api.Offset) error
	Offset(postID string) (*api.Offset, error)
}

// RemoteClient is the narrow API contract the tracker needs.
type RemoteClient interface {
	GetPlaybackOffset(ctx context.Context, postID string, offset float64, timestamp int64) (*api.Offset, error)
	PostPlaybackOffset(ctx context.Context, postID string, position float64, completed bool) (*api.Offset, error)
}

// Options configures the tracker thresholds. The defaults match the
// shipped behavior; they are not load-bearing beyond that.
type Options struct {
	// ReconcileThreshold is the minimum local/remote discrepancy before
	// a seek is issued on resume.
	ReconcileThreshold time.Duration
	// CompletionWindow is how close to the end a position counts as
	// finished.
	CompletionWindow time.Duration
}

// DefaultOptions returns the shipped thresholds.
func DefaultOptions() Options {
	return Options{
		ReconcileThreshold: 12 * time.Second,
		CompletionWindow:   5 * time.Second,
	}
}

// Tracker merges local and remote playback offsets.
type Tracker struct {
	store  LocalStore
	remote RemoteClient
	probe  connectivity.Probe
	opts   Options

	mu     sync.Mutex
	fanout []func(api.Offset)
}

// New creates a tracker over the given collaborators.
func New(store LocalStore, remote RemoteClient, probe connectivity.Probe, opts Options) *Tracker {
	if opts.ReconcileThreshold <= 0 {
		opts.ReconcileThreshold = DefaultOptions().ReconcileThreshold
	}
	if opts.CompletionWindow <= 0 {
		opts.CompletionWindow = DefaultOptions().CompletionWindow
	}
	return &Tracker{
		store:  store,
		remote: remote,
		probe:  probe,
		opts:   opts,
	}
}

// OnUpdate registers a callback invoked with every offset the tracker
// writes. Used to push fresh offsets into post caches that may hold a
// stale copy of the same post.
func (t *Tracker) OnUpdate(fn func(api.Offset)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fanout = append(t.fanout, fn)
}

// Local returns the locally cached offset for a post, or nil.
func (t *Tracker) Local(postID string) *api.Offset {
	if t.store == nil {
		return nil
	}
	offset, err := t.store.Offset(postID)
	if err != nil {
		log.Warnf("offsets: read local offset for %s: %v", postID, err)
		return nil
	}
	return offset
}

// Reconcile decides whether playback should seek after initialization.
//
// The remote offset is only consulted when the network is reachable, no
// manual seek is pending, and the item is not playing from a local file.
// A seek is issued only when the remote position diverges from the
// player's reported position by more than the reconcile threshold; minor
// clock drift never causes a seek. A remote failure is logged and
// playback continues from local state.
func (t *Tracker) Reconcile(ctx context.Context, postID string, playerPos time.Duration, hasLocalFile, manualSeekPending bool) (time.Duration, bool) {
	if t.remote == nil || manualSeekPending || hasLocalFile {
		return 0, false
	}
	if t.probe != nil && !t.probe.IsConnected() {
		return 0, false
	}

	var localOffset float64
	var localTimestamp int64
	if local := t.Local(postID); local != nil {
		localOffset = local.Offset
		localTimestamp = local.Timestamp
	}

	remote, err := t.remote.GetPlaybackOffset(ctx, postID, localOffset, localTimestamp)
	if err != nil {
		log.Warnf("offsets: remote offset for %s: %v", postID, err)
		return 0, false
	}
	if remote == nil || remote.Completed {
		return 0, false
	}

	remotePos := secondsToDuration(remote.Offset)
	discrepancy := remotePos - playerPos
	if discrepancy < 0 {
		discrepancy = -discrepancy
	}
	if discrepancy <= t.opts.ReconcileThreshold {
		return 0, false
	}
	return remotePos, true
}

// Flush persists the effective playback position locally and remotely.
//
// A position within the completion window of the duration is normalized
// to offset 0 with completed set, so the next playback starts from the
// beginning. The written offset fans out to every registered cache.
func (t *Tracker) Flush(ctx context.Context, postID string, position, duration time.Duration) api.Offset {
	offset := api.Offset{
		PostID:    postID,
		Offset:    position.Seconds(),
		Timestamp: time.Now().UnixMilli(),
	}
	if duration > 0 && duration-position <= t.opts.CompletionWindow {
		offset.Offset = 0
		offset.Completed = true
	}

	if t.store != nil {
		if err := t.store.UpsertOffset(offset); err != nil {
			log.Warnf("offsets: persist offset for %s: %v", postID, err)
		}
	}

	if t.remote != nil && (t.probe == nil || t.probe.IsConnected()) {
		if _, err := t.remote.PostPlaybackOffset(ctx, postID, offset.Offset, offset.Completed); err != nil {
			log.Warnf("offsets: push offset for %s: %v", postID, err)
		}
	}

	t.mu.Lock()
	fanout := append([]func(api.Offset){}, t.fanout...)
	t.mu.Unlock()
	for _, fn := range fanout {
		fn(offset)
	}

	return offset
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
