package offsets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/treble-fm/castkit/api"
	"github.com/treble-fm/castkit/connectivity"
)

type memStore struct {
	offsets map[string]api.Offset
}

func newMemStore() *memStore {
	return &memStore{offsets: map[string]api.Offset{}}
}

func (m *memStore) UpsertOffset(o api.Offset) error {
	m.offsets[o.PostID] = o
	return nil
}

func (m *memStore) Offset(postID string) (*api.Offset, error) {
	o, ok := m.offsets[postID]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

type fakeRemote struct {
	offset   *api.Offset
	err      error
	gets     int
	posted   []api.Offset
	postErr  error
	lastSent api.Offset
}

func (f *fakeRemote) GetPlaybackOffset(_ context.Context, _ string, _ float64, _ int64) (*api.Offset, error) {
	f.gets++
	return f.offset, f.err
}

func (f *fakeRemote) PostPlaybackOffset(_ context.Context, postID string, position float64, completed bool) (*api.Offset, error) {
	o := api.Offset{PostID: postID, Offset: position, Completed: completed}
	f.posted = append(f.posted, o)
	f.lastSent = o
	return &o, f.postErr
}

func TestReconcile_SeeksOnLargeDiscrepancy(t *testing.T) {
	remote := &fakeRemote{offset: &api.Offset{PostID: "p", Offset: 100}}
	tr := New(newMemStore(), remote, connectivity.Static(true), Options{})

	target, ok := tr.Reconcile(context.Background(), "p", 10*time.Second, false, false)
	if !ok {
		t.Fatal("Reconcile() ok = false, want seek")
	}
	if target != 100*time.Second {
		t.Errorf("target = %v, want 100s", target)
	}
}

func TestReconcile_IgnoresMinorDrift(t *testing.T) {
	remote := &fakeRemote{offset: &api.Offset{PostID: "p", Offset: 15}}
	tr := New(newMemStore(), remote, connectivity.Static(true), Options{})

	// 11s discrepancy is below the 12s threshold.
	if _, ok := tr.Reconcile(context.Background(), "p", 4*time.Second, false, false); ok {
		t.Error("Reconcile() issued a seek for sub-threshold drift")
	}
}

func TestReconcile_SkipConditions(t *testing.T) {
	tests := []struct {
		name        string
		probe       connectivity.Probe
		hasFile     bool
		manualSeek  bool
		wantFetched bool
	}{
		{"offline", connectivity.Static(false), false, false, false},
		{"local file", connectivity.Static(true), true, false, false},
		{"manual seek pending", connectivity.Static(true), false, true, false},
		{"online without file", connectivity.Static(true), false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &fakeRemote{offset: &api.Offset{PostID: "p", Offset: 500}}
			tr := New(newMemStore(), remote, tt.probe, Options{})

			tr.Reconcile(context.Background(), "p", 0, tt.hasFile, tt.manualSeek)

			if fetched := remote.gets > 0; fetched != tt.wantFetched {
				t.Errorf("remote fetched = %v, want %v", fetched, tt.wantFetched)
			}
		})
	}
}

func TestReconcile_RemoteFailureIsNonFatal(t *testing.T) {
	remote := &fakeRemote{err: errors.New("boom")}
	tr := New(newMemStore(), remote, connectivity.Static(true), Options{})

	if _, ok := tr.Reconcile(context.Background(), "p", 0, false, false); ok {
		t.Error("Reconcile() issued a seek after a remote failure")
	}
}

func TestFlush_NormalizesNearEnd(t *testing.T) {
	st := newMemStore()
	remote := &fakeRemote{}
	tr := New(st, remote, connectivity.Static(true), Options{})

	got := tr.Flush(context.Background(), "p", 297*time.Second, 300*time.Second)

	if got.Offset != 0 || !got.Completed {
		t.Errorf("Flush() = %+v, want offset 0 completed", got)
	}
	if stored := st.offsets["p"]; stored.Offset != 0 || !stored.Completed {
		t.Errorf("stored offset = %+v, want normalized", stored)
	}
	if remote.lastSent.Offset != 0 || !remote.lastSent.Completed {
		t.Errorf("pushed offset = %+v, want normalized", remote.lastSent)
	}
}

func TestFlush_MidPlayback(t *testing.T) {
	st := newMemStore()
	tr := New(st, &fakeRemote{}, connectivity.Static(true), Options{})

	got := tr.Flush(context.Background(), "p", 120*time.Second, 300*time.Second)

	if got.Completed {
		t.Error("Flush() marked mid-playback position completed")
	}
	if got.Offset != 120 {
		t.Errorf("Offset = %v, want 120", got.Offset)
	}
}

func TestFlush_SkipsRemoteWhenOffline(t *testing.T) {
	remote := &fakeRemote{}
	tr := New(newMemStore(), remote, connectivity.Static(false), Options{})

	tr.Flush(context.Background(), "p", 10*time.Second, 300*time.Second)

	if len(remote.posted) != 0 {
		t.Errorf("pushed %d offsets while offline, want 0", len(remote.posted))
	}
}

func TestFlush_FansOutToCaches(t *testing.T) {
	tr := New(newMemStore(), &fakeRemote{}, connectivity.Static(true), Options{})

	var first, second []api.Offset
	tr.OnUpdate(func(o api.Offset) { first = append(first, o) })
	tr.OnUpdate(func(o api.Offset) { second = append(second, o) })

	tr.Flush(context.Background(), "p", 10*time.Second, 300*time.Second)

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("fanout counts = %d, %d, want 1, 1", len(first), len(second))
	}
	if first[0].PostID != "p" {
		t.Errorf("fanout PostID = %q, want %q", first[0].PostID, "p")
	}
}
