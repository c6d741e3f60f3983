package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/treble-fm/castkit/api"
	"github.com/treble-fm/castkit/queue"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenPath(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenPath() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_QueueRoundTrip(t *testing.T) {
	s := openTestStore(t)

	items := []queue.Item{
		{ID: "a", Post: api.Post{ID: "a", Title: "First", MediaURL: "https://x/a.mp3", PublishedAt: time.Unix(1700000000, 0)}, Reason: queue.Manually},
		{ID: "b", Post: api.Post{ID: "b", Title: "Second", MediaURL: "https://x/b.mp3"}, Reason: queue.Auto},
	}
	if err := s.ReplaceQueue(items); err != nil {
		t.Fatalf("ReplaceQueue() error = %v", err)
	}

	got, err := s.FetchQueue()
	if err != nil {
		t.Fatalf("FetchQueue() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("FetchQueue() len = %d, want 2", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("order = %s,%s want a,b", got[0].ID, got[1].ID)
	}
	if got[0].Reason != queue.Manually {
		t.Errorf("Reason = %v, want Manually", got[0].Reason)
	}
	if got[0].Post.Title != "First" {
		t.Errorf("Title = %q, want %q", got[0].Post.Title, "First")
	}
}

func TestStore_ReplaceQueueOverwrites(t *testing.T) {
	s := openTestStore(t)

	_ = s.ReplaceQueue([]queue.Item{
		{ID: "a", Post: api.Post{ID: "a", Title: "A", MediaURL: "u"}},
	})
	_ = s.ReplaceQueue(nil)

	got, err := s.FetchQueue()
	if err != nil {
		t.Fatalf("FetchQueue() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("FetchQueue() len = %d, want 0", len(got))
	}
}

func TestStore_OffsetRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if off, err := s.Offset("missing"); err != nil || off != nil {
		t.Fatalf("Offset(missing) = %v, %v, want nil, nil", off, err)
	}

	want := api.Offset{PostID: "p1", Offset: 123.5, Timestamp: 1700000000000, Completed: false}
	if err := s.UpsertOffset(want); err != nil {
		t.Fatalf("UpsertOffset() error = %v", err)
	}

	got, err := s.Offset("p1")
	if err != nil {
		t.Fatalf("Offset() error = %v", err)
	}
	if got == nil || *got != want {
		t.Errorf("Offset() = %v, want %v", got, want)
	}

	// Upsert replaces in place.
	want.Offset = 0
	want.Completed = true
	if err := s.UpsertOffset(want); err != nil {
		t.Fatalf("UpsertOffset() error = %v", err)
	}
	got, _ = s.Offset("p1")
	if got == nil || !got.Completed || got.Offset != 0 {
		t.Errorf("Offset() after upsert = %v, want completed at 0", got)
	}
}

func TestStore_PostRoundTrip(t *testing.T) {
	s := openTestStore(t)

	want := api.Post{
		ID:          "p1",
		Title:       "Episode",
		OwnerName:   "Owner",
		MediaURL:    "https://x/p1.mp3",
		Duration:    1800,
		HasVideo:    true,
		PublishedAt: time.Unix(1700000000, 0),
	}
	if err := s.UpsertPost(want); err != nil {
		t.Fatalf("UpsertPost() error = %v", err)
	}

	got, err := s.Post("p1")
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if got == nil {
		t.Fatal("Post() = nil, want post")
	}
	if got.Title != want.Title || got.HasVideo != want.HasVideo || got.Duration != want.Duration {
		t.Errorf("Post() = %+v, want %+v", got, want)
	}
	if !got.PublishedAt.Equal(want.PublishedAt) {
		t.Errorf("PublishedAt = %v, want %v", got.PublishedAt, want.PublishedAt)
	}
}
