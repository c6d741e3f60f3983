package queue

import (
	"testing"

	"github.com/treble-fm/castkit/api"
)

// recordingPersister captures every persisted snapshot.
type recordingPersister struct {
	snapshots [][]Item
}

func (p *recordingPersister) ReplaceQueue(items []Item) error {
	p.snapshots = append(p.snapshots, items)
	return nil
}

func post(id string) api.Post {
	return api.Post{ID: id, Title: "post " + id}
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestQueue_AddToEmpty(t *testing.T) {
	q := New(nil)

	if err := q.Add(post("a"), Auto, false); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if q.Len() != 1 {
		t.Errorf("Len() = %d, want 1", q.Len())
	}
	if got := ids(q.Items()); got[0] != "a" {
		t.Errorf("head = %q, want %q", got[0], "a")
	}
}

func TestQueue_AddBehindHead(t *testing.T) {
	q := New(nil)
	_ = q.Add(post("playing"), Auto, false)

	_ = q.Add(post("next"), Auto, false)
	_ = q.Add(post("sooner"), Auto, false)

	got := ids(q.Items())
	want := []string{"playing", "sooner", "next"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestQueue_AddMoveToTop(t *testing.T) {
	q := New(nil)
	_ = q.Add(post("playing"), Auto, false)
	_ = q.Add(post("next"), Auto, false)

	_ = q.Add(post("urgent"), Manually, true)

	if got := ids(q.Items())[0]; got != "urgent" {
		t.Errorf("head = %q, want %q", got, "urgent")
	}
}

func TestQueue_Dedup(t *testing.T) {
	q := New(nil)
	_ = q.Add(post("a"), Auto, false)
	_ = q.Add(post("b"), Auto, false)

	_ = q.Add(post("b"), Auto, false)

	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}
}

func TestQueue_ManualReasonSticks(t *testing.T) {
	q := New(nil)
	_ = q.Add(post("a"), Manually, false)

	// Automatic re-add must not downgrade the manual provenance.
	_ = q.Add(post("a"), Auto, false)

	items := q.Items()
	if len(items) != 1 {
		t.Fatalf("Len() = %d, want 1", len(items))
	}
	if items[0].Reason != Manually {
		t.Errorf("Reason = %v, want Manually", items[0].Reason)
	}
}

func TestQueue_Remove(t *testing.T) {
	q := New(nil)
	_ = q.Add(post("a"), Auto, false)
	_ = q.Add(post("b"), Auto, false)

	if err := q.Remove("a"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	if q.Contains("a") {
		t.Error("Contains(a) = true after Remove")
	}
	if !q.Contains("b") {
		t.Error("Contains(b) = false, want true")
	}
}

func TestQueue_ClearKeepManual(t *testing.T) {
	q := New(nil)
	_ = q.Add(post("auto1"), Auto, false)
	_ = q.Add(post("manual"), Manually, false)
	_ = q.Add(post("auto2"), Auto, false)

	_ = q.Clear(true)

	items := q.Items()
	if len(items) != 1 || items[0].ID != "manual" {
		t.Errorf("items = %v, want only the manual entry", ids(items))
	}

	_ = q.Clear(false)
	if q.HasAny() {
		t.Error("HasAny() = true after full Clear")
	}
}

func TestQueue_PersistsEveryMutation(t *testing.T) {
	p := &recordingPersister{}
	q := New(p)

	_ = q.Add(post("a"), Auto, false)
	_ = q.Remove("a")
	_ = q.Clear(false)

	if len(p.snapshots) != 3 {
		t.Fatalf("persist calls = %d, want 3", len(p.snapshots))
	}
	if len(p.snapshots[0]) != 1 || len(p.snapshots[1]) != 0 {
		t.Errorf("unexpected snapshots: %v", p.snapshots)
	}
}

func TestQueue_PopHead(t *testing.T) {
	q := New(nil)
	_ = q.Add(post("a"), Auto, false)
	_ = q.Add(post("b"), Auto, false)

	head, err := q.PopHead()
	if err != nil {
		t.Fatalf("PopHead() error = %v", err)
	}
	if head == nil || head.ID != "a" {
		t.Fatalf("PopHead() = %v, want item a", head)
	}
	if q.Len() != 1 {
		t.Errorf("Len() = %d, want 1", q.Len())
	}

	_, _ = q.PopHead()
	head, _ = q.PopHead()
	if head != nil {
		t.Errorf("PopHead() on empty queue = %v, want nil", head)
	}
}
