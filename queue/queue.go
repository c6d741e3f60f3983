// Package queue implements the persisted up-next list.
package queue

import (
	"sync"

	"github.com/samber/lo"

	"github.com/treble-fm/castkit/api"
)

// Reason records how an item got into the queue.
type Reason int

const (
	// Auto marks items the SDK queued on its own (up-next suggestions).
	Auto Reason = iota
	// Manually marks items the user queued explicitly.
	Manually
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case Auto:
		return "auto"
	case Manually:
		return "manually"
	default:
		return "unknown"
	}
}

// Item is a queued post with its provenance.
type Item struct {
	ID     string
	Post   api.Post
	Reason Reason
}

// Persister mirrors queue mutations to durable storage.
type Persister interface {
	ReplaceQueue(items []Item) error
}

// Queue is an ordered, deduplicated list of upcoming posts. Every
// mutation is mirrored to the persister before it returns, so the
// in-memory list and the store never diverge.
type Queue struct {
	mu    sync.Mutex
	items []Item
	store Persister
}

// New creates a queue backed by the given persister.
func New(store Persister) *Queue {
	return &Queue{store: store}
}

// Restore replaces the in-memory list with previously persisted items
// without writing back to the store.
func (q *Queue) Restore(items []Item) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append([]Item(nil), items...)
}

// Add inserts a post into the queue.
//
// Any existing entry with the same id is removed first; a manual entry
// is never downgraded to auto by a later automatic add. The new entry
// lands at index 0 when the queue is empty or moveToTop is set,
// otherwise at index 1 so the head keeps representing "now playing".
func (q *Queue) Add(post api.Post, reason Reason, moveToTop bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, existing := range q.items {
		if existing.ID == post.ID && existing.Reason == Manually {
			reason = Manually
			break
		}
	}
	q.items = lo.Reject(q.items, func(it Item, _ int) bool {
		return it.ID == post.ID
	})

	index := 0
	if len(q.items) > 0 && !moveToTop {
		index = 1
	}

	item := Item{ID: post.ID, Post: post, Reason: reason}
	q.items = append(q.items[:index], append([]Item{item}, q.items[index:]...)...)

	return q.persistLocked()
}

// Remove deletes the entry with the given id. Removing an absent id is
// a no-op.
func (q *Queue) Remove(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	before := len(q.items)
	q.items = lo.Reject(q.items, func(it Item, _ int) bool {
		return it.ID == id
	})
	if len(q.items) == before {
		return nil
	}
	return q.persistLocked()
}

// Clear empties the queue. With keepManual set, only auto-reasoned
// entries are removed.
func (q *Queue) Clear(keepManual bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if keepManual {
		q.items = lo.Filter(q.items, func(it Item, _ int) bool {
			return it.Reason == Manually
		})
	} else {
		q.items = nil
	}
	return q.persistLocked()
}

// Contains reports whether the queue holds an entry for the id.
func (q *Queue) Contains(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return lo.SomeBy(q.items, func(it Item) bool { return it.ID == id })
}

// HasAny reports whether the queue is non-empty.
func (q *Queue) HasAny() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) > 0
}

// Head returns the first item, or nil when empty.
func (q *Queue) Head() *Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	head := q.items[0]
	return &head
}

// PopHead removes and returns the first item, or nil when empty.
func (q *Queue) PopHead() (*Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, nil
	}
	head := q.items[0]
	q.items = q.items[1:]
	return &head, q.persistLocked()
}

// Items returns a copy of the queued items in order.
func (q *Queue) Items() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Item(nil), q.items...)
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) persistLocked() error {
	if q.store == nil {
		return nil
	}
	return q.store.ReplaceQueue(append([]Item(nil), q.items...))
}
