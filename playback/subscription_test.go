package playback

import (
	"testing"
	"time"
)

func TestSubscriptionRoutesEventsByType(t *testing.T) {
	s := newSubscription()

	s.deliver(Initialized{Item: Item{PostID: "a"}})
	s.deliver(StateUpdated{State: Playing})
	s.deliver(PositionChanged{Position: time.Second})
	s.deliver(Finished{})

	select {
	case e := <-s.Initialized:
		if e.Item.PostID != "a" {
			t.Errorf("initialized item = %q", e.Item.PostID)
		}
	default:
		t.Fatal("initialized event not routed")
	}
	select {
	case e := <-s.StateUpdated:
		if e.State != Playing {
			t.Errorf("state = %v", e.State)
		}
	default:
		t.Fatal("state event not routed")
	}
	select {
	case <-s.PositionChanged:
	default:
		t.Fatal("position event not routed")
	}
	select {
	case <-s.Finished:
	default:
		t.Fatal("finished event not routed")
	}
}

func TestSubscriptionDropsWhenBufferFull(t *testing.T) {
	s := newSubscription()

	for i := 0; i < eventBufferSize*2; i++ {
		s.deliver(PositionChanged{Position: time.Duration(i) * time.Second})
	}

	count := 0
	for {
		select {
		case <-s.PositionChanged:
			count++
		default:
			if count != eventBufferSize {
				t.Errorf("buffered events = %d, want %d", count, eventBufferSize)
			}
			return
		}
	}
}

func TestSubscriptionCloseSignalsDone(t *testing.T) {
	s := newSubscription()
	s.close()
	select {
	case <-s.Done:
	default:
		t.Fatal("Done not closed")
	}
}

func TestShutdownClosesSubscribers(t *testing.T) {
	o := New(Deps{}, Options{})
	sub := o.Subscribe()
	o.Shutdown()

	select {
	case <-sub.Done:
	case <-time.After(time.Second):
		t.Fatal("subscription not closed on Shutdown")
	}

	// Second Shutdown is a no-op.
	o.Shutdown()
}
