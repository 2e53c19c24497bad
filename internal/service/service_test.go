package service

import (
	"testing"
	"time"
)

func TestPathStorePersists(t *testing.T) {
	dir := t.TempDir()

	s := NewPathStore(dir)
	if got := s.Get(LoadCouriers); got != DefaultPaths[LoadCouriers] {
		t.Fatalf("default=%q", got)
	}
	if err := s.Remember(LoadCouriers, "data/couriers.xml"); err != nil {
		t.Fatal(err)
	}
	if err := s.Remember("explode", "x"); err == nil {
		t.Fatalf("expected error for unknown action")
	}

	reopened := NewPathStore(dir)
	if got := reopened.Get(LoadCouriers); got != "data/couriers.xml" {
		t.Fatalf("reloaded=%q, want data/couriers.xml", got)
	}
	if got := reopened.List()[SaveTour]; got != DefaultPaths[SaveTour] {
		t.Fatalf("list save-tour=%q", got)
	}
}

func TestEventBusFanOut(t *testing.T) {
	b := NewEventBus()
	a := b.Subscribe()
	c := b.Subscribe()
	defer b.Unsubscribe(c)

	b.Publish(Event{Topic: TopicTours, Action: "refreshed"})
	for _, ch := range []chan Event{a, c} {
		select {
		case ev := <-ch:
			if ev.Topic != TopicTours {
				t.Fatalf("topic=%q", ev.Topic)
			}
		case <-time.After(time.Second):
			t.Fatal("no event received")
		}
	}

	b.Unsubscribe(a)
	b.Unsubscribe(a) // second call is a no-op
	if _, open := <-a; open {
		t.Fatalf("channel should be closed")
	}
}
