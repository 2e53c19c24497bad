package editor

import (
	"errors"
	"testing"
	"time"
)

func panelFor(m Mode) Panel {
	switch m {
	case AwaitingPickup, AwaitingDelivery:
		return PanelRequest
	case AwaitingReorderBefore, AwaitingReorderAfter:
		return PanelReorder
	}
	return PanelNone
}

func TestSelectorTransitions(t *testing.T) {
	awaiting := []Mode{AwaitingPickup, AwaitingDelivery, AwaitingWarehouse, AwaitingReorderBefore, AwaitingReorderAfter}
	stop := 0

	for _, m := range awaiting {
		s := NewSelector(time.Minute)
		s.OpenPanel(panelFor(m))
		if err := s.Begin(m); err != nil {
			t.Fatalf("Begin(%s): %v", m, err)
		}
		if s.Mode() != m {
			t.Fatalf("mode = %s, want %s", s.Mode(), m)
		}

		if m.awaitsStop() {
			if res := s.Click(Click{Node: 4}, "x"); res != ClickIgnored || s.Mode() != m {
				t.Fatalf("%s: click beside a stop = %v, mode %s", m, res, s.Mode())
			}
		}
		res := s.Click(Click{Node: 4, Stop: &stop, Courier: 1}, "Elm St")
		if res == ClickIgnored {
			t.Fatalf("%s: completing click ignored", m)
		}
		if s.Mode() != Idle {
			t.Fatalf("%s: mode after completing click = %s, want idle", m, s.Mode())
		}
	}
}

func TestSelectorBeginPreconditions(t *testing.T) {
	s := NewSelector(0)
	if err := s.Begin(Idle); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("Begin(idle) = %v", err)
	}
	if err := s.Begin(AwaitingPickup); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("Begin(pickup) without panel = %v", err)
	}
	s.OpenPanel(PanelRequest)
	if err := s.Begin(AwaitingReorderBefore); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("Begin(reorder-before) on request panel = %v", err)
	}
	if err := s.Begin(AwaitingWarehouse); err != nil {
		t.Fatalf("Begin(warehouse) = %v", err)
	}
}

func TestSelectorIdleIgnoresClicks(t *testing.T) {
	s := NewSelector(0)
	s.OpenPanel(PanelRequest)
	if res := s.Click(Click{Node: 1}, "Main St"); res != ClickIgnored {
		t.Fatalf("idle click = %v", res)
	}
	if s.Pending().Pickup != nil {
		t.Fatal("idle click recorded a pickup")
	}
}

func TestSelectorPanelSwitchDiscardsPending(t *testing.T) {
	s := NewSelector(time.Minute)
	s.OpenPanel(PanelRequest)
	_ = s.Begin(AwaitingPickup)
	s.Click(Click{Node: 1}, "Main St")
	_ = s.Begin(AwaitingDelivery)

	s.OpenPanel(PanelRequest)
	if s.Mode() != Idle {
		t.Fatalf("reopening the panel left mode %s", s.Mode())
	}
	if s.Pending().Pickup == nil {
		t.Fatal("reopening the same panel discarded the pickup")
	}

	s.OpenPanel(PanelReorder)
	p := s.Pending()
	if p.Pickup != nil || p.Panel != PanelReorder {
		t.Fatalf("pending after panel switch = %+v", p)
	}
	if p.PickupDuration != time.Minute {
		t.Fatalf("pickup duration = %s, want default", p.PickupDuration)
	}

	s.ClosePanel()
	if s.Pending().Panel != PanelNone || s.Mode() != Idle {
		t.Fatal("ClosePanel did not reset")
	}
}

func TestSelectorPendingIsCopy(t *testing.T) {
	s := NewSelector(0)
	s.OpenPanel(PanelRequest)
	_ = s.Begin(AwaitingPickup)
	s.Click(Click{Node: 1}, "Main St")

	p := s.Pending()
	p.Pickup.Node = 99
	if s.Pending().Pickup.Node != 1 {
		t.Fatal("Pending exposed internal state")
	}
}

func TestSetDurationsRejectsNegative(t *testing.T) {
	s := NewSelector(0)
	if err := s.SetDurations(-time.Second, 0); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("SetDurations = %v", err)
	}
}

func TestParseModeRoundTrip(t *testing.T) {
	for m := range modeNames {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Fatalf("ParseMode(%q) = %s, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("dancing"); err == nil {
		t.Fatal("ParseMode accepted an unknown mode")
	}
}

func TestNotifierReplaceCloseTrigger(t *testing.T) {
	var events []bool
	n := NewNotifier(func(_ Notification, open bool) { events = append(events, open) })

	ran := 0
	n.Open(LevelInfo, "first", NewAction("go", func() { ran++ }))
	second := n.Open(LevelError, "second")

	cur, ok := n.Current()
	if !ok || cur.ID != second.ID || len(cur.Actions) != 0 {
		t.Fatalf("current = %+v, want the replacing notification", cur)
	}
	if err := n.Trigger("missing"); !errors.Is(err, ErrNoSuchAction) {
		t.Fatalf("Trigger(missing) = %v", err)
	}

	third := n.Open(LevelWarning, "third", NewAction("go", func() { ran++ }))
	if err := n.Trigger(third.Actions[0].ID); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if ran != 1 {
		t.Fatalf("action ran %d times", ran)
	}
	if _, ok := n.Current(); ok {
		t.Fatal("notification still open after trigger")
	}

	n.Close()
	want := []bool{true, true, true, false}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
}
