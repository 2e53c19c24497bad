package editor

import (
	"fmt"
	"time"

	"github.com/joeblew999/plat-tours/internal/network"
)

// NodeChoice is a picked intersection with its road label.
type NodeChoice struct {
	Node  network.NodeID
	Label string
}

// StopChoice is a picked stop of a displayed tour.
type StopChoice struct {
	Courier network.CourierID
	Index   int
	Node    network.NodeID
	Label   string
}

// PendingEdit is the in-progress state of one modification. It lives from
// opening a panel until commit or cancel.
type PendingEdit struct {
	Panel            Panel
	Pickup           *NodeChoice
	Delivery         *NodeChoice
	PickupDuration   time.Duration
	DeliveryDuration time.Duration
	Before           *StopChoice
	After            *StopChoice
	// DeferredFor is the courier whose add was held back for a missing
	// warehouse. Valid when Deferred is set.
	DeferredFor network.CourierID
	Deferred    bool
}

// RequestReady reports whether both request stops are chosen.
func (p PendingEdit) RequestReady() bool {
	return p.Pickup != nil && p.Delivery != nil
}

// awaitsWarehouseOf reports whether assigning courier's warehouse should
// resume this request: the courier it was deferred for, or the active
// courier when no add was attempted yet.
func (p PendingEdit) awaitsWarehouseOf(courier, active network.CourierID, hasActive bool) bool {
	if p.Deferred {
		return p.DeferredFor == courier
	}
	return hasActive && active == courier
}

func (p PendingEdit) clone() PendingEdit {
	out := p
	if p.Pickup != nil {
		v := *p.Pickup
		out.Pickup = &v
	}
	if p.Delivery != nil {
		v := *p.Delivery
		out.Delivery = &v
	}
	if p.Before != nil {
		v := *p.Before
		out.Before = &v
	}
	if p.After != nil {
		v := *p.After
		out.After = &v
	}
	return out
}

// Click is one map click. Stop is set when the click landed on a stop of a
// displayed tour; Courier identifies that tour.
type Click struct {
	Node    network.NodeID
	Stop    *int
	Courier network.CourierID
}

// ClickResult tells the controller what a click did.
type ClickResult int

const (
	ClickIgnored ClickResult = iota
	ClickRecorded
	ClickAssignWarehouse
)

// Selector is the selection-mode state machine plus the pending edit it
// writes. It is the only writer of PendingEdit. Not safe for concurrent use.
type Selector struct {
	mode            Mode
	pending         PendingEdit
	defaultDuration time.Duration
}

// NewSelector starts idle with no panel open.
func NewSelector(defaultDuration time.Duration) *Selector {
	s := &Selector{defaultDuration: defaultDuration}
	s.reset(PanelNone)
	return s
}

// Mode returns the active mode.
func (s *Selector) Mode() Mode { return s.mode }

// Pending returns a copy of the pending edit.
func (s *Selector) Pending() PendingEdit { return s.pending.clone() }

// OpenPanel cancels any in-progress selection. Switching to a different
// panel discards the pending edit.
func (s *Selector) OpenPanel(p Panel) {
	s.mode = Idle
	if p != s.pending.Panel {
		s.reset(p)
	}
}

// ClosePanel returns to idle and discards every pending field.
func (s *Selector) ClosePanel() {
	s.mode = Idle
	s.reset(PanelNone)
}

// Begin enters an awaiting mode. Pickup and delivery picks need the request
// panel, stop picks need the reorder panel; a warehouse pick is allowed
// from anywhere.
func (s *Selector) Begin(m Mode) error {
	switch m {
	case Idle:
		return fmt.Errorf("%w: cannot begin idle mode", ErrPrecondition)
	case AwaitingPickup, AwaitingDelivery:
		if s.pending.Panel != PanelRequest {
			return fmt.Errorf("%w: open the request panel to pick a %s", ErrPrecondition, m)
		}
	case AwaitingReorderBefore, AwaitingReorderAfter:
		if s.pending.Panel != PanelReorder {
			return fmt.Errorf("%w: open the reorder panel to pick stops", ErrPrecondition)
		}
	case AwaitingWarehouse:
	default:
		return fmt.Errorf("%w: unknown mode %d", ErrPrecondition, int(m))
	}
	s.mode = m
	return nil
}

// Cancel leaves the awaiting mode but keeps the pending edit.
func (s *Selector) Cancel() { s.mode = Idle }

// SetDurations sets the pickup and delivery service durations.
func (s *Selector) SetDurations(pickup, delivery time.Duration) error {
	if pickup < 0 || delivery < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrPrecondition)
	}
	s.pending.PickupDuration = pickup
	s.pending.DeliveryDuration = delivery
	return nil
}

// Clear returns to idle and discards the pending fields, keeping the panel.
func (s *Selector) Clear() {
	s.mode = Idle
	s.reset(s.pending.Panel)
}

// Defer marks the pending request as waiting for courier's warehouse.
func (s *Selector) Defer(courier network.CourierID) {
	s.pending.DeferredFor = courier
	s.pending.Deferred = true
}

// ClearStops drops the chosen reorder stops.
func (s *Selector) ClearStops() {
	s.pending.Before = nil
	s.pending.After = nil
}

// Click applies a map click to the active mode. Reorder modes ignore clicks
// that did not land on a stop; every other awaiting mode completes.
func (s *Selector) Click(c Click, label string) ClickResult {
	switch s.mode {
	case AwaitingPickup:
		s.pending.Pickup = &NodeChoice{Node: c.Node, Label: label}
	case AwaitingDelivery:
		s.pending.Delivery = &NodeChoice{Node: c.Node, Label: label}
	case AwaitingReorderBefore, AwaitingReorderAfter:
		if c.Stop == nil {
			return ClickIgnored
		}
		choice := &StopChoice{Courier: c.Courier, Index: *c.Stop, Node: c.Node, Label: label}
		if s.mode == AwaitingReorderBefore {
			s.pending.Before = choice
		} else {
			s.pending.After = choice
		}
	case AwaitingWarehouse:
		s.mode = Idle
		return ClickAssignWarehouse
	default:
		return ClickIgnored
	}
	s.mode = Idle
	return ClickRecorded
}

func (s *Selector) reset(p Panel) {
	s.pending = PendingEdit{
		Panel:            p,
		PickupDuration:   s.defaultDuration,
		DeliveryDuration: s.defaultDuration,
	}
}
