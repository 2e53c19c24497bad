package editor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joeblew999/plat-tours/internal/network"
	"github.com/joeblew999/plat-tours/internal/planner"
	"github.com/joeblew999/plat-tours/internal/service"
)

// Operation names a mutation kind. Busy flags are held per operation and
// courier.
type Operation string

const (
	OpAddRequest      Operation = "add-request"
	OpDeleteRequest   Operation = "delete-request"
	OpReorderStops    Operation = "reorder-stops"
	OpAssignWarehouse Operation = "assign-warehouse"
)

// Outcome classifies how a mutation attempt ended.
type Outcome string

const (
	OutcomeOK           Outcome = "ok"
	OutcomeInfeasible   Outcome = "infeasible"
	OutcomeFailed       Outcome = "failed"
	OutcomePrecondition Outcome = "precondition"
	OutcomeDeferred     Outcome = "deferred"
	OutcomeBusy         Outcome = "busy"
)

type attempt struct {
	op      Operation
	courier network.CourierID
	start   time.Time
}

// start takes the busy flag for (op, courier).
func (c *Controller) start(op Operation, courier network.CourierID) (*attempt, error) {
	if !c.acquire(op, courier) {
		c.observe(context.Background(), &attempt{op: op, courier: courier, start: time.Now()}, OutcomeBusy, "")
		return nil, fmt.Errorf("%w: %s for courier %d", ErrBusy, op, courier)
	}
	return &attempt{op: op, courier: courier, start: time.Now()}, nil
}

// finish clears the busy flag and records the outcome.
func (c *Controller) finish(ctx context.Context, a *attempt, outcome Outcome, detail string) {
	c.release(a.op, a.courier)
	c.observe(ctx, a, outcome, detail)
}

func (c *Controller) observe(ctx context.Context, a *attempt, outcome Outcome, detail string) {
	elapsed := time.Since(a.start)

	ev := c.log.Info()
	if outcome != OutcomeOK {
		ev = c.log.Warn()
	}
	ev.Str("op", string(a.op)).
		Int64("courier", int64(a.courier)).
		Str("outcome", string(outcome)).
		Dur("duration", elapsed).
		Str("detail", detail).
		Msg("mutation")

	if c.metrics != nil {
		c.metrics.ObserveMutation(string(a.op), string(outcome), elapsed)
	}
	if c.journal != nil {
		err := c.journal.Record(ctx, service.JournalEntry{
			At:         time.Now().UTC(),
			Operation:  string(a.op),
			Courier:    int64(a.courier),
			Outcome:    string(outcome),
			Detail:     detail,
			DurationMS: elapsed.Milliseconds(),
		})
		if err != nil {
			c.log.Error().Err(err).Msg("journal write failed")
		}
	}
}

// precondition reports a client-side check failure. No planner call is made.
func (c *Controller) precondition(ctx context.Context, op Operation, courier network.CourierID, msg string) error {
	c.notes.Open(LevelWarning, msg)
	c.observe(ctx, &attempt{op: op, courier: courier, start: time.Now()}, OutcomePrecondition, msg)
	return fmt.Errorf("%w: %s", ErrPrecondition, msg)
}

func (c *Controller) clearPending() {
	c.withSelector(func(s *Selector) error { s.Clear(); return nil })
}

// CommitRequest adds the pending request to the active courier's tour.
func (c *Controller) CommitRequest(ctx context.Context) error {
	c.mu.Lock()
	p := c.sel.Pending()
	courier, ok := c.active, c.hasActive
	c.mu.Unlock()

	switch {
	case !ok:
		return c.precondition(ctx, OpAddRequest, 0, "Select a courier before adding a request.")
	case p.Pickup == nil:
		return c.precondition(ctx, OpAddRequest, courier, "Select a pickup intersection on the map.")
	case p.Delivery == nil:
		return c.precondition(ctx, OpAddRequest, courier, "Select a delivery intersection on the map.")
	}
	return c.AddRequest(ctx, courier, p.Pickup.Node, p.PickupDuration, p.Delivery.Node, p.DeliveryDuration)
}

// AddRequest inserts a pickup and delivery into courier's tour. When the
// courier has no warehouse the call is deferred: the pending edit is kept
// and the notification offers to pick a warehouse, after which the request
// is added automatically.
func (c *Controller) AddRequest(ctx context.Context, courier network.CourierID, pickup network.NodeID, pickupDur time.Duration, delivery network.NodeID, deliveryDur time.Duration) error {
	a, err := c.start(OpAddRequest, courier)
	if err != nil {
		return err
	}

	wh, err := c.refreshWarehouses(ctx)
	if err != nil {
		detail := planner.Detail(err)
		c.clearPending()
		c.notes.Open(LevelError, "Failed to fetch warehouses: "+detail)
		c.finish(ctx, a, OutcomeFailed, detail)
		return err
	}
	if !wh.Has(courier) {
		c.withSelector(func(s *Selector) error { s.Defer(courier); return nil })
		msg := fmt.Sprintf("Courier %d has no warehouse yet. Pick one on the map and the request will be added.", courier)
		c.notes.Open(LevelWarning, msg, NewAction("Add warehouse", func() {
			if err := c.BeginMode(AwaitingWarehouse); err != nil {
				c.log.Error().Err(err).Msg("begin warehouse selection")
			}
		}))
		c.finish(ctx, a, OutcomeDeferred, msg)
		return ErrWarehouseMissing
	}

	err = c.planner.AddRequest(ctx, planner.NewRequest{
		Courier:          courier,
		Warehouse:        wh.Get(courier),
		Pickup:           pickup,
		PickupDuration:   pickupDur,
		Delivery:         delivery,
		DeliveryDuration: deliveryDur,
	})
	if err != nil {
		detail := planner.Detail(err)
		c.clearPending()
		if planner.IsInfeasible(err) {
			c.notes.Open(LevelError, fmt.Sprintf("No feasible tour: courier %d cannot serve this pickup and delivery within the shift.", courier))
			c.finish(ctx, a, OutcomeInfeasible, detail)
			return fmt.Errorf("%w: %s", ErrInfeasible, detail)
		}
		c.notes.Open(LevelError, "Failed to add request: "+detail)
		c.finish(ctx, a, OutcomeFailed, detail)
		return err
	}

	if err := c.afterMutation(ctx); err != nil {
		c.clearPending()
		c.finish(ctx, a, OutcomeFailed, planner.Detail(err))
		return err
	}
	c.SetScope(network.OnlyCourier(courier))
	c.clearPending()
	c.notes.Open(LevelSuccess, fmt.Sprintf("Request added to the tour of courier %d.", courier))
	c.finish(ctx, a, OutcomeOK, "")
	return nil
}

// DeleteRequest removes a request from courier's tour. The display scope is
// left as it is.
func (c *Controller) DeleteRequest(ctx context.Context, requestID int64, courier network.CourierID) error {
	if requestID == network.NoRequest {
		return c.precondition(ctx, OpDeleteRequest, courier, "This stop does not belong to a request.")
	}
	a, err := c.start(OpDeleteRequest, courier)
	if err != nil {
		return err
	}

	if err := c.planner.DeleteRequest(ctx, requestID, courier); err != nil {
		detail := planner.Detail(err)
		if planner.IsInfeasible(err) {
			c.notes.Open(LevelError, fmt.Sprintf("No feasible tour for courier %d without request %d.", courier, requestID))
			c.finish(ctx, a, OutcomeInfeasible, detail)
			return fmt.Errorf("%w: %s", ErrInfeasible, detail)
		}
		c.notes.Open(LevelError, "Failed to delete request: "+detail)
		c.finish(ctx, a, OutcomeFailed, detail)
		return err
	}

	if err := c.afterMutation(ctx); err != nil {
		c.finish(ctx, a, OutcomeFailed, planner.Detail(err))
		return err
	}
	c.notes.Open(LevelSuccess, fmt.Sprintf("Request %d deleted.", requestID))
	c.finish(ctx, a, OutcomeOK, "")
	return nil
}

// CommitReorder moves the pending "after" stop behind the pending "before"
// stop of the displayed courier's tour.
func (c *Controller) CommitReorder(ctx context.Context) error {
	c.mu.Lock()
	p := c.sel.Pending()
	scope := c.scope
	c.mu.Unlock()

	courier, single := scope.Courier()
	if !single {
		return c.precondition(ctx, OpReorderStops, 0, "Display a single courier before reordering stops.")
	}
	if p.Before == nil || p.After == nil {
		return c.precondition(ctx, OpReorderStops, courier, "Select both stops on the map.")
	}
	if p.Before.Courier != courier || p.After.Courier != courier {
		c.withSelector(func(s *Selector) error { s.ClearStops(); return nil })
		return c.precondition(ctx, OpReorderStops, courier, "Both stops must belong to the displayed tour.")
	}
	return c.ReorderStops(ctx, courier, p.Before.Index, p.After.Index)
}

// ReorderStops asks the planner to place the stop at after right behind the
// stop at before. A rejection from the planner is shown verbatim and is not
// returned as an error.
func (c *Controller) ReorderStops(ctx context.Context, courier network.CourierID, before, after int) error {
	c.mu.Lock()
	scope := c.scope
	tour, hasTour := c.st.tours[courier]
	c.mu.Unlock()

	if sc, single := scope.Courier(); !single || sc != courier {
		return c.precondition(ctx, OpReorderStops, courier, "Display a single courier before reordering stops.")
	}
	if !hasTour {
		return c.precondition(ctx, OpReorderStops, courier, fmt.Sprintf("Courier %d has no tour.", courier))
	}
	if !tour.HasStop(before) || !tour.HasStop(after) {
		return c.precondition(ctx, OpReorderStops, courier, "Both stops must belong to the displayed tour.")
	}
	if before == after {
		return c.precondition(ctx, OpReorderStops, courier, "Pick two different stops.")
	}

	a, err := c.start(OpReorderStops, courier)
	if err != nil {
		return err
	}

	err = c.planner.ReorderStops(ctx, courier, before, after)
	c.withSelector(func(s *Selector) error { s.ClearStops(); return nil })
	if err != nil {
		detail := planner.Detail(err)
		c.notes.Open(LevelWarning, detail)
		outcome := OutcomeFailed
		if planner.IsInfeasible(err) {
			outcome = OutcomeInfeasible
		}
		c.finish(ctx, a, outcome, detail)
		return nil
	}

	if err := c.afterMutation(ctx); err != nil {
		c.finish(ctx, a, OutcomeFailed, planner.Detail(err))
		return err
	}
	c.notes.Open(LevelSuccess, "Stops reordered.")
	c.finish(ctx, a, OutcomeOK, "")
	return nil
}

// AssignWarehouse sets courier's warehouse. If a pickup and delivery were
// already chosen for that courier, the deferred request is added with the
// pending fields as they are now.
func (c *Controller) AssignWarehouse(ctx context.Context, courier network.CourierID, node network.NodeID) error {
	if _, ok := c.Graph().Node(node); !ok {
		return c.precondition(ctx, OpAssignWarehouse, courier, fmt.Sprintf("Intersection %d is not on the map.", node))
	}
	a, err := c.start(OpAssignWarehouse, courier)
	if err != nil {
		return err
	}

	if err := c.planner.AssignWarehouse(ctx, courier, node); err != nil {
		detail := planner.Detail(err)
		c.notes.Open(LevelError, "Failed to assign warehouse: "+detail)
		c.finish(ctx, a, OutcomeFailed, detail)
		return err
	}
	if err := c.afterMutation(ctx); err != nil {
		c.finish(ctx, a, OutcomeFailed, planner.Detail(err))
		return err
	}
	c.finish(ctx, a, OutcomeOK, "")

	c.mu.Lock()
	p := c.sel.Pending()
	active, hasActive := c.active, c.hasActive
	c.mu.Unlock()
	if p.Panel == PanelRequest && p.RequestReady() && p.awaitsWarehouseOf(courier, active, hasActive) {
		return c.AddRequest(ctx, courier, p.Pickup.Node, p.PickupDuration, p.Delivery.Node, p.DeliveryDuration)
	}
	c.notes.Open(LevelSuccess, fmt.Sprintf("Warehouse of courier %d set to %s.", courier, c.Graph().Label(node)))
	return nil
}

// afterMutation refreshes tours once the planner has accepted a mutation.
func (c *Controller) afterMutation(ctx context.Context) error {
	if err := c.refreshTours(ctx); err != nil {
		c.notes.Open(LevelError, "The change was saved but tours could not be refreshed: "+planner.Detail(err))
		return err
	}
	return nil
}

// Click routes a map click through the selection mode. In reorder modes a
// stop index that is not part of the displayed tour counts as a click
// beside the tour.
func (c *Controller) Click(ctx context.Context, click Click) (ClickResult, error) {
	c.mu.Lock()
	g := c.st.graph
	if c.sel.Mode().awaitsStop() && click.Stop != nil {
		shown := c.scope
		if id, single := shown.Courier(); single {
			click.Courier = id
		}
		t, ok := c.st.tours[click.Courier]
		if ok && shown.Includes(click.Courier) && t.HasStop(*click.Stop) {
			click.Node = t.Stops[*click.Stop].Node
		} else {
			click.Stop = nil
		}
	}
	if _, ok := g.Node(click.Node); !ok {
		c.mu.Unlock()
		return ClickIgnored, nil
	}
	res := c.sel.Click(click, g.Label(click.Node))
	courier, hasCourier := c.active, c.hasActive
	c.mu.Unlock()

	if res == ClickIgnored {
		return res, nil
	}
	c.publish(service.TopicSelection, "changed", "")
	if res != ClickAssignWarehouse {
		return res, nil
	}
	if !hasCourier {
		return res, c.precondition(ctx, OpAssignWarehouse, 0, "Select a courier before picking a warehouse.")
	}
	err := c.AssignWarehouse(ctx, courier, click.Node)
	if errors.Is(err, ErrBusy) {
		c.notes.Open(LevelWarning, "A warehouse assignment is already in progress.")
	}
	return res, err
}
