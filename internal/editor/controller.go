// Package editor is the interactive tour-editing controller. It turns map
// clicks into selections according to the active mode, sequences the
// planner calls for each edit, reports outcomes through a single
// notification channel, and keeps the last fetched planner state from
// which the map view is projected.
package editor

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-tours/internal/network"
	"github.com/joeblew999/plat-tours/internal/planner"
	"github.com/joeblew999/plat-tours/internal/service"
	"github.com/joeblew999/plat-tours/internal/view"
)

// Planner is the remote planning service.
type Planner interface {
	GetNetwork(ctx context.Context) (*network.Graph, error)
	GetAvailableCouriers(ctx context.Context) ([]network.Courier, error)
	GetWarehouses(ctx context.Context) (network.Warehouses, error)
	GetTours(ctx context.Context) (map[network.CourierID]network.Tour, error)
	SearchEdgesByName(ctx context.Context, query string) ([]network.Edge, error)
	LoadCouriers(ctx context.Context, path string) error
	LoadRequests(ctx context.Context, path string, courier network.CourierID) error
	SaveRequests(ctx context.Context, path string) error
	SaveTour(ctx context.Context, courier network.CourierID, path string) error
	AssignWarehouse(ctx context.Context, courier network.CourierID, node network.NodeID) error
	AddRequest(ctx context.Context, r planner.NewRequest) error
	DeleteRequest(ctx context.Context, requestID int64, courier network.CourierID) error
	ReorderStops(ctx context.Context, courier network.CourierID, before, after int) error
}

// Journal records mutation attempts.
type Journal interface {
	Record(ctx context.Context, e service.JournalEntry) error
}

// Metrics observes mutation outcomes.
type Metrics interface {
	ObserveMutation(op, outcome string, duration time.Duration)
}

// Config wires a Controller.
type Config struct {
	Planner Planner
	Logger  zerolog.Logger
	Bus     *service.EventBus
	Paths   *service.PathStore
	Journal Journal
	Metrics Metrics
	// DefaultDuration seeds pickup and delivery durations of a new request.
	DefaultDuration time.Duration
	Palette         []string
}

// state is the last successfully fetched planner data. Only the fetch and
// refresh paths replace it; every map inside is treated as immutable.
type state struct {
	graph      *network.Graph
	couriers   []network.Courier
	tours      map[network.CourierID]network.Tour
	warehouses network.Warehouses
}

type busyKey struct {
	op      Operation
	courier network.CourierID
}

// Controller is one operator's editing session.
type Controller struct {
	planner Planner
	log     zerolog.Logger
	bus     *service.EventBus
	paths   *service.PathStore
	journal Journal
	metrics Metrics
	palette []string
	notes   *Notifier

	mu        sync.Mutex
	st        state
	scope     network.Scope
	active    network.CourierID
	hasActive bool
	sel       *Selector
	busy      map[busyKey]struct{}
	model     *view.Model
}

// New creates a controller with empty state; call Refresh to load it.
func New(cfg Config) *Controller {
	c := &Controller{
		planner: cfg.Planner,
		log:     cfg.Logger.With().Str("component", "editor").Logger(),
		bus:     cfg.Bus,
		paths:   cfg.Paths,
		journal: cfg.Journal,
		metrics: cfg.Metrics,
		palette: cfg.Palette,
		sel:     NewSelector(cfg.DefaultDuration),
		busy:    make(map[busyKey]struct{}),
		st: state{
			graph:      network.NewGraph(nil, nil),
			tours:      map[network.CourierID]network.Tour{},
			warehouses: network.Warehouses{},
		},
	}
	c.notes = NewNotifier(func(n Notification, open bool) {
		action := "closed"
		if open {
			action = "opened"
		}
		c.publish(service.TopicNotification, action, n.ID)
	})
	return c
}

// Notifications exposes the notification channel.
func (c *Controller) Notifications() *Notifier { return c.notes }

// Color returns the tour color of a courier.
func (c *Controller) Color(id network.CourierID) string {
	palette := c.palette
	if len(palette) == 0 {
		palette = view.Palette
	}
	return view.ColorFor(id, palette)
}

// Paths returns the file path store, which may be nil.
func (c *Controller) Paths() *service.PathStore { return c.paths }

// Refresh loads the network, couriers, warehouses and tours.
func (c *Controller) Refresh(ctx context.Context) error {
	g, err := c.planner.GetNetwork(ctx)
	if err != nil {
		c.notes.Open(LevelError, "Failed to load the road network: "+planner.Detail(err))
		return err
	}
	c.mu.Lock()
	c.st.graph = g
	c.model = nil
	c.mu.Unlock()
	c.publish(service.TopicNetwork, "refreshed", "")

	if err := c.refreshCouriers(ctx); err != nil {
		c.notes.Open(LevelError, "Failed to load couriers: "+planner.Detail(err))
		return err
	}
	if err := c.refreshTours(ctx); err != nil {
		c.notes.Open(LevelError, "Failed to load tours: "+planner.Detail(err))
		return err
	}
	return nil
}

func (c *Controller) refreshCouriers(ctx context.Context) error {
	couriers, err := c.planner.GetAvailableCouriers(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.st.couriers = couriers
	c.hasActive = c.hasActive && containsCourier(couriers, c.active)
	if !c.hasActive && len(couriers) > 0 {
		c.active, c.hasActive = couriers[0].ID, true
	}
	c.mu.Unlock()
	c.publish(service.TopicCouriers, "refreshed", "")
	return nil
}

// refreshTours re-fetches tours and warehouses. It is only called once a
// mutation's response has been received and accepted.
func (c *Controller) refreshTours(ctx context.Context) error {
	tours, err := c.planner.GetTours(ctx)
	if err != nil {
		return err
	}
	if _, err := c.refreshWarehouses(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	c.st.tours = tours
	c.model = nil
	c.mu.Unlock()
	c.publish(service.TopicTours, "refreshed", "")
	return nil
}

func (c *Controller) refreshWarehouses(ctx context.Context) (network.Warehouses, error) {
	wh, err := c.planner.GetWarehouses(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.st.warehouses = wh
	c.model = nil
	c.mu.Unlock()
	return wh, nil
}

// View returns the projection of the current state under the display scope.
func (c *Controller) View() view.Model {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model == nil {
		m := view.Project(view.Input{
			Graph:      c.st.graph,
			Tours:      c.st.tours,
			Warehouses: c.st.warehouses,
			Scope:      c.scope,
			Palette:    c.palette,
		})
		c.model = &m
	}
	return *c.model
}

// Displayed returns the tours and warehouses visible under the scope.
func (c *Controller) Displayed() view.Filtered {
	c.mu.Lock()
	defer c.mu.Unlock()
	return view.Filter(c.st.tours, c.st.warehouses, c.scope)
}

// Graph returns the loaded road network.
func (c *Controller) Graph() *network.Graph {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.graph
}

// Couriers returns the courier list and the active courier.
func (c *Controller) Couriers() ([]network.Courier, network.CourierID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]network.Courier(nil), c.st.couriers...), c.active, c.hasActive
}

// SetActiveCourier selects the courier edits apply to.
func (c *Controller) SetActiveCourier(id network.CourierID) error {
	c.mu.Lock()
	if !containsCourier(c.st.couriers, id) {
		c.mu.Unlock()
		return fmt.Errorf("%w: unknown courier %d", ErrPrecondition, id)
	}
	c.active, c.hasActive = id, true
	c.mu.Unlock()
	c.publish(service.TopicCouriers, "changed", courierKey(id))
	return nil
}

// Scope returns the display scope.
func (c *Controller) Scope() network.Scope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scope
}

// SetScope changes which couriers' tours are displayed. Reorder stops picked
// under the previous scope are dropped.
func (c *Controller) SetScope(s network.Scope) {
	c.mu.Lock()
	changed := c.scope != s
	c.scope = s
	var hadStops bool
	if changed {
		c.model = nil
		p := c.sel.Pending()
		hadStops = p.Before != nil || p.After != nil
		c.sel.ClearStops()
	}
	c.mu.Unlock()
	if changed {
		c.publish(service.TopicScope, "changed", s.String())
	}
	if hadStops {
		c.publish(service.TopicSelection, "changed", "")
	}
}

// Selection returns the active mode and a copy of the pending edit.
func (c *Controller) Selection() (Mode, PendingEdit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.Mode(), c.sel.Pending()
}

// OpenPanel opens an editing panel, cancelling any in-progress selection.
func (c *Controller) OpenPanel(p Panel) {
	c.withSelector(func(s *Selector) error { s.OpenPanel(p); return nil })
}

// ClosePanel discards the pending edit.
func (c *Controller) ClosePanel() {
	c.withSelector(func(s *Selector) error { s.ClosePanel(); return nil })
}

// BeginMode enters an awaiting selection mode.
func (c *Controller) BeginMode(m Mode) error {
	return c.withSelector(func(s *Selector) error { return s.Begin(m) })
}

// CancelMode leaves the awaiting mode without discarding choices.
func (c *Controller) CancelMode() {
	c.withSelector(func(s *Selector) error { s.Cancel(); return nil })
}

// SetDurations sets the pending request's service durations.
func (c *Controller) SetDurations(pickup, delivery time.Duration) error {
	return c.withSelector(func(s *Selector) error { return s.SetDurations(pickup, delivery) })
}

// TriggerAction runs a follow-up action of the active notification.
func (c *Controller) TriggerAction(id string) error {
	return c.notes.Trigger(id)
}

// Busy reports whether op is in flight for courier.
func (c *Controller) Busy(op Operation, courier network.CourierID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.busy[busyKey{op, courier}]
	return ok
}

// BusyFlag is one in-flight operation.
type BusyFlag struct {
	Op      Operation         `json:"op" doc:"Operation in flight"`
	Courier network.CourierID `json:"courier" doc:"Courier the operation applies to"`
}

// InFlight lists the operations currently holding a busy flag.
func (c *Controller) InFlight() []BusyFlag {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]BusyFlag, 0, len(c.busy))
	for k := range c.busy {
		out = append(out, BusyFlag{Op: k.op, Courier: k.courier})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Op != out[j].Op {
			return out[i].Op < out[j].Op
		}
		return out[i].Courier < out[j].Courier
	})
	return out
}

// CourierOfRequest finds the courier whose fetched tour serves requestID.
func (c *Controller) CourierOfRequest(requestID int64) (network.CourierID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, t := range c.st.tours {
		for _, s := range t.Stops {
			if s.RequestID == requestID && requestID != network.NoRequest {
				return id, true
			}
		}
	}
	return 0, false
}

func (c *Controller) withSelector(fn func(s *Selector) error) error {
	c.mu.Lock()
	err := fn(c.sel)
	c.mu.Unlock()
	if err == nil {
		c.publish(service.TopicSelection, "changed", "")
	}
	return err
}

func (c *Controller) acquire(op Operation, courier network.CourierID) bool {
	c.mu.Lock()
	k := busyKey{op, courier}
	_, taken := c.busy[k]
	if !taken {
		c.busy[k] = struct{}{}
	}
	c.mu.Unlock()
	if taken {
		return false
	}
	c.publish(service.TopicBusy, "started", busyID(op, courier))
	return true
}

func (c *Controller) release(op Operation, courier network.CourierID) {
	c.mu.Lock()
	delete(c.busy, busyKey{op, courier})
	c.mu.Unlock()
	c.publish(service.TopicBusy, "finished", busyID(op, courier))
}

func busyID(op Operation, courier network.CourierID) string {
	return string(op) + ":" + courierKey(courier)
}

func (c *Controller) publish(topic, action, id string) {
	c.bus.Publish(service.Event{Topic: topic, Action: action, ID: id})
}

func containsCourier(list []network.Courier, id network.CourierID) bool {
	for _, c := range list {
		if c.ID == id {
			return true
		}
	}
	return false
}

func courierKey(id network.CourierID) string { return strconv.FormatInt(int64(id), 10) }
