package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-tours/internal/network"
	"github.com/joeblew999/plat-tours/internal/planner"
	"github.com/joeblew999/plat-tours/internal/service"
)

// focusPad is the margin in degrees around a focused intersection.
const focusPad = 0.002

// RunFile performs a planner file-bridging action. An empty path uses the
// remembered one. Loads refresh the data they replace.
func (c *Controller) RunFile(ctx context.Context, action service.FileAction, path string) error {
	if !action.Valid() {
		return fmt.Errorf("%w: unknown file action %q", ErrPrecondition, action)
	}
	path = strings.TrimSpace(path)
	if path == "" && c.paths != nil {
		path = c.paths.Get(action)
	}
	op := Operation(action)
	if path == "" {
		return c.precondition(ctx, op, 0, "Enter a file path.")
	}

	var courier network.CourierID
	if action == service.LoadRequests || action == service.SaveTour {
		_, id, ok := c.Couriers()
		if !ok {
			return c.precondition(ctx, op, 0, "Select a courier first.")
		}
		courier = id
	}

	a, err := c.start(op, courier)
	if err != nil {
		return err
	}

	var msg string
	switch action {
	case service.LoadCouriers:
		err = c.planner.LoadCouriers(ctx, path)
		if err == nil {
			err = c.refreshCouriers(ctx)
		}
		if err == nil {
			err = c.refreshTours(ctx)
		}
		msg = "Couriers loaded from " + path
	case service.LoadRequests:
		err = c.planner.LoadRequests(ctx, path, courier)
		if err == nil {
			err = c.refreshTours(ctx)
		}
		msg = fmt.Sprintf("Requests for courier %d loaded from %s", courier, path)
	case service.SaveRequests:
		err = c.planner.SaveRequests(ctx, path)
		msg = "Requests saved to " + path
	case service.SaveTour:
		err = c.planner.SaveTour(ctx, courier, path)
		msg = fmt.Sprintf("Tour of courier %d saved to %s", courier, path)
	}
	if err != nil {
		detail := planner.Detail(err)
		c.notes.Open(LevelError, fmt.Sprintf("%s failed: %s", action, detail))
		c.finish(ctx, a, OutcomeFailed, detail)
		return err
	}

	if c.paths != nil {
		if err := c.paths.Remember(action, path); err != nil {
			c.log.Warn().Err(err).Str("action", string(action)).Msg("remember path")
		}
	}
	c.notes.Open(LevelSuccess, msg)
	c.finish(ctx, a, OutcomeOK, "")
	return nil
}

// SearchHit is a road name and the first intersection found for it.
type SearchHit struct {
	Name string         `json:"name" doc:"Road name"`
	Node network.NodeID `json:"node" doc:"First matching start intersection"`
}

// Search looks up roads by name. Results are de-duplicated by name, keeping
// the first start node returned for each.
func (c *Controller) Search(ctx context.Context, query string) ([]SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	edges, err := c.planner.SearchEdgesByName(ctx, query)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(edges))
	hits := make([]SearchHit, 0, len(edges))
	for _, e := range edges {
		if _, dup := seen[e.Name]; dup {
			continue
		}
		seen[e.Name] = struct{}{}
		hits = append(hits, SearchHit{Name: e.Name, Node: e.Start})
	}
	return hits, nil
}

// Focus returns a viewport bound around an intersection.
func (c *Controller) Focus(node network.NodeID) (orb.Bound, bool) {
	n, ok := c.Graph().Node(node)
	if !ok {
		return orb.Bound{}, false
	}
	p := orb.Point{n.Lng, n.Lat}
	return p.Bound().Pad(focusPad), true
}
