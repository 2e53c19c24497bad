// Package planner is the HTTP client for the remote planning service that
// stores the road graph, couriers, requests and warehouses and computes tours.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-tours/internal/network"
)

// Observer receives timing for every planner call.
type Observer interface {
	ObservePlannerCall(method, path string, status int, duration time.Duration)
}

// Client talks to the planning service.
type Client struct {
	baseURL  string
	session  *http.Client
	log      zerolog.Logger
	observer Observer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.session = hc }
}

// WithLogger sets the client logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithObserver records call metrics.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// New creates a client for the planner at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: &http.Client{Timeout: 60 * time.Second},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewRequest describes a request to add: a pickup and a delivery stop with
// their service durations, for a courier whose warehouse is known.
type NewRequest struct {
	Courier          network.CourierID
	Warehouse        network.NodeID
	Pickup           network.NodeID
	PickupDuration   time.Duration
	Delivery         network.NodeID
	DeliveryDuration time.Duration
}

// GetNetwork fetches the full road network.
func (c *Client) GetNetwork(ctx context.Context) (*network.Graph, error) {
	var g network.Graph
	if err := c.getJSON(ctx, "/api/map", nil, &g); err != nil {
		return nil, fmt.Errorf("get network: %w", err)
	}
	return &g, nil
}

// SearchEdgesByName returns road segments whose name matches query.
func (c *Client) SearchEdgesByName(ctx context.Context, query string) ([]network.Edge, error) {
	var edges []network.Edge
	if err := c.getJSON(ctx, "/search", url.Values{"name": {query}}, &edges); err != nil {
		return nil, fmt.Errorf("search edges: %w", err)
	}
	return edges, nil
}

// GetAvailableCouriers lists the loaded couriers.
func (c *Client) GetAvailableCouriers(ctx context.Context) ([]network.Courier, error) {
	var couriers []network.Courier
	if err := c.getJSON(ctx, "/api/tour/available-couriers", nil, &couriers); err != nil {
		return nil, fmt.Errorf("get couriers: %w", err)
	}
	return couriers, nil
}

// GetWarehouses returns every courier's warehouse; unset couriers map to -1.
func (c *Client) GetWarehouses(ctx context.Context) (network.Warehouses, error) {
	w := network.Warehouses{}
	if err := c.getJSON(ctx, "/api/tour/warehouses", nil, &w); err != nil {
		return nil, fmt.Errorf("get warehouses: %w", err)
	}
	return w, nil
}

// GetTours returns the current tour of every courier.
func (c *Client) GetTours(ctx context.Context) (map[network.CourierID]network.Tour, error) {
	tours := map[network.CourierID]network.Tour{}
	if err := c.getJSON(ctx, "/api/tour/tours", nil, &tours); err != nil {
		return nil, fmt.Errorf("get tours: %w", err)
	}
	for id, t := range tours {
		if t.Courier == 0 {
			t.Courier = id
			tours[id] = t
		}
	}
	return tours, nil
}

// LoadCouriers asks the planner to read couriers from an XML file.
func (c *Client) LoadCouriers(ctx context.Context, path string) error {
	return c.post(ctx, "/api/tour/load-couriers", url.Values{"filepath": {path}})
}

// LoadRequests asks the planner to read requests for a courier from an XML file.
func (c *Client) LoadRequests(ctx context.Context, path string, courier network.CourierID) error {
	return c.post(ctx, "/api/request/load", url.Values{
		"filepath":  {path},
		"courierId": {id(courier)},
	})
}

// SaveRequests writes every request to an XML file on the planner host.
func (c *Client) SaveRequests(ctx context.Context, path string) error {
	return c.post(ctx, "/api/request/save", url.Values{"filepath": {path}})
}

// SaveTour writes a courier's tour to an XML file on the planner host.
func (c *Client) SaveTour(ctx context.Context, courier network.CourierID, path string) error {
	return c.post(ctx, "/api/tour/save", url.Values{
		"courierId": {id(courier)},
		"filepath":  {path},
	})
}

// AssignWarehouse sets a courier's warehouse.
func (c *Client) AssignWarehouse(ctx context.Context, courier network.CourierID, node network.NodeID) error {
	return c.post(ctx, "/api/tour/assign-warehouse", url.Values{
		"courierId":      {id(courier)},
		"intersectionId": {strconv.FormatInt(int64(node), 10)},
	})
}

// AddRequest registers a request and recomputes the courier's tour.
func (c *Client) AddRequest(ctx context.Context, r NewRequest) error {
	return c.post(ctx, "/api/request/add", url.Values{
		"courierId":              {id(r.Courier)},
		"warehouseId":            {strconv.FormatInt(int64(r.Warehouse), 10)},
		"pickupIntersectionId":   {strconv.FormatInt(int64(r.Pickup), 10)},
		"pickupDuration":         {seconds(r.PickupDuration)},
		"deliveryIntersectionId": {strconv.FormatInt(int64(r.Delivery), 10)},
		"deliveryDuration":       {seconds(r.DeliveryDuration)},
	})
}

// DeleteRequest removes a request and recomputes the courier's tour.
func (c *Client) DeleteRequest(ctx context.Context, requestID int64, courier network.CourierID) error {
	return c.post(ctx, "/api/request/delete", url.Values{
		"requestId": {strconv.FormatInt(requestID, 10)},
		"courierId": {id(courier)},
	})
}

// ReorderStops forces the stop at before to precede the stop at after.
func (c *Client) ReorderStops(ctx context.Context, courier network.CourierID, before, after int) error {
	return c.post(ctx, "/api/tour/update-stop-order", url.Values{
		"courierId":          {id(courier)},
		"precStopIndex":      {strconv.Itoa(before)},
		"followingStopIndex": {strconv.Itoa(after)},
	})
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dst any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, params)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, params url.Values) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, params)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func id(c network.CourierID) string { return strconv.FormatInt(int64(c), 10) }

func seconds(d time.Duration) string { return strconv.FormatInt(int64(d/time.Second), 10) }
