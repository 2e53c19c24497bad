// Package plannertest provides an in-memory planner for controller and API
// tests. It counts calls so tests can assert which remote operations ran.
package plannertest

import (
	"context"
	"sync"

	"github.com/joeblew999/plat-tours/internal/network"
	"github.com/joeblew999/plat-tours/internal/planner"
)

// Fake implements the editor's Planner. Set the *Err fields to make the
// matching mutation fail.
type Fake struct {
	mu sync.Mutex

	Graph      *network.Graph
	Couriers   []network.Courier
	Warehouses network.Warehouses
	Tours      map[network.CourierID]network.Tour
	Edges      []network.Edge

	AddErr      error
	DeleteErr   error
	ReorderErr  error
	AssignErr   error
	FileErr     error
	NetworkErr  error
	WarehouseFn func() (network.Warehouses, error)
	// AssignGate, when set, holds AssignWarehouse until it is closed.
	AssignGate chan struct{}

	Added     []planner.NewRequest
	Reordered [][3]int64
	Files     []string

	calls map[string]int
}

// NewFake returns a planner with a two-node network joined by "Main St",
// couriers 1 and 2, and no warehouses.
func NewFake() *Fake {
	return &Fake{
		Graph: network.NewGraph(
			[]network.Node{{ID: 1, Lat: 0, Lng: 0}, {ID: 2, Lat: 1, Lng: 1}},
			[]network.Edge{{Start: 1, End: 2, Name: "Main St", Length: 150}},
		),
		Couriers:   []network.Courier{{ID: 1, Name: "Ada"}, {ID: 2, Name: "Bo"}},
		Warehouses: network.Warehouses{},
		Tours:      map[network.CourierID]network.Tour{},
		calls:      map[string]int{},
	}
}

// Calls returns how often the named method ran.
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *Fake) hit(method string) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[method]++
	f.mu.Unlock()
}

func (f *Fake) GetNetwork(ctx context.Context) (*network.Graph, error) {
	f.hit("GetNetwork")
	if f.NetworkErr != nil {
		return nil, f.NetworkErr
	}
	return f.Graph, nil
}

func (f *Fake) SearchEdgesByName(ctx context.Context, query string) ([]network.Edge, error) {
	f.hit("SearchEdgesByName")
	return f.Edges, nil
}

func (f *Fake) GetAvailableCouriers(ctx context.Context) ([]network.Courier, error) {
	f.hit("GetAvailableCouriers")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]network.Courier(nil), f.Couriers...), nil
}

func (f *Fake) GetWarehouses(ctx context.Context) (network.Warehouses, error) {
	f.hit("GetWarehouses")
	if f.WarehouseFn != nil {
		return f.WarehouseFn()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(network.Warehouses, len(f.Warehouses))
	for k, v := range f.Warehouses {
		out[k] = v
	}
	return out, nil
}

func (f *Fake) GetTours(ctx context.Context) (map[network.CourierID]network.Tour, error) {
	f.hit("GetTours")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[network.CourierID]network.Tour, len(f.Tours))
	for k, v := range f.Tours {
		out[k] = v
	}
	return out, nil
}

func (f *Fake) LoadCouriers(ctx context.Context, path string) error {
	f.hit("LoadCouriers")
	return f.file(path)
}

func (f *Fake) LoadRequests(ctx context.Context, path string, courier network.CourierID) error {
	f.hit("LoadRequests")
	return f.file(path)
}

func (f *Fake) SaveRequests(ctx context.Context, path string) error {
	f.hit("SaveRequests")
	return f.file(path)
}

func (f *Fake) SaveTour(ctx context.Context, courier network.CourierID, path string) error {
	f.hit("SaveTour")
	return f.file(path)
}

func (f *Fake) file(path string) error {
	if f.FileErr != nil {
		return f.FileErr
	}
	f.mu.Lock()
	f.Files = append(f.Files, path)
	f.mu.Unlock()
	return nil
}

func (f *Fake) AssignWarehouse(ctx context.Context, courier network.CourierID, node network.NodeID) error {
	f.hit("AssignWarehouse")
	if f.AssignGate != nil {
		<-f.AssignGate
	}
	if f.AssignErr != nil {
		return f.AssignErr
	}
	f.mu.Lock()
	if f.Warehouses == nil {
		f.Warehouses = network.Warehouses{}
	}
	f.Warehouses[courier] = node
	f.mu.Unlock()
	return nil
}

func (f *Fake) AddRequest(ctx context.Context, r planner.NewRequest) error {
	f.hit("AddRequest")
	if f.AddErr != nil {
		return f.AddErr
	}
	f.mu.Lock()
	f.Added = append(f.Added, r)
	f.mu.Unlock()
	return nil
}

func (f *Fake) DeleteRequest(ctx context.Context, requestID int64, courier network.CourierID) error {
	f.hit("DeleteRequest")
	return f.DeleteErr
}

func (f *Fake) ReorderStops(ctx context.Context, courier network.CourierID, before, after int) error {
	f.hit("ReorderStops")
	if f.ReorderErr != nil {
		return f.ReorderErr
	}
	f.mu.Lock()
	f.Reordered = append(f.Reordered, [3]int64{int64(courier), int64(before), int64(after)})
	f.mu.Unlock()
	return nil
}
