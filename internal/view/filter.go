package view

import (
	"sort"

	"github.com/joeblew999/plat-tours/internal/network"
)

// Filtered is the subset of tours and warehouses visible under a scope.
type Filtered struct {
	Tours []network.Tour
	// Warehouses holds assigned warehouse nodes. For a single-courier scope
	// it always has exactly one entry, network.NoWarehouse when unset.
	Warehouses []network.NodeID
}

// Filter derives the displayed tours and warehouses. It is pure: the same
// inputs always produce the same output, ordered by courier id.
func Filter(tours map[network.CourierID]network.Tour, warehouses network.Warehouses, scope network.Scope) Filtered {
	if id, single := scope.Courier(); single {
		var out Filtered
		if t, ok := tours[id]; ok {
			out.Tours = []network.Tour{t}
		}
		out.Warehouses = []network.NodeID{warehouses.Get(id)}
		return out
	}

	ids := make([]network.CourierID, 0, len(tours))
	for id := range tours {
		ids = append(ids, id)
	}
	sortCouriers(ids)

	out := Filtered{Tours: make([]network.Tour, 0, len(ids))}
	for _, id := range ids {
		out.Tours = append(out.Tours, tours[id])
	}

	wids := make([]network.CourierID, 0, len(warehouses))
	for id := range warehouses {
		if warehouses.Has(id) {
			wids = append(wids, id)
		}
	}
	sortCouriers(wids)
	for _, id := range wids {
		out.Warehouses = append(out.Warehouses, warehouses.Get(id))
	}
	return out
}

// TourFor returns the displayed tour of a courier.
func (f Filtered) TourFor(id network.CourierID) (network.Tour, bool) {
	for _, t := range f.Tours {
		if t.Courier == id {
			return t, true
		}
	}
	return network.Tour{}, false
}

func sortCouriers(ids []network.CourierID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
