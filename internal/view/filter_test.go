package view

import (
	"testing"

	"github.com/joeblew999/plat-tours/internal/network"
)

func TestFilterAll(t *testing.T) {
	tours := map[network.CourierID]network.Tour{
		3: {Courier: 3},
		1: {Courier: 1},
		2: {Courier: 2},
	}
	wh := network.Warehouses{1: 10, 2: -1, 3: 30}

	f := Filter(tours, wh, network.AllCouriers())
	if len(f.Tours) != 3 {
		t.Fatalf("tours=%d, want 3", len(f.Tours))
	}
	for i, want := range []network.CourierID{1, 2, 3} {
		if f.Tours[i].Courier != want {
			t.Fatalf("tour[%d]=%d, want %d", i, f.Tours[i].Courier, want)
		}
	}
	if len(f.Warehouses) != 2 || f.Warehouses[0] != 10 || f.Warehouses[1] != 30 {
		t.Fatalf("warehouses=%v, want [10 30]", f.Warehouses)
	}
}

func TestFilterSingleCourier(t *testing.T) {
	tours := map[network.CourierID]network.Tour{
		1: {Courier: 1},
		2: {Courier: 2},
	}
	wh := network.Warehouses{1: 10}

	f := Filter(tours, wh, network.OnlyCourier(2))
	if len(f.Tours) != 1 || f.Tours[0].Courier != 2 {
		t.Fatalf("tours=%+v, want only courier 2", f.Tours)
	}
	if len(f.Warehouses) != 1 || f.Warehouses[0] != network.NoWarehouse {
		t.Fatalf("warehouses=%v, want [NoWarehouse]", f.Warehouses)
	}

	f = Filter(tours, wh, network.OnlyCourier(1))
	if f.Warehouses[0] != 10 {
		t.Fatalf("warehouse=%d, want 10", f.Warehouses[0])
	}
	if _, ok := f.TourFor(1); !ok {
		t.Fatalf("TourFor(1) missing")
	}
	if _, ok := f.TourFor(2); ok {
		t.Fatalf("TourFor(2) should be filtered out")
	}

	f = Filter(tours, wh, network.OnlyCourier(9))
	if len(f.Tours) != 0 {
		t.Fatalf("unknown courier should show no tours")
	}
}
