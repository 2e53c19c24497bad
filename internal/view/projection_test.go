package view

import (
	"reflect"
	"testing"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-tours/internal/network"
)

func strp(s string) *string { return &s }

func fixture() Input {
	g := network.NewGraph(
		[]network.Node{
			{ID: 1, Lat: 45.0, Lng: 4.0},
			{ID: 2, Lat: 45.1, Lng: 4.1},
			{ID: 3, Lat: 45.2, Lng: 4.3},
			{ID: 3, Lat: 99, Lng: 99}, // duplicate, ignored
		},
		[]network.Edge{
			{Start: 1, End: 2, Name: "Main St"},
			{Start: 2, End: 3, Name: "Side St"},
			{Start: 3, End: 404, Name: "Dangling"},
		},
	)
	tours := map[network.CourierID]network.Tour{
		1: {
			Courier: 1,
			Stops: []network.Stop{
				{Kind: network.StopWarehouse, RequestID: network.NoRequest, Node: 1},
				{Kind: network.StopPickup, RequestID: 10, Node: 2, Arrival: strp("2025-01-01T08:05:00"), Departure: strp("2025-01-01T08:10:00")},
				{Kind: network.StopDelivery, RequestID: 10, Node: 404},
			},
			Edges: []network.Edge{{Start: 1, End: 2}, {Start: 2, End: 404}},
		},
		2: {
			Courier: 2,
			Stops:   []network.Stop{{Kind: network.StopWarehouse, RequestID: network.NoRequest, Node: 3}},
			Edges:   []network.Edge{{Start: 2, End: 3}},
		},
	}
	return Input{
		Graph:      g,
		Tours:      tours,
		Warehouses: network.Warehouses{1: 1, 2: 3, 3: -1},
		Scope:      network.AllCouriers(),
	}
}

func TestProjectDropsEdgesWithMissingEndpoints(t *testing.T) {
	m := Project(fixture())

	if len(m.Nodes) != 3 {
		t.Fatalf("nodes=%d, want 3", len(m.Nodes))
	}
	if len(m.Roads) != 2 {
		t.Fatalf("roads=%d, want 2 (dangling dropped)", len(m.Roads))
	}
	known := map[orb.Point]bool{}
	for _, n := range m.Nodes {
		known[n.Point] = true
	}
	for _, r := range m.Roads {
		for _, p := range r.Line {
			if !known[p] {
				t.Fatalf("road endpoint %v not a known node", p)
			}
		}
	}
	for _, tv := range m.Tours {
		for _, seg := range tv.Segments {
			for _, p := range seg {
				if !known[p] {
					t.Fatalf("tour endpoint %v not a known node", p)
				}
			}
		}
	}
}

func TestProjectTourMarkers(t *testing.T) {
	m := Project(fixture())

	if len(m.Tours) != 2 {
		t.Fatalf("tours=%d, want 2", len(m.Tours))
	}
	first := m.Tours[0]
	if first.Courier != 1 {
		t.Fatalf("first tour courier=%d, want 1", first.Courier)
	}
	if len(first.Segments) != 1 {
		t.Fatalf("segments=%d, want 1", len(first.Segments))
	}
	if len(first.Markers) != 2 {
		t.Fatalf("markers=%d, want 2 (stop on missing node dropped)", len(first.Markers))
	}
	pickup := first.Markers[1]
	if pickup.Icon != "pickup" || pickup.Index != 1 {
		t.Fatalf("pickup marker=%+v", pickup)
	}
	if pickup.Arrival != "08:05:00" || pickup.Departure != "08:10:00" {
		t.Fatalf("times=%q/%q", pickup.Arrival, pickup.Departure)
	}
	if first.Markers[0].Arrival != NotAvailable {
		t.Fatalf("absent arrival=%q, want %q", first.Markers[0].Arrival, NotAvailable)
	}
	if len(m.Warehouses) != 2 {
		t.Fatalf("warehouses=%d, want 2", len(m.Warehouses))
	}
}

func TestProjectBounds(t *testing.T) {
	in := fixture()
	m := Project(in)

	wantNodes := orb.Bound{Min: orb.Point{4.0, 45.0}, Max: orb.Point{4.3, 45.2}}
	if m.NodeBounds != wantNodes {
		t.Fatalf("node bounds=%v, want %v", m.NodeBounds, wantNodes)
	}

	in.Scope = network.OnlyCourier(1)
	m = Project(in)
	wantTour := orb.Bound{Min: orb.Point{4.0, 45.0}, Max: orb.Point{4.1, 45.1}}
	if m.TourBounds != wantTour {
		t.Fatalf("tour bounds=%v, want %v", m.TourBounds, wantTour)
	}

	in.Tours = nil
	m = Project(in)
	if m.TourBounds != m.NodeBounds {
		t.Fatalf("tour bounds should fall back to node bounds, got %v", m.TourBounds)
	}
}

func TestProjectIsIdempotent(t *testing.T) {
	in := fixture()
	a := Project(in)
	b := Project(in)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("projection differs between runs")
	}
}

func TestColorForIsModuloPalette(t *testing.T) {
	p := []string{"red", "green", "blue"}
	if ColorFor(1, p) != "green" {
		t.Fatalf("color(1)=%q", ColorFor(1, p))
	}
	if ColorFor(4, p) != ColorFor(1, p) {
		t.Fatalf("congruent ids should share a color")
	}
	if ColorFor(-1, p) != "blue" {
		t.Fatalf("color(-1)=%q, want blue", ColorFor(-1, p))
	}
	if ColorFor(1, nil) != "" {
		t.Fatalf("empty palette should yield empty color")
	}
}

func TestFormatTime(t *testing.T) {
	cases := []struct {
		in   *string
		want string
	}{
		{nil, NotAvailable},
		{strp("2025-01-01T08:05:00"), "08:05:00"},
		{strp("2025-01-01T17:30:12.5+02:00"), "17:30:12"},
		{strp("later"), "later"},
	}
	for _, tc := range cases {
		if got := FormatTime(tc.in); got != tc.want {
			t.Fatalf("FormatTime(%v)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFeatureCollectionLayers(t *testing.T) {
	fc := Project(fixture()).FeatureCollection()
	layers := map[string]int{}
	for _, f := range fc.Features {
		layers[f.Properties.MustString("layer")]++
	}
	if layers["road"] != 2 || layers["tour"] != 2 || layers["stop"] != 3 || layers["warehouse"] != 2 {
		t.Fatalf("layers=%v", layers)
	}
	if fc.BBox == nil {
		t.Fatalf("expected bbox")
	}
}
