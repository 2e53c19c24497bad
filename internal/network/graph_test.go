package network

import (
	"encoding/json"
	"testing"
	"time"
)

func TestGraphLabelFirstNamedEdge(t *testing.T) {
	g := NewGraph(
		[]Node{{ID: 1}, {ID: 2}, {ID: 3}},
		[]Edge{
			{Start: 1, End: 2, Name: ""},
			{Start: 1, End: 2, Name: "Main St"},
			{Start: 2, End: 3, Name: "Side St"},
		},
	)

	if got := g.Label(2); got != "Main St" {
		t.Fatalf("label(2)=%q, want Main St", got)
	}
	if got := g.Label(3); got != "Side St" {
		t.Fatalf("label(3)=%q, want Side St", got)
	}
	if got := g.Label(42); got != "Intersection 42" {
		t.Fatalf("label(42)=%q, want fallback", got)
	}
}

func TestGraphUnmarshalDiscoveryOrder(t *testing.T) {
	raw := `{
		"intersections": {"2": {"id": 2, "lat": 1, "lng": 1}, "1": {"id": 1, "lat": 0, "lng": 0}},
		"adjacencyList": {
			"2": [{"startId": 2, "endId": 1, "name": "Back Rd"}],
			"1": [{"endId": 2, "name": "Front Rd"}]
		}
	}`
	var g Graph
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		t.Fatal(err)
	}
	if len(g.Nodes) != 2 {
		t.Fatalf("nodes=%d, want 2", len(g.Nodes))
	}
	if len(g.Edges) != 2 {
		t.Fatalf("edges=%d, want 2", len(g.Edges))
	}
	if g.Edges[0].Start != 1 || g.Edges[0].Name != "Front Rd" {
		t.Fatalf("first edge=%+v, want start 1 Front Rd", g.Edges[0])
	}
	if got := g.Label(2); got != "Front Rd" {
		t.Fatalf("label(2)=%q, want Front Rd", got)
	}
}

func TestGraphUnmarshalLegacyKey(t *testing.T) {
	raw := `{"intersections": {"1": {"id": 1}}, "adjencyList": {"1": [{"startId": 1, "endId": 1}]}}`
	var g Graph
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		t.Fatal(err)
	}
	if len(g.Edges) != 1 {
		t.Fatalf("edges=%d, want 1", len(g.Edges))
	}
}

func TestDurationDecoding(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{`3600`, time.Hour},
		{`"PT1H30M"`, 90 * time.Minute},
		{`"PT45.5S"`, 45*time.Second + 500*time.Millisecond},
		{`"P1DT1H"`, 25 * time.Hour},
		{`"P1W"`, 7 * 24 * time.Hour},
		{`null`, 0},
	}
	for _, tc := range cases {
		var d Duration
		if err := json.Unmarshal([]byte(tc.raw), &d); err != nil {
			t.Fatalf("%s: %v", tc.raw, err)
		}
		if time.Duration(d) != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.raw, time.Duration(d), tc.want)
		}
	}

	for _, raw := range []string{`"soon"`, `"P1M"`, `"P1Y"`, `"P1Y2M"`} {
		var d Duration
		if err := json.Unmarshal([]byte(raw), &d); err == nil {
			t.Fatalf("%s: expected error, got %v", raw, time.Duration(d))
		}
	}
	if d, err := ParseISODuration("PT1M"); err != nil || d != time.Minute {
		t.Fatalf("PT1M = %v, %v; want 1m", d, err)
	}
}

func TestScope(t *testing.T) {
	s, err := ParseScope("All")
	if err != nil || !s.All() {
		t.Fatalf("ParseScope(All)=%v,%v", s, err)
	}
	s, err = ParseScope(" 7 ")
	if err != nil {
		t.Fatal(err)
	}
	id, ok := s.Courier()
	if !ok || id != 7 {
		t.Fatalf("courier=%d ok=%v, want 7 true", id, ok)
	}
	if s.String() != "7" {
		t.Fatalf("string=%q", s.String())
	}
	if _, err := ParseScope("seven"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestWarehousesSentinel(t *testing.T) {
	w := Warehouses{7: -1, 8: 12}
	if w.Has(7) {
		t.Fatalf("courier 7 should be unset")
	}
	if w.Get(9) != NoWarehouse {
		t.Fatalf("absent courier should be unset")
	}
	if w.Get(8) != 12 {
		t.Fatalf("courier 8 warehouse=%d, want 12", w.Get(8))
	}
}
