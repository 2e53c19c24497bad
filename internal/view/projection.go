// Package view projects the planner's graph and tours into a renderable map
// model: positioned nodes, road and tour polylines, classified stop markers
// and the viewport bounds.
package view

import (
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-tours/internal/network"
)

// Palette is the ordered list of tour colors.
var Palette = []string{
	"#e6194b", "#3cb44b", "#4363d8", "#f58231",
	"#911eb4", "#42d4f4", "#f032e6", "#9a6324",
}

// ColorFor picks the courier's tour color: id mod palette size. Couriers
// congruent modulo the palette size share a color.
func ColorFor(id network.CourierID, palette []string) string {
	if len(palette) == 0 {
		return ""
	}
	n := int64(len(palette))
	return palette[((int64(id)%n)+n)%n]
}

// Input is everything the projection reads.
type Input struct {
	Graph      *network.Graph
	Tours      map[network.CourierID]network.Tour
	Warehouses network.Warehouses
	Scope      network.Scope
	Palette    []string // defaults to Palette
}

// Node is a positioned intersection. Point is (lng, lat).
type Node struct {
	ID    network.NodeID
	Point orb.Point
}

// Road is one drawn edge of the network.
type Road struct {
	Edge network.Edge
	Line orb.LineString
}

// Marker is a tour stop on the map.
type Marker struct {
	Courier   network.CourierID
	Index     int
	Kind      network.StopKind
	Icon      string
	RequestID int64
	Node      network.NodeID
	Point     orb.Point
	Arrival   string
	Departure string
	Popup     string
}

// TourView is one displayed tour.
type TourView struct {
	Courier       network.CourierID
	Color         string
	Segments      []orb.LineString
	Markers       []Marker
	TotalDistance float64
	TotalDuration network.Duration
}

// WarehouseView is a displayed warehouse.
type WarehouseView struct {
	Node  network.NodeID
	Point orb.Point
}

// Model is the renderable view of the network and the displayed tours.
type Model struct {
	Nodes      []Node
	Roads      []Road
	Tours      []TourView
	Warehouses []WarehouseView
	// NodeBounds frames the whole network and sets the initial viewport.
	NodeBounds orb.Bound
	// TourBounds frames the displayed tours; it falls back to NodeBounds
	// when no tour has a drawable segment.
	TourBounds orb.Bound
}

// Project builds the model. It is a pure function of its input.
func Project(in Input) Model {
	palette := in.Palette
	if palette == nil {
		palette = Palette
	}

	var m Model
	var nodePts orb.MultiPoint
	for _, n := range in.Graph.SortedNodes() {
		p := point(n)
		m.Nodes = append(m.Nodes, Node{ID: n.ID, Point: p})
		nodePts = append(nodePts, p)
	}
	m.NodeBounds = nodePts.Bound()

	if in.Graph != nil {
		for _, e := range in.Graph.Edges {
			if line, ok := segment(in.Graph, e); ok {
				m.Roads = append(m.Roads, Road{Edge: e, Line: line})
			}
		}
	}

	shown := Filter(in.Tours, in.Warehouses, in.Scope)
	var tourPts orb.MultiPoint
	for _, t := range shown.Tours {
		tv := TourView{
			Courier:       t.Courier,
			Color:         ColorFor(t.Courier, palette),
			TotalDistance: t.TotalDistance,
			TotalDuration: t.TotalDuration,
		}
		for _, e := range t.Edges {
			line, ok := segment(in.Graph, e)
			if !ok {
				continue
			}
			tv.Segments = append(tv.Segments, line)
			tourPts = append(tourPts, line...)
		}
		for i, s := range t.Stops {
			n, ok := in.Graph.Node(s.Node)
			if !ok {
				continue
			}
			tv.Markers = append(tv.Markers, Marker{
				Courier:   t.Courier,
				Index:     i,
				Kind:      s.Kind,
				Icon:      Icon(s.Kind),
				RequestID: s.RequestID,
				Node:      s.Node,
				Point:     point(n),
				Arrival:   FormatTime(s.Arrival),
				Departure: FormatTime(s.Departure),
				Popup:     popup(t.Courier, i, s),
			})
		}
		m.Tours = append(m.Tours, tv)
	}

	for _, id := range shown.Warehouses {
		if n, ok := in.Graph.Node(id); ok {
			m.Warehouses = append(m.Warehouses, WarehouseView{Node: id, Point: point(n)})
		}
	}

	m.TourBounds = tourPts.Bound()
	if len(tourPts) == 0 {
		m.TourBounds = m.NodeBounds
	}
	return m
}

// StopAt returns the marker at index in the courier's displayed tour.
func (m Model) StopAt(courier network.CourierID, index int) (Marker, bool) {
	for _, t := range m.Tours {
		if t.Courier != courier {
			continue
		}
		for _, mk := range t.Markers {
			if mk.Index == index {
				return mk, true
			}
		}
	}
	return Marker{}, false
}

func point(n network.Node) orb.Point { return orb.Point{n.Lng, n.Lat} }

// segment resolves an edge's endpoints; edges with a missing endpoint are dropped.
func segment(g *network.Graph, e network.Edge) (orb.LineString, bool) {
	a, ok := g.Node(e.Start)
	if !ok {
		return nil, false
	}
	b, ok := g.Node(e.End)
	if !ok {
		return nil, false
	}
	return orb.LineString{point(a), point(b)}, true
}
