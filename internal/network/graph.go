package network

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Graph is a loaded road network. It is replaced wholesale on reload and
// never mutated afterwards.
type Graph struct {
	Nodes map[NodeID]Node
	// Edges are kept in discovery order: start ids ascending, then the
	// order the planner listed them.
	Edges []Edge
}

// NewGraph builds a graph from nodes and edges, de-duplicating nodes by id.
func NewGraph(nodes []Node, edges []Edge) *Graph {
	g := &Graph{Nodes: make(map[NodeID]Node, len(nodes))}
	for _, n := range nodes {
		if _, dup := g.Nodes[n.ID]; dup {
			continue
		}
		g.Nodes[n.ID] = n
	}
	g.Edges = append(g.Edges, edges...)
	return g
}

// Node looks up an intersection.
func (g *Graph) Node(id NodeID) (Node, bool) {
	if g == nil {
		return Node{}, false
	}
	n, ok := g.Nodes[id]
	return n, ok
}

// Label resolves a node to a human-readable road name: the first non-empty
// name of an edge touching the node, in discovery order.
func (g *Graph) Label(id NodeID) string {
	if g != nil {
		for _, e := range g.Edges {
			if e.Name == "" {
				continue
			}
			if e.Start == id || e.End == id {
				return e.Name
			}
		}
	}
	return fmt.Sprintf("Intersection %d", id)
}

// SortedNodes returns the nodes ordered by id.
func (g *Graph) SortedNodes() []Node {
	if g == nil {
		return nil
	}
	out := make([]Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// wireGraph is the planner's map document: nodes and adjacency lists keyed
// by stringified ids.
type wireGraph struct {
	Intersections map[string]Node   `json:"intersections"`
	Adjacency     map[string][]Edge `json:"adjacencyList"`
	// Older planner builds misspell the adjacency key.
	AdjacencyLegacy map[string][]Edge `json:"adjencyList"`
}

func (g *Graph) UnmarshalJSON(b []byte) error {
	var w wireGraph
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	adj := w.Adjacency
	if len(adj) == 0 {
		adj = w.AdjacencyLegacy
	}

	nodes := make([]Node, 0, len(w.Intersections))
	for _, n := range w.Intersections {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	type bucket struct {
		start NodeID
		edges []Edge
	}
	buckets := make([]bucket, 0, len(adj))
	for key, edges := range adj {
		start, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return fmt.Errorf("adjacency key %q: %w", key, err)
		}
		buckets = append(buckets, bucket{start: NodeID(start), edges: edges})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].start < buckets[j].start })

	var edges []Edge
	for _, bk := range buckets {
		for _, e := range bk.edges {
			// startId may be omitted inside its own adjacency list
			if e.Start == 0 {
				e.Start = bk.start
			}
			edges = append(edges, e)
		}
	}

	*g = *NewGraph(nodes, edges)
	return nil
}
