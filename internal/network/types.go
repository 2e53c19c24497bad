// Package network holds the road network, courier and tour model shared by
// the planner client, the view projection and the editor controller.
package network

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeID identifies an intersection. Stable for the lifetime of a loaded network.
type NodeID int64

// CourierID identifies a courier.
type CourierID int64

// NoWarehouse is the sentinel the planner uses for a courier without a warehouse.
const NoWarehouse NodeID = -1

// NoRequest marks stops that do not originate from a request.
const NoRequest int64 = -1

// Node is an intersection with its geographic position.
type Node struct {
	ID  NodeID  `json:"id" doc:"Intersection identifier"`
	Lat float64 `json:"lat" doc:"Latitude"`
	Lng float64 `json:"lng" doc:"Longitude"`
}

// Edge is a directed road segment. Several edges may share a name.
type Edge struct {
	Start  NodeID  `json:"startId" doc:"Start intersection"`
	End    NodeID  `json:"endId" doc:"End intersection"`
	Name   string  `json:"name,omitempty" doc:"Road name"`
	Length float64 `json:"length,omitempty" doc:"Length in metres"`
}

// Courier is a delivery agent with a shift.
type Courier struct {
	ID            CourierID `json:"id" doc:"Courier identifier"`
	Name          string    `json:"name" doc:"Display name"`
	ShiftDuration Duration  `json:"shiftDuration" doc:"Shift length in seconds"`
}

// StopKind classifies a tour stop.
type StopKind string

const (
	StopPickup       StopKind = "PICKUP"
	StopDelivery     StopKind = "DELIVERY"
	StopIntermediate StopKind = "INTERMEDIATE"
	StopWarehouse    StopKind = "WAREHOUSE"
)

// Stop is one visit in a tour. Arrival and departure are raw timestamps as
// sent by the planner and may be absent.
type Stop struct {
	Kind      StopKind `json:"type" doc:"Stop kind"`
	RequestID int64    `json:"requestID" doc:"Originating request, -1 for non-request stops"`
	Node      NodeID   `json:"intersectionId" doc:"Visited intersection"`
	Arrival   *string  `json:"arrivalTime,omitempty" doc:"Arrival timestamp"`
	Departure *string  `json:"departureTime,omitempty" doc:"Departure timestamp"`
}

// Tour is the planner's computed route for one courier. Tours are replaced
// wholesale after every accepted mutation and never edited locally.
type Tour struct {
	Courier       CourierID `json:"courierId" doc:"Courier owning the tour"`
	Stops         []Stop    `json:"stops" doc:"Ordered stops"`
	Edges         []Edge    `json:"roadSegmentsTaken" doc:"Traversed road segments in order"`
	TotalDistance float64   `json:"totalDistance" doc:"Total distance in metres"`
	TotalDuration Duration  `json:"totalDuration" doc:"Total duration in seconds"`
}

// HasStop reports whether index addresses an existing stop.
func (t Tour) HasStop(index int) bool {
	return index >= 0 && index < len(t.Stops)
}

// Warehouses maps each courier to its warehouse intersection.
type Warehouses map[CourierID]NodeID

// Get returns the courier's warehouse, or NoWarehouse when unset.
func (w Warehouses) Get(id CourierID) NodeID {
	node, ok := w[id]
	if !ok || node < 0 {
		return NoWarehouse
	}
	return node
}

// Has reports whether the courier has a warehouse assigned.
func (w Warehouses) Has(id CourierID) bool {
	return w.Get(id) != NoWarehouse
}

// Scope selects which couriers are displayed. The zero value shows all.
// It is a view filter only and never sent to the planner.
type Scope struct {
	courier CourierID
	single  bool
}

// AllCouriers displays every tour.
func AllCouriers() Scope { return Scope{} }

// OnlyCourier displays a single courier's tour.
func OnlyCourier(id CourierID) Scope { return Scope{courier: id, single: true} }

// Courier returns the selected courier and false when the scope is "all".
func (s Scope) Courier() (CourierID, bool) { return s.courier, s.single }

// All reports whether every courier is displayed.
func (s Scope) All() bool { return !s.single }

// Includes reports whether courier's tour is displayed.
func (s Scope) Includes(id CourierID) bool { return !s.single || s.courier == id }

// String renders the scope the way the courier panel does: "All" or the id.
func (s Scope) String() string {
	if !s.single {
		return "All"
	}
	return strconv.FormatInt(int64(s.courier), 10)
}

// ParseScope accepts "All" (any case, or empty) or a courier id.
func ParseScope(raw string) (Scope, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return AllCouriers(), nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Scope{}, fmt.Errorf("invalid scope %q: %w", raw, err)
	}
	return OnlyCourier(CourierID(id)), nil
}
