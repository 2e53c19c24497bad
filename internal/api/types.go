package api

import (
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-tours/internal/editor"
	"github.com/joeblew999/plat-tours/internal/humastar"
	"github.com/joeblew999/plat-tours/internal/network"
	"github.com/joeblew999/plat-tours/internal/view"
)

var actionDef = humastar.ActionDef{
	Rel:     "action",
	Pattern: "/api/v1/notification/actions/%s",
	Method:  "POST",
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
	Planner string `json:"planner" doc:"Planning service base URL"`
}

type ActionBody struct {
	ID    string `json:"id" doc:"Action identifier"`
	Label string `json:"label" doc:"Button label" example:"Add warehouse"`
	Href  string `json:"href" doc:"POST here to run the action"`
}

// NotificationBody is the active notification, if any.
type NotificationBody struct {
	Open    bool         `json:"open" doc:"Whether a notification is showing"`
	ID      string       `json:"id,omitempty" doc:"Notification identifier"`
	Level   string       `json:"level,omitempty" doc:"info, success, warning or error"`
	Message string       `json:"message,omitempty" doc:"User-facing message"`
	Choices []ActionBody `json:"actions" doc:"Follow-up actions"`
}

// Actions emits a Link header per follow-up action.
func (n NotificationBody) Actions() []humastar.Action {
	out := make([]humastar.Action, 0, len(n.Choices))
	for _, a := range n.Choices {
		out = append(out, actionDef.For(a.ID, a.Label))
	}
	return out
}

func notificationBody(n editor.Notification, open bool) NotificationBody {
	body := NotificationBody{Choices: []ActionBody{}}
	if !open {
		return body
	}
	body.Open = true
	body.ID = n.ID
	body.Level = string(n.Level)
	body.Message = n.Message
	for _, a := range n.Actions {
		body.Choices = append(body.Choices, ActionBody{
			ID:    a.ID,
			Label: a.Label,
			Href:  actionDef.For(a.ID, "").Href,
		})
	}
	return body
}

// MutationBody reports the state after an edit.
type MutationBody struct {
	Notification NotificationBody `json:"notification" doc:"Notification opened by the edit"`
	Scope        string           `json:"scope" doc:"Display scope after the edit" example:"All"`
	Mode         string           `json:"mode" doc:"Selection mode after the edit" example:"idle"`
}

func (m MutationBody) Actions() []humastar.Action { return m.Notification.Actions() }

type MutationOutput struct {
	Status int
	Body   MutationBody
}

type BoundsBody struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

func boundsBody(b orb.Bound) BoundsBody {
	return BoundsBody{West: b.Min.Lon(), South: b.Min.Lat(), East: b.Max.Lon(), North: b.Max.Lat()}
}

type StopBody struct {
	Index     int              `json:"index" doc:"Position in the tour"`
	Kind      network.StopKind `json:"kind" doc:"PICKUP, DELIVERY, WAREHOUSE or INTERMEDIATE"`
	Icon      string           `json:"icon" doc:"Marker icon"`
	RequestID int64            `json:"requestId" doc:"Originating request, -1 when none"`
	Node      network.NodeID   `json:"node" doc:"Intersection"`
	Lat       float64          `json:"lat"`
	Lng       float64          `json:"lng"`
	Arrival   string           `json:"arrival" doc:"Arrival time of day or N/A"`
	Departure string           `json:"departure" doc:"Departure time of day or N/A"`
	Popup     string           `json:"popup" doc:"Marker popup text"`
}

type TourBody struct {
	Courier       network.CourierID `json:"courier"`
	Color         string            `json:"color" example:"#3cb44b"`
	Stops         []StopBody        `json:"stops"`
	Segments      int               `json:"segments" doc:"Drawable road segments"`
	TotalDistance float64           `json:"totalDistance" doc:"Metres"`
	TotalDuration float64           `json:"totalDuration" doc:"Seconds"`
}

type WarehouseBody struct {
	Node network.NodeID `json:"node"`
	Lat  float64        `json:"lat"`
	Lng  float64        `json:"lng"`
}

// ViewBody summarizes the projected map. Geometry is served as GeoJSON.
type ViewBody struct {
	Scope      string          `json:"scope" example:"All"`
	Nodes      int             `json:"nodes" doc:"Positioned intersections"`
	Roads      int             `json:"roads" doc:"Drawable road segments"`
	Tours      []TourBody      `json:"tours"`
	Warehouses []WarehouseBody `json:"warehouses"`
	NodeBounds BoundsBody      `json:"nodeBounds" doc:"Frames the whole network"`
	TourBounds BoundsBody      `json:"tourBounds" doc:"Frames the displayed tours"`
}

func viewBody(m view.Model, scope network.Scope) ViewBody {
	body := ViewBody{
		Scope:      scope.String(),
		Nodes:      len(m.Nodes),
		Roads:      len(m.Roads),
		Tours:      make([]TourBody, 0, len(m.Tours)),
		Warehouses: make([]WarehouseBody, 0, len(m.Warehouses)),
		NodeBounds: boundsBody(m.NodeBounds),
		TourBounds: boundsBody(m.TourBounds),
	}
	for _, t := range m.Tours {
		tb := TourBody{
			Courier:       t.Courier,
			Color:         t.Color,
			Stops:         make([]StopBody, 0, len(t.Markers)),
			Segments:      len(t.Segments),
			TotalDistance: t.TotalDistance,
			TotalDuration: t.TotalDuration.Seconds(),
		}
		for _, mk := range t.Markers {
			tb.Stops = append(tb.Stops, StopBody{
				Index:     mk.Index,
				Kind:      mk.Kind,
				Icon:      mk.Icon,
				RequestID: mk.RequestID,
				Node:      mk.Node,
				Lat:       mk.Point.Lat(),
				Lng:       mk.Point.Lon(),
				Arrival:   mk.Arrival,
				Departure: mk.Departure,
				Popup:     mk.Popup,
			})
		}
		body.Tours = append(body.Tours, tb)
	}
	for _, w := range m.Warehouses {
		body.Warehouses = append(body.Warehouses, WarehouseBody{Node: w.Node, Lat: w.Point.Lat(), Lng: w.Point.Lon()})
	}
	return body
}

type CourierBody struct {
	ID           network.CourierID `json:"id"`
	Name         string            `json:"name"`
	ShiftSeconds float64           `json:"shiftSeconds"`
	Color        string            `json:"color"`
	Active       bool              `json:"active"`
}

type CouriersBody struct {
	Couriers []CourierBody `json:"couriers"`
	Scope    string        `json:"scope" example:"All"`
}

type ChoiceBody struct {
	Node  network.NodeID `json:"node"`
	Label string         `json:"label" example:"Main St"`
}

type StopChoiceBody struct {
	Courier network.CourierID `json:"courier"`
	Index   int               `json:"index"`
	Node    network.NodeID    `json:"node"`
	Label   string            `json:"label"`
}

// PendingBody is the selection mode, the pending edit and the busy flags.
type PendingBody struct {
	Mode            string            `json:"mode" example:"pickup"`
	Panel           string            `json:"panel" example:"request"`
	Pickup          *ChoiceBody       `json:"pickup,omitempty"`
	Delivery        *ChoiceBody       `json:"delivery,omitempty"`
	PickupSeconds   int64             `json:"pickupSeconds"`
	DeliverySeconds int64             `json:"deliverySeconds"`
	Before          *StopChoiceBody   `json:"before,omitempty"`
	After           *StopChoiceBody   `json:"after,omitempty"`
	Ready           bool              `json:"ready" doc:"Pickup and delivery are both chosen"`
	Busy            []editor.BusyFlag `json:"busy" doc:"Operations in flight; their controls are disabled"`
}

func pendingBody(mode editor.Mode, p editor.PendingEdit, busy []editor.BusyFlag) PendingBody {
	body := PendingBody{
		Mode:            mode.String(),
		Panel:           p.Panel.String(),
		PickupSeconds:   int64(p.PickupDuration.Seconds()),
		DeliverySeconds: int64(p.DeliveryDuration.Seconds()),
		Ready:           p.RequestReady(),
		Busy:            busy,
	}
	if p.Pickup != nil {
		body.Pickup = &ChoiceBody{Node: p.Pickup.Node, Label: p.Pickup.Label}
	}
	if p.Delivery != nil {
		body.Delivery = &ChoiceBody{Node: p.Delivery.Node, Label: p.Delivery.Label}
	}
	if p.Before != nil {
		body.Before = &StopChoiceBody{Courier: p.Before.Courier, Index: p.Before.Index, Node: p.Before.Node, Label: p.Before.Label}
	}
	if p.After != nil {
		body.After = &StopChoiceBody{Courier: p.After.Courier, Index: p.After.Index, Node: p.After.Node, Label: p.After.Label}
	}
	return body
}

type SearchBody struct {
	Hits  []editor.SearchHit `json:"hits"`
	Focus *BoundsBody        `json:"focus,omitempty" doc:"Viewport around the first hit"`
}
