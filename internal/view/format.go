package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/joeblew999/plat-tours/internal/network"
)

// NotAvailable is rendered for absent timestamps.
const NotAvailable = "N/A"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// FormatTime renders only the time-of-day of a planner timestamp. Absent
// values render NotAvailable; values that do not parse are returned as is.
func FormatTime(raw *string) string {
	if raw == nil {
		return NotAvailable
	}
	s := strings.TrimSpace(*raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04:05")
		}
	}
	return *raw
}

// Icon is the marker class for a stop kind.
func Icon(kind network.StopKind) string {
	switch kind {
	case network.StopPickup:
		return "pickup"
	case network.StopDelivery:
		return "delivery"
	case network.StopWarehouse:
		return "warehouse"
	default:
		return "intermediate"
	}
}

func popup(courier network.CourierID, index int, s network.Stop) string {
	req := "-"
	if s.RequestID != network.NoRequest {
		req = fmt.Sprintf("%d", s.RequestID)
	}
	return fmt.Sprintf(
		"Courier: %d\nStop: %s\nRequest: %s\nIntersection: %d\nPosition in tour: %d\nArrival: %s\nDeparture: %s",
		courier, s.Kind, req, s.Node, index, FormatTime(s.Arrival), FormatTime(s.Departure),
	)
}
