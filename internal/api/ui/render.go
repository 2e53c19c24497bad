// Package ui contains the Datastar SSE handlers behind the desk page.
package ui

import (
	"fmt"
	"time"

	"github.com/joeblew999/plat-tours/internal/editor"
	"github.com/joeblew999/plat-tours/internal/humastar"
	"github.com/joeblew999/plat-tours/internal/network"
)

// Element targets on the desk page.
const (
	notificationSlot = "#notification-slot"
	courierList      = "#courier-list"
	tourSummaries    = "#tour-summaries"
	pendingPanel     = "#pending"
	searchResults    = "#search-results"
)

// Handler is the embeddable base of the UI handlers.
type Handler struct {
	humastar.Handler
	ctl *editor.Controller
}

type courierOption struct {
	ID     network.CourierID
	Name   string
	Color  string
	Shift  time.Duration
	Active bool
}

type tourSummary struct {
	Courier  network.CourierID
	Color    string
	Stops    int
	Distance float64
	Duration time.Duration
}

type pendingView struct {
	Mode     string
	Panel    string
	Pickup   *editor.NodeChoice
	Delivery *editor.NodeChoice
	Before   *editor.StopChoice
	After    *editor.StopChoice
}

func (h *Handler) renderNotification() string {
	n, open := h.ctl.Notifications().Current()
	if !open {
		return ""
	}
	return h.Render("notification", n)
}

func (h *Handler) renderCouriers() string {
	list, active, hasActive := h.ctl.Couriers()
	items := make([]any, 0, len(list))
	for _, c := range list {
		items = append(items, courierOption{
			ID:     c.ID,
			Name:   c.Name,
			Color:  h.ctl.Color(c.ID),
			Shift:  time.Duration(c.ShiftDuration),
			Active: hasActive && c.ID == active,
		})
	}
	return h.RenderList("courier-option", items, "No couriers", "Load a couriers file to start.")
}

func (h *Handler) renderTours() string {
	m := h.ctl.View()
	items := make([]any, 0, len(m.Tours))
	for _, t := range m.Tours {
		items = append(items, tourSummary{
			Courier:  t.Courier,
			Color:    t.Color,
			Stops:    len(t.Markers),
			Distance: t.TotalDistance,
			Duration: time.Duration(t.TotalDuration),
		})
	}
	return h.RenderList("tour-summary", items, "No tours", "Nothing is planned for the selected couriers.")
}

func (h *Handler) renderPending() string {
	mode, p := h.ctl.Selection()
	return h.Render("pending-edit", pendingView{
		Mode:     mode.String(),
		Panel:    p.Panel.String(),
		Pickup:   p.Pickup,
		Delivery: p.Delivery,
		Before:   p.Before,
		After:    p.After,
	})
}

// busy lists in-flight operations as "op:courier".
func (h *Handler) busy() []string {
	out := []string{}
	for _, f := range h.ctl.InFlight() {
		out = append(out, fmt.Sprintf("%s:%d", f.Op, f.Courier))
	}
	return out
}

// state is the signal set the page binds its controls to.
func (h *Handler) state() map[string]any {
	mode, p := h.ctl.Selection()
	_, active, hasActive := h.ctl.Couriers()
	signals := map[string]any{
		"mode":            mode.String(),
		"panel":           p.Panel.String(),
		"scope":           h.ctl.Scope().String(),
		"ready":           p.RequestReady(),
		"reorderReady":    p.Before != nil && p.After != nil,
		"pickupMinutes":   int64(p.PickupDuration / time.Minute),
		"deliveryMinutes": int64(p.DeliveryDuration / time.Minute),
		"busy":            h.busy(),
		"error":           "",
	}
	if hasActive {
		signals["courier"] = int64(active)
	}
	return signals
}

// pushSelection patches what a selection change can alter.
func (h *Handler) pushSelection(sse humastar.SSE) {
	sse.Signals(h.state())
	sse.Patch(h.renderPending(), pendingPanel)
	sse.Patch(h.renderNotification(), notificationSlot)
}

// pushAll patches every part of the page.
func (h *Handler) pushAll(sse humastar.SSE) {
	h.pushSelection(sse)
	sse.Patch(h.renderCouriers(), courierList)
	sse.Patch(h.renderTours(), tourSummaries)
}
