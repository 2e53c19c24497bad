package ui

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-tours/internal/editor"
	"github.com/joeblew999/plat-tours/internal/humastar"
	"github.com/joeblew999/plat-tours/internal/service"
	"github.com/joeblew999/plat-tours/internal/templates"
)

// EventHandler streams session changes to the desk page via SSE.
type EventHandler struct {
	Handler
	bus *service.EventBus
}

// NewEventHandler creates a new event handler.
func NewEventHandler(ctl *editor.Controller, bus *service.EventBus, renderer *templates.Renderer) *EventHandler {
	return &EventHandler{
		Handler: Handler{Handler: humastar.Handler{Renderer: renderer}, ctl: ctl},
		bus:     bus,
	}
}

func (h *EventHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/editor/events", h.Events,
		huma.OperationTags("editor"),
	)
}

func (h *EventHandler) Events(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := humastar.NewSSE(humaCtx)
			ch := h.bus.Subscribe()
			defer h.bus.Unsubscribe(ch)

			h.pushAll(sse)
			for {
				select {
				case <-ctx.Done():
					return
				case ev := <-ch:
					h.apply(sse, ev)
				}
			}
		},
	}, nil
}

// apply patches the parts of the page an event touches and tells the map
// script which layer to reload.
func (h *EventHandler) apply(sse humastar.SSE, ev service.Event) {
	switch ev.Topic {
	case service.TopicNetwork, service.TopicTours, service.TopicScope:
		sse.Patch(h.renderTours(), tourSummaries)
		sse.Signals(h.state())
	case service.TopicCouriers:
		sse.Patch(h.renderCouriers(), courierList)
		sse.Signals(h.state())
	case service.TopicSelection:
		sse.Patch(h.renderPending(), pendingPanel)
		sse.Signals(h.state())
	case service.TopicNotification:
		sse.Patch(h.renderNotification(), notificationSlot)
	case service.TopicBusy:
		sse.Signals(map[string]any{"busy": h.busy()})
	}
	sse.DispatchCustomEvent("desk-changed", map[string]any{
		"topic":  ev.Topic,
		"action": ev.Action,
		"id":     ev.ID,
	})
}
