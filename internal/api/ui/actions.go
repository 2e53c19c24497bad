package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-tours/internal/editor"
	"github.com/joeblew999/plat-tours/internal/humastar"
	"github.com/joeblew999/plat-tours/internal/network"
	"github.com/joeblew999/plat-tours/internal/service"
	"github.com/joeblew999/plat-tours/internal/templates"
)

// ActionHandler answers the page's controls. Every response is an SSE
// stream that patches the pending edit, the notification and the signals;
// the event stream carries the rest.
type ActionHandler struct {
	Handler
}

// NewActionHandler creates a new action handler.
func NewActionHandler(ctl *editor.Controller, renderer *templates.Renderer) *ActionHandler {
	return &ActionHandler{Handler: Handler{Handler: humastar.Handler{Renderer: renderer}, ctl: ctl}}
}

func (h *ActionHandler) RegisterRoutes(api huma.API) {
	tags := huma.OperationTags("editor")
	huma.Post(api, "/api/v1/editor/ui/refresh", h.Refresh, tags)
	huma.Put(api, "/api/v1/editor/ui/courier/{id}", h.SelectCourier, tags)
	huma.Put(api, "/api/v1/editor/ui/scope", h.SetScope, tags)
	huma.Post(api, "/api/v1/editor/ui/panel/{panel}", h.OpenPanel, tags)
	huma.Post(api, "/api/v1/editor/ui/mode/{mode}", h.BeginMode, tags)
	huma.Put(api, "/api/v1/editor/ui/durations", h.SetDurations, tags)
	huma.Post(api, "/api/v1/editor/ui/click", h.Click, tags)
	huma.Post(api, "/api/v1/editor/ui/commit/request", h.CommitRequest, tags)
	huma.Post(api, "/api/v1/editor/ui/commit/reorder", h.CommitReorder, tags)
	huma.Delete(api, "/api/v1/editor/ui/requests/{id}", h.DeleteRequest, tags)
	huma.Post(api, "/api/v1/editor/ui/actions/{id}", h.TriggerAction, tags)
	huma.Delete(api, "/api/v1/editor/ui/notification", h.CloseNotification, tags)
	huma.Post(api, "/api/v1/editor/ui/files/{action}", h.RunFile, tags)
	huma.Post(api, "/api/v1/editor/ui/search", h.Search, tags)
	huma.Post(api, "/api/v1/editor/ui/focus/{node}", h.Focus, tags)
}

// reply runs fn and streams the resulting selection state. Failures were
// already turned into notifications by the controller; err is mirrored into
// the error signal for controls that show it inline.
func (h *ActionHandler) reply(fn func() error) *huma.StreamResponse {
	err := fn()
	return h.Stream(func(sse humastar.SSE) {
		h.pushSelection(sse)
		if err != nil {
			sse.Error(err.Error())
		}
	})
}

func (h *ActionHandler) Refresh(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	err := h.ctl.Refresh(ctx)
	return h.Stream(func(sse humastar.SSE) {
		h.pushAll(sse)
		if err != nil {
			sse.Error(err.Error())
		}
	}), nil
}

type CourierInput struct {
	ID network.CourierID `path:"id" doc:"Courier ID"`
}

func (h *ActionHandler) SelectCourier(ctx context.Context, input *CourierInput) (*huma.StreamResponse, error) {
	err := h.ctl.SetActiveCourier(input.ID)
	return h.Stream(func(sse humastar.SSE) {
		sse.Patch(h.renderCouriers(), courierList)
		h.pushSelection(sse)
		if err != nil {
			sse.Error(err.Error())
		}
	}), nil
}

func (h *ActionHandler) SetScope(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	scope, err := network.ParseScope(signals.String("scope"))
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	h.ctl.SetScope(scope)
	return h.Stream(func(sse humastar.SSE) {
		sse.Patch(h.renderTours(), tourSummaries)
		sse.Signals(h.state())
	}), nil
}

type PanelInput struct {
	Panel string `path:"panel" enum:"none,request,reorder"`
}

func (h *ActionHandler) OpenPanel(ctx context.Context, input *PanelInput) (*huma.StreamResponse, error) {
	p, err := editor.ParsePanel(input.Panel)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	return h.reply(func() error {
		if p == editor.PanelNone {
			h.ctl.ClosePanel()
		} else {
			h.ctl.OpenPanel(p)
		}
		return nil
	}), nil
}

type ModeInput struct {
	Mode string `path:"mode" enum:"idle,pickup,delivery,warehouse,reorder-before,reorder-after"`
}

func (h *ActionHandler) BeginMode(ctx context.Context, input *ModeInput) (*huma.StreamResponse, error) {
	m, err := editor.ParseMode(input.Mode)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	return h.reply(func() error {
		if m == editor.Idle {
			h.ctl.CancelMode()
			return nil
		}
		return h.ctl.BeginMode(m)
	}), nil
}

func (h *ActionHandler) SetDurations(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	pickup := time.Duration(signals.Int64("pickupMinutes")) * time.Minute
	delivery := time.Duration(signals.Int64("deliveryMinutes")) * time.Minute
	return h.reply(func() error { return h.ctl.SetDurations(pickup, delivery) }), nil
}

// Click reads the map click from the node, stop and stopCourier signals
// the map script sets before posting.
func (h *ActionHandler) Click(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	node, ok := signals.OptInt64("node")
	if !ok {
		return nil, huma.Error400BadRequest("node signal is required")
	}
	click := editor.Click{Node: network.NodeID(node)}
	if stop, ok := signals.OptInt64("stop"); ok {
		idx := int(stop)
		click.Stop = &idx
		click.Courier = network.CourierID(signals.Int64("stopCourier"))
	}
	return h.reply(func() error {
		_, err := h.ctl.Click(ctx, click)
		return err
	}), nil
}

func (h *ActionHandler) CommitRequest(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.reply(func() error { return h.ctl.CommitRequest(ctx) }), nil
}

func (h *ActionHandler) CommitReorder(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.reply(func() error { return h.ctl.CommitReorder(ctx) }), nil
}

type RequestInput struct {
	ID int64 `path:"id" doc:"Request ID"`
}

func (h *ActionHandler) DeleteRequest(ctx context.Context, input *RequestInput) (*huma.StreamResponse, error) {
	return h.reply(func() error {
		courier, ok := h.ctl.CourierOfRequest(input.ID)
		if !ok {
			return fmt.Errorf("request %d is not part of any tour", input.ID)
		}
		return h.ctl.DeleteRequest(ctx, input.ID, courier)
	}), nil
}

type ActionInput struct {
	ID string `path:"id" doc:"Action ID"`
}

func (h *ActionHandler) TriggerAction(ctx context.Context, input *ActionInput) (*huma.StreamResponse, error) {
	return h.reply(func() error { return h.ctl.TriggerAction(input.ID) }), nil
}

func (h *ActionHandler) CloseNotification(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.reply(func() error {
		h.ctl.Notifications().Close()
		return nil
	}), nil
}

type FileInput struct {
	Action  string `path:"action" enum:"load-couriers,load-requests,save-requests,save-tour"`
	RawBody []byte
}

func (h *ActionHandler) RunFile(ctx context.Context, input *FileInput) (*huma.StreamResponse, error) {
	in := humastar.SignalsInput{RawBody: input.RawBody}
	signals, err := in.MustParse()
	if err != nil {
		return nil, err
	}
	action := service.FileAction(input.Action)
	path := signals.String("path")
	err = h.ctl.RunFile(ctx, action, path)
	return h.Stream(func(sse humastar.SSE) {
		h.pushAll(sse)
		if paths := h.ctl.Paths(); paths != nil {
			sse.Signals(map[string]any{"path": paths.Get(action)})
		}
		if err != nil {
			sse.Error(err.Error())
		}
	}), nil
}

func (h *ActionHandler) Search(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	hits, err := h.ctl.Search(ctx, signals.String("query"))
	return h.Stream(func(sse humastar.SSE) {
		if err != nil {
			sse.Error("Search failed: " + err.Error())
			return
		}
		items := make([]any, 0, len(hits))
		for _, hit := range hits {
			items = append(items, hit)
		}
		sse.Patch(h.RenderList("search-hit", items, "No roads", "Nothing matched the search."), searchResults)
	}), nil
}

type FocusInput struct {
	Node network.NodeID `path:"node" doc:"Intersection to center on"`
}

// Focus sets the focus signal the map script fits its viewport to.
func (h *ActionHandler) Focus(ctx context.Context, input *FocusInput) (*huma.StreamResponse, error) {
	b, ok := h.ctl.Focus(input.Node)
	if !ok {
		return nil, huma.Error404NotFound("unknown intersection")
	}
	return h.Stream(func(sse humastar.SSE) {
		sse.Signals(map[string]any{
			"focus": map[string]float64{
				"west": b.Min.Lon(), "south": b.Min.Lat(),
				"east": b.Max.Lon(), "north": b.Max.Lat(),
			},
		})
	}), nil
}
