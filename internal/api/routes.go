// Package api defines the Huma REST routes over the editing session.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-tours/internal/editor"
	"github.com/joeblew999/plat-tours/internal/humastar"
	"github.com/joeblew999/plat-tours/internal/network"
	"github.com/joeblew999/plat-tours/internal/service"
)

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	ctl        *editor.Controller
	plannerURL string
	version    string
}

// NewAPIHandler creates the handler over one editing session.
func NewAPIHandler(ctl *editor.Controller, plannerURL, version string) *APIHandler {
	return &APIHandler{ctl: ctl, plannerURL: plannerURL, version: version}
}

// RegisterHealth registers the entry point.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterView registers the projected map routes.
func (h *APIHandler) RegisterView(api huma.API) {
	huma.Get(api, "/api/v1/view", h.GetView, huma.OperationTags("view"))
	huma.Get(api, "/api/v1/view/geojson", h.GetViewGeoJSON, huma.OperationTags("view"))
	huma.Post(api, "/api/v1/refresh", h.Refresh, huma.OperationTags("view"))
}

// RegisterCouriers registers courier selection and display scope.
func (h *APIHandler) RegisterCouriers(api huma.API) {
	huma.Get(api, "/api/v1/couriers", h.GetCouriers, huma.OperationTags("couriers"))
	huma.Put(api, "/api/v1/couriers/active", h.PutActiveCourier, huma.OperationTags("couriers"))
	huma.Put(api, "/api/v1/scope", h.PutScope, huma.OperationTags("couriers"))
}

// RegisterSelection registers panel, mode and map-click routes.
func (h *APIHandler) RegisterSelection(api huma.API) {
	huma.Put(api, "/api/v1/editor/panel", h.PutPanel, huma.OperationTags("selection"))
	huma.Delete(api, "/api/v1/editor/panel", h.DeletePanel, huma.OperationTags("selection"))
	huma.Put(api, "/api/v1/editor/mode", h.PutMode, huma.OperationTags("selection"))
	huma.Put(api, "/api/v1/editor/durations", h.PutDurations, huma.OperationTags("selection"))
	huma.Post(api, "/api/v1/editor/click", h.PostClick, huma.OperationTags("selection"))
	huma.Get(api, "/api/v1/editor/pending", h.GetPending, huma.OperationTags("selection"))
}

// RegisterMutations registers the tour edits.
func (h *APIHandler) RegisterMutations(api huma.API) {
	huma.Post(api, "/api/v1/requests", h.CommitRequest, huma.OperationTags("mutations"))
	huma.Delete(api, "/api/v1/requests/{id}", h.DeleteRequest, huma.OperationTags("mutations"))
	huma.Post(api, "/api/v1/reorder", h.CommitReorder, huma.OperationTags("mutations"))
	huma.Put(api, "/api/v1/warehouses/{courier}", h.PutWarehouse, huma.OperationTags("mutations"))
}

// RegisterNotification registers the notification channel.
func (h *APIHandler) RegisterNotification(api huma.API) {
	huma.Get(api, "/api/v1/notification", h.GetNotification, huma.OperationTags("notification"))
	huma.Delete(api, "/api/v1/notification", h.DeleteNotification, huma.OperationTags("notification"))
	huma.Post(api, "/api/v1/notification/actions/{id}", h.PostAction, huma.OperationTags("notification"))
}

// RegisterSearch registers road-name search.
func (h *APIHandler) RegisterSearch(api huma.API) {
	huma.Get(api, "/api/v1/search", h.Search, huma.OperationTags("search"))
}

// RegisterFiles registers planner file bridging.
func (h *APIHandler) RegisterFiles(api huma.API) {
	huma.Get(api, "/api/v1/files", h.GetFiles, huma.OperationTags("files"))
	huma.Post(api, "/api/v1/files/{action}", h.PostFile, huma.OperationTags("files"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: h.version, Planner: h.plannerURL}}, nil
}

func (h *APIHandler) GetView(ctx context.Context, input *struct{}) (*struct{ Body ViewBody }, error) {
	return &struct{ Body ViewBody }{Body: viewBody(h.ctl.View(), h.ctl.Scope())}, nil
}

type GeoJSONOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

func (h *APIHandler) GetViewGeoJSON(ctx context.Context, input *struct{}) (*GeoJSONOutput, error) {
	raw, err := h.ctl.View().FeatureCollection().MarshalJSON()
	if err != nil {
		return nil, huma.Error500InternalServerError("encode view", err)
	}
	return &GeoJSONOutput{ContentType: "application/geo+json", Body: raw}, nil
}

func (h *APIHandler) Refresh(ctx context.Context, input *struct{}) (*MutationOutput, error) {
	return h.mutation(h.ctl.Refresh(ctx))
}

func (h *APIHandler) GetCouriers(ctx context.Context, input *struct{}) (*struct{ Body CouriersBody }, error) {
	list, active, hasActive := h.ctl.Couriers()
	body := CouriersBody{Couriers: make([]CourierBody, 0, len(list)), Scope: h.ctl.Scope().String()}
	for _, c := range list {
		body.Couriers = append(body.Couriers, CourierBody{
			ID:           c.ID,
			Name:         c.Name,
			ShiftSeconds: c.ShiftDuration.Seconds(),
			Color:        h.ctl.Color(c.ID),
			Active:       hasActive && c.ID == active,
		})
	}
	return &struct{ Body CouriersBody }{Body: body}, nil
}

type ActiveCourierInput struct {
	Body struct {
		Courier network.CourierID `json:"courier" doc:"Courier edits apply to" example:"1"`
	}
}

func (h *APIHandler) PutActiveCourier(ctx context.Context, input *ActiveCourierInput) (*struct{ Body CouriersBody }, error) {
	if err := h.ctl.SetActiveCourier(input.Body.Courier); err != nil {
		return nil, problem(err)
	}
	return h.GetCouriers(ctx, nil)
}

type ScopeInput struct {
	Body struct {
		Scope string `json:"scope" doc:"\"All\" or a courier id" example:"All"`
	}
}

func (h *APIHandler) PutScope(ctx context.Context, input *ScopeInput) (*struct{ Body ViewBody }, error) {
	scope, err := network.ParseScope(input.Body.Scope)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}
	h.ctl.SetScope(scope)
	return h.GetView(ctx, nil)
}

type PanelInput struct {
	Body struct {
		Panel string `json:"panel" enum:"none,request,reorder" doc:"Editing panel to open"`
	}
}

func (h *APIHandler) PutPanel(ctx context.Context, input *PanelInput) (*struct{ Body PendingBody }, error) {
	p, err := editor.ParsePanel(input.Body.Panel)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}
	h.ctl.OpenPanel(p)
	return h.GetPending(ctx, nil)
}

func (h *APIHandler) DeletePanel(ctx context.Context, input *struct{}) (*struct{ Body PendingBody }, error) {
	h.ctl.ClosePanel()
	return h.GetPending(ctx, nil)
}

type ModeInput struct {
	Body struct {
		Mode string `json:"mode" enum:"idle,pickup,delivery,warehouse,reorder-before,reorder-after" doc:"Selection mode; idle cancels the current one"`
	}
}

func (h *APIHandler) PutMode(ctx context.Context, input *ModeInput) (*struct{ Body PendingBody }, error) {
	m, err := editor.ParseMode(input.Body.Mode)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}
	if m == editor.Idle {
		h.ctl.CancelMode()
	} else if err := h.ctl.BeginMode(m); err != nil {
		return nil, problem(err)
	}
	return h.GetPending(ctx, nil)
}

type DurationsInput struct {
	Body struct {
		PickupSeconds   int64 `json:"pickupSeconds" minimum:"0" doc:"Pickup service time"`
		DeliverySeconds int64 `json:"deliverySeconds" minimum:"0" doc:"Delivery service time"`
	}
}

func (h *APIHandler) PutDurations(ctx context.Context, input *DurationsInput) (*struct{ Body PendingBody }, error) {
	err := h.ctl.SetDurations(
		time.Duration(input.Body.PickupSeconds)*time.Second,
		time.Duration(input.Body.DeliverySeconds)*time.Second,
	)
	if err != nil {
		return nil, problem(err)
	}
	return h.GetPending(ctx, nil)
}

type ClickInput struct {
	Body struct {
		Node    network.NodeID    `json:"node" doc:"Clicked intersection"`
		Stop    *int              `json:"stop,omitempty" doc:"Stop index when the click hit a tour stop"`
		Courier network.CourierID `json:"courier,omitempty" doc:"Courier of the clicked stop"`
	}
}

type ClickBody struct {
	Result       string           `json:"result" enum:"ignored,recorded,warehouse" doc:"What the click did"`
	Pending      PendingBody      `json:"pending"`
	Notification NotificationBody `json:"notification"`
}

func (b ClickBody) Actions() []humastar.Action { return b.Notification.Actions() }

var clickResults = map[editor.ClickResult]string{
	editor.ClickIgnored:         "ignored",
	editor.ClickRecorded:        "recorded",
	editor.ClickAssignWarehouse: "warehouse",
}

func (h *APIHandler) PostClick(ctx context.Context, input *ClickInput) (*struct{ Body ClickBody }, error) {
	res, err := h.ctl.Click(ctx, editor.Click{Node: input.Body.Node, Stop: input.Body.Stop, Courier: input.Body.Courier})
	// The warehouse outcome is in the notification; the click itself succeeded.
	if err != nil && res != editor.ClickAssignWarehouse {
		return nil, problem(err)
	}
	mode, p := h.ctl.Selection()
	note, open := h.ctl.Notifications().Current()
	return &struct{ Body ClickBody }{Body: ClickBody{
		Result:       clickResults[res],
		Pending:      pendingBody(mode, p, h.ctl.InFlight()),
		Notification: notificationBody(note, open),
	}}, nil
}

func (h *APIHandler) GetPending(ctx context.Context, input *struct{}) (*struct{ Body PendingBody }, error) {
	mode, p := h.ctl.Selection()
	return &struct{ Body PendingBody }{Body: pendingBody(mode, p, h.ctl.InFlight())}, nil
}

func (h *APIHandler) CommitRequest(ctx context.Context, input *struct{}) (*MutationOutput, error) {
	return h.mutation(h.ctl.CommitRequest(ctx))
}

type DeleteRequestInput struct {
	ID      int64             `path:"id" doc:"Request ID" example:"10"`
	Courier network.CourierID `query:"courier" doc:"Courier serving the request; looked up in the fetched tours when omitted"`
}

func (h *APIHandler) DeleteRequest(ctx context.Context, input *DeleteRequestInput) (*MutationOutput, error) {
	courier := input.Courier
	if courier == 0 {
		found, ok := h.ctl.CourierOfRequest(input.ID)
		if !ok {
			return nil, huma.Error404NotFound("request is not part of any fetched tour")
		}
		courier = found
	}
	return h.mutation(h.ctl.DeleteRequest(ctx, input.ID, courier))
}

func (h *APIHandler) CommitReorder(ctx context.Context, input *struct{}) (*MutationOutput, error) {
	return h.mutation(h.ctl.CommitReorder(ctx))
}

type WarehouseInput struct {
	Courier network.CourierID `path:"courier" doc:"Courier ID" example:"1"`
	Body    struct {
		Node network.NodeID `json:"node" doc:"Warehouse intersection"`
	}
}

func (h *APIHandler) PutWarehouse(ctx context.Context, input *WarehouseInput) (*MutationOutput, error) {
	return h.mutation(h.ctl.AssignWarehouse(ctx, input.Courier, input.Body.Node))
}

func (h *APIHandler) GetNotification(ctx context.Context, input *struct{}) (*struct{ Body NotificationBody }, error) {
	note, open := h.ctl.Notifications().Current()
	return &struct{ Body NotificationBody }{Body: notificationBody(note, open)}, nil
}

func (h *APIHandler) DeleteNotification(ctx context.Context, input *struct{}) (*struct{ Body NotificationBody }, error) {
	h.ctl.Notifications().Close()
	return h.GetNotification(ctx, nil)
}

type ActionInput struct {
	ID string `path:"id" doc:"Action ID"`
}

func (h *APIHandler) PostAction(ctx context.Context, input *ActionInput) (*struct{ Body PendingBody }, error) {
	if err := h.ctl.TriggerAction(input.ID); err != nil {
		return nil, problem(err)
	}
	return h.GetPending(ctx, nil)
}

type SearchInput struct {
	Query string `query:"q" doc:"Road name or part of it" example:"Main"`
}

func (h *APIHandler) Search(ctx context.Context, input *SearchInput) (*struct{ Body SearchBody }, error) {
	hits, err := h.ctl.Search(ctx, input.Query)
	if err != nil {
		return nil, problem(err)
	}
	body := SearchBody{Hits: hits}
	if body.Hits == nil {
		body.Hits = []editor.SearchHit{}
	}
	if len(hits) > 0 {
		if b, ok := h.ctl.Focus(hits[0].Node); ok {
			bb := boundsBody(b)
			body.Focus = &bb
		}
	}
	return &struct{ Body SearchBody }{Body: body}, nil
}

func (h *APIHandler) GetFiles(ctx context.Context, input *struct{}) (*struct {
	Body map[service.FileAction]string
}, error) {
	paths := h.ctl.Paths()
	out := map[service.FileAction]string{}
	if paths != nil {
		out = paths.List()
	}
	return &struct {
		Body map[service.FileAction]string
	}{Body: out}, nil
}

type FileInput struct {
	Action string `path:"action" enum:"load-couriers,load-requests,save-requests,save-tour" doc:"File action"`
	Body   struct {
		Path string `json:"path,omitempty" doc:"XML file path on the planner host; the last used path when empty"`
	}
}

func (h *APIHandler) PostFile(ctx context.Context, input *FileInput) (*MutationOutput, error) {
	return h.mutation(h.ctl.RunFile(ctx, service.FileAction(input.Action), input.Body.Path))
}

// mutation turns an edit's error into a response. A deferred add request
// is accepted with 202 and the notification asking for a warehouse.
func (h *APIHandler) mutation(err error) (*MutationOutput, error) {
	status := http.StatusOK
	switch {
	case err == nil:
	case errors.Is(err, editor.ErrWarehouseMissing):
		status = http.StatusAccepted
	default:
		return nil, problem(err)
	}
	note, open := h.ctl.Notifications().Current()
	mode, _ := h.ctl.Selection()
	return &MutationOutput{Status: status, Body: MutationBody{
		Notification: notificationBody(note, open),
		Scope:        h.ctl.Scope().String(),
		Mode:         mode.String(),
	}}, nil
}
