package ui

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-tours/internal/editor"
	"github.com/joeblew999/plat-tours/internal/network"
	"github.com/joeblew999/plat-tours/internal/planner/plannertest"
	"github.com/joeblew999/plat-tours/internal/service"
	"github.com/joeblew999/plat-tours/internal/templates"
)

func newServer(t *testing.T) (*httptest.Server, *editor.Controller, *plannertest.Fake) {
	t.Helper()
	renderer, err := templates.New("../../../web/templates/fragments")
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	fake := plannertest.NewFake()
	bus := service.NewEventBus()
	ctl := editor.New(editor.Config{
		Planner:         fake,
		Logger:          zerolog.Nop(),
		Bus:             bus,
		DefaultDuration: 5 * time.Minute,
	})
	if err := ctl.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	mux := http.NewServeMux()
	api := humago.New(mux, huma.DefaultConfig("Desk UI", "test"))
	huma.AutoRegister(api, NewActionHandler(ctl, renderer))
	huma.AutoRegister(api, NewEventHandler(ctl, bus, renderer))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, ctl, fake
}

func send(t *testing.T, srv *httptest.Server, method, path, body string) string {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("%s %s = %d: %s", method, path, resp.StatusCode, raw)
	}
	return string(raw)
}

func TestPickupClickPatchesPending(t *testing.T) {
	srv, ctl, _ := newServer(t)

	send(t, srv, "POST", "/api/v1/editor/ui/panel/request", "")
	out := send(t, srv, "POST", "/api/v1/editor/ui/mode/pickup", "")
	if !strings.Contains(out, `"mode":"pickup"`) {
		t.Fatalf("mode signal missing: %s", out)
	}

	out = send(t, srv, "POST", "/api/v1/editor/ui/click", `{"node": 2}`)
	if !strings.Contains(out, "datastar-patch-elements") || !strings.Contains(out, "Main St (#2)") {
		t.Fatalf("pending patch missing: %s", out)
	}
	if mode, p := ctl.Selection(); mode != editor.Idle || p.Pickup == nil || p.Pickup.Node != 2 {
		t.Fatalf("selection = %s %+v", mode, p)
	}
}

func TestCommitWithoutWarehouseShowsAction(t *testing.T) {
	srv, _, fake := newServer(t)

	send(t, srv, "POST", "/api/v1/editor/ui/panel/request", "")
	send(t, srv, "POST", "/api/v1/editor/ui/mode/pickup", "")
	send(t, srv, "POST", "/api/v1/editor/ui/click", `{"node": 1}`)
	send(t, srv, "POST", "/api/v1/editor/ui/mode/delivery", "")
	send(t, srv, "POST", "/api/v1/editor/ui/click", `{"node": 2}`)

	out := send(t, srv, "POST", "/api/v1/editor/ui/commit/request", "")
	if !strings.Contains(out, "Add warehouse") || !strings.Contains(out, "/api/v1/editor/ui/actions/") {
		t.Fatalf("notification action missing: %s", out)
	}
	if fake.Calls("AddRequest") != 0 {
		t.Fatal("planner called without a warehouse")
	}
}

func TestSearchAndFocus(t *testing.T) {
	srv, _, fake := newServer(t)
	fake.Edges = []network.Edge{{Start: 1, End: 2, Name: "Main St"}}

	out := send(t, srv, "POST", "/api/v1/editor/ui/search", `{"query": "main"}`)
	if !strings.Contains(out, "/api/v1/editor/ui/focus/1") {
		t.Fatalf("search hit missing: %s", out)
	}
	out = send(t, srv, "POST", "/api/v1/editor/ui/focus/1", "")
	if !strings.Contains(out, `"focus"`) {
		t.Fatalf("focus signal missing: %s", out)
	}
}

func TestEventsStreamsInitialState(t *testing.T) {
	srv, _, _ := newServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", srv.URL+"/api/v1/editor/events", nil)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	defer resp.Body.Close()

	buf := make([]byte, 0, 8192)
	chunk := make([]byte, 1024)
	for !strings.Contains(string(buf), "#tour-summaries") {
		n, err := resp.Body.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if err != nil {
			t.Fatalf("stream ended before the tours patch: %v\n%s", err, buf)
		}
	}
	if !strings.Contains(string(buf), "Ada") {
		t.Fatalf("courier list missing: %s", buf)
	}
}
