package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-tours/internal/planner/plannertest"
)

func newTestServer(t *testing.T, journal bool) (*Server, *httptest.Server, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	srv := New(Config{
		Host:    "localhost",
		Port:    "0",
		DataDir: t.TempDir(),
		WebDir:  "../../web",
		Journal: journal,
		Logger:  zerolog.New(&logs),
		Planner: plannertest.NewFake(),
	})
	t.Cleanup(func() { srv.Close() })
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return srv, ts, &logs
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return resp, string(raw)
}

func TestServerServesAPIAndMetrics(t *testing.T) {
	srv, ts, _ := newTestServer(t, false)

	resp, body := get(t, ts.URL+"/health")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"status":"ok"`) {
		t.Fatalf("health = %d %s", resp.StatusCode, body)
	}
	if resp.Header.Get("Link") == "" {
		t.Fatal("health has no Link header")
	}

	_, body = get(t, ts.URL+"/metrics")
	if !strings.Contains(body, "desk_http_requests_total") {
		t.Fatalf("metrics = %s", body)
	}

	if resp, _ := get(t, ts.URL+"/api/v1/journal"); resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("journal without db = %d", resp.StatusCode)
	}

	if _, ok := srv.OpenAPI().Paths["/api/v1/editor/events"]; !ok {
		t.Fatal("event stream not registered")
	}
}

func TestServerJournalsMutations(t *testing.T) {
	_, ts, _ := newTestServer(t, true)

	resp, err := http.Post(ts.URL+"/api/v1/reorder", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("reorder = %d", resp.StatusCode)
	}

	_, body := get(t, ts.URL+"/api/v1/journal")
	var page struct {
		Total int `json:"total"`
		Data  []struct {
			Operation string `json:"operation"`
			Outcome   string `json:"outcome"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(body), &page); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	if page.Total != 1 || page.Data[0].Operation != "reorder-stops" || page.Data[0].Outcome != "precondition" {
		t.Fatalf("journal = %+v", page)
	}
}

func TestAccessLog(t *testing.T) {
	srv, _, logs := newTestServer(t, false)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/editor/pending", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("pending = %d", rec.Code)
	}
	line := logs.String()
	for _, want := range []string{`"message":"http_request"`, `"path":"/api/v1/editor/pending"`, `"status":200`, `"request_id"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("access log %s missing %s", line, want)
		}
	}
}

func TestRootRedirectsToDesk(t *testing.T) {
	_, ts, _ := newTestServer(t, false)

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/desk" {
		t.Fatalf("root = %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp, body := get(t, ts.URL+"/desk")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "/api/v1/editor/events") {
		t.Fatalf("desk = %d", resp.StatusCode)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
