package planner

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joeblew999/plat-tours/internal/network"
)

func TestGetToursDecodesStops(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tour/tours" {
			t.Errorf("path=%q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"7": {
			"courierId": 7,
			"stops": [
				{"type": "WAREHOUSE", "requestID": -1, "intersectionId": 1, "arrivalTime": null, "departureTime": "2025-01-01T08:00:00"},
				{"type": "PICKUP", "requestID": 3, "intersectionId": 2, "arrivalTime": "2025-01-01T08:05:00", "departureTime": "2025-01-01T08:10:00"}
			],
			"roadSegmentsTaken": [{"startId": 1, "endId": 2, "name": "Main St", "length": 120.5}],
			"totalDistance": 120.5,
			"totalDuration": "PT10M"
		}}`))
	}))
	defer srv.Close()

	tours, err := New(srv.URL).GetTours(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	tour, ok := tours[7]
	if !ok {
		t.Fatalf("missing tour for courier 7")
	}
	if len(tour.Stops) != 2 {
		t.Fatalf("stops=%d, want 2", len(tour.Stops))
	}
	if tour.Stops[0].Arrival != nil {
		t.Fatalf("expected nil arrival for warehouse stop")
	}
	if tour.Stops[1].Kind != network.StopPickup || tour.Stops[1].RequestID != 3 {
		t.Fatalf("second stop=%+v", tour.Stops[1])
	}
	if time.Duration(tour.TotalDuration) != 10*time.Minute {
		t.Fatalf("duration=%v, want 10m", time.Duration(tour.TotalDuration))
	}
}

func TestAddRequestSendsForm(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method=%s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		got = map[string]string{}
		for k := range r.PostForm {
			got[k] = r.PostForm.Get(k)
		}
	}))
	defer srv.Close()

	err := New(srv.URL).AddRequest(context.Background(), NewRequest{
		Courier:          7,
		Warehouse:        1,
		Pickup:           2,
		PickupDuration:   5 * time.Minute,
		Delivery:         3,
		DeliveryDuration: 90 * time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{
		"courierId":              "7",
		"warehouseId":            "1",
		"pickupIntersectionId":   "2",
		"pickupDuration":         "300",
		"deliveryIntersectionId": "3",
		"deliveryDuration":       "90",
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("%s=%q, want %q", k, got[k], v)
		}
	}
}

func TestStatusErrorClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Error when recomputing tour: TSP did not find a solution", http.StatusConflict)
	}))
	defer srv.Close()

	err := New(srv.URL).DeleteRequest(context.Background(), 3, 7)
	if err == nil {
		t.Fatal("expected error")
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusConflict {
		t.Fatalf("err=%v, want StatusError 409", err)
	}
	if !IsInfeasible(err) {
		t.Fatalf("expected infeasible classification")
	}
	if Detail(err) != "Error when recomputing tour: TSP did not find a solution" {
		t.Fatalf("detail=%q", Detail(err))
	}
}

func TestGenericFailureIsNotInfeasible(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := New(srv.URL).ReorderStops(context.Background(), 7, 1, 2)
	if err == nil {
		t.Fatal("expected error")
	}
	if IsInfeasible(err) {
		t.Fatalf("empty 500 must not be infeasible")
	}
	if Detail(err) != "planner returned HTTP 500" {
		t.Fatalf("detail=%q", Detail(err))
	}
}

func TestSearchPassesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") != "Main" {
			t.Errorf("name=%q", r.URL.Query().Get("name"))
		}
		w.Write([]byte(`[{"name": "Main St", "startId": 1, "endId": 2}]`))
	}))
	defer srv.Close()

	edges, err := New(srv.URL+"/").SearchEdgesByName(context.Background(), "Main")
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 1 || edges[0].Name != "Main St" {
		t.Fatalf("edges=%+v", edges)
	}
}
