package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/joeblew999/plat-tours/internal/service"
)

func TestJournalRecent(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(Config{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()
	conn.SetMaxOpenConns(1)

	j, err := NewJournal(ctx, conn)
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}

	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := j.Record(ctx, service.JournalEntry{
			At:         start.Add(time.Duration(i) * time.Minute),
			Operation:  "add-request",
			Courier:    int64(i),
			Outcome:    "ok",
			Detail:     fmt.Sprintf("attempt %d", i),
			DurationMS: 10,
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, total, err := j.Recent(ctx, 2, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if total != 5 {
		t.Fatalf("total = %d, want 5", total)
	}
	if len(got) != 2 || got[0].Courier != 3 || got[1].Courier != 2 {
		t.Fatalf("page = %+v, want couriers 3 and 2", got)
	}
	if !got[0].At.Equal(start.Add(3 * time.Minute)) {
		t.Fatalf("at = %s", got[0].At)
	}
}

func TestOpenCreatesFile(t *testing.T) {
	dir := t.TempDir()
	conn, err := Open(Config{DataDir: dir, DBName: "journal"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	conn.Close()
}

func TestJournalStats(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(Config{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()
	conn.SetMaxOpenConns(1)

	j, err := NewJournal(ctx, conn)
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	now := time.Now().UTC()
	for _, e := range []service.JournalEntry{
		{At: now, Operation: "add-request", Courier: 1, Outcome: "ok", DurationMS: 10},
		{At: now, Operation: "add-request", Courier: 1, Outcome: "ok", DurationMS: 30},
		{At: now, Operation: "add-request", Courier: 2, Outcome: "infeasible", DurationMS: 5},
		{At: now, Operation: "reorder-stops", Courier: 1, Outcome: "busy"},
	} {
		if err := j.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	stats, err := j.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("stats = %+v, want 3 groups", stats)
	}
	if s := stats[1]; s.Outcome != "ok" || s.Count != 2 || s.AvgDurationMS != 20 {
		t.Fatalf("add-request ok = %+v", s)
	}
	if s := stats[2]; s.Operation != "reorder-stops" || s.Count != 1 {
		t.Fatalf("reorder = %+v", s)
	}
}
