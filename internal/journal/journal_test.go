package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "state", "journal.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	j := openTemp(t)
	base := time.Date(2025, 7, 2, 9, 0, 0, 0, time.Local)

	id, err := j.Record(ctx, Run{
		StartedAt:       base,
		FinishedAt:      base.Add(time.Minute),
		Cutoff:          time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
		State:           "reported",
		Success:         true,
		Message:         "processed 3 of 3 orders",
		OrdersFound:     3,
		OrdersProcessed: 3,
		TokensUsed:      1200,
		EstimatedCost:   0.0024,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if id == "" {
		t.Error("Expected generated run id")
	}

	if _, err := j.Record(ctx, Run{ID: "second", StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour), State: "capped"}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	runs, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "second" {
		t.Errorf("Expected newest first, got %s", runs[0].ID)
	}
	first := runs[1]
	if first.ID != id || !first.Success || first.TokensUsed != 1200 || first.OrdersFound != 3 {
		t.Errorf("Unexpected run: %+v", first)
	}
	if first.Cutoff.Format("2006-01-02") != "2025-06-20" {
		t.Errorf("Cutoff = %v", first.Cutoff)
	}
	if !first.StartedAt.Equal(base) {
		t.Errorf("StartedAt = %v, want %v", first.StartedAt, base)
	}

	limited, _ := j.Recent(ctx, 1)
	if len(limited) != 1 {
		t.Errorf("Recent(1) returned %d runs", len(limited))
	}
}

func TestTokensSince(t *testing.T) {
	ctx := context.Background()
	j := openTemp(t)
	today := time.Date(2025, 7, 2, 10, 0, 0, 0, time.Local)

	if got, err := j.TokensSince(ctx, StartOfDay(today)); err != nil || got != 0 {
		t.Fatalf("TokensSince on empty journal = %d, %v", got, err)
	}

	j.Record(ctx, Run{StartedAt: today.Add(-24 * time.Hour), TokensUsed: 5000})
	j.Record(ctx, Run{StartedAt: today.Add(-time.Hour), TokensUsed: 300})
	j.Record(ctx, Run{StartedAt: today, TokensUsed: 200})

	got, err := j.TokensSince(ctx, StartOfDay(today))
	if err != nil {
		t.Fatalf("TokensSince failed: %v", err)
	}
	if got != 500 {
		t.Errorf("TokensSince = %d, want 500", got)
	}
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2025, 7, 2, 23, 59, 59, 0, time.UTC)
	want := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)
	if got := StartOfDay(in); !got.Equal(want) {
		t.Errorf("StartOfDay() = %v, want %v", got, want)
	}
}
