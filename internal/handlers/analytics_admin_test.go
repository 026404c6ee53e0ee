package handlers

import (
	"testing"
	"time"
)

func TestTimeSpentBucketLabels(t *testing.T) {
	tests := []struct {
		lower int64
		want  string
	}{
		{0, "0-30s"},
		{30, "30-60s"},
		{300, "300-600s"},
		{3600, "3600s+"},
		{999, "other"},
	}
	for _, tc := range tests {
		if got := timeSpentBucketLabel(tc.lower); got != tc.want {
			t.Fatalf("label(%d): expected %q, got %q", tc.lower, tc.want, got)
		}
	}
}

func TestAnalyticsWindowDefaultsToTrailing30Days(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	start, end, err := analyticsWindow("", "", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !end.Equal(now) {
		t.Fatalf("expected end=now, got %v", end)
	}
	if !start.Equal(now.AddDate(0, 0, -30)) {
		t.Fatalf("expected start 30 days back, got %v", start)
	}
}

func TestAnalyticsWindowParsesExplicitRange(t *testing.T) {
	now := time.Now()
	start, end, err := analyticsWindow("2025-01-01", "2025-01-31", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Format("2006-01-02") != "2025-01-01" {
		t.Fatalf("unexpected start %v", start)
	}
	// End date is inclusive through the whole day.
	if end.Before(time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("expected inclusive end of day, got %v", end)
	}
}

func TestAnalyticsWindowRejectsGarbage(t *testing.T) {
	if _, _, err := analyticsWindow("31-01-2025", "", time.Now()); err == nil {
		t.Fatal("expected error for malformed startDate")
	}
	if _, _, err := analyticsWindow("", "soon", time.Now()); err == nil {
		t.Fatal("expected error for malformed endDate")
	}
}

func TestGrowthPercent(t *testing.T) {
	if got := growthPercent(150, 100); got != 50 {
		t.Fatalf("expected 50%% growth, got %v", got)
	}
	if got := growthPercent(50, 100); got != -50 {
		t.Fatalf("expected -50%% growth, got %v", got)
	}
	if got := growthPercent(0, 0); got != 0 {
		t.Fatalf("expected 0 for no activity, got %v", got)
	}
	if got := growthPercent(10, 0); got != 100 {
		t.Fatalf("expected 100 for growth from zero, got %v", got)
	}
}
