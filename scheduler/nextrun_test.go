package scheduler

import (
	"testing"
	"time"

	"feedsyncd/models"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %s: %v", value, err)
	}
	return parsed
}

func TestComputeNextRunHourly(t *testing.T) {
	now := mustTime(t, "2024-01-15T05:47:13Z")
	next, err := ComputeNextRun(models.FrequencyHourly, "", 0, now, time.UTC)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	want := mustTime(t, "2024-01-15T06:00:00Z")
	if !next.Equal(want) {
		t.Errorf("got %s, want %s", next, want)
	}
}

func TestComputeNextRunHourlyOnTheHour(t *testing.T) {
	// Exactly on the hour still advances: strictly after.
	now := mustTime(t, "2024-01-15T06:00:00Z")
	next, err := ComputeNextRun(models.FrequencyHourly, "", 0, now, time.UTC)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	want := mustTime(t, "2024-01-15T07:00:00Z")
	if !next.Equal(want) {
		t.Errorf("got %s, want %s", next, want)
	}
}

func TestComputeNextRunEvery6Hours(t *testing.T) {
	cases := []struct {
		now  string
		want string
	}{
		{"2024-01-15T05:00:00Z", "2024-01-15T06:00:00Z"},
		{"2024-01-15T06:00:00Z", "2024-01-15T12:00:00Z"},
		{"2024-01-15T13:30:00Z", "2024-01-15T18:00:00Z"},
		{"2024-01-15T23:59:00Z", "2024-01-16T00:00:00Z"},
	}
	for _, c := range cases {
		next, err := ComputeNextRun(models.FrequencyEvery6Hours, "", 0, mustTime(t, c.now), time.UTC)
		if err != nil {
			t.Fatalf("compute at %s: %v", c.now, err)
		}
		if !next.Equal(mustTime(t, c.want)) {
			t.Errorf("at %s: got %s, want %s", c.now, next, c.want)
		}
	}
}

func TestComputeNextRunEvery12Hours(t *testing.T) {
	cases := []struct {
		now  string
		want string
	}{
		{"2024-01-15T03:00:00Z", "2024-01-15T12:00:00Z"},
		{"2024-01-15T12:00:00Z", "2024-01-16T00:00:00Z"},
		{"2024-01-15T18:45:00Z", "2024-01-16T00:00:00Z"},
	}
	for _, c := range cases {
		next, err := ComputeNextRun(models.FrequencyEvery12Hours, "", 0, mustTime(t, c.now), time.UTC)
		if err != nil {
			t.Fatalf("compute at %s: %v", c.now, err)
		}
		if !next.Equal(mustTime(t, c.want)) {
			t.Errorf("at %s: got %s, want %s", c.now, next, c.want)
		}
	}
}

func TestComputeNextRunDaily(t *testing.T) {
	// Past today's slot: tomorrow.
	now := mustTime(t, "2024-01-15T05:00:00Z")
	next, err := ComputeNextRun(models.FrequencyDaily, "03:00:00", 0, now, time.UTC)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	want := mustTime(t, "2024-01-16T03:00:00Z")
	if !next.Equal(want) {
		t.Errorf("got %s, want %s", next, want)
	}

	// Before today's slot: today.
	now = mustTime(t, "2024-01-15T01:00:00Z")
	next, err = ComputeNextRun(models.FrequencyDaily, "03:00:00", 0, now, time.UTC)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	want = mustTime(t, "2024-01-15T03:00:00Z")
	if !next.Equal(want) {
		t.Errorf("got %s, want %s", next, want)
	}

	// Exactly at the slot: tomorrow, never the same instant.
	now = mustTime(t, "2024-01-15T03:00:00Z")
	next, err = ComputeNextRun(models.FrequencyDaily, "03:00:00", 0, now, time.UTC)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	want = mustTime(t, "2024-01-16T03:00:00Z")
	if !next.Equal(want) {
		t.Errorf("got %s, want %s", next, want)
	}
}

func TestComputeNextRunWeekly(t *testing.T) {
	// 2024-01-17 is a Wednesday; 0 is Sunday.
	now := mustTime(t, "2024-01-17T10:00:00Z")
	next, err := ComputeNextRun(models.FrequencyWeekly, "09:00:00", 0, now, time.UTC)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	want := mustTime(t, "2024-01-21T09:00:00Z")
	if !next.Equal(want) {
		t.Errorf("got %s, want %s", next, want)
	}

	// Same weekday, earlier time-of-day already passed: next week.
	now = mustTime(t, "2024-01-21T10:00:00Z") // Sunday
	next, err = ComputeNextRun(models.FrequencyWeekly, "09:00:00", 0, now, time.UTC)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	want = mustTime(t, "2024-01-28T09:00:00Z")
	if !next.Equal(want) {
		t.Errorf("got %s, want %s", next, want)
	}

	// Same weekday, slot still ahead: today.
	now = mustTime(t, "2024-01-21T08:00:00Z") // Sunday
	next, err = ComputeNextRun(models.FrequencyWeekly, "09:00:00", 0, now, time.UTC)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	want = mustTime(t, "2024-01-21T09:00:00Z")
	if !next.Equal(want) {
		t.Errorf("got %s, want %s", next, want)
	}
}

func TestComputeNextRunRespectsLocation(t *testing.T) {
	loc := time.FixedZone("UTC-6", -6*60*60)
	// 04:00 UTC is 22:00 the previous day in UTC-6, so the next 6h
	// boundary in that zone is local midnight = 06:00 UTC.
	now := mustTime(t, "2024-01-15T04:00:00Z")
	next, err := ComputeNextRun(models.FrequencyEvery6Hours, "", 0, now, loc)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	want := mustTime(t, "2024-01-15T06:00:00Z")
	if !next.Equal(want) {
		t.Errorf("got %s, want %s", next, want)
	}
}

func TestComputeNextRunShortTimeFormat(t *testing.T) {
	now := mustTime(t, "2024-01-15T01:00:00Z")
	next, err := ComputeNextRun(models.FrequencyDaily, "03:30", 0, now, time.UTC)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	want := mustTime(t, "2024-01-15T03:30:00Z")
	if !next.Equal(want) {
		t.Errorf("got %s, want %s", next, want)
	}
}

func TestComputeNextRunInvalidInput(t *testing.T) {
	now := mustTime(t, "2024-01-15T01:00:00Z")
	if _, err := ComputeNextRun(models.FrequencyDaily, "25:99", 0, now, time.UTC); err == nil {
		t.Error("expected error for bad time of day")
	}
	if _, err := ComputeNextRun(models.FrequencyWeekly, "03:00:00", 9, now, time.UTC); err == nil {
		t.Error("expected error for bad day of week")
	}
	if _, err := ComputeNextRun("fortnightly", "", 0, now, time.UTC); err == nil {
		t.Error("expected error for unknown frequency")
	}
}
