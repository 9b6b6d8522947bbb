package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"feedsyncd/models"
	"feedsyncd/syncer"
)

type fakeStore struct {
	logs  []models.SyncLog
	feeds []models.SyncFeed
}

func (s *fakeStore) GetRecentRuns(ctx context.Context, limit int) ([]models.SyncLog, error) {
	if limit < len(s.logs) {
		return s.logs[:limit], nil
	}
	return s.logs, nil
}

func (s *fakeStore) ListFeeds(ctx context.Context) ([]models.SyncFeed, error) {
	return s.feeds, nil
}

type fakeRunner struct {
	result  *syncer.RunResult
	err     error
	delay   time.Duration
	running bool
}

func (r *fakeRunner) Run(ctx context.Context, trigger models.SyncTrigger, triggeredBy string, feedID *int64) (*syncer.RunResult, error) {
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	return r.result, r.err
}

func (r *fakeRunner) IsRunning(ctx context.Context, feedID *int64) (bool, error) {
	return r.running, nil
}

func TestTriggerSyncCompletesInWindow(t *testing.T) {
	runner := &fakeRunner{result: &syncer.RunResult{
		Success: true,
		Stats:   models.SyncStats{ListingsCreated: 4},
	}}
	h := NewHandler(&fakeStore{}, runner, time.Second)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/trigger", strings.NewReader(`{"triggered_by":"tester"}`))
	rec := httptest.NewRecorder()
	h.TriggerSync(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp triggerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "completed" {
		t.Errorf("expected completed, got %s", resp.Status)
	}
	if resp.Result == nil || resp.Result.Stats.ListingsCreated != 4 {
		t.Errorf("expected stats in response, got %+v", resp.Result)
	}
}

func TestTriggerSyncSlowRunAnswers202(t *testing.T) {
	runner := &fakeRunner{
		result: &syncer.RunResult{Success: true},
		delay:  200 * time.Millisecond,
	}
	h := NewHandler(&fakeStore{}, runner, 20*time.Millisecond)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/trigger", nil)
	rec := httptest.NewRecorder()
	h.TriggerSync(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	var resp triggerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "started" {
		t.Errorf("expected started, got %s", resp.Status)
	}
}

func TestTriggerSyncConflict(t *testing.T) {
	runner := &fakeRunner{err: &syncer.ConflictError{}}
	h := NewHandler(&fakeStore{}, runner, time.Second)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/trigger", nil)
	rec := httptest.NewRecorder()
	h.TriggerSync(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestTriggerSyncFailedRun(t *testing.T) {
	runner := &fakeRunner{
		result: &syncer.RunResult{Success: false, Error: "fetch feed: connection refused"},
		err:    &syncer.RecordError{},
	}
	h := NewHandler(&fakeStore{}, runner, time.Second)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/trigger", nil)
	rec := httptest.NewRecorder()
	h.TriggerSync(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp triggerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "failed" {
		t.Errorf("expected failed, got %s", resp.Status)
	}
}

func TestSyncStatus(t *testing.T) {
	h := NewHandler(&fakeStore{}, &fakeRunner{running: true}, time.Second)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/status", nil)
	rec := httptest.NewRecorder()
	h.SyncStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp["running"] {
		t.Error("expected running=true")
	}
}

func TestSyncStatusBadFeedID(t *testing.T) {
	h := NewHandler(&fakeStore{}, &fakeRunner{}, time.Second)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/status?feed_id=banana", nil)
	rec := httptest.NewRecorder()
	h.SyncStatus(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSyncLogs(t *testing.T) {
	store := &fakeStore{logs: []models.SyncLog{
		{ID: 2, Status: models.SyncStatusCompleted},
		{ID: 1, Status: models.SyncStatusFailed},
	}}
	h := NewHandler(store, &fakeRunner{}, time.Second)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/logs?limit=1", nil)
	rec := httptest.NewRecorder()
	h.SyncLogs(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var logs []models.SyncLog
	if err := json.Unmarshal(rec.Body.Bytes(), &logs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(logs) != 1 || logs[0].ID != 2 {
		t.Errorf("unexpected logs: %+v", logs)
	}
}

func TestListFeedsEmpty(t *testing.T) {
	h := NewHandler(&fakeStore{}, &fakeRunner{}, time.Second)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feeds", nil)
	rec := httptest.NewRecorder()
	h.ListFeeds(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("expected empty array, got %s", body)
	}
}
