package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"feedsyncd/models"
	"feedsyncd/syncer"
)

// Runner starts sync passes on behalf of API callers.
type Runner interface {
	Run(ctx context.Context, trigger models.SyncTrigger, triggeredBy string, feedID *int64) (*syncer.RunResult, error)
	IsRunning(ctx context.Context, feedID *int64) (bool, error)
}

// Store is the read surface the API serves.
type Store interface {
	GetRecentRuns(ctx context.Context, limit int) ([]models.SyncLog, error)
	ListFeeds(ctx context.Context) ([]models.SyncFeed, error)
}

type Handler struct {
	store      Store
	runner     Runner
	waitWindow time.Duration
}

func NewHandler(store Store, runner Runner, waitWindow time.Duration) *Handler {
	if waitWindow <= 0 {
		waitWindow = 10 * time.Second
	}
	return &Handler{
		store:      store,
		runner:     runner,
		waitWindow: waitWindow,
	}
}

type triggerRequest struct {
	FeedID      *int64 `json:"feed_id"`
	TriggeredBy string `json:"triggered_by"`
}

type triggerResponse struct {
	Status string            `json:"status"`
	Result *syncer.RunResult `json:"result,omitempty"`
}

// TriggerSync starts a manual run and waits a short window for it to
// finish. Fast syncs answer 200 with the full result; slow ones keep
// running in the background and answer 202. A run already in flight is
// a 409.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.TriggeredBy == "" {
		req.TriggeredBy = "api"
	}

	type outcome struct {
		result *syncer.RunResult
		err    error
	}
	done := make(chan outcome, 1)

	// The run must survive the HTTP request; detach it from the
	// request context.
	go func() {
		result, err := h.runner.Run(context.Background(), models.TriggerManual, req.TriggeredBy, req.FeedID)
		done <- outcome{result, err}
	}()

	select {
	case out := <-done:
		var conflict *syncer.ConflictError
		if errors.As(out.err, &conflict) {
			writeError(w, http.StatusConflict, conflict.Error())
			return
		}
		if out.result == nil {
			writeError(w, http.StatusInternalServerError, out.err.Error())
			return
		}
		status := "completed"
		if !out.result.Success {
			status = "failed"
		}
		writeJSON(w, http.StatusOK, triggerResponse{Status: status, Result: out.result})
	case <-time.After(h.waitWindow):
		writeJSON(w, http.StatusAccepted, triggerResponse{Status: "started"})
	}
}

func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	var feedID *int64
	if raw := r.URL.Query().Get("feed_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid feed_id")
			return
		}
		feedID = &id
	}

	running, err := h.runner.IsRunning(r.Context(), feedID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"running": running})
}

func (h *Handler) SyncLogs(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	logs, err := h.store.GetRecentRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if logs == nil {
		logs = []models.SyncLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *Handler) ListFeeds(w http.ResponseWriter, r *http.Request) {
	feeds, err := h.store.ListFeeds(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if feeds == nil {
		feeds = []models.SyncFeed{}
	}
	writeJSON(w, http.StatusOK, feeds)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
