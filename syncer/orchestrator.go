package syncer

import (
	"context"
	"fmt"
	"log"
	"time"

	"feedsyncd/feed"
	"feedsyncd/models"
)

// RunStore persists run state. AcquireRun must be atomic with respect
// to the running-row check: the conditional insert is the single-flight
// guard, enforced in the database so multiple process instances cannot
// both start a run.
type RunStore interface {
	Store
	AcquireRun(ctx context.Context, feedID *int64, trigger models.SyncTrigger, triggeredBy string, startedAt time.Time) (runID int64, acquired bool, err error)
	FinishRun(ctx context.Context, runID int64, status models.SyncStatus, stats *models.SyncStats, errorMessage *string, finishedAt time.Time) error
	IsRunning(ctx context.Context, feedID *int64) (bool, error)
	GetFeed(ctx context.Context, feedID int64) (*models.SyncFeed, error)
}

// RunResult is what one end-to-end pass reports back to its caller.
type RunResult struct {
	Success  bool             `json:"success"`
	Stats    models.SyncStats `json:"stats"`
	Duration time.Duration    `json:"duration"`
	Error    string           `json:"error,omitempty"`
}

// Orchestrator coordinates one synchronous feed sync: guard, fetch,
// normalize, reconcile every record, persist the run log.
type Orchestrator struct {
	store          RunStore
	client         feed.Client
	reconciler     *Reconciler
	defaultFeedURL string

	normalizerFor func(feedType string) (feed.Normalizer, error)
}

func NewOrchestrator(store RunStore, client feed.Client, defaultFeedURL string) *Orchestrator {
	return &Orchestrator{
		store:          store,
		client:         client,
		reconciler:     NewReconciler(store),
		defaultFeedURL: defaultFeedURL,
		normalizerFor:  feed.NormalizerFor,
	}
}

// IsRunning reports whether a run is in the running state, globally
// when feedID is nil or for the given feed.
func (o *Orchestrator) IsRunning(ctx context.Context, feedID *int64) (bool, error) {
	return o.store.IsRunning(ctx, feedID)
}

// Run executes one synchronous pass. A concurrent run surfaces as a
// *ConflictError; fetch/parse failures mark the run failed; per-record
// failures are counted and logged but never abort the batch.
func (o *Orchestrator) Run(ctx context.Context, trigger models.SyncTrigger, triggeredBy string, feedID *int64) (*RunResult, error) {
	started := time.Now()

	runID, acquired, err := o.store.AcquireRun(ctx, feedID, trigger, triggeredBy, started)
	if err != nil {
		return nil, fmt.Errorf("acquire run: %w", err)
	}
	if !acquired {
		return nil, &ConflictError{}
	}

	stats := &models.SyncStats{}

	records, err := o.loadRecords(ctx, feedID)
	if err != nil {
		// Fetch or parse failure aborts before any record is touched.
		msg := err.Error()
		if finishErr := o.store.FinishRun(ctx, runID, models.SyncStatusFailed, stats, &msg, time.Now()); finishErr != nil {
			log.Printf("[syncer] failed to finish run %d: %v", runID, finishErr)
		}
		return &RunResult{
			Success:  false,
			Stats:    *stats,
			Duration: time.Since(started),
			Error:    msg,
		}, err
	}

	for i := range records {
		result, err := o.reconciler.Reconcile(ctx, &records[i])
		if err != nil {
			log.Printf("[syncer] run %d: %v", runID, err)
			stats.Errors++
			continue
		}
		aggregate(stats, result)
	}

	if err := o.store.FinishRun(ctx, runID, models.SyncStatusCompleted, stats, nil, time.Now()); err != nil {
		log.Printf("[syncer] failed to finish run %d: %v", runID, err)
	}

	log.Printf("[syncer] run %d completed: %d created, %d updated, %d photos, %d open houses, %d errors",
		runID, stats.ListingsCreated, stats.ListingsUpdated, stats.PhotosProcessed, stats.OpenHousesProcessed, stats.Errors)

	return &RunResult{
		Success:  true,
		Stats:    *stats,
		Duration: time.Since(started),
	}, nil
}

// loadRecords resolves the feed configuration, fetches the payload, and
// normalizes it. The per-feed URL wins; a nil feed id falls back to the
// process-wide default URL and the XML format.
func (o *Orchestrator) loadRecords(ctx context.Context, feedID *int64) ([]feed.Record, error) {
	feedURL := o.defaultFeedURL
	feedType := models.FeedTypeXML

	if feedID != nil {
		cfg, err := o.store.GetFeed(ctx, *feedID)
		if err != nil {
			return nil, fmt.Errorf("get feed %d: %w", *feedID, err)
		}
		if cfg == nil {
			return nil, fmt.Errorf("feed %d not found", *feedID)
		}
		if cfg.FeedURL != "" {
			feedURL = cfg.FeedURL
		}
		if cfg.FeedType != "" {
			feedType = cfg.FeedType
		}
	}
	if feedURL == "" {
		return nil, fmt.Errorf("no feed URL configured")
	}

	normalizer, err := o.normalizerFor(feedType)
	if err != nil {
		return nil, err
	}

	data, err := o.client.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	return normalizer.Normalize(data)
}

func aggregate(stats *models.SyncStats, r *ReconcileResult) {
	switch r.Op {
	case OpCreated:
		stats.ListingsCreated++
	case OpUpdated:
		stats.ListingsUpdated++
	}
	if r.AgentCreated {
		stats.AgentsCreated++
	}
	if r.AgentUpdated {
		stats.AgentsUpdated++
	}
	if r.OfficeCreated {
		stats.OfficesCreated++
	}
	if r.OfficeUpdated {
		stats.OfficesUpdated++
	}
	stats.PhotosProcessed += r.PhotosProcessed
	stats.OpenHousesProcessed += r.OpenHousesProcessed
}
