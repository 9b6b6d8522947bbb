package models

import (
	"encoding/json"
	"time"
)

type SyncStatus string

const (
	SyncStatusPending   SyncStatus = "pending"
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
)

type SyncTrigger string

const (
	TriggerManual    SyncTrigger = "manual"
	TriggerScheduled SyncTrigger = "scheduled"
	TriggerWebhook   SyncTrigger = "webhook"
)

// SyncLog is one record per run, append-only after completion.
type SyncLog struct {
	ID           int64       `json:"id" db:"id"`
	FeedID       *int64      `json:"feed_id" db:"feed_id"`
	Status       SyncStatus  `json:"status" db:"status"`
	Trigger      SyncTrigger `json:"trigger" db:"trigger_type"`
	TriggeredBy  string      `json:"triggered_by" db:"triggered_by"`
	StartedAt    time.Time   `json:"started_at" db:"started_at"`
	FinishedAt   *time.Time  `json:"finished_at" db:"finished_at"`
	Stats        SyncStats   `json:"stats"`
	ErrorMessage *string     `json:"error_message" db:"error_message"`
}

// SyncStats aggregates the per-category counters of one run.
type SyncStats struct {
	ListingsCreated     int `json:"listings_created" db:"listings_created"`
	ListingsUpdated     int `json:"listings_updated" db:"listings_updated"`
	ListingsDeleted     int `json:"listings_deleted" db:"listings_deleted"`
	AgentsCreated       int `json:"agents_created" db:"agents_created"`
	AgentsUpdated       int `json:"agents_updated" db:"agents_updated"`
	OfficesCreated      int `json:"offices_created" db:"offices_created"`
	OfficesUpdated      int `json:"offices_updated" db:"offices_updated"`
	PhotosProcessed     int `json:"photos_processed" db:"photos_processed"`
	OpenHousesProcessed int `json:"open_houses_processed" db:"open_houses_processed"`
	Errors              int `json:"errors" db:"errors_count"`
}

// ToJSON returns JSON-serializable metadata for logging.
func (s *SyncStats) ToJSON() json.RawMessage {
	data, _ := json.Marshal(s)
	return data
}
