package models

import (
	"encoding/json"
	"time"
)

type CommandType string

const (
	CmdRunSync        CommandType = "run_sync"
	CmdPauseSchedule  CommandType = "pause_schedule"
	CmdResumeSchedule CommandType = "resume_schedule"
)

// Command is an operational request inserted by local tooling and
// polled by the scheduler.
type Command struct {
	ID          int64           `json:"id" db:"id"`
	Command     CommandType     `json:"command" db:"command"`
	Params      json.RawMessage `json:"params" db:"params"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at" db:"processed_at"`
}

type CommandParams struct {
	FeedID      *int64 `json:"feed_id,omitempty"`
	TriggeredBy string `json:"triggered_by,omitempty"`
}
