package models

import "time"

type ScheduleFrequency string

const (
	FrequencyHourly       ScheduleFrequency = "hourly"
	FrequencyEvery6Hours  ScheduleFrequency = "every_6_hours"
	FrequencyEvery12Hours ScheduleFrequency = "every_12_hours"
	FrequencyDaily        ScheduleFrequency = "daily"
	FrequencyWeekly       ScheduleFrequency = "weekly"
)

// Feed formats. Only XML has a normalizer today; json/api are accepted
// in configuration but rejected at run time.
const (
	FeedTypeXML  = "xml"
	FeedTypeJSON = "json"
	FeedTypeAPI  = "api"
)

// SyncFeed is one ingestion source configuration. Created and edited by
// administrators; the scheduler only writes the last/next run columns.
type SyncFeed struct {
	ID                int64             `json:"id" db:"id"`
	Name              string            `json:"name" db:"name"`
	Slug              string            `json:"slug" db:"slug"`
	FeedURL           string            `json:"feed_url" db:"feed_url"`
	FeedType          string            `json:"feed_type" db:"feed_type"`
	IsEnabled         bool              `json:"is_enabled" db:"is_enabled"`
	ScheduleEnabled   bool              `json:"schedule_enabled" db:"schedule_enabled"`
	ScheduleFrequency ScheduleFrequency `json:"schedule_frequency" db:"schedule_frequency"`
	ScheduleTime      string            `json:"schedule_time" db:"schedule_time"` // HH:MM:SS
	ScheduleDayOfWeek int               `json:"schedule_day_of_week" db:"schedule_day_of_week"` // 0 = Sunday
	LastScheduledRun  *time.Time        `json:"last_scheduled_run" db:"last_scheduled_run"`
	NextScheduledRun  *time.Time        `json:"next_scheduled_run" db:"next_scheduled_run"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" db:"updated_at"`
}
