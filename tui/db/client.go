package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"
)

// Client reads daemon state from Postgres and enqueues commands through
// the shared SQLite database the scheduler polls.
type Client struct {
	pg     *pgxpool.Pool
	sqlite *sql.DB
	ctx    context.Context
}

type FeedStats struct {
	ID              int64
	Slug            string
	Name            string
	Frequency       string
	ScheduleEnabled bool
	LastRunAt       *time.Time
	NextRunAt       *time.Time
	LastRunStatus   *string
	SuccessRate     float64
}

type SyncRun struct {
	ID          int64
	FeedSlug    string
	Status      string
	Trigger     string
	TriggeredBy string
	StartedAt   time.Time
	FinishedAt  *time.Time
	Created     int
	Updated     int
	Photos      int
	Errors      int
}

type ListingRow struct {
	ID           string
	MLSID        string
	Address      string
	City         string
	State        string
	Price        float64
	Beds         int
	Baths        float64
	PropertyType string
	Status       string
	IsRental     bool
	Description  string
	URL          string
	AgentName    string
	AgentEmail   string
	OfficeName   string
	SyncedAt     *time.Time
}

type OpenHouseRow struct {
	Date      string
	StartTime string
	EndTime   string
}

func New(postgresURL, sqlitePath string) (*Client, error) {
	ctx := context.Background()

	pgPool, err := pgxpool.New(ctx, postgresURL)
	if err != nil {
		return nil, err
	}

	sqliteDB, err := sql.Open("sqlite", sqlitePath)
	if err != nil {
		pgPool.Close()
		return nil, err
	}

	return &Client{
		pg:     pgPool,
		sqlite: sqliteDB,
		ctx:    ctx,
	}, nil
}

func (c *Client) Close() error {
	c.pg.Close()
	return c.sqlite.Close()
}

func (c *Client) GetFeedStats() ([]FeedStats, error) {
	rows, err := c.pg.Query(c.ctx, `
		WITH run_stats AS (
			SELECT
				feed_id,
				COUNT(*) AS total_runs,
				COUNT(*) FILTER (WHERE status = 'completed') AS completed_runs
			FROM sync_logs
			WHERE finished_at IS NOT NULL
			GROUP BY feed_id
		),
		latest AS (
			SELECT DISTINCT ON (feed_id) feed_id, status
			FROM sync_logs
			WHERE feed_id IS NOT NULL
			ORDER BY feed_id, started_at DESC
		)
		SELECT
			f.id, f.slug, f.name, f.schedule_frequency, f.schedule_enabled,
			f.last_scheduled_run, f.next_scheduled_run,
			l.status,
			COALESCE(rs.completed_runs::float / NULLIF(rs.total_runs, 0), 0)
		FROM sync_feeds f
		LEFT JOIN run_stats rs ON rs.feed_id = f.id
		LEFT JOIN latest l ON l.feed_id = f.id
		ORDER BY f.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []FeedStats
	for rows.Next() {
		var s FeedStats
		if err := rows.Scan(&s.ID, &s.Slug, &s.Name, &s.Frequency, &s.ScheduleEnabled,
			&s.LastRunAt, &s.NextRunAt, &s.LastRunStatus, &s.SuccessRate); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, nil
}

func (c *Client) GetRecentRuns(limit int) ([]SyncRun, error) {
	rows, err := c.pg.Query(c.ctx, `
		SELECT
			sl.id, COALESCE(f.slug, '-'), sl.status, sl.trigger_type,
			sl.triggered_by, sl.started_at, sl.finished_at,
			sl.listings_created, sl.listings_updated, sl.photos_processed, sl.errors_count
		FROM sync_logs sl
		LEFT JOIN sync_feeds f ON f.id = sl.feed_id
		ORDER BY sl.started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []SyncRun
	for rows.Next() {
		var r SyncRun
		if err := rows.Scan(&r.ID, &r.FeedSlug, &r.Status, &r.Trigger,
			&r.TriggeredBy, &r.StartedAt, &r.FinishedAt,
			&r.Created, &r.Updated, &r.Photos, &r.Errors); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, nil
}

func (c *Client) GetListings(limit, offset int, rentalsOnly bool) ([]ListingRow, error) {
	query := `
		SELECT
			l.id::text,
			l.mls_id,
			COALESCE(l.address, ''),
			COALESCE(l.city, ''),
			COALESCE(l.state, ''),
			COALESCE(l.price, 0),
			COALESCE(l.beds, 0),
			COALESCE(l.baths, 0),
			COALESCE(l.property_type, ''),
			COALESCE(l.status, ''),
			l.is_rental,
			COALESCE(l.description, ''),
			COALESCE(l.listing_url, ''),
			COALESCE(a.first_name || ' ' || a.last_name, ''),
			COALESCE(a.email, ''),
			COALESCE(o.name, ''),
			l.synced_at
		FROM listings l
		LEFT JOIN agents a ON a.id = l.agent_id
		LEFT JOIN offices o ON o.id = l.office_id
	`
	if rentalsOnly {
		query += ` WHERE l.is_rental`
	}
	query += ` ORDER BY l.updated_at DESC LIMIT $1 OFFSET $2`

	rows, err := c.pg.Query(c.ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []ListingRow
	for rows.Next() {
		var l ListingRow
		if err := rows.Scan(&l.ID, &l.MLSID, &l.Address, &l.City, &l.State,
			&l.Price, &l.Beds, &l.Baths, &l.PropertyType, &l.Status, &l.IsRental,
			&l.Description, &l.URL, &l.AgentName, &l.AgentEmail, &l.OfficeName,
			&l.SyncedAt); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, nil
}

func (c *Client) GetOpenHouses(listingID string) ([]OpenHouseRow, error) {
	rows, err := c.pg.Query(c.ctx, `
		SELECT date, start_time, end_time
		FROM open_houses
		WHERE listing_id = $1
		ORDER BY date
	`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ohs []OpenHouseRow
	for rows.Next() {
		var oh OpenHouseRow
		if err := rows.Scan(&oh.Date, &oh.StartTime, &oh.EndTime); err != nil {
			return nil, err
		}
		ohs = append(ohs, oh)
	}
	return ohs, nil
}

func (c *Client) GetListingCount(rentalsOnly bool) (int, error) {
	query := "SELECT COUNT(*) FROM listings"
	if rentalsOnly {
		query += " WHERE is_rental"
	}
	var count int
	err := c.pg.QueryRow(c.ctx, query).Scan(&count)
	return count, err
}

func (c *Client) GetAgentCount() (int, error) {
	var count int
	err := c.pg.QueryRow(c.ctx, "SELECT COUNT(*) FROM agents").Scan(&count)
	return count, err
}

func (c *Client) GetOfficeCount() (int, error) {
	var count int
	err := c.pg.QueryRow(c.ctx, "SELECT COUNT(*) FROM offices").Scan(&count)
	return count, err
}

func (c *Client) GetPhotoQueueCount() (int, error) {
	var count int
	err := c.pg.QueryRow(c.ctx,
		"SELECT COUNT(*) FROM photos WHERE s3_key IS NULL AND mirror_attempts < 3").Scan(&count)
	return count, err
}

func (c *Client) IsSyncRunning() (bool, error) {
	var running bool
	err := c.pg.QueryRow(c.ctx,
		"SELECT EXISTS (SELECT 1 FROM sync_logs WHERE status = 'running')").Scan(&running)
	return running, err
}

// Commands go through SQLite; the daemon polls from there.
func (c *Client) SendCommand(command string, params interface{}) error {
	data := []byte("{}")
	if params != nil {
		var err error
		data, err = json.Marshal(params)
		if err != nil {
			return err
		}
	}
	_, err := c.sqlite.Exec(`
		INSERT INTO commands (command, params, created_at)
		VALUES (?, ?, datetime('now'))
	`, command, string(data))
	return err
}

func (c *Client) SyncNow(feedID *int64) error {
	return c.SendCommand("run_sync", map[string]interface{}{
		"feed_id":      feedID,
		"triggered_by": "tui",
	})
}

func (c *Client) PauseSchedule() error {
	return c.SendCommand("pause_schedule", nil)
}

func (c *Client) ResumeSchedule() error {
	return c.SendCommand("resume_schedule", nil)
}
