package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"feedsyncd/models"
	"feedsyncd/syncer"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// Migrate creates the sync engine's tables when they do not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS agents (
		id UUID PRIMARY KEY,
		first_name TEXT,
		last_name TEXT,
		email TEXT,
		license_number TEXT,
		phone TEXT,
		photo_url TEXT,
		user_id BIGINT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_agents_email ON agents (email);

	CREATE TABLE IF NOT EXISTS offices (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		brokerage_name TEXT,
		broker_phone TEXT,
		broker_email TEXT,
		address TEXT,
		city TEXT,
		state TEXT,
		zip TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_offices_name ON offices (name);

	CREATE TABLE IF NOT EXISTS listings (
		id UUID PRIMARY KEY,
		mls_id TEXT NOT NULL UNIQUE,
		mls_internal_id TEXT,
		mls_board TEXT,
		status TEXT,
		price DOUBLE PRECISION,
		listing_url TEXT,
		virtual_tour_url TEXT,
		address TEXT,
		unit_number TEXT,
		city TEXT,
		state TEXT,
		zip TEXT,
		lat DOUBLE PRECISION,
		lng DOUBLE PRECISION,
		property_type TEXT,
		description TEXT,
		beds INTEGER,
		baths DOUBLE PRECISION,
		baths_full INTEGER,
		baths_half INTEGER,
		living_area INTEGER,
		lot_size DOUBLE PRECISION,
		year_built INTEGER,
		is_rental BOOLEAN NOT NULL DEFAULT FALSE,
		pets_allowed BOOLEAN,
		agent_id UUID REFERENCES agents(id),
		office_id UUID REFERENCES offices(id),
		synced_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS photos (
		id BIGSERIAL PRIMARY KEY,
		listing_id UUID NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		caption TEXT,
		sort_order INTEGER NOT NULL DEFAULT 0,
		s3_key TEXT,
		mirror_attempts INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_photos_listing ON photos (listing_id);

	CREATE TABLE IF NOT EXISTS open_houses (
		id BIGSERIAL PRIMARY KEY,
		listing_id UUID NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_open_houses_listing ON open_houses (listing_id);

	CREATE TABLE IF NOT EXISTS sync_feeds (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		feed_url TEXT NOT NULL DEFAULT '',
		feed_type TEXT NOT NULL DEFAULT 'xml',
		is_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		schedule_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		schedule_frequency TEXT NOT NULL DEFAULT 'daily',
		schedule_time TEXT NOT NULL DEFAULT '00:00:00',
		schedule_day_of_week INTEGER NOT NULL DEFAULT 0,
		last_scheduled_run TIMESTAMPTZ,
		next_scheduled_run TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS sync_logs (
		id BIGSERIAL PRIMARY KEY,
		feed_id BIGINT REFERENCES sync_feeds(id),
		status TEXT NOT NULL,
		trigger_type TEXT NOT NULL,
		triggered_by TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ,
		listings_created INTEGER NOT NULL DEFAULT 0,
		listings_updated INTEGER NOT NULL DEFAULT 0,
		listings_deleted INTEGER NOT NULL DEFAULT 0,
		agents_created INTEGER NOT NULL DEFAULT 0,
		agents_updated INTEGER NOT NULL DEFAULT 0,
		offices_created INTEGER NOT NULL DEFAULT 0,
		offices_updated INTEGER NOT NULL DEFAULT 0,
		photos_processed INTEGER NOT NULL DEFAULT 0,
		open_houses_processed INTEGER NOT NULL DEFAULT 0,
		errors_count INTEGER NOT NULL DEFAULT 0,
		error_message TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_sync_logs_status ON sync_logs (status);

	CREATE UNIQUE INDEX IF NOT EXISTS uq_sync_logs_one_running
		ON sync_logs ((status)) WHERE status = 'running';`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// =============================================================================
// Sync runs
// =============================================================================

// AcquireRun inserts the running sync_logs row only when no other row
// is currently running. The NOT EXISTS check is not sufficient on its
// own under READ COMMITTED, where two sessions can each miss the
// other's uncommitted row; the partial unique index on running status
// is what holds the guard across concurrent sessions. A unique
// violation there means someone else won the race.
func (s *PostgresStore) AcquireRun(ctx context.Context, feedID *int64, trigger models.SyncTrigger, triggeredBy string, startedAt time.Time) (int64, bool, error) {
	query := `
		INSERT INTO sync_logs (feed_id, status, trigger_type, triggered_by, started_at)
		SELECT $1, $2, $3, $4, $5
		WHERE NOT EXISTS (SELECT 1 FROM sync_logs WHERE status = $2)
		RETURNING id`

	var id int64
	err := s.pool.QueryRow(ctx, query, feedID, models.SyncStatusRunning, trigger, triggeredBy, startedAt).Scan(&id)
	if err == pgx.ErrNoRows {
		return 0, false, nil
	}
	if isUniqueViolation(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *PostgresStore) FinishRun(ctx context.Context, runID int64, status models.SyncStatus, stats *models.SyncStats, errorMessage *string, finishedAt time.Time) error {
	query := `
		UPDATE sync_logs SET
			status = $2, finished_at = $3,
			listings_created = $4, listings_updated = $5, listings_deleted = $6,
			agents_created = $7, agents_updated = $8,
			offices_created = $9, offices_updated = $10,
			photos_processed = $11, open_houses_processed = $12,
			errors_count = $13, error_message = $14
		WHERE id = $1`

	_, err := s.pool.Exec(ctx, query, runID, status, finishedAt,
		stats.ListingsCreated, stats.ListingsUpdated, stats.ListingsDeleted,
		stats.AgentsCreated, stats.AgentsUpdated,
		stats.OfficesCreated, stats.OfficesUpdated,
		stats.PhotosProcessed, stats.OpenHousesProcessed,
		stats.Errors, errorMessage,
	)
	return err
}

func (s *PostgresStore) IsRunning(ctx context.Context, feedID *int64) (bool, error) {
	var query string
	var args []interface{}
	if feedID != nil {
		query = `SELECT EXISTS (SELECT 1 FROM sync_logs WHERE status = $1 AND feed_id = $2)`
		args = []interface{}{models.SyncStatusRunning, *feedID}
	} else {
		query = `SELECT EXISTS (SELECT 1 FROM sync_logs WHERE status = $1)`
		args = []interface{}{models.SyncStatusRunning}
	}

	var running bool
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&running); err != nil {
		return false, err
	}
	return running, nil
}

func (s *PostgresStore) GetRecentRuns(ctx context.Context, limit int) ([]models.SyncLog, error) {
	query := `
		SELECT id, feed_id, status, trigger_type, triggered_by, started_at, finished_at,
			listings_created, listings_updated, listings_deleted,
			agents_created, agents_updated, offices_created, offices_updated,
			photos_processed, open_houses_processed, errors_count, error_message
		FROM sync_logs
		ORDER BY started_at DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.SyncLog
	for rows.Next() {
		var l models.SyncLog
		if err := rows.Scan(
			&l.ID, &l.FeedID, &l.Status, &l.Trigger, &l.TriggeredBy, &l.StartedAt, &l.FinishedAt,
			&l.Stats.ListingsCreated, &l.Stats.ListingsUpdated, &l.Stats.ListingsDeleted,
			&l.Stats.AgentsCreated, &l.Stats.AgentsUpdated, &l.Stats.OfficesCreated, &l.Stats.OfficesUpdated,
			&l.Stats.PhotosProcessed, &l.Stats.OpenHousesProcessed, &l.Stats.Errors, &l.ErrorMessage,
		); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// =============================================================================
// Sync feeds
// =============================================================================

const feedColumns = `id, name, slug, feed_url, feed_type, is_enabled, schedule_enabled,
	schedule_frequency, schedule_time, schedule_day_of_week,
	last_scheduled_run, next_scheduled_run, created_at, updated_at`

func scanFeed(row pgx.Row) (*models.SyncFeed, error) {
	var f models.SyncFeed
	err := row.Scan(
		&f.ID, &f.Name, &f.Slug, &f.FeedURL, &f.FeedType, &f.IsEnabled, &f.ScheduleEnabled,
		&f.ScheduleFrequency, &f.ScheduleTime, &f.ScheduleDayOfWeek,
		&f.LastScheduledRun, &f.NextScheduledRun, &f.CreatedAt, &f.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *PostgresStore) GetFeed(ctx context.Context, feedID int64) (*models.SyncFeed, error) {
	query := `SELECT ` + feedColumns + ` FROM sync_feeds WHERE id = $1`
	return scanFeed(s.pool.QueryRow(ctx, query, feedID))
}

func (s *PostgresStore) ListFeeds(ctx context.Context) ([]models.SyncFeed, error) {
	query := `SELECT ` + feedColumns + ` FROM sync_feeds ORDER BY id`
	return s.queryFeeds(ctx, query)
}

// ListDueFeeds returns enabled feeds with schedules whose next run has
// elapsed. A NULL next run counts as due so new feeds fire on the first
// tick.
func (s *PostgresStore) ListDueFeeds(ctx context.Context, now time.Time) ([]models.SyncFeed, error) {
	query := `
		SELECT ` + feedColumns + `
		FROM sync_feeds
		WHERE is_enabled AND schedule_enabled
			AND (next_scheduled_run IS NULL OR next_scheduled_run <= $1)
		ORDER BY id`
	return s.queryFeeds(ctx, query, now)
}

func (s *PostgresStore) queryFeeds(ctx context.Context, query string, args ...interface{}) ([]models.SyncFeed, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feeds []models.SyncFeed
	for rows.Next() {
		f, err := scanFeed(rows)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, *f)
	}
	return feeds, rows.Err()
}

func (s *PostgresStore) UpdateFeedSchedule(ctx context.Context, feedID int64, lastRun, nextRun time.Time) error {
	query := `
		UPDATE sync_feeds
		SET last_scheduled_run = $2, next_scheduled_run = $3, updated_at = NOW()
		WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, feedID, lastRun, nextRun)
	return err
}

// SeedFeed inserts a feed definition if no feed with its slug exists.
// Administrator edits in the database win over the YAML files.
func (s *PostgresStore) SeedFeed(ctx context.Context, f *models.SyncFeed) error {
	query := `
		INSERT INTO sync_feeds (name, slug, feed_url, feed_type, is_enabled, schedule_enabled,
			schedule_frequency, schedule_time, schedule_day_of_week)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (slug) DO NOTHING`
	_, err := s.pool.Exec(ctx, query,
		f.Name, f.Slug, f.FeedURL, f.FeedType, f.IsEnabled, f.ScheduleEnabled,
		f.ScheduleFrequency, f.ScheduleTime, f.ScheduleDayOfWeek,
	)
	return err
}

// =============================================================================
// Photo mirror worker queries
// =============================================================================

func (s *PostgresStore) GetUnmirroredPhotos(ctx context.Context, limit int) ([]models.Photo, error) {
	query := `
		SELECT id, listing_id, url, caption, sort_order, s3_key, mirror_attempts, created_at
		FROM photos
		WHERE s3_key IS NULL AND mirror_attempts < 3
		ORDER BY created_at
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []models.Photo
	for rows.Next() {
		var p models.Photo
		if err := rows.Scan(&p.ID, &p.ListingID, &p.URL, &p.Caption, &p.SortOrder, &p.S3Key, &p.MirrorAttempts, &p.CreatedAt); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (s *PostgresStore) UpdatePhotoMirror(ctx context.Context, photoID int64, s3Key *string, attempts int) error {
	query := `UPDATE photos SET s3_key = COALESCE($2, s3_key), mirror_attempts = $3 WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, photoID, s3Key, attempts)
	return err
}

// =============================================================================
// Per-record transactions
// =============================================================================

// Begin opens the transaction that scopes one listing reconciliation.
func (s *PostgresStore) Begin(ctx context.Context) (syncer.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &PgTx{tx: tx}, nil
}

// PgTx implements the reconciler's write surface on one pgx.Tx.
type PgTx struct {
	tx pgx.Tx
}

func (t *PgTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *PgTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

func (t *PgTx) GetAgentByEmail(ctx context.Context, email string) (*models.Agent, error) {
	query := `
		SELECT id, first_name, last_name, email, license_number, phone, photo_url, user_id, created_at, updated_at
		FROM agents WHERE email = $1
		LIMIT 1`

	var a models.Agent
	err := t.tx.QueryRow(ctx, query, email).Scan(
		&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.LicenseNumber, &a.Phone, &a.PhotoURL, &a.UserID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (t *PgTx) InsertAgent(ctx context.Context, a *models.Agent) error {
	query := `
		INSERT INTO agents (id, first_name, last_name, email, license_number, phone, photo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := t.tx.Exec(ctx, query,
		a.ID, a.FirstName, a.LastName, a.Email, a.LicenseNumber, a.Phone, a.PhotoURL, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (t *PgTx) GetOfficeByName(ctx context.Context, name string) (*models.Office, error) {
	query := `
		SELECT id, name, brokerage_name, broker_phone, broker_email, address, city, state, zip, created_at, updated_at
		FROM offices WHERE name = $1
		LIMIT 1`

	var o models.Office
	err := t.tx.QueryRow(ctx, query, name).Scan(
		&o.ID, &o.Name, &o.BrokerageName, &o.BrokerPhone, &o.BrokerEmail, &o.Address, &o.City, &o.State, &o.Zip, &o.CreatedAt, &o.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (t *PgTx) InsertOffice(ctx context.Context, o *models.Office) error {
	query := `
		INSERT INTO offices (id, name, brokerage_name, broker_phone, broker_email, address, city, state, zip, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := t.tx.Exec(ctx, query,
		o.ID, o.Name, o.BrokerageName, o.BrokerPhone, o.BrokerEmail, o.Address, o.City, o.State, o.Zip, o.CreatedAt, o.UpdatedAt,
	)
	return err
}

const listingColumns = `id, mls_id, mls_internal_id, mls_board, status, price, listing_url, virtual_tour_url,
	address, unit_number, city, state, zip, lat, lng, property_type, description,
	beds, baths, baths_full, baths_half, living_area, lot_size, year_built,
	is_rental, pets_allowed, agent_id, office_id, synced_at, created_at, updated_at`

func (t *PgTx) GetListingByMLSID(ctx context.Context, mlsID string) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE mls_id = $1`

	var l models.Listing
	err := t.tx.QueryRow(ctx, query, mlsID).Scan(
		&l.ID, &l.MLSID, &l.MLSInternalID, &l.MLSBoard, &l.Status, &l.Price, &l.ListingURL, &l.VirtualTourURL,
		&l.Address, &l.UnitNumber, &l.City, &l.State, &l.Zip, &l.Lat, &l.Lng, &l.PropertyType, &l.Description,
		&l.Beds, &l.Baths, &l.BathsFull, &l.BathsHalf, &l.LivingArea, &l.LotSize, &l.YearBuilt,
		&l.IsRental, &l.PetsAllowed, &l.AgentID, &l.OfficeID, &l.SyncedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (t *PgTx) InsertListing(ctx context.Context, l *models.Listing) error {
	query := `
		INSERT INTO listings (` + listingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31)`
	_, err := t.tx.Exec(ctx, query,
		l.ID, l.MLSID, l.MLSInternalID, l.MLSBoard, l.Status, l.Price, l.ListingURL, l.VirtualTourURL,
		l.Address, l.UnitNumber, l.City, l.State, l.Zip, l.Lat, l.Lng, l.PropertyType, l.Description,
		l.Beds, l.Baths, l.BathsFull, l.BathsHalf, l.LivingArea, l.LotSize, l.YearBuilt,
		l.IsRental, l.PetsAllowed, l.AgentID, l.OfficeID, l.SyncedAt, l.CreatedAt, l.UpdatedAt,
	)
	return err
}

// UpdateListing overwrites every mapped column. This is a full replace:
// values the feed no longer carries become NULL.
func (t *PgTx) UpdateListing(ctx context.Context, l *models.Listing) error {
	query := `
		UPDATE listings SET
			mls_internal_id = $2, mls_board = $3, status = $4, price = $5,
			listing_url = $6, virtual_tour_url = $7, address = $8, unit_number = $9,
			city = $10, state = $11, zip = $12, lat = $13, lng = $14,
			property_type = $15, description = $16, beds = $17, baths = $18,
			baths_full = $19, baths_half = $20, living_area = $21, lot_size = $22,
			year_built = $23, is_rental = $24, pets_allowed = $25,
			agent_id = $26, office_id = $27, synced_at = $28, updated_at = $29
		WHERE id = $1`
	_, err := t.tx.Exec(ctx, query,
		l.ID, l.MLSInternalID, l.MLSBoard, l.Status, l.Price,
		l.ListingURL, l.VirtualTourURL, l.Address, l.UnitNumber,
		l.City, l.State, l.Zip, l.Lat, l.Lng,
		l.PropertyType, l.Description, l.Beds, l.Baths,
		l.BathsFull, l.BathsHalf, l.LivingArea, l.LotSize,
		l.YearBuilt, l.IsRental, l.PetsAllowed,
		l.AgentID, l.OfficeID, l.SyncedAt, l.UpdatedAt,
	)
	return err
}

func (t *PgTx) DeleteListingPhotos(ctx context.Context, listingID uuid.UUID) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM photos WHERE listing_id = $1`, listingID)
	return err
}

func (t *PgTx) InsertPhoto(ctx context.Context, p *models.Photo) error {
	query := `
		INSERT INTO photos (listing_id, url, caption, sort_order, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	return t.tx.QueryRow(ctx, query, p.ListingID, p.URL, p.Caption, p.SortOrder, p.CreatedAt).Scan(&p.ID)
}

func (t *PgTx) DeleteListingOpenHouses(ctx context.Context, listingID uuid.UUID) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM open_houses WHERE listing_id = $1`, listingID)
	return err
}

func (t *PgTx) InsertOpenHouse(ctx context.Context, oh *models.OpenHouse) error {
	query := `
		INSERT INTO open_houses (listing_id, date, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	return t.tx.QueryRow(ctx, query, oh.ListingID, oh.Date, oh.StartTime, oh.EndTime, oh.CreatedAt).Scan(&oh.ID)
}
