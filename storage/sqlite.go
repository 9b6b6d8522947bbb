package storage

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"feedsyncd/models"
)

// SQLiteStore holds operational data for local tooling: the command
// queue the scheduler polls for manual triggers and schedule toggles.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY,
		command TEXT,
		params JSON,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		processed_at DATETIME
	);`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) EnqueueCommand(cmd *models.Command) error {
	result, err := s.db.Exec(
		`INSERT INTO commands (command, params) VALUES (?, ?)`,
		cmd.Command, string(cmd.Params),
	)
	if err != nil {
		return err
	}
	cmd.ID, _ = result.LastInsertId()
	return nil
}

func (s *SQLiteStore) GetPendingCommands() ([]models.Command, error) {
	rows, err := s.db.Query(`
		SELECT id, command, COALESCE(params, '{}'), created_at
		FROM commands
		WHERE processed_at IS NULL
		ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cmds []models.Command
	for rows.Next() {
		var cmd models.Command
		var params string
		if err := rows.Scan(&cmd.ID, &cmd.Command, &params, &cmd.CreatedAt); err != nil {
			return nil, err
		}
		cmd.Params = []byte(params)
		cmds = append(cmds, cmd)
	}
	return cmds, rows.Err()
}

func (s *SQLiteStore) MarkCommandProcessed(id int64) error {
	_, err := s.db.Exec(`UPDATE commands SET processed_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}
