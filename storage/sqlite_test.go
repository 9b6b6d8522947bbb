package storage

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"feedsyncd/models"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "ops.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCommandQueueRoundTrip(t *testing.T) {
	store := newTestSQLite(t)

	feedID := int64(3)
	params, _ := json.Marshal(models.CommandParams{FeedID: &feedID, TriggeredBy: "cli"})
	cmd := &models.Command{Command: models.CmdRunSync, Params: params}

	if err := store.EnqueueCommand(cmd); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if cmd.ID == 0 {
		t.Error("enqueue should set the command id")
	}

	pending, err := store.GetPendingCommands()
	if err != nil {
		t.Fatalf("get pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending command, got %d", len(pending))
	}
	if pending[0].Command != models.CmdRunSync {
		t.Errorf("unexpected command %q", pending[0].Command)
	}

	var got models.CommandParams
	if err := json.Unmarshal(pending[0].Params, &got); err != nil {
		t.Fatalf("decode params: %v", err)
	}
	if got.FeedID == nil || *got.FeedID != 3 {
		t.Errorf("unexpected feed id: %v", got.FeedID)
	}

	if err := store.MarkCommandProcessed(pending[0].ID); err != nil {
		t.Fatalf("mark processed: %v", err)
	}
	pending, err = store.GetPendingCommands()
	if err != nil {
		t.Fatalf("get pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected no pending commands, got %d", len(pending))
	}
}

func TestPendingCommandsOrder(t *testing.T) {
	store := newTestSQLite(t)

	for _, name := range []models.CommandType{models.CmdPauseSchedule, models.CmdResumeSchedule} {
		if err := store.EnqueueCommand(&models.Command{Command: name}); err != nil {
			t.Fatalf("enqueue %s: %v", name, err)
		}
	}

	pending, err := store.GetPendingCommands()
	if err != nil {
		t.Fatalf("get pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(pending))
	}
	if pending[0].Command != models.CmdPauseSchedule || pending[1].Command != models.CmdResumeSchedule {
		t.Errorf("commands out of order: %v, %v", pending[0].Command, pending[1].Command)
	}
}
