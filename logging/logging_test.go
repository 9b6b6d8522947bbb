package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRotatingWriterKeepsOneBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.log")

	w, err := newRotatingWriter(path, 64)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	defer w.Close()

	line := strings.Repeat("x", 20) + "\n"
	for i := 0; i < 5; i++ {
		if _, err := w.Write([]byte(line)); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	backup, err := os.ReadFile(path + ".1")
	if err != nil {
		t.Fatalf("expected a backup after exceeding the cap: %v", err)
	}
	if len(backup) == 0 {
		t.Error("backup should carry the rotated lines")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat active log: %v", err)
	}
	if info.Size() > 64 {
		t.Errorf("active log is %d bytes, rotation should have reset it", info.Size())
	}
}

func TestRotatingWriterRotatesOversizeFileOnOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.log")
	if err := os.WriteFile(path, []byte(strings.Repeat("y", 100)), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := newRotatingWriter(path, 64)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	defer w.Close()

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Errorf("oversize file should rotate to a backup on open: %v", err)
	}
}
