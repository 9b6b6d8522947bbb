// Package logging tees the standard logger into a size-capped file so
// the daemon's output is visible both on stdout and to the dashboard's
// log tail.
package logging

import (
	"io"
	"log"
	"os"
	"sync"
)

// One rotated backup is enough history for tailing; anything older
// belongs in the sync_logs table, not the log file.
const defaultMaxSize = 2 * 1024 * 1024

// RotatingWriter appends to a log file and swaps in a fresh one,
// keeping a single .1 backup, once the file outgrows its cap.
type RotatingWriter struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	size    int64
	maxSize int64
}

// Setup routes the standard logger to stdout plus a rotating file at
// logPath. Close the returned writer on shutdown.
func Setup(logPath string) (*RotatingWriter, error) {
	rw, err := newRotatingWriter(logPath, defaultMaxSize)
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rw))
	return rw, nil
}

func newRotatingWriter(path string, maxSize int64) (*RotatingWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	rw := &RotatingWriter{file: f, path: path, size: size, maxSize: maxSize}
	if rw.size > rw.maxSize {
		rw.rotate()
	}
	return rw, nil
}

func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err = w.file.Write(p)
	w.size += int64(n)
	if w.size > w.maxSize {
		w.rotate()
	}
	return n, err
}

func (w *RotatingWriter) rotate() {
	w.file.Close()
	os.Rename(w.path, w.path+".1")

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return
	}
	w.file = f
	w.size = 0
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
