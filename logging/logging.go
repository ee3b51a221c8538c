package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

const (
	DefaultMaxBytes = 2 * 1024 * 1024 // 2MB
	DefaultBackups  = 3
)

var debug atomic.Bool

// SetLevel enables Debugf output for "debug". Anything else is info.
func SetLevel(level string) {
	debug.Store(strings.EqualFold(strings.TrimSpace(level), "debug"))
}

// Debugf logs only when the level is debug.
func Debugf(format string, args ...any) {
	if debug.Load() {
		log.Output(2, "Debug: "+fmt.Sprintf(format, args...))
	}
}

// RotatingWriter is a size-capped log file. When it passes maxSize the
// file moves to path.1, older copies shift up to path.N, and the oldest
// is dropped.
type RotatingWriter struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	size    int64
	maxSize int64
	backups int
}

// Setup tees the standard logger to stdout and a rotating file at path.
func Setup(path string, maxBytes int64, backups int) (*RotatingWriter, error) {
	rw, err := NewRotatingWriter(path, maxBytes, backups)
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rw))
	return rw, nil
}

func NewRotatingWriter(path string, maxBytes int64, backups int) (*RotatingWriter, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if backups < 1 {
		backups = 1
	}

	// Truncate if too large on startup
	if info, err := os.Stat(path); err == nil && info.Size() > maxBytes {
		os.Truncate(path, 0)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	return &RotatingWriter{
		file:    f,
		path:    path,
		size:    size,
		maxSize: maxBytes,
		backups: backups,
	}, nil
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

	os.Remove(w.backupPath(w.backups))
	for i := w.backups - 1; i >= 1; i-- {
		os.Rename(w.backupPath(i), w.backupPath(i+1))
	}
	os.Rename(w.path, w.backupPath(1))

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return
	}

	w.file = f
	w.size = 0
}

func (w *RotatingWriter) backupPath(n int) string {
	return fmt.Sprintf("%s.%d", w.path, n)
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
