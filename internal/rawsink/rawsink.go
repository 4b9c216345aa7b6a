// Package rawsink persists raw WebSocket text frames to a rotating file,
// one JSON line per frame, independent of whether the frame parses.
package rawsink

import (
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Sink appends raw frames to a file, one per line. It is safe for
// concurrent use, though the pipeline only ever calls it from the
// connection's own goroutine.
type Sink struct {
	mu  sync.Mutex
	out *lumberjack.Logger
}

// Config controls the rotation policy of the underlying file.
type Config struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultConfig returns a conservative rotation policy: 100MB per file, 7
// backups, 28 days retention, gzip compressed.
func DefaultConfig(path string) Config {
	return Config{Path: path, MaxSizeMB: 100, MaxBackups: 7, MaxAgeDays: 28, Compress: true}
}

// New constructs a Sink writing to cfg.Path. The file (and any parent
// directories) is created lazily on first write by lumberjack.
func New(cfg Config) *Sink {
	return &Sink{
		out: &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		},
	}
}

// Write appends message followed by a newline. A write failure is
// non-fatal to the caller; it returns the error for the caller to log but
// never panics or blocks the connection.
func (s *Sink) Write(message []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.out.Write(message); err != nil {
		return err
	}
	_, err := s.out.Write([]byte("\n"))
	return err
}

// Close flushes and closes the underlying file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Close()
}
