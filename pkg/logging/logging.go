// Package logging builds slog loggers shared by all subsystems. Log output
// goes to a file under the datadir and is mirrored to stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/decred/slog"
)

// LogConfig describes where and how verbosely to log.
type LogConfig struct {
	// LogFile is the path of the log file. Empty disables file logging.
	LogFile string

	// DebugLevel is the level name applied to every logger ("trace",
	// "debug", "info", "warn", "error", "critical"). Defaults to info.
	DebugLevel string
}

// LogBackend hands out per-subsystem loggers backed by a shared writer.
type LogBackend struct {
	mtx     sync.Mutex
	backend *slog.Backend
	level   slog.Level
	file    *os.File
	loggers map[string]slog.Logger
}

// NewLogBackend creates a log backend per cfg.
func NewLogBackend(cfg LogConfig) (*LogBackend, error) {
	level := slog.LevelInfo
	if cfg.DebugLevel != "" {
		l, ok := slog.LevelFromString(cfg.DebugLevel)
		if !ok {
			return nil, fmt.Errorf("unknown debug level %q", cfg.DebugLevel)
		}
		level = l
	}

	var w io.Writer = os.Stderr
	var f *os.File
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o700); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		var err error
		f, err = os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
	}

	return &LogBackend{
		backend: slog.NewBackend(w),
		level:   level,
		file:    f,
		loggers: make(map[string]slog.Logger),
	}, nil
}

// Logger returns the logger for the given subsystem tag, creating it on
// first use.
func (lb *LogBackend) Logger(subsystem string) slog.Logger {
	lb.mtx.Lock()
	defer lb.mtx.Unlock()

	if l, ok := lb.loggers[subsystem]; ok {
		return l
	}
	l := lb.backend.Logger(subsystem)
	l.SetLevel(lb.level)
	lb.loggers[subsystem] = l
	return l
}

// Close closes the log file, if any.
func (lb *LogBackend) Close() error {
	lb.mtx.Lock()
	defer lb.mtx.Unlock()
	if lb.file != nil {
		err := lb.file.Close()
		lb.file = nil
		return err
	}
	return nil
}
