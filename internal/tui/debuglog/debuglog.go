// ABOUTME: File-backed debug logger for the TUI
// ABOUTME: Keeps slog output off the terminal while the alternate screen is active

package debuglog

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dtv/mbank-cli/internal/logger"
)

var (
	mu      sync.Mutex
	logFile *os.File
)

// Init routes the default slog logger to debug.log inside configDir.
// An empty configDir leaves logging discarded; the TUI must never write
// to the terminal behind bubbletea's back.
func Init(configDir, level string) error {
	mu.Lock()
	defer mu.Unlock()

	if configDir == "" {
		slog.SetDefault(logger.Discard())
		return nil
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		slog.SetDefault(logger.Discard())
		return err
	}

	f, err := os.OpenFile(filepath.Join(configDir, "debug.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		slog.SetDefault(logger.Discard())
		return err
	}

	logFile = f
	slog.SetDefault(logger.New(f, level, "text"))
	return nil
}

// Close closes the log file
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	slog.SetDefault(logger.Discard())
}
