// Package logging points the standard logger at stdout and a rotated file.
package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSizeMB  = 10
	maxBackups = 5
	maxAgeDays = 30
)

// Setup tags every line with runID and, when path is set, tees output into a
// size-rotated file. The returned closer flushes that file.
func Setup(path, runID string) io.Closer {
	log.SetFlags(log.LstdFlags)
	log.SetPrefix(prefix(runID))

	if path == "" {
		log.SetOutput(os.Stdout)
		return io.NopCloser(nil)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.SetOutput(os.Stdout)
		log.Printf("⚠️ Could not create log directory: %v. Logging to stdout only.", err)
		return io.NopCloser(nil)
	}

	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, file))
	return file
}

// prefix keeps the first block of a UUID so lines stay short.
func prefix(runID string) string {
	if runID == "" {
		return ""
	}
	if len(runID) > 8 {
		runID = runID[:8]
	}
	return "[" + runID + "] "
}
