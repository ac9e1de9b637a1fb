// Package logging configures the shared logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// Setup points the standard logrus logger at w with a text formatter.
// Debug lowers the level from Info to Debug.
func Setup(w io.Writer, debug bool) {
	log.SetOutput(w)
	log.SetFormatter(&log.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	if debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// SetupFile is Setup for full-screen mode, where stderr belongs to the
// terminal UI. An empty path discards everything. The returned func
// closes the file.
func SetupFile(path string, debug bool) (func() error, error) {
	if path == "" {
		Setup(io.Discard, debug)
		return func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	Setup(f, debug)
	return f.Close, nil
}
