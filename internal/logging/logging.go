// internal/logging/logging.go
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the shared application logger. It is usable before Init is called
// so that early startup paths and tests never hit a nil logger.
var Log = NewLogger("info")

// Init replaces the shared logger with one configured for the given level.
func Init(level string) {
	Log = NewLogger(level)
}

// NewLogger creates a logger with a specific level.
func NewLogger(level string) *logrus.Logger {

	var log = logrus.New()

	// Set the log format.
	// Using JSON format for structured logging.
	log.SetFormatter(&logrus.JSONFormatter{})

	// Set the output.
	// Default is stderr, but can be set to a file.
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.TraceLevel)

	switch strings.ToLower(level) {
	case "trace":
		log.SetLevel(logrus.TraceLevel)
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}

// Silence routes the shared logger to a writer (usually io.Discard).
// Tests use it to keep expected-failure noise out of the output.
func Silence(w io.Writer) {
	Log.SetOutput(w)
}
