package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Init configures the standard logrus logger. Output always goes to stderr
// so that CSV written to stdout stays clean.
func Init(level, format string) error {
	return Configure(log.StandardLogger(), os.Stderr, level, format)
}

// Configure sets output, level and formatter on l. format is "text" or "json".
func Configure(l *log.Logger, w io.Writer, level, format string) error {
	l.SetOutput(w)
	l.SetLevel(ParseLevel(level))
	switch strings.ToLower(format) {
	case "", "text":
		l.SetFormatter(&log.TextFormatter{
			DisableColors:    true,
			FullTimestamp:    true,
			QuoteEmptyFields: true,
		})
	case "json":
		l.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format: %s (valid: text, json)", format)
	}
	return nil
}

// ParseLevel converts "debug", "info", "warn" or "error" to a logrus level.
// Unknown strings default to InfoLevel.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(s) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
