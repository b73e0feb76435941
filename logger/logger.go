package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger represents a structured logger
type Logger struct {
	logger zerolog.Logger
}

var (
	mu sync.Mutex
	// base is the default logger; nil until the first Init or For* call
	base *Logger
)

// Init initializes the logger from LOG_LEVEL and COLLECTOR_ENVIRONMENT.
// Output goes to stderr so command output on stdout stays machine readable.
func Init() {
	InitWithWriter(os.Stderr, getLogLevel())
}

// InitWithWriter initializes the default logger on w at level
func InitWithWriter(w io.Writer, level zerolog.Level) {
	l := newLogger(w, level)

	mu.Lock()
	base = l
	mu.Unlock()

	l.Debug().
		Str("level", level.String()).
		Msg("Logger initialized")
}

func newLogger(w io.Writer, level zerolog.Level) *Logger {
	zerolog.SetGlobalLevel(level)

	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    w != os.Stderr && w != os.Stdout,
	}
	return &Logger{logger: zerolog.New(output).With().Timestamp().Logger()}
}

// current returns the default logger, creating it from the environment on
// first use. Safe for concurrent callers.
func current() *Logger {
	mu.Lock()
	defer mu.Unlock()
	if base == nil {
		base = newLogger(os.Stderr, getLogLevel())
	}
	return base
}

// getLogLevel returns the log level from environment variable
func getLogLevel() zerolog.Level {
	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		if os.Getenv("COLLECTOR_ENVIRONMENT") == "production" {
			return zerolog.InfoLevel
		}
		return zerolog.DebugLevel
	}
	return ParseLevel(levelStr)
}

// ParseLevel maps a level name such as INFO or debug to a zerolog level.
// Unknown names fall back to info.
func ParseLevel(name string) zerolog.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		name = "warn"
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil || name == "" {
		return zerolog.InfoLevel
	}
	return level
}

// WithField creates a new logger with a single field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{logger: l.logger.With().Interface(key, value).Logger()}
}

// Debug returns a debug event
func (l *Logger) Debug() *zerolog.Event {
	return l.logger.Debug()
}

// Info returns an info event
func (l *Logger) Info() *zerolog.Event {
	return l.logger.Info()
}

// Warn returns a warn event
func (l *Logger) Warn() *zerolog.Event {
	return l.logger.Warn()
}

// Error returns an error event
func (l *Logger) Error() *zerolog.Event {
	return l.logger.Error()
}

// ForCollector creates a logger for a source-system collector
func ForCollector(source string) *Logger {
	return current().WithField("collector", source)
}

// ForBrowser creates a logger for the browser driver
func ForBrowser() *Logger {
	return current().WithField("component", "browser")
}

// ForWorker creates a logger for the batch worker
func ForWorker() *Logger {
	return current().WithField("component", "worker")
}

// ForPublisher creates a logger for the publisher
func ForPublisher() *Logger {
	return current().WithField("component", "publisher")
}

// ForCache creates a logger for the cache
func ForCache() *Logger {
	return current().WithField("component", "cache")
}
