package helpers

import (
	"fmt"
	"os"
	"sync"
	"time"

	"netmigration/widcollector/logger"
)

// LoggerInterface defines the interface for logger implementations
type LoggerInterface interface {
	LogError(name string, err error)
	LogInfo(format string, args ...interface{})
}

// Logger appends failures to a ledger file and sends info to the structured log
type Logger struct {
	mu        sync.Mutex
	errorFile string
}

// NewLogger creates a new logger instance
func NewLogger(errorFile string) *Logger {
	return &Logger{
		errorFile: errorFile,
	}
}

// LogError appends one line with timestamp, name and error to the ledger
func (l *Logger) LogError(name string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, fileErr := os.OpenFile(l.errorFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if fileErr != nil {
		logger.ForWorker().Error().Err(fileErr).Str("file", l.errorFile).Msg("Failed to open error ledger")
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(f, "[%s] [%s] %s\n", timestamp, name, err.Error())
}

// LogInfo logs an informational message
func (l *Logger) LogInfo(format string, args ...interface{}) {
	logger.ForWorker().Info().Msgf(format, args...)
}
