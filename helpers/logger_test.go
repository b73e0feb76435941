package helpers

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "batch_errors.log")

	logger := NewLogger(tmpFile)

	logger.LogError("1234567", errors.New("attribute table empty"))

	data, err := os.ReadFile(tmpFile)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "[1234567]")
	assert.Contains(t, string(data), "attribute table empty")

	// Info messages go to the structured log, not the file
	logger.LogInfo("Batch finished: %d ids", 3)
	after, err := os.ReadFile(tmpFile)
	assert.NoError(t, err)
	assert.Equal(t, data, after)
}

func TestLoggerConcurrentWrites(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "batch_errors.log")
	logger := NewLogger(tmpFile)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.LogError("shard", errors.New("session lost"))
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(tmpFile)
	assert.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 20)
}

func TestLoggerUnwritableFile(t *testing.T) {
	logger := NewLogger(filepath.Join(t.TempDir(), "missing", "dir", "errors.log"))
	assert.NotPanics(t, func() {
		logger.LogError("x", errors.New("y"))
	})
}
