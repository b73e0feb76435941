package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"netmigration/widcollector/pkg/errors"
)

// Source system names understood by Config.Source
const (
	SourceWID     = "WID"
	SourceJarvis  = "JARVIS"
	SourceSAP     = "SAP"
	SourceFlowOne = "FLOWONE"
)

// SourceSettings is the read-only view a collector receives at construction
type SourceSettings struct {
	BaseURL  string
	Username string
	Password string
	Headless bool
}

// Config represents the application configuration
type Config struct {
	// Source systems
	WIDBaseURL      string
	WIDUsername     string
	WIDPassword     string
	JarvisBaseURL   string
	JarvisAPIKey    string
	SAPBaseURL      string
	SAPUsername     string
	SAPPassword     string
	FlowOneBaseURL  string
	FlowOneUsername string
	FlowOnePassword string

	// Browser configuration
	HeadlessBrowser   bool
	BrowserExecutable string
	BrowserTimeout    time.Duration
	SaveSnapshots     bool
	DataDir           string

	// Retry configuration
	RetryAttempts int
	RetryInitial  time.Duration
	RetryMax      time.Duration

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Memcache configuration
	MemcacheAddr   string
	RecordCacheTTL time.Duration

	// Batch configuration
	BatchSessions int
	BatchErrorLog string

	LogLevel    string
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	return &Config{
		WIDBaseURL:      getEnv("WID_BASE_URL", "https://wid.claro.com.ar"),
		WIDUsername:     getEnv("WID_USERNAME", ""),
		WIDPassword:     getEnv("WID_PASSWORD", ""),
		JarvisBaseURL:   getEnv("JARVIS_BASE_URL", ""),
		JarvisAPIKey:    getEnv("JARVIS_API_KEY", ""),
		SAPBaseURL:      getEnv("SAP_BASE_URL", ""),
		SAPUsername:     getEnv("SAP_USERNAME", ""),
		SAPPassword:     getEnv("SAP_PASSWORD", ""),
		FlowOneBaseURL:  getEnv("FLOWONE_BASE_URL", ""),
		FlowOneUsername: getEnv("FLOWONE_USERNAME", ""),
		FlowOnePassword: getEnv("FLOWONE_PASSWORD", ""),

		HeadlessBrowser:   getEnvBool("HEADLESS_BROWSER", true),
		BrowserExecutable: getEnv("BROWSER_EXECUTABLE", ""),
		BrowserTimeout:    getEnvSeconds("BROWSER_TIMEOUT_SECONDS", 20),
		SaveSnapshots:     getEnvBool("WID_SAVE_SNAPSHOTS", false),
		DataDir:           getEnv("DATA_DIR", "data"),

		RetryAttempts: getEnvInt("RETRY_ATTEMPTS", 3),
		RetryInitial:  getEnvSeconds("RETRY_INITIAL_SECONDS", 2),
		RetryMax:      getEnvSeconds("RETRY_MAX_SECONDS", 10),

		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "services"),
		RedisStreamCount:     getEnvInt("REDIS_STREAM_COUNT", 1),
		RedisStreamMaxLength: getEnvInt("REDIS_STREAM_MAX_LENGTH", 1000),

		MemcacheAddr:   getEnv("MEMCACHE_ADDR", ""),
		RecordCacheTTL: getEnvSeconds("RECORD_CACHE_TTL_SECONDS", 3600),

		BatchSessions: getEnvInt("BATCH_SESSIONS", 2),
		BatchErrorLog: getEnv("BATCH_ERROR_LOG", "batch_errors.log"),

		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
		Environment: getEnv("COLLECTOR_ENVIRONMENT", "development"),
	}
}

// Source returns the settings consumed by the collector of a source system.
// Unknown names yield zero settings that still carry the headless flag.
func (c *Config) Source(name string) SourceSettings {
	s := SourceSettings{Headless: c.HeadlessBrowser}
	switch strings.ToUpper(name) {
	case SourceWID:
		s.BaseURL, s.Username, s.Password = c.WIDBaseURL, c.WIDUsername, c.WIDPassword
	case SourceJarvis:
		s.BaseURL, s.Password = c.JarvisBaseURL, c.JarvisAPIKey
	case SourceSAP:
		s.BaseURL, s.Username, s.Password = c.SAPBaseURL, c.SAPUsername, c.SAPPassword
	case SourceFlowOne:
		s.BaseURL, s.Username, s.Password = c.FlowOneBaseURL, c.FlowOneUsername, c.FlowOnePassword
	}
	return s
}

// Validate rejects structurally invalid settings. Credentials are never
// checked here; a bad login surfaces as a connection failure.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.WIDBaseURL) == "" {
		return errors.NewConfiguration("WID_BASE_URL must not be empty", nil)
	}
	if c.RetryAttempts < 1 {
		return errors.NewConfiguration("RETRY_ATTEMPTS must be at least 1", nil)
	}
	if c.RetryInitial <= 0 || c.RetryMax < c.RetryInitial {
		return errors.NewConfiguration("retry intervals must be positive with RETRY_MAX_SECONDS >= RETRY_INITIAL_SECONDS", nil)
	}
	if c.BrowserTimeout <= 0 {
		return errors.NewConfiguration("BROWSER_TIMEOUT_SECONDS must be positive", nil)
	}
	if c.BatchSessions < 1 {
		return errors.NewConfiguration("BATCH_SESSIONS must be at least 1", nil)
	}
	if c.RecordCacheTTL < 0 {
		return errors.NewConfiguration("RECORD_CACHE_TTL_SECONDS must not be negative", nil)
	}
	if c.RedisStreamCount < 1 {
		return errors.NewConfiguration("REDIS_STREAM_COUNT must be at least 1", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(strings.TrimSpace(getEnv(key, "")))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvSeconds(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvInt(key, defaultValue)) * time.Second
}

// getEnvBool accepts true/false, 1/0 and yes/no
func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(getEnv(key, ""))) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}
