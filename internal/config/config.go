package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vytor/wordflash/internal/logger"
)

type Config struct {
	Addr            string
	DBPath          string
	LogLevel        string
	RequestTimeout  time.Duration
	JobWorkerCount  int
	JobBatchSize    int
	JobPollInterval time.Duration
	// JobStaleAfter enables reclaiming running jobs older than this; 0 disables it.
	JobStaleAfter   time.Duration
	NotifyEvery     time.Duration
	ImportSourceDir string
	ImportMapPath   string
	AdminToken      string
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying defaults when values are missing or invalid.
func Load() Config {
	// .env is optional outside development.
	_ = godotenv.Load()

	return Config{
		Addr:            envOr("ADDR", ":8080"),
		DBPath:          envOr("DB_PATH", "file:wordflash.db"),
		LogLevel:        envOr("LOG_LEVEL", "INFO"),
		RequestTimeout:  envDurationOr("REQUEST_TIMEOUT", 30*time.Second),
		JobWorkerCount:  envIntOr("JOB_WORKER_COUNT", 2),
		JobBatchSize:    envIntOr("JOB_BATCH_SIZE", 10),
		JobPollInterval: envDurationOr("JOB_POLL_INTERVAL", 2*time.Second),
		JobStaleAfter:   envDurationOr("JOB_STALE_AFTER", 0),
		NotifyEvery:     envDurationOr("NOTIFY_EVERY", 15*time.Minute),
		ImportSourceDir: envOr("IMPORT_SOURCE_DIR", "data/import"),
		ImportMapPath:   envOr("IMPORT_MAP_PATH", "data/import/map.json"),
		AdminToken:      os.Getenv("ADMIN_TOKEN"),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	if _, ok := logger.LookupLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT cannot be negative (got %s)", c.RequestTimeout))
	}
	if c.JobWorkerCount <= 0 {
		errs = append(errs, fmt.Errorf("JOB_WORKER_COUNT must be positive (got %d)", c.JobWorkerCount))
	}
	if c.JobBatchSize <= 0 {
		errs = append(errs, fmt.Errorf("JOB_BATCH_SIZE must be positive (got %d)", c.JobBatchSize))
	}
	if c.JobPollInterval <= 0 {
		errs = append(errs, fmt.Errorf("JOB_POLL_INTERVAL must be positive (got %s)", c.JobPollInterval))
	}
	if c.JobStaleAfter < 0 {
		errs = append(errs, fmt.Errorf("JOB_STALE_AFTER cannot be negative (got %s)", c.JobStaleAfter))
	}
	if c.NotifyEvery < 0 {
		errs = append(errs, fmt.Errorf("NOTIFY_EVERY cannot be negative (got %s)", c.NotifyEvery))
	}
	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

// envDurationOr accepts Go durations ("90s", "5m") or a bare number of seconds.
func envDurationOr(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	return def
}
