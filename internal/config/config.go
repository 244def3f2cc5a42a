package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the settings read from the environment.
type Config struct {
	// DbDriver is sqlite or postgres.
	DbDriver string
	// DbDSN is a file path for sqlite and a connection string for postgres.
	DbDSN string

	// RedisURL enables the gap analysis cache when set.
	RedisURL         string
	CacheTTL         time.Duration
	CacheCompression string

	PageSize int
	// GapWarmSchedule is the cron spec of the gap analysis warmer, empty disables it.
	GapWarmSchedule string

	LogLevel logrus.Level
}

// LoadConfig reads a .env file when there is one, then the environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	ttl, err := time.ParseDuration(getEnv("CACHE_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	cfg := &Config{
		DbDriver:         strings.ToLower(getEnv("DB_DRIVER", DriverSqlite)),
		DbDSN:            getEnv("DB_DSN", "opencre.db"),
		RedisURL:         getEnv("REDIS_URL", ""),
		CacheTTL:         ttl,
		CacheCompression: getEnv("CACHE_COMPRESSION", "gzip"),
		PageSize:         getEnvInt("PAGE_SIZE", 20),
		GapWarmSchedule:  getEnv("GAP_WARM_SCHEDULE", ""),
		LogLevel:         level,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that the required values are set and known.
func (c *Config) Validate() error {
	if c.DbDriver != DriverSqlite && c.DbDriver != DriverPostgres {
		return fmt.Errorf("DB_DRIVER must be %s or %s, got %q", DriverSqlite, DriverPostgres, c.DbDriver)
	}
	if c.DbDSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	return nil
}

// OpenDb opens the configured database.
func OpenDb(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DbDriver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DbDSN)
	default:
		dialector = sqlite.Open(cfg.DbDSN)
	}

	gormLogger := logger.Default.LogMode(logger.Silent)
	if cfg.LogLevel >= logrus.DebugLevel {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.DbDriver, err)
	}

	return db, nil
}

// GetDb opens the configured database and exits when it cannot.
func GetDb(cfg *Config) *gorm.DB {
	db, err := OpenDb(cfg)
	if err != nil {
		logrus.Fatalf("error opening database: %v", err)
	}
	return db
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
		logrus.Warnf("ignoring invalid %s=%q", key, value)
	}
	return defaultValue
}
