package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// DBConfig holds database configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	TimeZone        string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode, c.TimeZone)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	RequestTimeout time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// RedisConfig holds the connection used for distributed locks.
// An empty Address disables Redis and falls back to in-process locks.
type RedisConfig struct {
	Address       string
	Password      string
	DB            int
	UploadLockTTL time.Duration
}

// ERPConfig holds the ERP inventory/sales endpoint settings.
// An empty BaseURL selects the built-in stub.
type ERPConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	Concurrency  int
}

// PDCAConfig selects how material requirement requests are dispatched
type PDCAConfig struct {
	Mode      string // stub, http or pubsub
	BaseURL   string
	ProjectID string
	Topic     string
	QueueSize int
}

// PlannerConfig holds forecast planning rules
type PlannerConfig struct {
	AdminRole           string
	DefaultAutoCloseDay int
	AutoCloseInterval   time.Duration
	VersionNodeID       int64
	TimeZone            string
}

// Config holds all configuration
type Config struct {
	ServiceName string
	DB          DBConfig
	Server      ServerConfig
	JWT         JWTConfig
	Log         LogConfig
	Metrics     MetricsConfig
	Redis       RedisConfig
	ERP         ERPConfig
	PDCA        PDCAConfig
	Planner     PlannerConfig
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	timeZone := getEnv("TIMEZONE", "Asia/Taipei")

	config := &Config{
		ServiceName: serviceName,
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", serviceName),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			TimeZone:        timeZone,
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("APP_ENV", "development"),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),
		},
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", "defaultsecretkey"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", serviceName),
		},
		Redis: RedisConfig{
			Address:       getEnv("REDIS_ADDRESS", ""),
			Password:      getEnv("REDIS_PASSWORD", ""),
			DB:            getEnvAsInt("REDIS_DB", 0),
			UploadLockTTL: getEnvAsDuration("UPLOAD_LOCK_TTL", 30*time.Second),
		},
		ERP: ERPConfig{
			BaseURL:      getEnv("ERP_BASE_URL", ""),
			Timeout:      getEnvAsDuration("ERP_TIMEOUT", 5*time.Second),
			MaxRetries:   getEnvAsInt("ERP_MAX_RETRIES", 2),
			RetryBackoff: getEnvAsDuration("ERP_RETRY_BACKOFF", 200*time.Millisecond),
			Concurrency:  getEnvAsInt("ERP_CONCURRENCY", 8),
		},
		PDCA: PDCAConfig{
			Mode:      getEnv("PDCA_MODE", "stub"),
			BaseURL:   getEnv("PDCA_BASE_URL", ""),
			ProjectID: getEnv("PUBSUB_PROJECT_ID", ""),
			Topic:     getEnv("PDCA_TOPIC", "pdca-material-requirements"),
			QueueSize: getEnvAsInt("PDCA_QUEUE_SIZE", 64),
		},
		Planner: PlannerConfig{
			AdminRole:           getEnv("ADMIN_ROLE", "admin"),
			DefaultAutoCloseDay: getEnvAsInt("DEFAULT_AUTO_CLOSE_DAY", 10),
			AutoCloseInterval:   getEnvAsDuration("AUTO_CLOSE_INTERVAL", 24*time.Hour),
			VersionNodeID:       int64(getEnvAsInt("VERSION_NODE_ID", 1)),
			TimeZone:            timeZone,
		},
	}

	if config.Planner.DefaultAutoCloseDay < 1 || config.Planner.DefaultAutoCloseDay > 31 {
		return nil, fmt.Errorf("DEFAULT_AUTO_CLOSE_DAY must be between 1 and 31, got %d", config.Planner.DefaultAutoCloseDay)
	}
	switch config.PDCA.Mode {
	case "stub", "http", "pubsub":
	default:
		return nil, fmt.Errorf("unknown PDCA_MODE %q", config.PDCA.Mode)
	}

	return config, nil
}

// Location resolves the planner time zone, falling back to local time
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Planner.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("db_host", c.DB.Host),
		zap.String("db_port", c.DB.Port),
		zap.String("db_user", c.DB.User),
		zap.String("db_name", c.DB.DBName),
		zap.String("server_port", c.Server.Port),
		zap.Bool("redis_enabled", c.Redis.Address != ""),
		zap.Bool("erp_stub", c.ERP.BaseURL == ""),
		zap.String("pdca_mode", c.PDCA.Mode),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	valueStr := getEnv(key, "")
	switch valueStr {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
