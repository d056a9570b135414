// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // embedded zone database for DASHBOARD_TIMEZONE

	"github.com/joho/godotenv"
)

// Config holds all configuration for our application
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Supabase  SupabaseConfig
	Cache     CacheConfig
	Dashboard DashboardConfig
	Breaker   BreakerConfig
	JWT       JWTConfig
	Security  SecurityConfig
	Report    ReportConfig
	Logging   LoggingConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// SupabaseConfig contains the Supabase REST endpoint and key
type SupabaseConfig struct {
	URL    string
	APIKey string
}

// CacheConfig controls the dashboard result cache
type CacheConfig struct {
	Driver     string // memory, lru or redis
	TTL        time.Duration
	MaxEntries int
	KeyPrefix  string
}

// DashboardConfig controls the aggregation service
type DashboardConfig struct {
	Source             string // postgres, supabase or mock
	UseMockData        bool
	FallbackEnabled    bool
	FailurePolicy      string // degrade or strict
	QueryTimeout       time.Duration
	MaxParallelQueries int
	Timezone           string
	DefaultDays        int
	MaxDays            int
	TopN               int
	RecentLimit        int
	UseViews           bool
}

// BreakerConfig configures the circuit breaker around the data source
type BreakerConfig struct {
	Enabled          bool
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// JWTConfig contains JWT token configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimitPerMinute int
	RateLimitBurst     int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	TrustedProxies     []string
}

// ReportConfig contains the branding used in exported reports
type ReportConfig struct {
	CompanyName string
	Currency    string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Retail Analytics"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
		},
		Server: ServerConfig{
			Port:           getEnv("APP_PORT", "8080"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout: getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "retail_db"),
			User:         getEnv("DB_USER", "retail_user"),
			Password:     getEnv("DB_PASSWORD", "retail_password"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 300*time.Second),
		},
		Redis: RedisConfig{
			Enabled:      getEnvAsBool("REDIS_ENABLED", false),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		Supabase: SupabaseConfig{
			URL:    getEnv("SUPABASE_URL", ""),
			APIKey: getEnv("SUPABASE_ANON_KEY", ""),
		},
		Cache: CacheConfig{
			Driver:     getEnv("CACHE_DRIVER", "memory"),
			TTL:        getEnvAsDuration("CACHE_TTL", 5*time.Minute),
			MaxEntries: getEnvAsInt("CACHE_MAX_ENTRIES", 0),
			KeyPrefix:  getEnv("CACHE_KEY_PREFIX", "retail:"),
		},
		Dashboard: DashboardConfig{
			Source:             getEnv("DASHBOARD_SOURCE", "postgres"),
			UseMockData:        getEnvAsBool("DASHBOARD_USE_MOCK_DATA", false),
			FallbackEnabled:    getEnvAsBool("DASHBOARD_FALLBACK_ENABLED", true),
			FailurePolicy:      getEnv("DASHBOARD_FAILURE_POLICY", "degrade"),
			QueryTimeout:       getEnvAsDuration("DASHBOARD_QUERY_TIMEOUT", 10*time.Second),
			MaxParallelQueries: getEnvAsInt("DASHBOARD_MAX_PARALLEL_QUERIES", 7),
			Timezone:           getEnv("DASHBOARD_TIMEZONE", "Asia/Manila"),
			DefaultDays:        getEnvAsInt("DASHBOARD_DEFAULT_DAYS", 30),
			MaxDays:            getEnvAsInt("DASHBOARD_MAX_DAYS", 365),
			TopN:               getEnvAsInt("DASHBOARD_TOP_N", 10),
			RecentLimit:        getEnvAsInt("DASHBOARD_RECENT_LIMIT", 20),
			UseViews:           getEnvAsBool("DASHBOARD_USE_VIEWS", true),
		},
		Breaker: BreakerConfig{
			Enabled:          getEnvAsBool("BREAKER_ENABLED", true),
			MaxRequests:      uint32(getEnvAsInt("BREAKER_MAX_REQUESTS", 5)),
			Interval:         getEnvAsDuration("BREAKER_INTERVAL", 30*time.Second),
			Timeout:          getEnvAsDuration("BREAKER_TIMEOUT", 60*time.Second),
			FailureThreshold: getEnvAsFloat("BREAKER_FAILURE_THRESHOLD", 0.8),
			MinRequests:      uint32(getEnvAsInt("BREAKER_MIN_REQUESTS", 5)),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "change-this-retail-analytics-secret-key"),
			AccessTokenExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRE", 24*time.Hour),
		},
		Security: SecurityConfig{
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
			RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization"}),
			TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		},
		Report: ReportConfig{
			CompanyName: getEnv("REPORT_COMPANY_NAME", "Retail Analytics"),
			Currency:    getEnv("REPORT_CURRENCY", "₱"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			File:   getEnv("LOG_FILE", ""),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	switch c.Dashboard.Source {
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("DB_USER is required")
		}
	case "supabase", "mock":
		// Missing Supabase credentials are tolerated: the service falls back to mock data.
	default:
		return fmt.Errorf("DASHBOARD_SOURCE must be one of postgres, supabase, mock (got %q)", c.Dashboard.Source)
	}

	switch c.Dashboard.FailurePolicy {
	case "degrade", "strict":
	default:
		return fmt.Errorf("DASHBOARD_FAILURE_POLICY must be degrade or strict (got %q)", c.Dashboard.FailurePolicy)
	}

	switch c.Cache.Driver {
	case "memory", "lru", "none":
	case "redis":
		if !c.Redis.Enabled {
			return fmt.Errorf("CACHE_DRIVER=redis requires REDIS_ENABLED=true")
		}
		// Flush deletes prefix+"*"; an empty prefix would wipe the whole database.
		if c.Cache.KeyPrefix == "" {
			return fmt.Errorf("CACHE_KEY_PREFIX is required when CACHE_DRIVER=redis")
		}
	default:
		return fmt.Errorf("CACHE_DRIVER must be one of memory, lru, redis, none (got %q)", c.Cache.Driver)
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}

	if c.Redis.Enabled && c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}

	if _, err := time.LoadLocation(c.Dashboard.Timezone); err != nil {
		return fmt.Errorf("DASHBOARD_TIMEZONE is invalid: %w", err)
	}

	if c.Dashboard.DefaultDays <= 0 || c.Dashboard.MaxDays < c.Dashboard.DefaultDays {
		return fmt.Errorf("DASHBOARD_DEFAULT_DAYS must be positive and not exceed DASHBOARD_MAX_DAYS")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Location returns the dashboard reporting timezone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Dashboard.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
