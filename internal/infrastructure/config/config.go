package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Telemetry TelemetryConfig
	Matching  MatchingConfig
	Inference InferenceConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Env     string
	Port    string
	Version string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres, sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
}

// TelemetryConfig holds OpenTelemetry and profiling configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // 0.0-1.0
	ServiceName       string
	Insecure          bool
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	DBTraceEnabled    bool
	DBSlowQueryThresh time.Duration
	ProfilingEnabled  bool
	PyroscopeAddress  string
}

// MatchingConfig holds cascade policy
type MatchingConfig struct {
	AutoAcceptThreshold    int
	QuickReviewThreshold   int
	MaxAICandidates        int
	SimilarityThreshold    float64
	EditDistanceBudget     int
	CatalogRefreshInterval time.Duration // 0 disables periodic refresh
	LockTTL                time.Duration
}

// InferenceConfig holds settings for the remote chat-completion model
type InferenceConfig struct {
	Endpoint     string
	APIKey       string
	Model        string
	Timeout      time.Duration // per attempt
	Retries      int           // total attempts
	RetryBackoff time.Duration
	Temperature  float64
	MaxTokens    int
	RateLimit    float64 // requests per second, 0 disables
	RateBurst    int
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with VERVE_ prefix (e.g., VERVE_INFERENCE_API_KEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/verve-noir")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("VERVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// zero is meaningful for these, so they take viper defaults instead of applyDefaults
	setMatchingDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			Port:    v.GetString("app.port"),
			Version: v.GetString("app.version"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			SQLitePath:      v.GetString("database.sqlite_path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			PyroscopeAddress:  v.GetString("telemetry.pyroscope_address"),
		},
		Matching: MatchingConfig{
			AutoAcceptThreshold:    v.GetInt("matching.auto_accept_threshold"),
			QuickReviewThreshold:   v.GetInt("matching.quick_review_threshold"),
			MaxAICandidates:        v.GetInt("matching.max_ai_candidates"),
			SimilarityThreshold:    v.GetFloat64("matching.similarity_threshold"),
			EditDistanceBudget:     v.GetInt("matching.edit_distance_budget"),
			CatalogRefreshInterval: v.GetDuration("matching.catalog_refresh_interval"),
			LockTTL:                v.GetDuration("matching.lock_ttl"),
		},
		Inference: InferenceConfig{
			Endpoint:     v.GetString("inference.endpoint"),
			APIKey:       v.GetString("inference.api_key"),
			Model:        v.GetString("inference.model"),
			Timeout:      v.GetDuration("inference.timeout"),
			Retries:      v.GetInt("inference.retries"),
			RetryBackoff: v.GetDuration("inference.retry_backoff"),
			Temperature:  v.GetFloat64("inference.temperature"),
			MaxTokens:    v.GetInt("inference.max_tokens"),
			RateLimit:    v.GetFloat64("inference.rate_limit"),
			RateBurst:    v.GetInt("inference.rate_burst"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setMatchingDefaults(v *viper.Viper) {
	v.SetDefault("matching.auto_accept_threshold", 85)
	v.SetDefault("matching.quick_review_threshold", 60)
	v.SetDefault("matching.max_ai_candidates", 10)
	v.SetDefault("matching.similarity_threshold", 0.3)
	v.SetDefault("matching.edit_distance_budget", 2)
	v.SetDefault("matching.catalog_refresh_interval", 5*time.Minute)
	v.SetDefault("inference.temperature", 0.1)
	v.SetDefault("inference.rate_limit", 5.0)
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "verve-noir"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "dev"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "verve_noir"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "verve_noir.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// a batch of AI calls can take several inference timeouts
		cfg.HTTP.WriteTimeout = 5 * time.Minute
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "verve-noir"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Telemetry.PyroscopeAddress == "" {
		cfg.Telemetry.PyroscopeAddress = "http://localhost:4040"
	}
	if cfg.Matching.LockTTL == 0 {
		cfg.Matching.LockTTL = 2 * time.Minute
	}
	if cfg.Inference.Endpoint == "" {
		cfg.Inference.Endpoint = "https://api.fireworks.ai/inference/v1/chat/completions"
	}
	if cfg.Inference.Model == "" {
		cfg.Inference.Model = "accounts/fireworks/models/kimi-k2-5"
	}
	if cfg.Inference.Timeout == 0 {
		cfg.Inference.Timeout = 30 * time.Second
	}
	if cfg.Inference.Retries == 0 {
		cfg.Inference.Retries = 2
	}
	if cfg.Inference.RetryBackoff == 0 {
		cfg.Inference.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.Inference.MaxTokens == 0 {
		cfg.Inference.MaxTokens = 500
	}
	if cfg.Inference.RateBurst == 0 {
		cfg.Inference.RateBurst = 5
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	m := c.Matching
	if m.AutoAcceptThreshold < 0 || m.AutoAcceptThreshold > 100 {
		return fmt.Errorf("matching.auto_accept_threshold must be between 0 and 100, got %d", m.AutoAcceptThreshold)
	}
	if m.QuickReviewThreshold < 0 || m.QuickReviewThreshold > 100 {
		return fmt.Errorf("matching.quick_review_threshold must be between 0 and 100, got %d", m.QuickReviewThreshold)
	}
	if m.QuickReviewThreshold > m.AutoAcceptThreshold {
		return fmt.Errorf("matching.quick_review_threshold (%d) cannot exceed matching.auto_accept_threshold (%d)",
			m.QuickReviewThreshold, m.AutoAcceptThreshold)
	}
	if m.MaxAICandidates < 1 {
		return fmt.Errorf("matching.max_ai_candidates must be at least 1")
	}
	if m.SimilarityThreshold <= 0 || m.SimilarityThreshold > 1 {
		return fmt.Errorf("matching.similarity_threshold must be in (0, 1], got %f", m.SimilarityThreshold)
	}
	if m.EditDistanceBudget < 0 {
		return fmt.Errorf("matching.edit_distance_budget cannot be negative")
	}
	if m.CatalogRefreshInterval < 0 {
		return fmt.Errorf("matching.catalog_refresh_interval cannot be negative")
	}

	in := c.Inference
	if in.Retries < 1 {
		return fmt.Errorf("inference.retries must be at least 1")
	}
	if in.Timeout <= 0 {
		return fmt.Errorf("inference.timeout must be positive")
	}
	if in.MaxTokens <= 0 {
		return fmt.Errorf("inference.max_tokens must be positive")
	}
	if in.RateLimit < 0 {
		return fmt.Errorf("inference.rate_limit cannot be negative")
	}
	if _, err := url.ParseRequestURI(in.Endpoint); err != nil {
		return fmt.Errorf("inference.endpoint is not a valid URL: %w", err)
	}

	if c.App.Env == "production" {
		if in.APIKey == "" {
			return fmt.Errorf("inference.api_key is required in production")
		}
		if c.Database.Driver == "postgres" && c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis host:port
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
