package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config Application Configuration
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Revalidation RevalidationConfig `mapstructure:"revalidation"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Worker       WorkerConfig       `mapstructure:"worker"`
	Log          LogConfig          `mapstructure:"log"`
	CORS         CORSConfig         `mapstructure:"cors"`
}

// AppConfig Application Configuration
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"` // development, staging, production
}

// ServerConfig Server Configuration
type ServerConfig struct {
	Port            string          `mapstructure:"port"`
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
	// PublicRateLimit applies to the unauthenticated form submission endpoint.
	PublicRateLimit RateLimitConfig `mapstructure:"public_rate_limit"`
}

// RateLimitConfig Rate Limiting Configuration
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Rate    float64 `mapstructure:"rate"`  // Requests per second
	Burst   int     `mapstructure:"burst"` // Burst capacity
}

// DatabaseConfig Database Configuration
type DatabaseConfig struct {
	Type            string        `mapstructure:"type"` // memory, sqlite, mysql, postgres
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	Path            string        `mapstructure:"path"` // sqlite file
	LogLevel        string        `mapstructure:"log_level"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	Retry           RetryConfig   `mapstructure:"retry"`
}

// RetryConfig Retry configuration for transient transaction failures
type RetryConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	MaxAttempts        int           `mapstructure:"max_attempts"`
	InitialDelay       time.Duration `mapstructure:"initial_delay"`
	MaxDelay           time.Duration `mapstructure:"max_delay"`
	BackoffFactor      float64       `mapstructure:"backoff_factor"`
	JitterEnabled      bool          `mapstructure:"jitter_enabled"`
	RetryOnDeadlock    bool          `mapstructure:"retry_on_deadlock"`
	RetryOnLockTimeout bool          `mapstructure:"retry_on_lock_timeout"`
}

// StorageConfig Object storage configuration
type StorageConfig struct {
	Driver         string `mapstructure:"driver"` // memory, local, s3
	Bucket         string `mapstructure:"bucket"`
	Region         string `mapstructure:"region"`
	Endpoint       string `mapstructure:"endpoint"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	BasePath       string `mapstructure:"base_path"`
	PublicBaseURL  string `mapstructure:"public_base_url"`
	LocalDir       string `mapstructure:"local_dir"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
	DefaultFolder  string `mapstructure:"default_folder"`
}

// RevalidationConfig Cache revalidation side channel
type RevalidationConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	Secret  string        `mapstructure:"secret"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AuthConfig Admin authentication
type AuthConfig struct {
	JWTSecret         string        `mapstructure:"jwt_secret"`
	TokenTTL          time.Duration `mapstructure:"token_ttl"`
	AdminUsername     string        `mapstructure:"admin_username"`
	AdminPasswordHash string        `mapstructure:"admin_password_hash"` // bcrypt
}

// WorkerConfig Outbox worker configuration
type WorkerConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Schedule   string `mapstructure:"schedule"` // cron spec, e.g. "@every 30s"
	BatchSize  int    `mapstructure:"batch_size"`
	MaxRetries int    `mapstructure:"max_retries"`
}

// LogConfig Log Configuration
type LogConfig struct {
	Level    string `mapstructure:"level"`  // debug, info, warn, error
	Format   string `mapstructure:"format"` // json, console
	Output   string `mapstructure:"output"` // stdout, file
	FilePath string `mapstructure:"file_path"`
}

// CORSConfig CORS Configuration
type CORSConfig struct {
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// IsDevelopment Whether it's development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction Whether it's production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Load Load Configuration
func Load(configPath string) (*Config, error) {
	v := newViper(configPath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// defaults only
	}

	return decode(v)
}

// Watch 监听配置文件，变更后重新解析并回调 onChange
func Watch(configPath string, onChange func(*Config, error)) error {
	if configPath == "" {
		return fmt.Errorf("config path is required for watching")
	}
	v := newViper(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	v.OnConfigChange(func(fsnotify.Event) {
		onChange(decode(v))
	})
	v.WatchConfig()
	return nil
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("EXPO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}

// setDefaults Set default configuration
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "expoadmin")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.env", "development")

	// Server
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.rate", 100)
	v.SetDefault("server.rate_limit.burst", 200)
	v.SetDefault("server.public_rate_limit.enabled", true)
	v.SetDefault("server.public_rate_limit.rate", 0.2)
	v.SetDefault("server.public_rate_limit.burst", 5)

	// Database
	v.SetDefault("database.type", "memory")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "expoadmin")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.path", "data/expoadmin.db")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("database.retry.enabled", true)
	v.SetDefault("database.retry.max_attempts", 3)
	v.SetDefault("database.retry.initial_delay", "100ms")
	v.SetDefault("database.retry.max_delay", "2s")
	v.SetDefault("database.retry.backoff_factor", 2.0)
	v.SetDefault("database.retry.jitter_enabled", true)
	v.SetDefault("database.retry.retry_on_deadlock", true)
	v.SetDefault("database.retry.retry_on_lock_timeout", true)

	// Storage
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.local_dir", "data/uploads")
	v.SetDefault("storage.public_base_url", "http://localhost:8080/uploads")
	v.SetDefault("storage.max_upload_bytes", 10<<20)
	v.SetDefault("storage.default_folder", "images")

	// Revalidation
	v.SetDefault("revalidation.enabled", false)
	v.SetDefault("revalidation.timeout", "5s")

	// Auth
	v.SetDefault("auth.token_ttl", "12h")
	v.SetDefault("auth.admin_username", "admin")

	// Worker
	v.SetDefault("worker.enabled", true)
	v.SetDefault("worker.schedule", "@every 30s")
	v.SetDefault("worker.batch_size", 50)
	v.SetDefault("worker.max_retries", 5)

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file_path", "logs/app.log")

	// CORS
	v.SetDefault("cors.allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("cors.allow_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allow_headers", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 86400)
}
