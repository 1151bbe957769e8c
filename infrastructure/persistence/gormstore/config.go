package gormstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"expoadmin/config"
	"expoadmin/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 10
	DefaultConnMaxLifetime = 10 * time.Minute
	DefaultConnMaxIdleTime = 5 * time.Minute
)

// Config 连接配置，Driver 为 mysql / postgres / sqlite
type Config struct {
	Driver          string
	Host            string
	Port            string
	Username        string
	Password        string
	Database        string
	SSLMode         string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	LogLevel        string
}

func NewConfig(cfg config.DatabaseConfig) *Config {
	return &Config{
		Driver:          cfg.Type,
		Host:            cfg.Host,
		Port:            cfg.Port,
		Username:        cfg.Username,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		LogLevel:        cfg.LogLevel,
	}
}

func (c *Config) DSN() string {
	switch c.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode)
	case "sqlite":
		return c.Path
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4&collation=utf8mb4_unicode_ci&readTimeout=10s&writeTimeout=10s",
			c.Username, c.Password, c.Host, c.Port, c.Database)
	}
}

func (c *Config) dialector() (gorm.Dialector, error) {
	switch c.Driver {
	case "mysql":
		return mysql.Open(c.DSN()), nil
	case "postgres":
		return postgres.Open(c.DSN()), nil
	case "sqlite":
		if c.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
			}
		}
		return sqlite.Open(c.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
	}
}

func (c *Config) applyDefaults() {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = DefaultMaxOpenConns
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = DefaultMaxIdleConns
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		c.MaxIdleConns = c.MaxOpenConns
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = DefaultConnMaxLifetime
	}
	if c.ConnMaxIdleTime <= 0 {
		c.ConnMaxIdleTime = DefaultConnMaxIdleTime
	}
	// sqlite 单写者
	if c.Driver == "sqlite" {
		c.MaxOpenConns = 1
		c.MaxIdleConns = 1
	}
}

func (c *Config) Connect() (*gorm.DB, error) {
	c.applyDefaults()
	dialector, err := c.dialector()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.NewGormLoggerAdapter(logger.ParseGormLevel(c.LogLevel)),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(c.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(c.ConnMaxIdleTime)

	logger.Info("Database connected",
		zap.String("driver", c.Driver),
		zap.String("host", c.Host),
		zap.String("database", c.Database),
		zap.Int("max_open_conns", c.MaxOpenConns),
		zap.Int("max_idle_conns", c.MaxIdleConns),
		zap.Duration("conn_max_lifetime", c.ConnMaxLifetime),
	)

	return db, nil
}

// Ping 供 readiness 检查使用
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// AutoMigrate 建表，包括 outbox_events
func AutoMigrate(db *gorm.DB, models ...any) error {
	all := append([]any{&outboxEventPO{}}, models...)
	if err := db.AutoMigrate(all...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
