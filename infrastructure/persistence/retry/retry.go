package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"time"

	"expoadmin/config"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Config struct {
	Enabled            bool
	MaxAttempts        int
	InitialDelay       time.Duration
	MaxDelay           time.Duration
	BackoffFactor      float64
	JitterEnabled      bool
	RetryOnDeadlock    bool
	RetryOnLockTimeout bool
	RetryPredicate     func(error) bool
}

var DefaultConfig = Config{
	Enabled:            true,
	MaxAttempts:        3,
	InitialDelay:       100 * time.Millisecond,
	MaxDelay:           2 * time.Second,
	BackoffFactor:      2.0,
	JitterEnabled:      true,
	RetryOnDeadlock:    true,
	RetryOnLockTimeout: true,
}

func FromAppConfig(cfg config.RetryConfig) Config {
	return Config{
		Enabled:            cfg.Enabled,
		MaxAttempts:        cfg.MaxAttempts,
		InitialDelay:       cfg.InitialDelay,
		MaxDelay:           cfg.MaxDelay,
		BackoffFactor:      cfg.BackoffFactor,
		JitterEnabled:      cfg.JitterEnabled,
		RetryOnDeadlock:    cfg.RetryOnDeadlock,
		RetryOnLockTimeout: cfg.RetryOnLockTimeout,
	}
}

func ExponentialBackoffWithJitter(attempt int, config Config) time.Duration {
	if attempt <= 0 {
		return 0
	}
	delay := float64(config.InitialDelay) * math.Pow(config.BackoffFactor, float64(attempt-1))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	if config.JitterEnabled {
		jitterFactor := 0.8 + rand.Float64()*0.4
		delay = delay * jitterFactor
	}
	if delay < 0 {
		delay = 0
	}

	return time.Duration(delay)
}

// IsRetryableError 识别 MySQL / Postgres / SQLite 的死锁与锁等待超时
func IsRetryableError(err error, config Config) bool {
	if err == nil {
		return false
	}
	if config.RetryPredicate != nil && config.RetryPredicate(err) {
		return true
	}

	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1213:
			return config.RetryOnDeadlock
		case 1205:
			return config.RetryOnLockTimeout
		}
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40P01", "40001": // deadlock_detected, serialization_failure
			return config.RetryOnDeadlock
		case "55P03": // lock_not_available
			return config.RetryOnLockTimeout
		}
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "deadlock") {
		return config.RetryOnDeadlock
	}
	if strings.Contains(errStr, "lock wait timeout") || strings.Contains(errStr, "database is locked") {
		return config.RetryOnLockTimeout
	}
	if errors.Is(err, gorm.ErrInvalidTransaction) ||
		(strings.Contains(errStr, "connection") && strings.Contains(errStr, "lost")) {
		return true
	}

	return false
}

func ExecuteWithRetry(ctx context.Context, config Config, fn func(ctx context.Context) error) error {
	if !config.Enabled || config.MaxAttempts <= 1 {
		return fn(ctx)
	}

	var lastErr error
	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}

		lastErr = err
		if !IsRetryableError(err, config) || attempt == config.MaxAttempts {
			break
		}

		delay := ExponentialBackoffWithJitter(attempt, config)
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}

	return lastErr
}
