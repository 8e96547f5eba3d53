package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName       = "SangoBank"
	defaultAppEnv        = "development"
	defaultPort          = "8080"
	defaultLogLevel      = "info"
	defaultShutdownDelay = 10 * time.Second
	defaultLockLease     = 10 * time.Second
	defaultLockWait      = 5 * time.Second

	shutdownSecondsEnvVar = "SHUTDOWN_TIMEOUT_SECONDS"
	lockLeaseEnvVar       = "LOCK_LEASE_SECONDS"
	lockWaitEnvVar        = "LOCK_WAIT_SECONDS"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	ShutdownPeriod time.Duration
	LockLease      time.Duration
	LockWait       time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:     getEnv("APP_NAME", defaultAppName),
		AppEnv:      getEnv("APP_ENV", defaultAppEnv),
		Port:        getEnv("PORT", defaultPort),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
	}

	var err error
	if cfg.ShutdownPeriod, err = secondsEnv(shutdownSecondsEnvVar, defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.LockLease, err = secondsEnv(lockLeaseEnvVar, defaultLockLease); err != nil {
		return Config{}, err
	}
	if cfg.LockWait, err = secondsEnv(lockWaitEnvVar, defaultLockWait); err != nil {
		return Config{}, err
	}

	// The wait window must stay inside the lease, otherwise a waiter can
	// outlive the holder's lease and both believe they hold the lock.
	if cfg.LockWait >= cfg.LockLease {
		return Config{}, fmt.Errorf("%s must be shorter than %s", lockWaitEnvVar, lockLeaseEnvVar)
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}

	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL must be set")
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func secondsEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	seconds, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return time.Duration(seconds) * time.Second, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
