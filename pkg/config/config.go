package config

import (
	"log"
	"os"
	"time"

	"github.com/voxkit/voxconsole/pkg/cache"
	"github.com/voxkit/voxconsole/pkg/logger"
	"github.com/voxkit/voxconsole/pkg/utils"
)

// Config holds the full server configuration.
type Config struct {
	ServerName    string `env:"SERVER_NAME"`
	Addr          string `env:"ADDR"`
	Mode          string `env:"MODE"`
	APIPrefix     string `env:"API_PREFIX"`
	AuthPrefix    string `env:"AUTH_PREFIX"`
	MonitorPrefix string `env:"MONITOR_PREFIX"`

	DBDriver string `env:"DB_DRIVER"`
	DSN      string `env:"DSN"`

	SessionSecret     string `env:"SESSION_SECRET"`
	SessionExpireDays int    `env:"SESSION_EXPIRE_DAYS"`

	Log logger.LogConfig

	// Log backend (external call/event log API)
	LogAPIBaseURL   string        `env:"LOG_API_BASE_URL"`
	LogAPIToken     string        `env:"LOG_API_TOKEN"`
	LogAPITimeout   time.Duration `env:"LOG_API_TIMEOUT"`
	LogQueryLimit   int           `env:"LOG_QUERY_LIMIT"`
	LogDebounceWait time.Duration `env:"LOG_DEBOUNCE_WAIT"`

	Cache cache.Config
}

// GlobalConfig is populated by Load.
var GlobalConfig *Config

// Load reads .env (per APP_ENV) and builds GlobalConfig with defaults for every key.
func Load() error {
	env := os.Getenv("APP_ENV")
	if err := utils.LoadEnv(env); err != nil {
		// Missing .env only means defaults apply.
		log.Printf("Note: .env file not found or failed to load: %v (using default values)", err)
	}

	GlobalConfig = &Config{
		ServerName:    getStringOrDefault("SERVER_NAME", "voxconsole"),
		Addr:          getStringOrDefault("ADDR", ":7080"),
		Mode:          getStringOrDefault("MODE", "development"),
		APIPrefix:     getStringOrDefault("API_PREFIX", "/api"),
		AuthPrefix:    getStringOrDefault("AUTH_PREFIX", "/auth"),
		MonitorPrefix: getStringOrDefault("MONITOR_PREFIX", "/metrics"),

		DBDriver: getStringOrDefault("DB_DRIVER", "sqlite"),
		DSN:      getStringOrDefault("DSN", "./voxconsole.db"),

		SessionSecret:     getStringOrDefault("SESSION_SECRET", generateDefaultSessionSecret()),
		SessionExpireDays: getIntOrDefault("SESSION_EXPIRE_DAYS", 7),

		Log: logger.LogConfig{
			Level:      getStringOrDefault("LOG_LEVEL", "info"),
			Filename:   getStringOrDefault("LOG_FILENAME", "./logs/app.log"),
			MaxSize:    getIntOrDefault("LOG_MAX_SIZE", 100),
			MaxAge:     getIntOrDefault("LOG_MAX_AGE", 30),
			MaxBackups: getIntOrDefault("LOG_MAX_BACKUPS", 5),
			Daily:      getBoolOrDefault("LOG_DAILY", true),
		},

		LogAPIBaseURL:   getStringOrDefault("LOG_API_BASE_URL", "http://localhost:9080"),
		LogAPIToken:     getStringOrDefault("LOG_API_TOKEN", ""),
		LogAPITimeout:   getDurationOrDefault("LOG_API_TIMEOUT", 10*time.Second),
		LogQueryLimit:   getIntOrDefault("LOG_QUERY_LIMIT", 200),
		LogDebounceWait: getDurationOrDefault("LOG_DEBOUNCE_WAIT", 500*time.Millisecond),

		Cache: loadCacheConfig(),
	}
	return nil
}

func getStringOrDefault(key, defaultValue string) string {
	value := utils.GetEnv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if utils.GetEnv(key) == "" {
		return defaultValue
	}
	return utils.GetBoolEnv(key)
}

func getIntOrDefault(key string, defaultValue int) int {
	value := utils.GetIntEnv(key)
	if value == 0 {
		return defaultValue
	}
	return int(value)
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := utils.GetEnv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// generateDefaultSessionSecret returns a random secret for development use.
func generateDefaultSessionSecret() string {
	if secret := utils.GetEnv("SESSION_SECRET"); secret != "" {
		return secret
	}
	return "default-secret-key-change-in-production-" + utils.RandText(16)
}

func loadCacheConfig() cache.Config {
	cacheType := getStringOrDefault("CACHE_TYPE", "local")

	return cache.Config{
		Type: cacheType,
		Redis: cache.RedisConfig{
			Addr:         getStringOrDefault("REDIS_ADDR", "localhost:6379"),
			Password:     utils.GetEnv("REDIS_PASSWORD"),
			DB:           int(utils.GetIntEnv("REDIS_DB")),
			PoolSize:     getIntOrDefault("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntOrDefault("REDIS_MIN_IDLE_CONNS", 5),
			DialTimeout:  getDurationOrDefault("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationOrDefault("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDurationOrDefault("REDIS_WRITE_TIMEOUT", 3*time.Second),
			IdleTimeout:  getDurationOrDefault("REDIS_IDLE_TIMEOUT", 5*time.Minute),
		},
		Local: cache.LocalConfig{
			MaxSize:           getIntOrDefault("LOCAL_CACHE_MAX_SIZE", 1000),
			DefaultExpiration: getDurationOrDefault("LOCAL_CACHE_DEFAULT_EXPIRATION", 5*time.Minute),
			CleanupInterval:   getDurationOrDefault("LOCAL_CACHE_CLEANUP_INTERVAL", 10*time.Minute),
		},
	}
}
