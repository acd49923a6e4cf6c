// Package config defines service configuration and its defaults.
//
// Values are layered by Load: defaults from New, then an optional YAML file,
// then MAGIC_* environment variables.
package config

import "runtime"

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogJSON switches the log handler to JSON output.
	LogJSON bool `koanf:"log_json"`
	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the member store: memory, sqlite or redis.
	StoreDriver string `koanf:"store_driver"`
	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `koanf:"sqlite_path"`
	// RedisAddr, RedisDB and RedisKeyPrefix configure the redis driver.
	RedisAddr      string `koanf:"redis_addr"`
	RedisDB        int    `koanf:"redis_db"`
	RedisKeyPrefix string `koanf:"redis_key_prefix"`

	// DefaultPageSize is used when a leaderboard request omits page_size.
	DefaultPageSize int `koanf:"default_page_size"`
	// MaxPageSize caps GET /leaderboard?page_size.
	MaxPageSize int `koanf:"max_page_size"`

	// QueueSize bounds the valentine delivery queue.
	QueueSize int `koanf:"queue_size"`
	// WorkerCount sets the number of delivery workers.
	WorkerCount int `koanf:"worker_count"`
	// DedupeSize sets how many note IDs are remembered for idempotency.
	DedupeSize int `koanf:"dedupe_size"`

	// ReservedHandles always receive the Founder rarity tier.
	ReservedHandles []string `koanf:"reserved_handles"`
	// PrivilegedRoles are role markers that grant the Team rarity tier.
	PrivilegedRoles []string `koanf:"privileged_roles"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		StoreDriver:     StoreMemory,
		SQLitePath:      "magicboard.db",
		RedisAddr:       "localhost:6379",
		RedisKeyPrefix:  "magicboard",
		DefaultPageSize: 20,
		MaxPageSize:     100,
		QueueSize:       10_000,
		WorkerCount:     runtime.NumCPU(),
		DedupeSize:      50_000,
		ReservedHandles: []string{"magician"},
		PrivilegedRoles: []string{"moderator", "team"},
	}
}
