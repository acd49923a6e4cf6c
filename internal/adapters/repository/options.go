package repository

import "github.com/redis/go-redis/v9"

// RedisOption applies a configuration option to the RedisStore.
type RedisOption func(*RedisStore)

// WithRedisAddr sets the server address used when no client is supplied.
func WithRedisAddr(addr string) RedisOption {
	return func(s *RedisStore) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithRedisDB selects the logical database.
func WithRedisDB(db int) RedisOption {
	return func(s *RedisStore) {
		if db >= 0 {
			s.db = db
		}
	}
}

// WithKeyPrefix namespaces every key the store writes.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithRedisClient uses an existing client instead of dialing one.
func WithRedisClient(client *redis.Client) RedisOption {
	return func(s *RedisStore) {
		if client != nil {
			s.client = client
		}
	}
}
