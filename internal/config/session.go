package config

import (
	"sync"
	"time"
)

type SessionConfig struct {
	TTL        time.Duration
	MaxEntries int
	// RedisURL switches the session store to redis when set.
	RedisURL string
}

var (
	sessionConfig *SessionConfig
	sessionOnce   sync.Once
)

func LoadSessionConfig() *SessionConfig {
	sessionOnce.Do(func() {
		cfg := Viper()
		ttl := cfg.GetDuration("SESSION_TTL")
		if ttl <= 0 {
			ttl = time.Hour
		}
		sessionConfig = &SessionConfig{
			TTL:        ttl,
			MaxEntries: cfg.GetInt("SESSION_MAX_ENTRIES"),
			RedisURL:   cfg.GetString("REDIS_URL"),
		}
	})
	return sessionConfig
}
