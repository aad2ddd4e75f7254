package config

import "fmt"

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Search  SearchConfig  `mapstructure:"search"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// APIConfig describes the remote recommendation service.
type APIConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	AuthScheme string `mapstructure:"auth_scheme"`
	UserAgent  string `mapstructure:"user_agent"`
}

type SessionConfig struct {
	Store   string `mapstructure:"store"` // file | redis
	Path    string `mapstructure:"path"`
	Profile string `mapstructure:"profile"`
	TTL     int    `mapstructure:"ttl"` // milliseconds, redis only; 0 keeps forever
}

type CacheConfig struct {
	Enabled    bool        `mapstructure:"enabled"`
	Redis      RedisConfig `mapstructure:"redis"`
	CatalogTTL int         `mapstructure:"catalog_ttl"` // milliseconds
	KeyPrefix  string      `mapstructure:"key_prefix"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// SearchConfig overrides entries of the land search defaults table.
type SearchConfig struct {
	Defaults map[string]float64 `mapstructure:"defaults"`
}

func (r RedisConfig) String() string {
	return fmt.Sprintf("redis://%s/%d", r.Address, r.DB)
}

// RedisRequired reports whether any configured component needs a redis connection.
func (c *Config) RedisRequired() bool {
	return c.Cache.Enabled || c.Session.Store == SessionStoreRedis
}

const (
	SessionStoreFile  = "file"
	SessionStoreRedis = "redis"
)
