package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	YouTube  YouTubeConfig  `mapstructure:"youtube"`
	Cache    CacheConfig    `mapstructure:"cache"`
	LogLevel string         `mapstructure:"log_level"`
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds the Postgres connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// RedisConfig holds the Redis connection settings. Redis is optional:
// when the server cannot reach it, video and suggestion caching are
// disabled rather than failing startup.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	URL      string `mapstructure:"url"`
}

// JWTConfig holds the bearer-token verification settings
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

// OpenAIConfig holds the recipe generation provider settings
type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	APIURL      string        `mapstructure:"api_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// YouTubeConfig holds the video provider settings. An empty APIKey
// disables video search, not startup.
type YouTubeConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	APIURL   string        `mapstructure:"api_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// CacheConfig controls the cache-or-generate decision. FreshnessWindow
// is the age of lastSearched beyond which a cached recipe is
// regenerated; zero means cached recipes never go stale.
type CacheConfig struct {
	FreshnessWindow time.Duration `mapstructure:"freshness_window"`
}

// Load reads configuration from environment variables with sane defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "dishly")
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("openai.api_url", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("openai.model", "gpt-3.5-turbo")
	v.SetDefault("openai.temperature", 0.7)
	v.SetDefault("openai.max_tokens", 1500)
	v.SetDefault("openai.timeout", "60s")

	v.SetDefault("youtube.api_url", "https://www.googleapis.com/youtube/v3")
	v.SetDefault("youtube.timeout", "15s")
	v.SetDefault("youtube.cache_ttl", "6h")

	v.SetDefault("cache.freshness_window", "0s")

	v.SetDefault("log_level", "info")
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("server.host", "SERVER_HOST")
	v.BindEnv("server.port", "SERVER_PORT", "PORT")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.name", "DB_NAME")
	v.BindEnv("database.ssl_mode", "DB_SSL_MODE")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("redis.url", "REDIS_URL")
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("openai.api_url", "OPENAI_API_URL")
	v.BindEnv("openai.model", "OPENAI_MODEL")
	v.BindEnv("openai.temperature", "OPENAI_TEMPERATURE")
	v.BindEnv("openai.max_tokens", "OPENAI_MAX_TOKENS")
	v.BindEnv("openai.timeout", "OPENAI_TIMEOUT")
	v.BindEnv("youtube.api_key", "YOUTUBE_API_KEY")
	v.BindEnv("youtube.api_url", "YOUTUBE_API_URL")
	v.BindEnv("youtube.timeout", "YOUTUBE_TIMEOUT")
	v.BindEnv("youtube.cache_ttl", "YOUTUBE_CACHE_TTL")
	v.BindEnv("cache.freshness_window", "FRESHNESS_WINDOW")
	v.BindEnv("log_level", "LOG_LEVEL")
}

func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if cfg.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Cache.FreshnessWindow < 0 {
		return fmt.Errorf("freshness window must not be negative")
	}
	return nil
}
