// Package config loads the application configuration from a YAML file and
// environment variables, decoding into the per-concern config structs.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/jonesrussell/threadcrawl/internal/cache"
	"github.com/jonesrussell/threadcrawl/internal/crawler"
	"github.com/jonesrussell/threadcrawl/internal/database"
	"github.com/jonesrussell/threadcrawl/internal/logger"
	"github.com/jonesrussell/threadcrawl/internal/ratelimit"
	"github.com/jonesrussell/threadcrawl/internal/source/reddit"
)

// Storage backends for the crawl record and rate limit stores.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

const envPrefix = "THREADCRAWL"

// App holds application-level settings.
type App struct {
	Name        string `mapstructure:"name"        yaml:"name"`
	Environment string `mapstructure:"environment" yaml:"environment"`
	Debug       bool   `mapstructure:"debug"       yaml:"debug"`
}

// Storage selects which backend persists crawler state.
type Storage struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
}

// Config is the full application configuration.
type Config struct {
	App       App              `mapstructure:"app"        yaml:"app"`
	Logger    logger.Config    `mapstructure:"logger"     yaml:"logger"`
	Crawler   crawler.Config   `mapstructure:"crawler"    yaml:"crawler"`
	RateLimit ratelimit.Config `mapstructure:"rate_limit" yaml:"rate_limit"`
	Reddit    reddit.Config    `mapstructure:"reddit"     yaml:"reddit"`
	Database  database.Config  `mapstructure:"database"   yaml:"database"`
	Redis     cache.Config     `mapstructure:"redis"      yaml:"redis"`
	Storage   Storage          `mapstructure:"storage"    yaml:"storage"`
}

// Load reads configuration from path (or ./config.yml when empty), applies
// environment overrides, and validates the result. A missing default config
// file is fine; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	// .env is optional; real env vars win over it.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := newDefaultConfig()
	if err := decode(v.AllSettings(), cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	applyDebugOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-cutting settings. Crawl-specific limits are validated
// again by the crawler itself before the first provider call.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("unknown storage backend %q (want %q or %q)",
			c.Storage.Backend, BackendPostgres, BackendRedis)
	}
	if len(c.Crawler.Scopes) == 0 {
		return errors.New("at least one crawl scope is required")
	}
	return nil
}

// newDefaultConfig composes every sub-package's defaults.
func newDefaultConfig() *Config {
	return &Config{
		App:       App{Name: "threadcrawl", Environment: "production"},
		Logger:    logger.Config{Level: "info", Encoding: "json"},
		Crawler:   crawler.NewConfig(),
		RateLimit: ratelimit.NewConfig(),
		Reddit:    reddit.NewConfig(),
		Database:  database.NewConfig(),
		Redis:     cache.NewConfig(),
		Storage:   Storage{Backend: BackendPostgres},
	}
}

// decode maps viper's settings onto the config struct with duration parsing.
func decode(settings map[string]any, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return fmt.Errorf("failed to build config decoder: %w", err)
	}
	return decoder.Decode(settings)
}

// setDefaults registers every key so environment overrides resolve even
// without a config file.
func setDefaults(v *viper.Viper) {
	crawlerDefaults := crawler.NewConfig()
	limitDefaults := ratelimit.NewConfig()
	redditDefaults := reddit.NewConfig()
	dbDefaults := database.NewConfig()
	redisDefaults := cache.NewConfig()

	v.SetDefault("app", map[string]any{
		"name":        "threadcrawl",
		"environment": "production",
		"debug":       false,
	})
	v.SetDefault("logger", map[string]any{
		"level":       "info",
		"encoding":    "json",
		"development": false,
	})
	v.SetDefault("crawler", map[string]any{
		"scopes":                   []string{},
		"keywords":                 []string{},
		"listings":                 crawlerDefaults.Listings,
		"days_back":                crawlerDefaults.DaysBack,
		"incremental":              crawlerDefaults.Incremental,
		"min_post_score":           crawlerDefaults.MinPostScore,
		"posts_per_listing":        crawlerDefaults.PostsPerListing,
		"comments_per_post":        crawlerDefaults.CommentsPerPost,
		"max_depth":                crawlerDefaults.MaxDepth,
		"max_fanout":               crawlerDefaults.MaxFanout,
		"min_reply_score":          crawlerDefaults.MinReplyScore,
		"reply_score_slack":        crawlerDefaults.ReplyScoreSlack,
		"preserve_context":         crawlerDefaults.PreserveContext,
		"always_include_author":    crawlerDefaults.AlwaysIncludeAuthor,
		"search_limit":             crawlerDefaults.SearchLimit,
		"search_comments_per_post": crawlerDefaults.SearchCommentsPerPost,
		"search_max_depth":         crawlerDefaults.SearchMaxDepth,
	})
	v.SetDefault("rate_limit", map[string]any{
		"per_minute":             limitDefaults.PerMinute,
		"per_day":                limitDefaults.PerDay,
		"backoff_base":           limitDefaults.BackoffBase.String(),
		"backoff_cap_multiplier": limitDefaults.BackoffCapMultiplier,
		"backoff_jitter_max":     limitDefaults.BackoffJitterMax.String(),
		"max_backoff":            limitDefaults.MaxBackoff.String(),
		"persist_every":          limitDefaults.PersistEvery,
	})
	v.SetDefault("reddit", map[string]any{
		"base_url":   redditDefaults.BaseURL,
		"user_agent": redditDefaults.UserAgent,
		"timeout":    redditDefaults.Timeout.String(),
	})
	v.SetDefault("database", map[string]any{
		"host":     dbDefaults.Host,
		"port":     dbDefaults.Port,
		"user":     dbDefaults.User,
		"password": "",
		"dbname":   dbDefaults.DBName,
		"sslmode":  dbDefaults.SSLMode,
	})
	v.SetDefault("redis", map[string]any{
		"host":     redisDefaults.Host,
		"port":     redisDefaults.Port,
		"password": "",
		"db":       redisDefaults.DB,
	})
	v.SetDefault("storage", map[string]any{
		"backend": BackendPostgres,
	})
}

// bindEnvVars binds the short env var names used in deployment alongside the
// prefixed automatic ones.
func bindEnvVars(v *viper.Viper) error {
	bindings := map[string][]string{
		"app.environment":   {"APP_ENV"},
		"app.debug":         {"APP_DEBUG"},
		"logger.level":      {"LOG_LEVEL"},
		"logger.encoding":   {"LOG_FORMAT"},
		"database.password": {"DATABASE_PASSWORD", "POSTGRES_PASSWORD"},
		"redis.password":    {"REDIS_PASSWORD"},
		"reddit.user_agent": {"REDDIT_USER_AGENT"},
		"storage.backend":   {"STORAGE_BACKEND"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

// applyDebugOverrides switches on debug-friendly logging in debug mode and
// development environments.
func applyDebugOverrides(cfg *Config) {
	if cfg.App.Debug {
		cfg.Logger.Level = "debug"
	}
	if cfg.App.Environment == "development" {
		cfg.Logger.Development = true
		cfg.Logger.Encoding = "console"
	}
}
