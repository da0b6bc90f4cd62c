// Package config loads and validates bot configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Instagram InstagramConfig `mapstructure:"instagram"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	Crawler   CrawlerConfig   `mapstructure:"crawler"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Caption   CaptionConfig   `mapstructure:"caption"`
	Publish   PublishConfig   `mapstructure:"publish"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls the health/metrics HTTP listener.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// InstagramConfig holds the Graph API credentials.
type InstagramConfig struct {
	AccessToken string `mapstructure:"access_token"`
	PageID      string `mapstructure:"page_id"`
}

// SourcesConfig describes the pool of profiles to crawl.
type SourcesConfig struct {
	Pool    []string `mapstructure:"pool"`
	BaseURL string   `mapstructure:"base_url"`
}

// CrawlerConfig governs listing enumeration behavior.
type CrawlerConfig struct {
	PageSize         int    `mapstructure:"page_size"`
	MinPages         int    `mapstructure:"min_pages"`
	EmptyPageRun     int    `mapstructure:"empty_page_run"`
	PageSafetyMargin int    `mapstructure:"page_safety_margin"`
	DefaultItemCount int    `mapstructure:"default_item_count"`
	PageDelayMs      int    `mapstructure:"page_delay_ms"`
	BatchSize        int    `mapstructure:"batch_size"`
	BatchDelayMs     int    `mapstructure:"batch_delay_ms"`
	SourceDelayMs    int    `mapstructure:"source_delay_ms"`
	UserAgent        string `mapstructure:"user_agent"`
}

// HTTPConfig configures HTTP client retry behavior.
type HTTPConfig struct {
	TimeoutSeconds   int `mapstructure:"timeout_seconds"`
	MaxRetries       int `mapstructure:"max_retries"`
	BackoffInitialMs int `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs     int `mapstructure:"backoff_max_ms"`
}

// CacheConfig sets the per-source crawl cache lifetime.
type CacheConfig struct {
	TTLMinutes int `mapstructure:"ttl_minutes"`
}

// LedgerConfig selects the posted-history backing store. DSN, when set,
// selects Postgres; otherwise the JSON snapshot file at Path is used.
type LedgerConfig struct {
	DSN  string `mapstructure:"dsn"`
	Path string `mapstructure:"path"`
}

// CaptionConfig controls caption generation.
type CaptionConfig struct {
	AIEnabled        bool   `mapstructure:"ai_enabled"`
	VisionEnabled    bool   `mapstructure:"vision_enabled"`
	Provider         string `mapstructure:"provider"`
	Model            string `mapstructure:"model"`
	OpenAIKey        string `mapstructure:"openai_key"`
	AnthropicKey     string `mapstructure:"anthropic_key"`
	GeminiKey        string `mapstructure:"gemini_key"`
	FallbackToStatic bool   `mapstructure:"fallback_to_static"`
	Variety          string `mapstructure:"variety"`
	HistoryPath      string `mapstructure:"history_path"`
	MaxHashtags      int    `mapstructure:"max_hashtags"`
}

// PublishConfig controls image re-hosting during publish.
type PublishConfig struct {
	ImgBBKey string `mapstructure:"imgbb_key"`
}

// ScheduleConfig holds the cron expression for automated posting.
type ScheduleConfig struct {
	Cron string `mapstructure:"cron"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STEAMGRAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("sources.base_url", "https://steamcommunity.com/profiles")
	v.SetDefault("crawler.page_size", 30)
	v.SetDefault("crawler.min_pages", 10)
	v.SetDefault("crawler.empty_page_run", 3)
	v.SetDefault("crawler.page_safety_margin", 10)
	v.SetDefault("crawler.default_item_count", 1000)
	v.SetDefault("crawler.page_delay_ms", 1000)
	v.SetDefault("crawler.batch_size", 45)
	v.SetDefault("crawler.batch_delay_ms", 2000)
	v.SetDefault("crawler.source_delay_ms", 3000)
	v.SetDefault("crawler.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.backoff_initial_ms", 1000)
	v.SetDefault("http.backoff_max_ms", 8000)
	v.SetDefault("cache.ttl_minutes", 60)
	v.SetDefault("ledger.path", "posted_history.json")
	v.SetDefault("caption.ai_enabled", true)
	v.SetDefault("caption.vision_enabled", true)
	v.SetDefault("caption.provider", "gemini")
	v.SetDefault("caption.model", "gemini-2.5-flash")
	v.SetDefault("caption.fallback_to_static", true)
	v.SetDefault("caption.variety", "high")
	v.SetDefault("caption.history_path", "caption_history.json")
	v.SetDefault("caption.max_hashtags", 30)
	v.SetDefault("schedule.cron", "0 12 * * *")
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Instagram.AccessToken == "" {
		return fmt.Errorf("instagram.access_token is required")
	}
	if c.Instagram.PageID == "" {
		return fmt.Errorf("instagram.page_id is required")
	}
	if len(c.Sources.Pool) == 0 {
		return fmt.Errorf("sources.pool must contain at least one profile id")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Crawler.PageSize <= 0 {
		return fmt.Errorf("crawler.page_size must be > 0")
	}
	if c.Crawler.EmptyPageRun <= 0 {
		return fmt.Errorf("crawler.empty_page_run must be > 0")
	}
	if c.Crawler.BatchSize <= 0 {
		return fmt.Errorf("crawler.batch_size must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.Cache.TTLMinutes <= 0 {
		return fmt.Errorf("cache.ttl_minutes must be > 0")
	}
	if c.Ledger.DSN == "" && c.Ledger.Path == "" {
		return fmt.Errorf("ledger.path must be set when ledger.dsn is empty")
	}
	return nil
}

// RequestTimeout returns the per-request HTTP timeout.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// CacheTTL returns the crawl cache lifetime.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}
