// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server       ServerConfig   `mapstructure:"server"`
	Logging      LoggingConfig  `mapstructure:"logging"`
	HTTP         HTTPConfig     `mapstructure:"http"`
	Headless     HeadlessConfig `mapstructure:"headless"`
	Storage      StorageConfig  `mapstructure:"storage"`
	DB           DBConfig       `mapstructure:"db"`
	PubSub       PubSubConfig   `mapstructure:"pubsub"`
	Batch        BatchConfig    `mapstructure:"batch"`
	Institutions TableConfig    `mapstructure:"institutions"`
	Scholarships TableConfig    `mapstructure:"scholarships"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// HTTPConfig configures outbound page and image fetches.
type HTTPConfig struct {
	UserAgent           string `mapstructure:"user_agent"`
	PageTimeoutSeconds  int    `mapstructure:"page_timeout_seconds"`
	ImageTimeoutSeconds int    `mapstructure:"image_timeout_seconds"`
	MaxPageBytes        int64  `mapstructure:"max_page_bytes"`
}

// HeadlessConfig configures the optional chromedp rendering fallback.
type HeadlessConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	MaxParallel   int     `mapstructure:"max_parallel"`
	NavTimeoutSec int     `mapstructure:"nav_timeout_seconds"`
	DomainQPS     float64 `mapstructure:"domain_qps"`
	MinHTMLBytes  int     `mapstructure:"min_html_bytes"`
	MustSelectors string  `mapstructure:"must_selectors"`
}

// StorageConfig selects and configures the object storage backend.
type StorageConfig struct {
	Provider      string `mapstructure:"provider"` // s3 | gcs | memory | local
	Bucket        string `mapstructure:"bucket"`
	Prefix        string `mapstructure:"prefix"`
	PublicBaseURL string `mapstructure:"public_base_url"` // CDN front, e.g. https://cdn.example.com
	Region        string `mapstructure:"region"`
	Endpoint      string `mapstructure:"endpoint"` // custom S3-compatible endpoint
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PathStyle     bool   `mapstructure:"path_style"`
	LocalDir      string `mapstructure:"local_dir"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// PubSubConfig holds metadata for completion-event notifications.
type PubSubConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// BatchConfig governs the sequential batch driver.
type BatchConfig struct {
	DelaySeconds int `mapstructure:"delay_seconds"`
	DelayEvery   int `mapstructure:"delay_every"`
	DefaultLimit int `mapstructure:"default_limit"`
}

// TableConfig maps one entity kind onto its database table.
type TableConfig struct {
	Table         string `mapstructure:"table"`
	IDColumn      string `mapstructure:"id_column"`
	NameColumn    string `mapstructure:"name_column"`
	WebsiteColumn string `mapstructure:"website_column"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("IMAGEPIPE")
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
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
	v.SetDefault("http.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	v.SetDefault("http.page_timeout_seconds", 15)
	v.SetDefault("http.image_timeout_seconds", 10)
	v.SetDefault("http.max_page_bytes", 5*1024*1024)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout_seconds", 25)
	v.SetDefault("headless.domain_qps", 0.5)
	v.SetDefault("headless.min_html_bytes", 2048)
	v.SetDefault("storage.provider", "memory")
	v.SetDefault("storage.prefix", "images")
	v.SetDefault("storage.path_style", false)
	v.SetDefault("pubsub.enabled", false)
	v.SetDefault("batch.delay_seconds", 1)
	v.SetDefault("batch.delay_every", 5)
	v.SetDefault("batch.default_limit", 50)
	v.SetDefault("institutions.table", "institutions")
	v.SetDefault("institutions.id_column", "ipeds_id")
	v.SetDefault("institutions.name_column", "name")
	v.SetDefault("institutions.website_column", "website")
	v.SetDefault("scholarships.table", "scholarships")
	v.SetDefault("scholarships.id_column", "id")
	v.SetDefault("scholarships.name_column", "organization")
	v.SetDefault("scholarships.website_column", "website_url")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent must be set")
	}
	if c.HTTP.PageTimeoutSeconds <= 0 {
		return fmt.Errorf("http.page_timeout_seconds must be > 0")
	}
	if c.HTTP.ImageTimeoutSeconds <= 0 {
		return fmt.Errorf("http.image_timeout_seconds must be > 0")
	}
	if c.HTTP.MaxPageBytes <= 0 {
		return fmt.Errorf("http.max_page_bytes must be > 0")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	switch c.Storage.Provider {
	case "s3", "gcs":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket must be set for provider %q", c.Storage.Provider)
		}
	case "local":
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("storage.local_dir must be set for provider local")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage provider %q", c.Storage.Provider)
	}
	if c.PubSub.Enabled && (c.PubSub.ProjectID == "" || c.PubSub.TopicName == "") {
		return fmt.Errorf("pubsub.project_id and pubsub.topic_name must be set when pubsub is enabled")
	}
	if c.Batch.DelaySeconds < 0 {
		return fmt.Errorf("batch.delay_seconds must be >= 0")
	}
	if c.Batch.DelayEvery <= 0 {
		return fmt.Errorf("batch.delay_every must be > 0")
	}
	return nil
}

// PageTimeout converts the configured page fetch timeout into a duration.
func (c Config) PageTimeout() time.Duration {
	return time.Duration(c.HTTP.PageTimeoutSeconds) * time.Second
}

// ImageTimeout converts the configured image fetch timeout into a duration.
func (c Config) ImageTimeout() time.Duration {
	return time.Duration(c.HTTP.ImageTimeoutSeconds) * time.Second
}

// HeadlessNavTimeout converts the headless navigation timeout into a duration.
func (c Config) HeadlessNavTimeout() time.Duration {
	return time.Duration(c.Headless.NavTimeoutSec) * time.Second
}

// BatchDelay converts the inter-entity sleep into a duration.
func (c Config) BatchDelay() time.Duration {
	return time.Duration(c.Batch.DelaySeconds) * time.Second
}

// MustSelectorList splits headless.must_selectors into CSS selectors.
func (c Config) MustSelectorList() []string {
	raw := strings.TrimSpace(c.Headless.MustSelectors)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
