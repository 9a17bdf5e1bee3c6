package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/newswatcher/newswatcher/backend/news-worker/internal/storage"
)

// Config holds the worker configuration.
type Config struct {
	Health   HealthConfig
	MongoDB  MongoDBConfig
	Redis    RedisConfig
	Feed     FeedConfig
	Refresh  RefreshConfig
	MinIO    storage.MinIOConfig
	LogLevel string
}

type HealthConfig struct {
	Host string
	Port string
	// RPS and Burst limit ops requests per client IP; RPS 0 disables the limit.
	RPS   float64
	Burst int
}

type MongoDBConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Channel  string
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type FeedConfig struct {
	Provider   string
	Categories []string
	APIKey     string
	BaseURL    string
	Country    string
	RPS        float64
	// RSSFeeds maps a category to its feed URL when Provider is "rss".
	RSSFeeds map[string]string
}

type RefreshConfig struct {
	MaxGlobalStories int
	MaxFilterStories int
	Interval         time.Duration
	Schedule         string
	OnStart          bool
	TruncatePolicy   string
	Strategy         string
}

// CronSpec returns the cron expression driving population passes.
// An explicit schedule wins over the fixed interval.
func (r RefreshConfig) CronSpec() string {
	if r.Schedule != "" {
		return r.Schedule
	}
	return "@every " + r.Interval.String()
}

// LoadConfig loads configuration from environment variables and an optional .env file.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("HEALTH_HOST", "0.0.0.0")
	viper.SetDefault("HEALTH_PORT", "5020")
	viper.SetDefault("HEALTH_RPS", 5.0)
	viper.SetDefault("HEALTH_BURST", 10)
	viper.SetDefault("MONGODB_DATABASE", "newswatcherdb")
	viper.SetDefault("MONGODB_COLLECTION", "newswatcher")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("TRIGGER_CHANNEL", "newswatcher:refresh")
	viper.SetDefault("FEED_PROVIDER", "newsapi")
	viper.SetDefault("FEED_CATEGORIES", "general,business,technology,science,health")
	viper.SetDefault("NEWSAPI_URL", "https://newsapi.org/v2")
	viper.SetDefault("NEWSAPI_COUNTRY", "us")
	viper.SetDefault("FEED_RPS", 1.0)
	viper.SetDefault("MAX_GLOBAL_STORIES", 1000)
	viper.SetDefault("MAX_FILTER_STORIES", 15)
	viper.SetDefault("POPULATE_INTERVAL", "6h")
	viper.SetDefault("POPULATE_ON_START", true)
	viper.SetDefault("TRUNCATE_POLICY", "keep-earliest")
	viper.SetDefault("REFRESH_STRATEGY", "snapshot")
	viper.SetDefault("MINIO_BUCKET", "newswatcher")
	viper.SetDefault("LOG_LEVEL", "info")

	rssFeeds, err := parsePairs(viper.GetString("RSS_FEEDS"))
	if err != nil {
		return nil, fmt.Errorf("RSS_FEEDS: %w", err)
	}

	cfg := &Config{
		Health: HealthConfig{
			Host:  viper.GetString("HEALTH_HOST"),
			Port:  viper.GetString("HEALTH_PORT"),
			RPS:   viper.GetFloat64("HEALTH_RPS"),
			Burst: viper.GetInt("HEALTH_BURST"),
		},
		MongoDB: MongoDBConfig{
			URI:        viper.GetString("MONGODB_URI"),
			Database:   viper.GetString("MONGODB_DATABASE"),
			Collection: viper.GetString("MONGODB_COLLECTION"),
			Timeout:    time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			Channel:  viper.GetString("TRIGGER_CHANNEL"),
		},
		Feed: FeedConfig{
			Provider:   strings.ToLower(viper.GetString("FEED_PROVIDER")),
			Categories: splitList(viper.GetString("FEED_CATEGORIES")),
			APIKey:     viper.GetString("NEWSAPI_KEY"),
			BaseURL:    strings.TrimRight(viper.GetString("NEWSAPI_URL"), "/"),
			Country:    viper.GetString("NEWSAPI_COUNTRY"),
			RPS:        viper.GetFloat64("FEED_RPS"),
			RSSFeeds:   rssFeeds,
		},
		Refresh: RefreshConfig{
			MaxGlobalStories: viper.GetInt("MAX_GLOBAL_STORIES"),
			MaxFilterStories: viper.GetInt("MAX_FILTER_STORIES"),
			Interval:         viper.GetDuration("POPULATE_INTERVAL"),
			Schedule:         viper.GetString("POPULATE_SCHEDULE"),
			OnStart:          viper.GetBool("POPULATE_ON_START"),
			TruncatePolicy:   strings.ToLower(viper.GetString("TRUNCATE_POLICY")),
			Strategy:         strings.ToLower(viper.GetString("REFRESH_STRATEGY")),
		},
		MinIO: storage.MinIOConfig{
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey: viper.GetString("MINIO_SECRET_KEY"),
			UseSSL:    viper.GetBool("MINIO_USE_SSL"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
		},
		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MongoDB.URI == "" {
		return fmt.Errorf("environment variable MONGODB_URI is required")
	}
	// story caps are compared numerically by the pool and matcher
	if c.Refresh.MaxGlobalStories <= 0 {
		return fmt.Errorf("MAX_GLOBAL_STORIES must be a positive integer, got %d", c.Refresh.MaxGlobalStories)
	}
	if c.Refresh.MaxFilterStories <= 0 {
		return fmt.Errorf("MAX_FILTER_STORIES must be a positive integer, got %d", c.Refresh.MaxFilterStories)
	}
	if c.Refresh.Schedule == "" && c.Refresh.Interval <= 0 {
		return fmt.Errorf("POPULATE_INTERVAL must be a positive duration")
	}
	if len(c.Feed.Categories) == 0 {
		return fmt.Errorf("FEED_CATEGORIES must list at least one category")
	}
	switch c.Feed.Provider {
	case "newsapi":
	case "rss":
		for _, cat := range c.Feed.Categories {
			if _, ok := c.Feed.RSSFeeds[cat]; !ok {
				return fmt.Errorf("RSS_FEEDS has no url for category %q", cat)
			}
		}
	default:
		return fmt.Errorf("unknown FEED_PROVIDER %q", c.Feed.Provider)
	}
	switch c.Refresh.TruncatePolicy {
	case "keep-earliest", "keep-latest":
	default:
		return fmt.Errorf("unknown TRUNCATE_POLICY %q", c.Refresh.TruncatePolicy)
	}
	switch c.Refresh.Strategy {
	case "snapshot", "reload":
	default:
		return fmt.Errorf("unknown REFRESH_STRATEGY %q", c.Refresh.Strategy)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parsePairs parses "a=x,b=y" into a map.
func parsePairs(s string) (map[string]string, error) {
	out := map[string]string{}
	for _, p := range splitList(s) {
		k, v, ok := strings.Cut(p, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" || v == "" {
			return nil, fmt.Errorf("malformed pair %q", p)
		}
		out[k] = v
	}
	return out, nil
}
