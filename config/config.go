package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

// geocodeURL is swapped out in tests.
var geocodeURL = "https://geocoding-api.open-meteo.com/v1/search"

type Config struct {
	APIURL          string        `mapstructure:"api_url" yaml:"api_url"`
	WeatherInterval time.Duration `mapstructure:"weather_interval" yaml:"weather_interval"`
	NewsInterval    time.Duration `mapstructure:"news_interval" yaml:"news_interval"`
	RetryDelay      time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
	MaxRetries      int           `mapstructure:"max_retries" yaml:"max_retries"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout" yaml:"fetch_timeout"`
	NotifyDuration  time.Duration `mapstructure:"notify_duration" yaml:"notify_duration"`

	ListenAddr      string        `mapstructure:"listen_addr" yaml:"listen_addr"`
	Location        Location      `mapstructure:"location" yaml:"location"`
	NewsFeeds       []Feed        `mapstructure:"news_feeds" yaml:"news_feeds"`
	NewsLimit       int           `mapstructure:"news_limit" yaml:"news_limit"`
	WeatherCacheTTL time.Duration `mapstructure:"weather_cache_ttl" yaml:"weather_cache_ttl"`
	NewsCacheTTL    time.Duration `mapstructure:"news_cache_ttl" yaml:"news_cache_ttl"`

	// Path is the config file that was read, empty when running on defaults.
	Path string `mapstructure:"-" yaml:"-"`
}

type Location struct {
	City      string  `mapstructure:"city" yaml:"city"`
	Country   string  `mapstructure:"country" yaml:"country"`
	Latitude  float64 `mapstructure:"latitude" yaml:"latitude"`
	Longitude float64 `mapstructure:"longitude" yaml:"longitude"`
}

// HasCoordinates reports whether the location has been geocoded.
func (l Location) HasCoordinates() bool {
	return l.Latitude != 0 || l.Longitude != 0
}

type Feed struct {
	Name string `mapstructure:"name" yaml:"name"`
	URL  string `mapstructure:"url" yaml:"url"`
}

// DefaultFeeds are used when news_feeds is empty.
var DefaultFeeds = []Feed{
	{"BBC World", "http://feeds.bbci.co.uk/news/world/rss.xml"},
	{"The Guardian", "https://www.theguardian.com/world/rss"},
	{"Al Jazeera", "https://www.aljazeera.com/xml/rss/all.xml"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", "http://127.0.0.1:5000")
	v.SetDefault("weather_interval", 600*time.Second)
	v.SetDefault("news_interval", 300*time.Second)
	v.SetDefault("retry_delay", 5*time.Second)
	v.SetDefault("max_retries", 3)
	v.SetDefault("fetch_timeout", time.Duration(0))
	v.SetDefault("notify_duration", 3*time.Second)
	v.SetDefault("listen_addr", ":5000")
	v.SetDefault("location.city", "Považská Bystrica")
	v.SetDefault("location.country", "SK")
	v.SetDefault("news_limit", 5)
	v.SetDefault("weather_cache_ttl", 600*time.Second)
	v.SetDefault("news_cache_ttl", 300*time.Second)
}

// DefaultPath returns ~/.config/skycast/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "skycast", "config.yaml"), nil
}

// Load reads the config at path (or the default path when empty). A
// missing file is not an error: every key has a default.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("skycast")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	read := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		read = false
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if read {
		cfg.Path = v.ConfigFileUsed()
	}

	if len(cfg.NewsFeeds) == 0 {
		cfg.NewsFeeds = append([]Feed(nil), DefaultFeeds...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the refresh loops cannot run with.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("api_url must not be empty")
	}
	if _, err := url.Parse(c.APIURL); err != nil {
		return fmt.Errorf("invalid api_url: %w", err)
	}
	if c.WeatherInterval <= 0 {
		return fmt.Errorf("weather_interval must be positive, got %s", c.WeatherInterval)
	}
	if c.NewsInterval <= 0 {
		return fmt.Errorf("news_interval must be positive, got %s", c.NewsInterval)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry_delay must not be negative, got %s", c.RetryDelay)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1, got %d", c.MaxRetries)
	}
	if c.NewsLimit < 1 {
		return fmt.Errorf("news_limit must be at least 1, got %d", c.NewsLimit)
	}
	return nil
}

// Exists reports whether a config file is present at path (or the default path).
func Exists(path string) bool {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return false
		}
		path = p
	}
	_, err := os.Stat(path)
	return err == nil
}

// Save writes cfg to path (or the default path when empty).
func Save(path string, cfg *Config) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	feeds := make([]map[string]interface{}, 0, len(cfg.NewsFeeds))
	for _, f := range cfg.NewsFeeds {
		feeds = append(feeds, map[string]interface{}{"name": f.Name, "url": f.URL})
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.Set("api_url", cfg.APIURL)
	v.Set("weather_interval", cfg.WeatherInterval.String())
	v.Set("news_interval", cfg.NewsInterval.String())
	v.Set("retry_delay", cfg.RetryDelay.String())
	v.Set("max_retries", cfg.MaxRetries)
	v.Set("fetch_timeout", cfg.FetchTimeout.String())
	v.Set("notify_duration", cfg.NotifyDuration.String())
	v.Set("listen_addr", cfg.ListenAddr)
	v.Set("location", map[string]interface{}{
		"city":      cfg.Location.City,
		"country":   cfg.Location.Country,
		"latitude":  cfg.Location.Latitude,
		"longitude": cfg.Location.Longitude,
	})
	v.Set("news_feeds", feeds)
	v.Set("news_limit", cfg.NewsLimit)
	v.Set("weather_cache_ttl", cfg.WeatherCacheTTL.String())
	v.Set("news_cache_ttl", cfg.NewsCacheTTL.String())

	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Geocode resolves a city to coordinates using the Open-Meteo geocoding API.
func Geocode(ctx context.Context, city, countryCode string) (lat, lon float64, err error) {
	q := url.Values{}
	q.Set("name", city)
	q.Set("count", "1")
	q.Set("language", "en")
	q.Set("format", "json")
	if countryCode != "" {
		q.Set("countryCode", countryCode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, geocodeURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("creating geocoding request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocoding API HTTP %d", resp.StatusCode)
	}

	var result struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, 0, fmt.Errorf("decoding geocoding response: %w", err)
	}
	if len(result.Results) == 0 {
		return 0, 0, fmt.Errorf("city not found: %s, %s", city, countryCode)
	}
	return result.Results[0].Latitude, result.Results[0].Longitude, nil
}
