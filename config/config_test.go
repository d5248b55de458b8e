package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, want empty for defaults", cfg.Path)
	}
	if cfg.WeatherInterval != 600*time.Second {
		t.Errorf("WeatherInterval = %s, want 10m", cfg.WeatherInterval)
	}
	if cfg.NewsInterval != 300*time.Second {
		t.Errorf("NewsInterval = %s, want 5m", cfg.NewsInterval)
	}
	if cfg.RetryDelay != 5*time.Second {
		t.Errorf("RetryDelay = %s, want 5s", cfg.RetryDelay)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.FetchTimeout != 0 {
		t.Errorf("FetchTimeout = %s, want 0", cfg.FetchTimeout)
	}
	if len(cfg.NewsFeeds) != len(DefaultFeeds) {
		t.Errorf("NewsFeeds = %d entries, want %d", len(cfg.NewsFeeds), len(DefaultFeeds))
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `api_url: http://dash.local:8080
weather_interval: 2m
news_interval: 30s
retry_delay: 1s
max_retries: 5
location:
  city: Paris
  country: FR
news_feeds:
  - name: Example
    url: http://example.com/rss
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, want %q", cfg.Path, path)
	}
	if cfg.APIURL != "http://dash.local:8080" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.WeatherInterval != 2*time.Minute || cfg.NewsInterval != 30*time.Second {
		t.Errorf("intervals = %s/%s, want 2m/30s", cfg.WeatherInterval, cfg.NewsInterval)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.Location.City != "Paris" || cfg.Location.Country != "FR" {
		t.Errorf("Location = %+v", cfg.Location)
	}
	if len(cfg.NewsFeeds) != 1 || cfg.NewsFeeds[0].URL != "http://example.com/rss" {
		t.Errorf("NewsFeeds = %+v", cfg.NewsFeeds)
	}
	// untouched keys keep their defaults
	if cfg.NewsLimit != 5 {
		t.Errorf("NewsLimit = %d, want 5", cfg.NewsLimit)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SKYCAST_API_URL", "http://from-env:9000")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://from-env:9000" {
		t.Errorf("APIURL = %q, want env value", cfg.APIURL)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"zero retries", "max_retries: 0\n", "max_retries"},
		{"negative interval", "news_interval: -1s\n", "news_interval"},
		{"empty api url", "api_url: \"\"\n", "api_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	orig, err := Load(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}
	orig.Location = Location{City: "Lisbon", Country: "PT", Latitude: 38.72, Longitude: -9.14}
	orig.NewsInterval = 90 * time.Second

	if err := Save(path, orig); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists(path) {
		t.Fatal("Exists = false after Save")
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load saved: %v", err)
	}
	if got.Location != orig.Location {
		t.Errorf("Location = %+v, want %+v", got.Location, orig.Location)
	}
	if got.NewsInterval != 90*time.Second {
		t.Errorf("NewsInterval = %s, want 1m30s", got.NewsInterval)
	}
	if len(got.NewsFeeds) != len(orig.NewsFeeds) {
		t.Errorf("NewsFeeds = %d, want %d", len(got.NewsFeeds), len(orig.NewsFeeds))
	}
}

func TestGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") != "Paris" {
			_, _ = w.Write([]byte(`{"results":[]}`))
			return
		}
		if r.URL.Query().Get("countryCode") != "FR" {
			t.Errorf("countryCode = %q, want FR", r.URL.Query().Get("countryCode"))
		}
		_, _ = w.Write([]byte(`{"results":[{"latitude":48.85,"longitude":2.35}]}`))
	}))
	defer srv.Close()

	prev := geocodeURL
	geocodeURL = srv.URL
	defer func() { geocodeURL = prev }()

	lat, lon, err := Geocode(context.Background(), "Paris", "FR")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if lat != 48.85 || lon != 2.35 {
		t.Errorf("coords = %v,%v", lat, lon)
	}

	if _, _, err := Geocode(context.Background(), "Atlantis", "XX"); err == nil {
		t.Error("expected error for unknown city")
	}
}
