package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("latitude"); got != "48.8566" {
			t.Errorf("latitude = %q", got)
		}
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":20,"relative_humidity_2m":40,
			"apparent_temperature":19.2,"is_day":1,"weather_code":0,"wind_speed_10m":7.5}}`))
	}))
	defer srv.Close()

	p := &Provider{City: "Paris", Latitude: 48.8566, Longitude: 2.3522, BaseURL: srv.URL}
	c, err := p.Current(context.Background())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if c.City != "Paris" || c.TempC != 20 || c.Humidity != 40 || c.FeelsLikeC != 19.2 || c.WindSpeedKmh != 7.5 {
		t.Errorf("conditions = %+v", c)
	}
	if c.Description != "Clear sky" {
		t.Errorf("Description = %q, want Clear sky", c.Description)
	}
	if c.Icon != "☀️" {
		t.Errorf("Icon = %q, want daytime clear sky", c.Icon)
	}
}

func TestCurrent_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := &Provider{BaseURL: srv.URL}
	if _, err := p.Current(context.Background()); err == nil {
		t.Fatal("expected error for 502")
	}
}

func TestDescribeCode(t *testing.T) {
	tests := []struct {
		code  int
		isDay bool
		want  string
	}{
		{0, true, "clear sky"},
		{0, false, "clear night"},
		{2, true, "partly cloudy"},
		{63, true, "rain"},
		{75, true, "snow"},
		{99, true, "thunderstorm with hail"},
		{1234, true, "unknown"},
	}
	for _, tt := range tests {
		if _, got := describeCode(tt.code, tt.isDay); got != tt.want {
			t.Errorf("describeCode(%d, %v) = %q, want %q", tt.code, tt.isDay, got, tt.want)
		}
	}
}

func TestCapitalize(t *testing.T) {
	tests := map[string]string{
		"":              "",
		"clear sky":     "Clear sky",
		"BROKEN CLOUDS": "Broken clouds",
		"ésprit":        "Ésprit",
	}
	for in, want := range tests {
		if got := Capitalize(in); got != want {
			t.Errorf("Capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}
