package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Conditions holds current weather data
type Conditions struct {
	City         string
	TempC        float64
	FeelsLikeC   float64
	Humidity     int
	WindSpeedKmh float64
	Description  string
	Icon         string // emoji
}

const defaultBaseURL = "https://api.open-meteo.com/v1/forecast"

var httpClient = &http.Client{Timeout: 10 * time.Second}

// Provider fetches current conditions for one location from Open-Meteo.
type Provider struct {
	City      string
	Latitude  float64
	Longitude float64

	// BaseURL overrides the forecast endpoint, mainly for tests.
	BaseURL string
}

// Current retrieves the current conditions.
func (p *Provider) Current(ctx context.Context) (*Conditions, error) {
	base := p.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(p.Latitude, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(p.Longitude, 'f', 4, 64))
	q.Set("current", "temperature_2m,relative_humidity_2m,apparent_temperature,is_day,weather_code,wind_speed_10m")
	q.Set("timezone", "auto")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open-meteo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open-meteo HTTP %d", resp.StatusCode)
	}

	var raw struct {
		Current struct {
			Temperature2m       float64 `json:"temperature_2m"`
			RelativeHumidity2m  int     `json:"relative_humidity_2m"`
			ApparentTemperature float64 `json:"apparent_temperature"`
			IsDay               int     `json:"is_day"`
			WeatherCode         int     `json:"weather_code"`
			WindSpeed10m        float64 `json:"wind_speed_10m"`
		} `json:"current"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding weather: %w", err)
	}

	c := raw.Current
	icon, desc := describeCode(c.WeatherCode, c.IsDay == 1)

	return &Conditions{
		City:         p.City,
		TempC:        c.Temperature2m,
		FeelsLikeC:   c.ApparentTemperature,
		Humidity:     c.RelativeHumidity2m,
		WindSpeedKmh: c.WindSpeed10m,
		Description:  Capitalize(desc),
		Icon:         icon,
	}, nil
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// describeCode maps WMO weather codes to emoji + description
func describeCode(code int, isDay bool) (string, string) {
	switch {
	case code == 0:
		if isDay {
			return "☀️", "clear sky"
		}
		return "🌙", "clear night"
	case code == 1:
		return "🌤️", "mainly clear"
	case code == 2:
		return "⛅", "partly cloudy"
	case code == 3:
		return "☁️", "overcast"
	case code >= 45 && code <= 48:
		return "🌫️", "fog"
	case code >= 51 && code <= 57:
		return "🌦️", "drizzle"
	case code >= 61 && code <= 67:
		return "🌧️", "rain"
	case code >= 71 && code <= 77:
		return "❄️", "snow"
	case code >= 80 && code <= 82:
		return "🌦️", "rain showers"
	case code == 95:
		return "⛈️", "thunderstorm"
	case code >= 96 && code <= 99:
		return "⛈️", "thunderstorm with hail"
	default:
		return "🌡️", "unknown"
	}
}
