// Package api holds the JSON shapes exchanged between the skycast server
// and the dashboard.
package api

import "encoding/json"

// Envelope is the common response wrapper. Data is decoded lazily so the
// same envelope serves both endpoints.
type Envelope struct {
	Success     bool            `json:"success"`
	Data        json.RawMessage `json:"data,omitempty"`
	Error       string          `json:"error,omitempty"`
	Count       int             `json:"count,omitempty"`
	LastUpdated string          `json:"last_updated,omitempty"`
}

// Weather is the payload of GET /api/weather. The detail fields are
// optional; a server that omits them still yields a usable Weather.
type Weather struct {
	City        string   `json:"city"`
	Temp        float64  `json:"temp"`
	Description string   `json:"description"`
	Icon        string   `json:"icon,omitempty"`
	FeelsLike   *float64 `json:"feels_like,omitempty"`
	Humidity    *int     `json:"humidity,omitempty"`
	WindSpeed   *float64 `json:"wind_speed,omitempty"` // km/h
	LastUpdated string   `json:"last_updated,omitempty"`
}

// Article is one entry of GET /api/news.
type Article struct {
	Title string  `json:"title"`
	URL   string  `json:"url"`
	Image *string `json:"image"`
}

// HasImage reports whether the article carries an image URL.
func (a Article) HasImage() bool {
	return a.Image != nil && *a.Image != ""
}
