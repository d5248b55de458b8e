package refresh

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind identifies one of the two data feeds the controller refreshes.
type Kind int

const (
	Weather Kind = iota
	News
)

// Kinds lists every refreshable kind in display order.
var Kinds = []Kind{Weather, News}

func (k Kind) String() string {
	switch k {
	case Weather:
		return "weather"
	case News:
		return "news"
	default:
		return "unknown"
	}
}

// Settings are the timing knobs of the refresh loops.
type Settings struct {
	WeatherInterval time.Duration
	NewsInterval    time.Duration
	RetryDelay      time.Duration
	MaxRetries      int
}

// DefaultSettings mirrors the stock dashboard: weather every 10 minutes,
// news every 5, three attempts spaced 5 seconds apart.
func DefaultSettings() Settings {
	return Settings{
		WeatherInterval: 600 * time.Second,
		NewsInterval:    300 * time.Second,
		RetryDelay:      5 * time.Second,
		MaxRetries:      3,
	}
}

// Interval returns the period of the loop for kind.
func (s Settings) Interval(kind Kind) time.Duration {
	if kind == Weather {
		return s.WeatherInterval
	}
	return s.NewsInterval
}

// Loop is the handle of one scheduled periodic loop. Ticks carry the
// loop ID; a tick whose ID no longer matches the live handle is stale and
// is dropped, which is how a stopped loop stays stopped.
type Loop struct {
	ID     uuid.UUID
	Kind   Kind
	Period time.Duration

	// ctx scopes the requests issued by this loop and its retries.
	ctx    context.Context
	cancel context.CancelFunc
}

func newLoop(parent context.Context, kind Kind, period time.Duration) *Loop {
	ctx, cancel := context.WithCancel(parent)
	return &Loop{
		ID:     uuid.New(),
		Kind:   kind,
		Period: period,
		ctx:    ctx,
		cancel: cancel,
	}
}

// State is the mutable refresh state. It is only touched from the
// bubbletea Update loop.
//
// WeatherTimer and NewsTimer are non-nil iff the corresponding loop is
// scheduled. RetryCount stays within [0, Settings.MaxRetries].
type State struct {
	WeatherTimer *Loop
	NewsTimer    *Loop

	IsRefreshing bool
	IsPaused     bool
	RetryCount   int

	// zero means never updated
	LastWeatherUpdate time.Time
	LastNewsUpdate    time.Time
}

// Running reports whether any periodic loop is scheduled.
func (s State) Running() bool {
	return s.WeatherTimer != nil || s.NewsTimer != nil
}

// LastUpdate returns the last successful fetch time for kind.
func (s State) LastUpdate(kind Kind) time.Time {
	if kind == Weather {
		return s.LastWeatherUpdate
	}
	return s.LastNewsUpdate
}

func (s *State) timer(kind Kind) **Loop {
	if kind == Weather {
		return &s.WeatherTimer
	}
	return &s.NewsTimer
}

func (s *State) setLastUpdate(kind Kind, t time.Time) {
	if kind == Weather {
		s.LastWeatherUpdate = t
	} else {
		s.LastNewsUpdate = t
	}
}
