package ui

import (
	"time"

	"skycast/api"
	"skycast/refresh"
)

// Board holds what the dashboard displays. The refresh controller writes
// to it through the refresh.Page methods; View reads it.
type Board struct {
	Temperature string
	Icon        string
	Description string
	Details     string
	City        string
	News        []api.Article

	WeatherUpdated time.Time
	NewsUpdated    time.Time

	Paused bool

	loading   map[refresh.Kind]bool
	notice    *refresh.Notification
	expiry    time.Time
	noticeFor time.Duration
	noticeSeq int
	now       func() time.Time
}

// NewBoard returns an empty board whose notifications stay visible for d.
func NewBoard(d time.Duration) *Board {
	if d <= 0 {
		d = 3 * time.Second
	}
	return &Board{
		Temperature: "--",
		loading:     make(map[refresh.Kind]bool),
		noticeFor:   d,
		now:         time.Now,
	}
}

func (b *Board) SetTemperature(text string) { b.Temperature = text }

func (b *Board) SetIcon(icon string) { b.Icon = icon }

func (b *Board) SetDescription(text string) { b.Description = text }

func (b *Board) SetDetails(text string) { b.Details = text }

func (b *Board) SetCity(text string) { b.City = text }

// SetNews replaces the whole list.
func (b *Board) SetNews(articles []api.Article) {
	b.News = append([]api.Article(nil), articles...)
}

func (b *Board) SetUpdated(kind refresh.Kind, at time.Time) {
	switch kind {
	case refresh.Weather:
		b.WeatherUpdated = at
	case refresh.News:
		b.NewsUpdated = at
	}
}

func (b *Board) SetLoading(kind refresh.Kind, loading bool) {
	if loading {
		b.loading[kind] = true
		return
	}
	delete(b.loading, kind)
}

func (b *Board) SetPaused(paused bool) { b.Paused = paused }

func (b *Board) Notify(n refresh.Notification) {
	b.notice = &n
	b.noticeSeq++
	b.expiry = b.now().Add(b.noticeFor)
}

// Loading reports whether kind has a fetch outstanding.
func (b *Board) Loading(kind refresh.Kind) bool {
	return b.loading[kind]
}

// Busy reports whether any fetch is outstanding.
func (b *Board) Busy() bool {
	return len(b.loading) > 0
}

// Notice returns the current notification, if it has not expired.
func (b *Board) Notice() (refresh.Notification, bool) {
	if b.notice == nil || !b.now().Before(b.expiry) {
		return refresh.Notification{}, false
	}
	return *b.notice, true
}

// NoticeDuration is how long a notification stays visible.
func (b *Board) NoticeDuration() time.Duration {
	return b.noticeFor
}

var _ refresh.Page = (*Board)(nil)
