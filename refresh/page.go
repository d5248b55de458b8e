package refresh

import (
	"context"
	"time"

	"skycast/api"
)

// Source fetches the two data kinds. *client.Client implements it.
type Source interface {
	Weather(ctx context.Context) (*api.Weather, error)
	News(ctx context.Context) ([]api.Article, error)
}

// Level is the severity of a user-visible notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notification is a transient message shown to the user.
type Notification struct {
	Level   Level
	Message string
}

// Page is the set of display regions the controller writes to.
type Page interface {
	SetTemperature(text string)
	SetIcon(icon string)
	SetDescription(text string)
	SetDetails(text string)
	SetCity(text string)
	SetNews(articles []api.Article)
	SetUpdated(kind Kind, at time.Time)
	SetLoading(kind Kind, loading bool)
	SetPaused(paused bool)
	Notify(n Notification)
}
