// Package refresh drives the periodic weather and news refresh loops of
// the dashboard.
//
// The Controller is written for the bubbletea event loop: operations mutate
// State synchronously and return a tea.Cmd for the asynchronous part
// (fetches, timers). Results come back as messages which the host model
// passes to Controller.Update. Because Update runs on a single goroutine,
// State needs no locking.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"skycast/api"
)

// AfterFunc schedules msg to be delivered after d.
type AfterFunc func(d time.Duration, msg tea.Msg) tea.Cmd

func teaAfter(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

// Controller owns the refresh State for one dashboard.
type Controller struct {
	state    State
	src      Source
	page     Page
	settings Settings
	logger   *slog.Logger
	after    AfterFunc
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	// one pending retry per kind; a newer failure or a success replaces it
	pendingRetry map[Kind]uuid.UUID
	inFlight     map[Kind]int
}

type Option func(*Controller)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithAfter replaces the timer used for ticks and retries.
func WithAfter(fn AfterFunc) Option {
	return func(c *Controller) { c.after = fn }
}

// WithClock replaces time.Now for update timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithContext sets the parent context of every request the controller issues.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) { c.ctx = ctx }
}

// New creates a controller. Loops are not started until Start (or Init).
func New(src Source, page Page, settings Settings, opts ...Option) *Controller {
	c := &Controller{
		src:          src,
		page:         page,
		settings:     settings,
		logger:       slog.Default(),
		after:        teaAfter,
		now:          time.Now,
		ctx:          context.Background(),
		pendingRetry: make(map[Kind]uuid.UUID),
		inFlight:     make(map[Kind]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(c.ctx)
	return c
}

// State returns a snapshot of the refresh state.
func (c *Controller) State() State {
	return c.state
}

// Settings returns the loop timings.
func (c *Controller) Settings() Settings {
	return c.settings
}

// Init loads both kinds once and starts the periodic loops.
func (c *Controller) Init() tea.Cmd {
	return tea.Batch(c.RefreshWeather(), c.RefreshNews(), c.Start())
}

// Close stops the loops and abandons every in-flight request.
func (c *Controller) Close() {
	c.Stop()
	c.cancel()
}

// Start schedules the weather and news loops. It is a no-op while paused
// and for any loop that is already scheduled.
func (c *Controller) Start() tea.Cmd {
	if c.state.IsPaused {
		c.logger.Info("auto-refresh is paused")
		return nil
	}

	var cmds []tea.Cmd
	for _, kind := range Kinds {
		handle := c.state.timer(kind)
		if *handle != nil {
			continue
		}
		loop := newLoop(c.ctx, kind, c.settings.Interval(kind))
		*handle = loop
		cmds = append(cmds, c.after(loop.Period, tickMsg{kind: kind, loopID: loop.ID}))
	}
	if len(cmds) > 0 {
		c.logger.Info("auto-refresh timers started",
			"weather_every", c.settings.WeatherInterval.String(),
			"news_every", c.settings.NewsInterval.String(),
		)
	}
	return tea.Batch(cmds...)
}

// Stop cancels both loops and the requests they have in flight.
func (c *Controller) Stop() {
	stopped := false
	for _, kind := range Kinds {
		handle := c.state.timer(kind)
		if *handle == nil {
			continue
		}
		(*handle).cancel()
		*handle = nil
		stopped = true
	}
	if stopped {
		c.logger.Info("auto-refresh stopped")
	}
}

// TogglePause stops the loops when running and restarts them when paused.
func (c *Controller) TogglePause() tea.Cmd {
	if c.state.IsPaused {
		c.state.IsPaused = false
		c.page.SetPaused(false)
		cmd := c.Start()
		c.page.Notify(Notification{Level: LevelInfo, Message: "Auto-refresh resumed"})
		return cmd
	}

	c.Stop()
	c.state.IsPaused = true
	c.page.SetPaused(true)
	c.page.Notify(Notification{Level: LevelInfo, Message: "Auto-refresh paused"})
	return nil
}

// RefreshWeather fetches weather once, outside the periodic loop.
func (c *Controller) RefreshWeather() tea.Cmd {
	return c.FetchAndApply(Weather)
}

// RefreshNews fetches news once, outside the periodic loop.
func (c *Controller) RefreshNews() tea.Cmd {
	return c.FetchAndApply(News)
}

// FetchAndApply fetches kind and applies the result when it arrives.
// Calls for different kinds may overlap freely.
func (c *Controller) FetchAndApply(kind Kind) tea.Cmd {
	return c.fetch(kind, c.ctx)
}

// RefreshAll fetches both kinds concurrently and reports once both are
// done. A call made while one is already running does nothing.
func (c *Controller) RefreshAll() tea.Cmd {
	if c.state.IsRefreshing {
		c.logger.Info("refresh already in progress")
		return nil
	}
	c.state.IsRefreshing = true
	c.beginFetch(Weather)
	c.beginFetch(News)

	ctx := c.ctx
	return func() tea.Msg {
		var (
			g       errgroup.Group
			weather fetchedMsg
			news    fetchedMsg
		)
		g.Go(func() error {
			weather = c.load(ctx, Weather)
			return weather.err
		})
		g.Go(func() error {
			news = c.load(ctx, News)
			return news.err
		})
		// failures travel inside each half
		_ = g.Wait()
		return refreshAllMsg{weather: weather, news: news}
	}
}

// Update handles the controller's own messages. The second return value
// reports whether msg belonged to the controller.
func (c *Controller) Update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case tickMsg:
		return c.handleTick(msg), true
	case retryMsg:
		return c.handleRetry(msg), true
	case fetchedMsg:
		c.endFetch(msg.kind)
		if canceled(msg.err) {
			c.logger.Debug("discarding abandoned fetch", "kind", msg.kind.String())
			return nil, true
		}
		return c.apply(msg), true
	case refreshAllMsg:
		return c.handleRefreshAll(msg), true
	}
	return nil, false
}

func (c *Controller) handleTick(msg tickMsg) tea.Cmd {
	loop := *c.state.timer(msg.kind)
	if loop == nil || loop.ID != msg.loopID {
		return nil
	}
	return tea.Batch(
		c.fetch(msg.kind, loop.ctx),
		c.after(loop.Period, msg),
	)
}

func (c *Controller) handleRetry(msg retryMsg) tea.Cmd {
	if token, ok := c.pendingRetry[msg.kind]; !ok || token != msg.token {
		c.logger.Debug("dropping superseded retry", "kind", msg.kind.String())
		return nil
	}
	delete(c.pendingRetry, msg.kind)
	if msg.ctx.Err() != nil {
		return nil
	}
	return c.fetch(msg.kind, msg.ctx)
}

func (c *Controller) handleRefreshAll(msg refreshAllMsg) tea.Cmd {
	c.endFetch(Weather)
	c.endFetch(News)
	defer func() { c.state.IsRefreshing = false }()

	if canceled(msg.weather.err) && canceled(msg.news.err) {
		return nil
	}

	var (
		cmds   []tea.Cmd
		failed bool
	)
	for _, res := range []fetchedMsg{msg.weather, msg.news} {
		if canceled(res.err) {
			continue
		}
		if res.err != nil {
			failed = true
		}
		cmds = append(cmds, c.apply(res))
	}

	if !failed {
		c.page.Notify(Notification{Level: LevelSuccess, Message: "Data refreshed successfully"})
	} else {
		c.page.Notify(Notification{Level: LevelError, Message: "Refresh failed"})
	}
	return tea.Batch(cmds...)
}

// apply writes a successful result to the page or hands a failure to the
// retry policy.
func (c *Controller) apply(res fetchedMsg) tea.Cmd {
	if res.err != nil {
		c.logger.Warn("refresh error", "kind", res.kind.String(), "error", res.err)
		return c.retryPolicy(res.kind, res.ctx)
	}

	switch res.kind {
	case Weather:
		w := res.weather
		c.page.SetTemperature(FormatTemperature(w.Temp))
		c.page.SetIcon(w.Icon)
		c.page.SetDescription(w.Description)
		c.page.SetDetails(FormatDetails(w))
		c.page.SetCity(w.City)
	case News:
		c.page.SetNews(res.articles)
	}

	at := c.now()
	c.state.setLastUpdate(res.kind, at)
	c.page.SetUpdated(res.kind, at)
	c.state.RetryCount = 0
	// a retry still waiting for this kind would only repeat what just succeeded
	delete(c.pendingRetry, res.kind)
	c.logger.Info("updated successfully", "kind", res.kind.String())
	return nil
}

func (c *Controller) retryPolicy(kind Kind, ctx context.Context) tea.Cmd {
	c.state.RetryCount++
	if c.state.RetryCount < c.settings.MaxRetries {
		token := uuid.New()
		c.pendingRetry[kind] = token
		c.logger.Info("retrying refresh",
			"kind", kind.String(),
			"attempt", c.state.RetryCount,
			"max", c.settings.MaxRetries,
			"delay", c.settings.RetryDelay.String(),
		)
		return c.after(c.settings.RetryDelay, retryMsg{kind: kind, token: token, ctx: ctx})
	}

	c.logger.Error("max retries reached", "kind", kind.String())
	c.page.Notify(Notification{
		Level:   LevelError,
		Message: fmt.Sprintf("Failed to update %s. Will retry later.", kind),
	})
	c.state.RetryCount = 0
	// an older retry of this kind may still be waiting; the budget is spent
	delete(c.pendingRetry, kind)
	return nil
}

func (c *Controller) fetch(kind Kind, ctx context.Context) tea.Cmd {
	c.beginFetch(kind)
	return func() tea.Msg {
		return c.load(ctx, kind)
	}
}

// load runs off the event loop; it must not touch c.state.
func (c *Controller) load(ctx context.Context, kind Kind) fetchedMsg {
	res := fetchedMsg{kind: kind, ctx: ctx}
	switch kind {
	case Weather:
		res.weather, res.err = c.src.Weather(ctx)
		if res.err == nil && res.weather == nil {
			res.err = errors.New("empty weather payload")
		}
	case News:
		res.articles, res.err = c.src.News(ctx)
	}
	return res
}

func (c *Controller) beginFetch(kind Kind) {
	c.inFlight[kind]++
	c.page.SetLoading(kind, true)
}

func (c *Controller) endFetch(kind Kind) {
	if c.inFlight[kind] > 0 {
		c.inFlight[kind]--
	}
	c.page.SetLoading(kind, c.inFlight[kind] > 0)
}

func canceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// FormatTemperature renders a temperature the way the weather panel shows it.
func FormatTemperature(temp float64) string {
	return strconv.FormatFloat(temp, 'f', -1, 64) + "°C"
}

// FormatDetails joins whichever optional readings w carries into one line,
// or returns "" when it has none.
func FormatDetails(w *api.Weather) string {
	var parts []string
	if w.FeelsLike != nil {
		parts = append(parts, "Feels like "+FormatTemperature(*w.FeelsLike))
	}
	if w.Humidity != nil {
		parts = append(parts, "Humidity "+strconv.Itoa(*w.Humidity)+"%")
	}
	if w.WindSpeed != nil {
		parts = append(parts, "Wind "+strconv.FormatFloat(*w.WindSpeed, 'f', -1, 64)+" km/h")
	}
	return strings.Join(parts, " · ")
}
