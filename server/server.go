// Package server exposes current weather and headlines as the small JSON
// API the dashboard polls.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"

	"skycast/api"
	"skycast/feeds"
	"skycast/weather"
)

const (
	timeLayout    = "15:04:05"
	maxNewsLimit  = 50
	newsCacheSize = 128
)

// WeatherSource provides current conditions.
type WeatherSource interface {
	Current(ctx context.Context) (*weather.Conditions, error)
}

// NewsSource provides the latest headlines, from every feed or from one
// named feed. HeadlinesFrom returns an error wrapping feeds.ErrUnknownSource
// when no feed has that name.
type NewsSource interface {
	Headlines(ctx context.Context, limit int) ([]feeds.Headline, error)
	HeadlinesFrom(ctx context.Context, source string, limit int) ([]feeds.Headline, error)
}

// newsKey identifies one cached headline list; an empty source means all feeds.
type newsKey struct {
	source string
	limit  int
}

// Options tunes caching and logging. Zero values fall back to defaults.
type Options struct {
	WeatherTTL time.Duration
	NewsTTL    time.Duration
	NewsLimit  int
	Logger     *slog.Logger
}

// Server serves /api/weather, /api/news[/:source[/:limit]], /api/refresh-all
// and /api/status.
type Server struct {
	addr     string
	weather  WeatherSource
	news     NewsSource
	limit    int
	logger   *slog.Logger
	now      func() time.Time
	listener net.Listener
	server   *http.Server
	ctx      context.Context
	cancel   context.CancelFunc

	weatherCache *expirable.LRU[string, *weather.Conditions]
	newsCache    *expirable.LRU[newsKey, []feeds.Headline]
}

// New creates a server listening on addr once started.
func New(addr string, w WeatherSource, n NewsSource, opts Options) *Server {
	if addr == "" {
		addr = ":5000"
	}
	if opts.WeatherTTL <= 0 {
		opts.WeatherTTL = 10 * time.Minute
	}
	if opts.NewsTTL <= 0 {
		opts.NewsTTL = 5 * time.Minute
	}
	if opts.NewsLimit <= 0 {
		opts.NewsLimit = 5
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:         addr,
		weather:      w,
		news:         n,
		limit:        opts.NewsLimit,
		logger:       opts.Logger,
		now:          time.Now,
		ctx:          ctx,
		cancel:       cancel,
		weatherCache: expirable.NewLRU[string, *weather.Conditions](1, nil, opts.WeatherTTL),
		newsCache:    expirable.NewLRU[newsKey, []feeds.Headline](newsCacheSize, nil, opts.NewsTTL),
	}
}

// Handler builds the gin router.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/weather", s.handleWeather)
	r.GET("/api/news", s.handleNews)
	r.GET("/api/news/:source", s.handleNews)
	r.GET("/api/news/:source/:limit", s.handleNews)
	r.GET("/api/refresh-all", s.handleRefreshAll)
	r.GET("/api/status", s.handleStatus)
	return r
}

// Start begins serving HTTP requests in the background.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.logger.Info("api server listening", "addr", listener.Addr().String())

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server stopped", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) currentWeather(ctx context.Context) (*weather.Conditions, error) {
	if c, ok := s.weatherCache.Get("current"); ok {
		return c, nil
	}
	c, err := s.weather.Current(ctx)
	if err != nil {
		s.logger.Warn("weather fetch failed", "error", err)
		return nil, err
	}
	s.weatherCache.Add("current", c)
	return c, nil
}

func (s *Server) headlines(ctx context.Context, source string, limit int) ([]feeds.Headline, error) {
	key := newsKey{source: strings.ToLower(source), limit: limit}
	if h, ok := s.newsCache.Get(key); ok {
		return h, nil
	}
	var (
		h   []feeds.Headline
		err error
	)
	if source == "" {
		h, err = s.news.Headlines(ctx, limit)
	} else {
		h, err = s.news.HeadlinesFrom(ctx, source, limit)
	}
	if err != nil {
		if !errors.Is(err, feeds.ErrUnknownSource) {
			s.logger.Warn("news fetch failed", "source", source, "limit", limit, "error", err)
		}
		return nil, err
	}
	s.newsCache.Add(key, h)
	return h, nil
}

func (s *Server) handleWeather(c *gin.Context) {
	w, err := s.currentWeather(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Unable to fetch weather data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toWeather(w, s.now().Format(timeLayout)),
	})
}

func (s *Server) handleNews(c *gin.Context) {
	limit := s.limit
	if raw := c.Param("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "invalid limit"})
			return
		}
		limit = min(n, maxNewsLimit)
	}

	source := c.Param("source")
	h, err := s.headlines(c.Request.Context(), source, limit)
	if errors.Is(err, feeds.ErrUnknownSource) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "unknown news source"})
		return
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Unable to fetch news data"})
		return
	}
	articles := toArticles(h)
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"data":         articles,
		"count":        len(articles),
		"last_updated": s.now().Format(timeLayout),
	})
}

// handleRefreshAll always answers 200; a failed half is reported as nulls
// or an empty list.
func (s *Server) handleRefreshAll(c *gin.Context) {
	var (
		w *weather.Conditions
		h []feeds.Headline
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		w, _ = s.currentWeather(ctx)
		return nil
	})
	g.Go(func() error {
		h, _ = s.headlines(ctx, "", s.limit)
		return nil
	})
	_ = g.Wait()

	body := gin.H{
		"success":      true,
		"weather":      gin.H{"city": nil, "temp": nil, "description": nil},
		"news":         toArticles(h),
		"last_updated": s.now().Format(timeLayout),
	}
	if w != nil {
		body["weather"] = toWeather(w, "")
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "online",
		"timestamp":     s.now().Format(time.RFC3339),
		"cache_enabled": true,
	})
}

func toWeather(c *weather.Conditions, updated string) api.Weather {
	feels, humidity, wind := c.FeelsLikeC, c.Humidity, c.WindSpeedKmh
	return api.Weather{
		City:        c.City,
		Temp:        c.TempC,
		Description: c.Description,
		Icon:        c.Icon,
		FeelsLike:   &feels,
		Humidity:    &humidity,
		WindSpeed:   &wind,
		LastUpdated: updated,
	}
}

func toArticles(h []feeds.Headline) []api.Article {
	out := make([]api.Article, 0, len(h))
	for _, item := range h {
		a := api.Article{Title: item.Title, URL: item.URL}
		if item.Image != "" {
			img := item.Image
			a.Image = &img
		}
		out = append(out, a)
	}
	return out
}
