package ui

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"skycast/config"
	"skycast/refresh"
)

// openURLMsg reports that a browser was launched for url
type openURLMsg struct{ url string }

// clearStatusMsg triggers a redraw once a notification has expired
type clearStatusMsg struct{}

// Model is the root bubbletea model
type Model struct {
	cfg    *config.Config
	ctrl   *refresh.Controller
	board  *Board
	keys   KeyMap
	logger *slog.Logger

	width    int
	height   int
	selected int

	spinner spinner.Model
	open    func(url string) tea.Cmd
}

// NewModel wires a refresh controller reading from src to a fresh board.
// opts are passed through to the controller.
func NewModel(cfg *config.Config, src refresh.Source, logger *slog.Logger, opts ...refresh.Option) Model {
	if logger == nil {
		logger = slog.Default()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StyleSpinner

	board := NewBoard(cfg.NotifyDuration)
	opts = append([]refresh.Option{refresh.WithLogger(logger)}, opts...)
	ctrl := refresh.New(src, board, SettingsFrom(cfg), opts...)

	return Model{
		cfg:     cfg,
		ctrl:    ctrl,
		board:   board,
		keys:    DefaultKeyMap(),
		logger:  logger,
		spinner: sp,
		open:    openURL,
	}
}

// SettingsFrom converts the loop timings of cfg.
func SettingsFrom(cfg *config.Config) refresh.Settings {
	s := refresh.DefaultSettings()
	if cfg.WeatherInterval > 0 {
		s.WeatherInterval = cfg.WeatherInterval
	}
	if cfg.NewsInterval > 0 {
		s.NewsInterval = cfg.NewsInterval
	}
	if cfg.RetryDelay > 0 {
		s.RetryDelay = cfg.RetryDelay
	}
	if cfg.MaxRetries > 0 {
		s.MaxRetries = cfg.MaxRetries
	}
	return s
}

// Board exposes what the dashboard currently shows.
func (m Model) Board() *Board { return m.board }

// Controller exposes the refresh controller driving the dashboard.
func (m Model) Controller() *refresh.Controller { return m.ctrl }

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.ctrl.Init(),
	)
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

// ─── Update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	seq := m.board.noticeSeq

	if cmd, ok := m.ctrl.Update(msg); ok {
		cmds = append(cmds, cmd)
		m.selected = clampIndex(m.selected, len(m.board.News))
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.ctrl.Close()
			return m, tea.Quit
		case key.Matches(msg, m.keys.RefreshAll):
			cmds = append(cmds, m.ctrl.RefreshAll())
		case key.Matches(msg, m.keys.RefreshWeather):
			cmds = append(cmds, m.ctrl.RefreshWeather())
		case key.Matches(msg, m.keys.RefreshNews):
			cmds = append(cmds, m.ctrl.RefreshNews())
		case key.Matches(msg, m.keys.Pause):
			cmds = append(cmds, m.ctrl.TogglePause())
		case key.Matches(msg, m.keys.Start):
			if m.board.Paused {
				m.board.Notify(refresh.Notification{Level: refresh.LevelInfo, Message: "Auto-refresh is paused, press p to resume"})
			} else {
				cmds = append(cmds, m.ctrl.Start())
			}
		case key.Matches(msg, m.keys.Stop):
			m.ctrl.Stop()
			m.board.Notify(refresh.Notification{Level: refresh.LevelInfo, Message: "Auto-refresh stopped"})
		case key.Matches(msg, m.keys.Down):
			m.selected = clampIndex(m.selected+1, len(m.board.News))
		case key.Matches(msg, m.keys.Up):
			m.selected = clampIndex(m.selected-1, len(m.board.News))
		case key.Matches(msg, m.keys.Open):
			if m.selected < len(m.board.News) {
				item := m.board.News[m.selected]
				if item.URL != "" {
					cmds = append(cmds, m.open(item.URL))
					m.board.Notify(refresh.Notification{Level: refresh.LevelInfo, Message: "Opening: " + truncate(item.Title, 60)})
				} else {
					m.board.Notify(refresh.Notification{Level: refresh.LevelError, Message: "No URL available for this article"})
				}
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case openURLMsg:
		m.logger.Debug("opened article", "url", msg.url)

	case clearStatusMsg:
		// nothing to do; the redraw drops the expired notification
	}

	if m.board.noticeSeq != seq {
		cmds = append(cmds, clearStatusAfter(m.board.NoticeDuration()))
	}
	return m, tea.Batch(cmds...)
}

// ─── View ─────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing Skycast..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderBody(),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	loadStr := ""
	if m.board.Busy() {
		loadStr = "  " + m.spinner.View() + " loading..."
	}
	state := StyleLive.Render("● live")
	if m.board.Paused {
		state = StylePaused.Render("❚❚ paused")
	} else if !m.ctrl.State().Running() {
		state = StyleMuted.Render("○ stopped")
	}
	title := StyleTitle.Render("⛅ SKYCAST")
	right := StyleSubtitle.Render(state + loadStr)
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	return StyleHeader.Width(m.width).Render(
		title + strings.Repeat(" ", gap) + right,
	)
}

func (m Model) renderBody() string {
	contentH := m.height - 4
	if contentH < 8 {
		contentH = 8
	}
	innerW := m.width - 2

	// side by side when there is room, stacked otherwise
	if innerW >= 80 {
		leftW := innerW / 3
		rightW := innerW - leftW - 1
		left := m.panelBox("🌤  WEATHER", m.renderWeatherPanel(leftW-4), leftW, contentH-3)
		right := m.panelBox("📰  NEWS", m.renderNewsPanel(rightW-4, contentH-5), rightW, contentH-3)
		return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	}

	weatherH := 7
	left := m.panelBox("🌤  WEATHER", m.renderWeatherPanel(innerW-4), innerW, weatherH)
	newsH := contentH - weatherH - 6
	if newsH < 3 {
		newsH = 3
	}
	right := m.panelBox("📰  NEWS", m.renderNewsPanel(innerW-4, newsH-2), innerW, newsH)
	return lipgloss.JoinVertical(lipgloss.Left, left, right)
}

// panelBox wraps content in a rounded border with a colored title bar
func (m Model) panelBox(title, content string, w, h int) string {
	titleLine := StylePanelTitle.Width(w).Render(title)
	body := StylePanel.Width(w).Height(h).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, titleLine, body)
}

func (m Model) renderWeatherPanel(w int) string {
	var sb strings.Builder

	temp := m.board.Temperature
	if m.board.Loading(refresh.Weather) && m.board.WeatherUpdated.IsZero() {
		temp = m.spinner.View()
	}
	if m.board.Icon != "" {
		temp = m.board.Icon + " " + temp
	}
	sb.WriteString(StyleWeatherTemp.Render(temp) + "\n")
	if m.board.Description != "" {
		sb.WriteString(StyleWeatherDesc.Render(truncate(m.board.Description, w)) + "\n")
	}
	if m.board.Details != "" {
		sb.WriteString(StyleMuted.Render(truncate(m.board.Details, w)) + "\n")
	}
	if m.board.City != "" {
		sb.WriteString(StyleCity.Render("📍 "+truncate(m.board.City, w-3)) + "\n")
	}
	sb.WriteString("\n" + StyleAge.Render(updatedLabel(m.board.WeatherUpdated)))
	return sb.String()
}

func (m Model) renderNewsPanel(w, h int) string {
	var sb strings.Builder

	news := m.board.News
	if len(news) == 0 {
		if m.board.Loading(refresh.News) {
			sb.WriteString(m.spinner.View() + " fetching headlines...\n")
		} else {
			sb.WriteString(StyleMuted.Render("No headlines") + "\n")
		}
	}

	maxRows := h - 2
	if maxRows < 1 {
		maxRows = 1
	}
	// keep the selection inside the visible window
	start := 0
	if m.selected >= maxRows {
		start = m.selected - maxRows + 1
	}
	for i := start; i < len(news) && i < start+maxRows; i++ {
		a := news[i]
		marker := "  "
		if a.HasImage() {
			marker = "🖼 "
		}
		line := marker + truncate(a.Title, w-4)
		if i == m.selected {
			sb.WriteString(StyleSelected.Render("▸ "+line) + "\n")
		} else {
			sb.WriteString(StyleNewsTitle.Render("  "+line) + "\n")
		}
	}

	sb.WriteString("\n" + StyleAge.Render(updatedLabel(m.board.NewsUpdated)))
	return sb.String()
}

func (m Model) renderFooter() string {
	if n, ok := m.board.Notice(); ok {
		return noticeStyle(n.Level).Width(m.width).Render("  " + noticeIcon(n.Level) + " " + n.Message)
	}
	var parts []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return StyleFooter.Width(m.width).Render("  " + strings.Join(parts, "  "))
}

// ─── Tea commands ─────────────────────────────────────────────────────────────

// openURL opens a URL in the system default browser
func openURL(url string) tea.Cmd {
	return func() tea.Msg {
		// errors are ignored so a missing browser never takes down the TUI
		for _, candidate := range []string{"xdg-open", "open", "start"} {
			if _, err := exec.LookPath(candidate); err == nil {
				_ = exec.Command(candidate, url).Start()
				break
			}
		}
		return openURLMsg{url: url}
	}
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func updatedLabel(t time.Time) string {
	if t.IsZero() {
		return "Updated: never"
	}
	return fmt.Sprintf("Updated: %s", t.Format("15:04:05"))
}

func noticeStyle(l refresh.Level) lipgloss.Style {
	switch l {
	case refresh.LevelSuccess:
		return StyleNoticeSuccess
	case refresh.LevelError:
		return StyleNoticeError
	default:
		return StyleNoticeInfo
	}
}

func noticeIcon(l refresh.Level) string {
	switch l {
	case refresh.LevelSuccess:
		return "✓"
	case refresh.LevelError:
		return "✗"
	default:
		return "ℹ"
	}
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func truncate(s string, n int) string {
	if n <= 1 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
