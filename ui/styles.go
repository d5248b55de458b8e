package ui

import "github.com/charmbracelet/lipgloss"

// Color palette — dark terminal friendly
var (
	colorBg     = lipgloss.Color("#0d1117")
	colorPanel  = lipgloss.Color("#161b22")
	colorBorder = lipgloss.Color("#30363d")
	colorAccent = lipgloss.Color("#58a6ff")
	colorGold   = lipgloss.Color("#d29922")
	colorGreen  = lipgloss.Color("#3fb950")
	colorRed    = lipgloss.Color("#f85149")
	colorYellow = lipgloss.Color("#e3b341")
	colorMuted  = lipgloss.Color("#8b949e")
	colorWhite  = lipgloss.Color("#e6edf3")

	// Backgrounds for notifications
	bgSuccess = lipgloss.Color("#1a3622")
	bgError   = lipgloss.Color("#b91c1c")
	bgInfo    = lipgloss.Color("#1e3a5f")
)

var (
	// Layout
	StyleHeader = lipgloss.NewStyle().
			Background(colorBg).
			Foreground(colorWhite).
			Padding(0, 1)

	StyleTitle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	StyleSubtitle = lipgloss.NewStyle().
			Foreground(colorMuted)

	StyleFooter = lipgloss.NewStyle().
			Foreground(colorMuted).
			Background(colorBg).
			Padding(0, 1)

	StylePanelTitle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Background(colorPanel).
			Bold(true).
			Padding(0, 1)

	StylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	// Refresh state badges
	StyleLive = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	StylePaused = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	// Content styles
	StyleNewsTitle = lipgloss.NewStyle().
			Foreground(colorWhite)

	StyleSelected = lipgloss.NewStyle().
			Foreground(colorGold).
			Bold(true)

	StyleAge = lipgloss.NewStyle().
			Foreground(colorMuted)

	StyleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	StyleError = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	StyleSpinner = lipgloss.NewStyle().
			Foreground(colorAccent)

	// Weather-specific
	StyleWeatherTemp = lipgloss.NewStyle().
				Foreground(colorWhite).
				Bold(true)

	StyleWeatherDesc = lipgloss.NewStyle().
				Foreground(colorAccent)

	StyleCity = lipgloss.NewStyle().
			Foreground(colorGold)

	// Notifications
	StyleNoticeSuccess = lipgloss.NewStyle().
				Foreground(colorWhite).
				Background(bgSuccess).
				Padding(0, 1)

	StyleNoticeError = lipgloss.NewStyle().
				Foreground(colorWhite).
				Background(bgError).
				Bold(true).
				Padding(0, 1)

	StyleNoticeInfo = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(bgInfo).
			Padding(0, 1)

	// Setup wizard
	StyleSetupPane = lipgloss.NewStyle().
			Padding(1, 2)

	StyleSetupTitle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	StyleStepIndicator = lipgloss.NewStyle().
				Foreground(colorMuted)

	StylePrompt = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	StyleAccent = lipgloss.NewStyle().
			Foreground(colorAccent)

	StyleHint = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)
)
