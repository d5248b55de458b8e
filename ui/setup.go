package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"skycast/config"
)

const (
	stepServer = iota
	stepLocation
	stepSaving
	stepDone
)

const setupSteps = 4

// SetupModel is the first-run wizard: API address, then location, then
// geocode and save.
type SetupModel struct {
	step int
	path string
	base config.Config

	apiInput     textinput.Model
	cityInput    textinput.Model
	countryInput textinput.Model

	spinner   spinner.Model
	geocoding bool
	saving    bool
	err       string
	saved     *config.Config

	width  int
	height int

	geocode func(ctx context.Context, city, country string) (float64, float64, error)
	save    func(path string, cfg *config.Config) error
}

// NewSetupModel starts the wizard prefilled from base; the result is
// written to path.
func NewSetupModel(base *config.Config, path string) SetupModel {
	apiInput := textinput.New()
	apiInput.Placeholder = "http://127.0.0.1:5000"
	apiInput.SetValue(base.APIURL)
	apiInput.Focus()

	cityInput := textinput.New()
	cityInput.Placeholder = "e.g., Lisbon"
	cityInput.SetValue(base.Location.City)
	cityInput.Focus()

	countryInput := textinput.New()
	countryInput.Placeholder = "e.g., PT"
	countryInput.CharLimit = 2
	countryInput.SetValue(base.Location.Country)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StyleSpinner

	return SetupModel{
		step:         stepServer,
		path:         path,
		base:         *base,
		apiInput:     apiInput,
		cityInput:    cityInput,
		countryInput: countryInput,
		spinner:      sp,
		geocode:      config.Geocode,
		save:         config.Save,
	}
}

// Saved returns the written config once the wizard has finished.
func (m SetupModel) Saved() *config.Config {
	return m.saved
}

func (m SetupModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.apiInput.Width = min(40, msg.Width-20)
		m.cityInput.Width = min(30, msg.Width-20)
		m.countryInput.Width = 4

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc || msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		switch m.step {
		case stepServer:
			switch msg.Type {
			case tea.KeyEnter:
				if strings.TrimSpace(m.apiInput.Value()) != "" {
					m.step = stepLocation
				}
			default:
				var cmd tea.Cmd
				m.apiInput, cmd = m.apiInput.Update(msg)
				cmds = append(cmds, cmd)
			}

		case stepLocation:
			switch msg.Type {
			case tea.KeyEnter:
				if m.cityInput.Value() != "" && m.countryInput.Value() != "" {
					m.step = stepSaving
					m.geocoding = true
					cmds = append(cmds, m.doGeocode())
				}
			case tea.KeyTab, tea.KeyShiftTab:
				if m.cityInput.Focused() {
					m.cityInput.Blur()
					m.countryInput.Focus()
				} else {
					m.countryInput.Blur()
					m.cityInput.Focus()
				}
			default:
				var cmd1, cmd2 tea.Cmd
				m.cityInput, cmd1 = m.cityInput.Update(msg)
				m.countryInput, cmd2 = m.countryInput.Update(msg)
				cmds = append(cmds, cmd1, cmd2)
			}

		case stepSaving:
			if msg.Type == tea.KeyEnter && m.err != "" {
				m.step = stepLocation
				m.err = ""
			}

		case stepDone:
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case geocodeResultMsg:
		m.geocoding = false
		if msg.err != nil {
			m.err = msg.err.Error()
		} else {
			m.saving = true
			cmds = append(cmds, m.doSave(msg.lat, msg.lon))
		}

	case saveResultMsg:
		m.saving = false
		if msg.err != nil {
			m.err = msg.err.Error()
		} else {
			m.saved = msg.cfg
			m.step = stepDone
		}
	}

	return m, tea.Batch(cmds...)
}

func (m SetupModel) View() string {
	if m.width == 0 {
		return "Initializing setup..."
	}

	stepIndicator := StyleStepIndicator.Render(fmt.Sprintf("[%d/%d]", m.step+1, setupSteps))
	title := StyleSetupTitle.Render("Skycast Setup")
	header := lipgloss.JoinHorizontal(lipgloss.Center, stepIndicator, "  ", title)

	var content string
	switch m.step {
	case stepServer:
		content = m.renderServerStep()
	case stepLocation:
		content = m.renderLocationStep()
	case stepSaving:
		content = m.renderSavingStep()
	case stepDone:
		content = m.renderDoneStep()
	}

	footer := StyleMuted.Render("tab switch field  enter confirm  esc quit")

	centeredContent := lipgloss.Place(
		m.width-4, m.height-6,
		lipgloss.Center, lipgloss.Center,
		content,
	)

	container := lipgloss.JoinVertical(
		lipgloss.Center,
		header,
		"",
		centeredContent,
		"",
		footer,
	)

	return StyleSetupPane.Width(m.width).Render(container)
}

func (m SetupModel) renderServerStep() string {
	prompt := StylePrompt.Render("Where is the skycast API running?") + "\n\n"
	prompt += "  API URL: " + m.apiInput.View() + "\n\n"
	prompt += StyleHint.Render("Run `skycast serve` to host it locally.")
	return prompt
}

func (m SetupModel) renderLocationStep() string {
	prompt := StylePrompt.Render("Enter your location for the weather panel:") + "\n\n"
	prompt += "  City:          " + m.cityInput.View() + "\n"
	prompt += "  Country code: " + m.countryInput.View() + "\n\n"

	if m.err != "" {
		prompt += StyleError.Render("Error: "+m.err) + "\n"
		prompt += StyleHint.Render("Press Enter to go back and try again.")
	} else {
		prompt += StyleHint.Render("Example: Lisbon / PT, New York / US, London / GB")
	}

	return prompt
}

func (m SetupModel) renderSavingStep() string {
	var lines []string

	if m.geocoding {
		lines = append(lines, m.spinner.View()+" Looking up coordinates...")
	}
	if m.saving {
		lines = append(lines, m.spinner.View()+" Saving configuration...")
	}
	if m.err != "" {
		lines = append(lines, StyleError.Render("Error: "+m.err))
		lines = append(lines, StyleHint.Render("Press Enter to go back and try again."))
	}

	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m SetupModel) renderDoneStep() string {
	location := m.cityInput.Value() + ", " + strings.ToUpper(m.countryInput.Value())

	msg := StyleSuccess.Render("Setup complete!") + "\n\n"
	msg += "  API:      " + StyleAccent.Render(m.apiInput.Value()) + "\n"
	msg += "  Location: " + StyleAccent.Render(location) + "\n"
	msg += "  Saved to: " + StyleAccent.Render(m.path) + "\n\n"
	msg += StyleHint.Render("Press any key to exit...")

	return msg
}

func (m SetupModel) doGeocode() tea.Cmd {
	geocode := m.geocode
	city := m.cityInput.Value()
	country := strings.ToUpper(m.countryInput.Value())
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		lat, lon, err := geocode(ctx, city, country)
		return geocodeResultMsg{lat: lat, lon: lon, err: err}
	}
}

func (m SetupModel) doSave(lat, lon float64) tea.Cmd {
	cfg := m.base
	cfg.APIURL = strings.TrimSpace(m.apiInput.Value())
	cfg.Location = config.Location{
		City:      m.cityInput.Value(),
		Country:   strings.ToUpper(m.countryInput.Value()),
		Latitude:  lat,
		Longitude: lon,
	}
	save, path := m.save, m.path
	return func() tea.Msg {
		err := save(path, &cfg)
		return saveResultMsg{cfg: &cfg, err: err}
	}
}

type geocodeResultMsg struct {
	lat float64
	lon float64
	err error
}

type saveResultMsg struct {
	cfg *config.Config
	err error
}
