package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the dashboard key bindings with built-in help text.
type KeyMap struct {
	Quit           key.Binding
	RefreshAll     key.Binding
	RefreshWeather key.Binding
	RefreshNews    key.Binding
	Pause          key.Binding
	Start          key.Binding
	Stop           key.Binding
	Up             key.Binding
	Down           key.Binding
	Open           key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		RefreshAll: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		RefreshWeather: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "weather"),
		),
		RefreshNews: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "news"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", " ", "space"),
			key.WithHelp("p", "pause/resume"),
		),
		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start"),
		),
		Stop: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "stop"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open in browser"),
		),
	}
}

// ShortHelp lists the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Open, k.RefreshAll, k.RefreshWeather, k.RefreshNews, k.Pause, k.Start, k.Stop, k.Quit}
}
