// ABOUTME: Key bindings for the flow timer.
// ABOUTME: Bindings double as the help footer entries.
package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Start   key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Pause   key.Binding
	Capture key.Binding
	Break   key.Binding
	Finish  key.Binding
	Reset   key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Start: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "start"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "begin focus"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Pause: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "pause/resume"),
	),
	Capture: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "capture thought"),
	),
	Break: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "take break"),
	),
	Finish: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "finish"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Pause, k.Capture, k.Reset, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Confirm, k.Cancel},
		{k.Pause, k.Capture, k.Reset},
		{k.Break, k.Finish, k.Quit},
	}
}
