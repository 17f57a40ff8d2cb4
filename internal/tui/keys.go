package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Toggle    key.Binding
	SelectAll key.Binding
	Clear     key.Binding
	Pause     key.Binding
	Back      key.Binding
	Yes       key.Binding
	No        key.Binding
	Replay    key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Toggle:    key.NewBinding(key.WithKeys(" ", "space", "x"), key.WithHelp("space", "toggle")),
	SelectAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all")),
	Clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
	Pause:     key.NewBinding(key.WithKeys("p", "P"), key.WithHelp("p", "pause")),
	Back:      key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "menu")),
	Yes:       key.NewBinding(key.WithKeys("y", "Y", "enter"), key.WithHelp("y", "yes")),
	No:        key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "no")),
	Replay:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "play again")),
	Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}

func (m *Model) helpBindings() []key.Binding {
	switch m.screen {
	case screenMenu:
		return []key.Binding{keys.Up, keys.Down, keys.Enter, keys.Quit}
	case screenSelect:
		return []key.Binding{keys.Up, keys.Down, keys.Toggle, keys.SelectAll, keys.Clear, keys.Enter, keys.Back}
	case screenGame:
		if m.confirmLeave {
			return []key.Binding{keys.Yes, keys.No}
		}
		arrows := key.NewBinding(key.WithKeys("up", "down", "left", "right"), key.WithHelp("arrows/hjkl", "answer"))
		return []key.Binding{arrows, keys.Pause, keys.Back}
	case screenEvaluation:
		return []key.Binding{keys.Enter}
	case screenStats:
		return []key.Binding{keys.Replay, keys.Enter}
	case screenVoiceTest:
		return []key.Binding{keys.Back}
	default:
		return nil
	}
}
