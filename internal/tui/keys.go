package tui

import "github.com/charmbracelet/bubbles/key"

type timelineKeyMap struct {
	Scroll  key.Binding
	Older   key.Binding
	Jump    key.Binding
	Today   key.Binding
	Retry   key.Binding
	Command key.Binding
	Help    key.Binding
	Back    key.Binding
	Quit    key.Binding
}

func newTimelineKeyMap() timelineKeyMap {
	return timelineKeyMap{
		Scroll: key.NewBinding(
			key.WithKeys("up", "down", "k", "j", "pgup", "pgdown"),
			key.WithHelp("↑/↓", "scroll"),
		),
		Older: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "load older"),
		),
		Jump: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "jump to date"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry/refresh"),
		),
		Command: key.NewBinding(
			key.WithKeys("/", ":"),
			key.WithHelp("/", "command"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k timelineKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Older, k.Jump, k.Today, k.Retry, k.Back, k.Help}
}

func (k timelineKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Scroll, k.Older, k.Jump, k.Today},
		{k.Retry, k.Command, k.Back, k.Quit, k.Help},
	}
}

// setLoading disables the keys that issue a window fetch.
func (k *timelineKeyMap) setLoading(loading bool) {
	k.Older.SetEnabled(!loading)
	k.Jump.SetEnabled(!loading)
	k.Today.SetEnabled(!loading)
}
