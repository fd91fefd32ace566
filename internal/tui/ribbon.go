package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lachiem1/ledgerline/internal/timeline"
)

const ribbonDays = 7

// dateRibbon follows the topmost visible day. The tracker callback writes
// focus during Update, so it is only touched on the event loop.
type dateRibbon struct {
	focus timeline.Day
}

func (r *dateRibbon) setFocus(d timeline.Day) {
	r.focus = d
}

// ribbonDaysAround returns ribbonDays days centred on focus, oldest first.
func ribbonDaysAround(focus timeline.Day) []timeline.Day {
	half := ribbonDays / 2
	out := make([]timeline.Day, 0, ribbonDays)
	for i := -half; i <= half; i++ {
		d, err := focus.AddDays(i)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	return out
}

func renderRibbon(focus timeline.Day, width int) string {
	if focus.IsZero() {
		return ""
	}
	base := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")).Padding(0, 1)
	selected := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#1B2330")).
		Background(lipgloss.Color("#87CEEB")).
		Bold(true).
		Padding(0, 1)

	cells := make([]string, 0, ribbonDays)
	for _, d := range ribbonDaysAround(focus) {
		label := ribbonLabel(d)
		if d == focus {
			cells = append(cells, selected.Render(label))
			continue
		}
		cells = append(cells, base.Render(label))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, cells...)

	month := lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true).Render(monthLabel(focus))
	out := strings.Join([]string{month, row}, "\n")
	if width > 0 {
		out = lipgloss.PlaceHorizontal(width, lipgloss.Center, out)
	}
	return out
}

func ribbonLabel(d timeline.Day) string {
	t := d.Start(time.UTC)
	if t.IsZero() {
		return string(d)
	}
	return t.Format("Mon 02")
}

func monthLabel(d timeline.Day) string {
	t := d.Start(time.UTC)
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2006")
}
