package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var blockGlyphs = map[rune][]string{
	'L': {
		"██╗     ",
		"██║     ",
		"██║     ",
		"██║     ",
		"███████╗",
		"╚══════╝",
	},
	'E': {
		"███████╗",
		"██╔════╝",
		"█████╗  ",
		"██╔══╝  ",
		"███████╗",
		"╚══════╝",
	},
	'D': {
		"██████╗ ",
		"██╔══██╗",
		"██║  ██║",
		"██║  ██║",
		"██████╔╝",
		"╚═════╝ ",
	},
	'G': {
		" ██████╗ ",
		"██╔════╝ ",
		"██║  ███╗",
		"██║   ██║",
		"╚██████╔╝",
		" ╚═════╝ ",
	},
	'R': {
		"██████╗ ",
		"██╔══██╗",
		"██████╔╝",
		"██╔══██╗",
		"██║  ██║",
		"╚═╝  ╚═╝",
	},
	'I': {
		"██╗",
		"██║",
		"██║",
		"██║",
		"██║",
		"╚═╝",
	},
	'N': {
		"███╗   ██╗",
		"████╗  ██║",
		"██╔██╗ ██║",
		"██║╚██╗██║",
		"██║ ╚████║",
		"╚═╝  ╚═══╝",
	},
}

// renderBlockTitle draws the app name in block letters, alternating coral
// and yellow per letter. Narrow terminals get a plain one-line title.
func renderBlockTitle(width int) string {
	raw, segments := composeBlockWord("LEDGERLINE")
	if width > 0 && len([]rune(raw[0])) > width {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#F47A60")).Bold(true).Render("ledgerline")
	}
	return renderStyledBlockTitle(raw, segments)
}

func composeBlockWord(word string) ([]string, [][2]int) {
	rows := make([]string, 6)
	segments := make([][2]int, 0, len(word))
	col := 0
	for _, ch := range word {
		glyph, ok := blockGlyphs[ch]
		if !ok {
			continue
		}
		w := len([]rune(glyph[0]))
		for i := range rows {
			rows[i] += glyph[i]
		}
		segments = append(segments, [2]int{col, col + w - 1})
		col += w
	}
	return rows, segments
}

func renderStyledBlockTitle(raw []string, segments [][2]int) string {
	blue := lipgloss.NewStyle().Foreground(lipgloss.Color("#5FA8FF")).Bold(true)
	coral := lipgloss.NewStyle().Foreground(lipgloss.Color("#F47A60")).Bold(true)
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD54A")).Bold(true)

	rows := make([]string, 0, len(raw))
	for _, line := range raw {
		var out strings.Builder
		for idx, ch := range []rune(line) {
			if ch == ' ' {
				out.WriteRune(' ')
				continue
			}
			if isStrokeRune(ch) {
				out.WriteString(blue.Render(string(ch)))
				continue
			}
			fill := coral
			if segmentForIndex(idx, segments)%2 == 1 {
				fill = yellow
			}
			out.WriteString(fill.Render(string(ch)))
		}
		rows = append(rows, out.String())
	}
	return strings.Join(rows, "\n")
}

func isStrokeRune(ch rune) bool {
	switch ch {
	case '╔', '╗', '╚', '╝', '║', '═':
		return true
	default:
		return false
	}
}

func segmentForIndex(index int, segments [][2]int) int {
	for i, s := range segments {
		if index >= s[0] && index <= s[1] {
			return i
		}
	}
	return 0
}
