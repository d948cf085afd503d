package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/ensigniasec/ascii-view/internal/grid"
	"github.com/ensigniasec/ascii-view/internal/theme"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch {
	case m.helpVisible:
		b.WriteString(lipgloss.NewStyle().Height(m.viewport.Height).Render(renderHelp(m)))
	case m.engine.Grid().Empty() && m.loading:
		b.WriteString(lipgloss.NewStyle().Height(m.viewport.Height).Render(
			fmt.Sprintf("%s converting %s at %d columns...", m.spinner.View(), m.filename, m.columns)))
	default:
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Render(m.filename)
	badge := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Foreground)).
		Background(lipgloss.Color(m.theme.Background)).Padding(0, 1).Render(m.theme.Name)
	line := title + " " + badge
	if m.loading {
		line += " " + m.spinner.View()
	}
	if m.anonymous {
		line += lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Render(" ANON")
	}
	return clip(line, m.width)
}

// renderStatus shows the grid size and the layout fitted to the window, or the
// last error.
func (m Model) renderStatus() string {
	if m.err != nil {
		return clip(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("error: "+m.err.Error()), m.width)
	}
	g := m.engine.Grid()
	l := m.engine.Layout()
	if g.Empty() {
		return clip(lipgloss.NewStyle().Foreground(lipgloss.Color("241")).
			Render(fmt.Sprintf("columns %d • no art yet", m.columns)), m.width)
	}
	status := fmt.Sprintf("%dx%d cells • columns %d • font %.1fpx • box %.0fx%.0fpx",
		g.MaxLineLength(), g.LineCount(), m.columns, l.FontSizePx, l.BoxWidthPx, l.BoxHeightPx)
	b := m.engine.Bounds()
	if l.BoxWidthPx > b.MaxWidthPx || l.BoxHeightPx > b.MaxHeightPx {
		status += lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Render(" • overflow, scroll with arrows")
	}
	return clip(lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(status), m.width)
}

func (m Model) renderFooter() string {
	return clip(m.help.ShortHelpView(m.keys.ShortHelp()), m.width)
}

func renderHelp(m Model) string {
	border := lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1).Foreground(lipgloss.Color("69"))
	return border.Render("Help\n\n" + m.help.FullHelpView(m.keys.FullHelp()))
}

// renderArt paints the grid in the theme colors, skipping the first xOffset
// cells of every line and clipping the rest to width.
func renderArt(g grid.CharacterGrid, t theme.Theme, xOffset, width int) string {
	if g.Empty() {
		return ""
	}
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Foreground)).
		Background(lipgloss.Color(t.Background))
	lines := g.Lines()
	out := make([]string, len(lines))
	for i, line := range lines {
		line = skipCells(strings.ReplaceAll(line, "\t", " "), xOffset)
		if width > 0 {
			line = truncate.String(line, uint(width))
			if pad := width - grid.CellWidth(line); pad > 0 {
				line += strings.Repeat(" ", pad)
			}
		}
		out[i] = style.Render(line)
	}
	return strings.Join(out, "\n")
}

// skipCells drops the first n display cells of s.
func skipCells(s string, n int) string {
	if n <= 0 {
		return s
	}
	w := 0
	for i, r := range s {
		if w >= n {
			return s[i:]
		}
		w += grid.RuneWidth(r)
	}
	return ""
}

func clip(s string, width int) string {
	if width <= 0 {
		return s
	}
	return truncate.String(s, uint(width))
}
