package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/ascii-view/internal/api"
	"github.com/ensigniasec/ascii-view/internal/layout"
	"github.com/ensigniasec/ascii-view/internal/theme"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) { // nolint:ireturn
	switch x := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(x.Width, x.Height)
		return m, nil

	case convertedMsg:
		if x.seq != m.seq {
			logrus.Debugf("dropping stale conversion reply %d (current %d)", x.seq, m.seq)
			return m, nil
		}
		m.loading = false
		if x.err != nil {
			m.err = x.err
			return m, nil
		}
		m.err = nil
		if _, err := m.engine.Handle(layout.GridArrived{Raw: x.raw}); err != nil {
			m.err = err
		}
		m.refreshContent()
		m.viewport.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(x)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(x)
	}

	return m, nil
}

// handleKey processes key bindings and returns updated model and command.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) { // nolint:ireturn
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.helpVisible = !m.helpVisible
		m.help.ShowAll = m.helpVisible
		return m, nil

	case key.Matches(msg, m.keys.Wider):
		return m.changeColumns(columnStep)

	case key.Matches(msg, m.keys.Narrower):
		return m.changeColumns(-columnStep)

	case key.Matches(msg, m.keys.Theme):
		m.theme = theme.Next(m.theme.Name, m.custom)
		m.refreshContent()
		return m, nil

	case key.Matches(msg, m.keys.Left):
		m.scrollHorizontal(-horizontalStep)
		return m, nil

	case key.Matches(msg, m.keys.Right):
		m.scrollHorizontal(horizontalStep)
		return m, nil
	}

	// Vertical scrolling is left to the viewport's own bindings.
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// changeColumns requests a new conversion at columns+delta. Requests already
// in flight are superseded.
func (m Model) changeColumns(delta int) (Model, tea.Cmd) {
	next := api.ClampColumns(m.columns + delta)
	if next == m.columns {
		return m, nil
	}
	m.columns = next
	m.seq++
	m.loading = true
	return m, tea.Batch(m.spinner.Tick, m.convertCmd())
}

// resize turns the terminal area left for the art into pixel bounds and
// delivers them to the engine.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	rows := height - headerLines - footerLines
	if rows < minViewportRows {
		rows = minViewportRows
	}
	m.viewport.Width = width
	m.viewport.Height = rows

	w, h := layout.CellRegion(width, rows, m.cell.WidthPx, m.cell.HeightPx)
	if _, err := m.engine.Handle(layout.BoundsChanged{Bounds: m.bounds.WithRegion(w, h)}); err != nil {
		// The previous layout stays; report why it was not refitted.
		logrus.Debugf("ignoring resize to %dx%d: %v", width, height, err)
		m.err = err
	} else if errors.Is(m.err, layout.ErrInvalidConfiguration) {
		m.err = nil
	}
	m.clampXOffset()
	m.refreshContent()
}

func (m *Model) scrollHorizontal(delta int) {
	m.xOffset += delta
	m.clampXOffset()
	m.refreshContent()
}

func (m *Model) clampXOffset() {
	maxOffset := m.engine.Grid().MaxLineLength() - m.viewport.Width
	if m.xOffset > maxOffset {
		m.xOffset = maxOffset
	}
	if m.xOffset < 0 {
		m.xOffset = 0
	}
}

func (m *Model) refreshContent() {
	m.viewport.SetContent(renderArt(m.engine.Grid(), m.theme, m.xOffset, m.viewport.Width))
}
