package theme

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/ascii-view/internal/storage"
)

// Manager handles the logic for the theme commands.
type Manager struct {
	Storage *storage.Storage
}

// NewManager creates a new Manager instance.
func NewManager(storagePath string) (*Manager, error) {
	s, err := storage.NewStorage(storagePath)
	if err != nil {
		return nil, err
	}

	return &Manager{Storage: s}, nil
}

// Current resolves the theme selected in settings.
func (m *Manager) Current() (Theme, error) {
	return Resolve(m.Storage.Data.Theme, m.Storage.Data.CustomThemes)
}

// List prints every available theme to w, marking the selected one.
func (m *Manager) List(w io.Writer) {
	selected := m.Storage.Data.Theme
	if selected == "" {
		selected = DefaultName
	}
	for _, t := range All(m.Storage.Data.CustomThemes) {
		marker := " "
		if t.Name == selected {
			marker = "*"
		}
		kind := "custom"
		if t.Preset {
			kind = "preset"
		}
		fmt.Fprintf(w, "%s %-12s %s on %s (%s)\n", marker, t.Name, t.Foreground, t.Background, kind)
	}
}

// Add stores a custom theme, replacing one with the same name.
func (m *Manager) Add(name, fg, bg string) error {
	t, err := New(name, fg, bg)
	if err != nil {
		return err
	}
	logrus.Debugf("Adding theme: name=%s, fg=%s, bg=%s", t.Name, t.Foreground, t.Background)
	m.Storage.Data.CustomThemes[t.Name] = storage.ThemeColors{Foreground: t.Foreground, Background: t.Background}
	return m.Storage.Save()
}

// Remove deletes a custom theme. Removing the selected theme falls back to the default.
func (m *Manager) Remove(name string) error {
	if _, ok := m.Storage.Data.CustomThemes[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTheme, name)
	}
	logrus.Debugf("Removing theme: %s", name)
	delete(m.Storage.Data.CustomThemes, name)
	if m.Storage.Data.Theme == name {
		m.Storage.Data.Theme = ""
	}
	return m.Storage.Save()
}

// Use selects the named theme.
func (m *Manager) Use(name string) error {
	t, err := Resolve(name, m.Storage.Data.CustomThemes)
	if err != nil {
		return err
	}
	m.Storage.Data.Theme = t.Name
	return m.Storage.Save()
}

// Reset removes all custom themes and restores the default selection.
func (m *Manager) Reset() error {
	logrus.Debug("Resetting themes")
	m.Storage.Data.CustomThemes = make(map[string]storage.ThemeColors)
	m.Storage.Data.Theme = ""
	return m.Storage.Save()
}
