//nolint:testpackage // White-box tests require access to unexported identifiers in this package.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensigniasec/ascii-view/internal/layout"
)

func withManagedConfig(t *testing.T, content string) {
	t.Helper()
	prev := managedConfigPath
	path := filepath.Join(t.TempDir(), "config.yaml")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	managedConfigPath = path
	t.Cleanup(func() { managedConfigPath = prev })
}

func TestStorage_ClientIDPersistence(t *testing.T) {
	withManagedConfig(t, "")
	path := filepath.Join(t.TempDir(), "settings.json")

	s, err := NewStorage(path)
	require.NoError(t, err)

	// Generated on creation.
	_, err = uuid.Parse(s.Data.ClientID)
	require.NoError(t, err)

	s.Data.ClientID = "00000000-0000-4000-8000-000000000000"
	require.NoError(t, s.Save())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	require.Equal(t, "00000000-0000-4000-8000-000000000000", raw["client_id"])

	s2, err := NewStorage(path)
	require.NoError(t, err)
	require.Equal(t, "00000000-0000-4000-8000-000000000000", s2.Data.ClientID)
}

func TestStorage_Defaults(t *testing.T) {
	withManagedConfig(t, "")
	s, err := NewStorage(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)

	assert.Equal(t, 100, s.Data.Columns)
	assert.Equal(t, layout.DefaultBounds(), s.Data.Bounds)
	assert.Equal(t, CellSize{WidthPx: 8, HeightPx: 16}, s.Data.Cell)
	assert.NotNil(t, s.Data.CustomThemes)
	assert.Empty(t, s.Data.ServiceURL)
}

func TestStorage_SelfHealsInvalidFields(t *testing.T) {
	withManagedConfig(t, "")
	path := filepath.Join(t.TempDir(), "settings.json")

	raw := `{
  "client_id": "not-a-uuid",
  "service_url": "not a url",
  "columns": 5000,
  "theme": "ocean",
  "custom_themes": {
    "good": {"foreground": "#ffffff", "background": "#000000"},
    "bad": {"foreground": "white", "background": "#000000"}
  },
  "bounds": {"max_width_px": -1, "max_height_px": 600, "min_font_size_px": 6, "max_font_size_px": 24, "char_aspect_ratio": 0.6, "line_height_multiplier": 1.2},
  "cell": {"width_px": 0, "height_px": 16}
}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	s, err := NewStorage(path)
	require.NoError(t, err)

	_, err = uuid.Parse(s.Data.ClientID)
	require.NoError(t, err)
	assert.Empty(t, s.Data.ServiceURL)
	assert.Equal(t, 100, s.Data.Columns)
	assert.Equal(t, "ocean", s.Data.Theme)
	assert.Contains(t, s.Data.CustomThemes, "good")
	assert.NotContains(t, s.Data.CustomThemes, "bad")
	assert.Equal(t, layout.DefaultBounds(), s.Data.Bounds)
	assert.Equal(t, CellSize{WidthPx: 8, HeightPx: 16}, s.Data.Cell)

	// Healed file is rewritten on disk.
	s2, err := NewStorage(path)
	require.NoError(t, err)
	assert.Equal(t, s.Data, s2.Data)
}

func TestStorage_ManagedDefaults(t *testing.T) {
	withManagedConfig(t, `service_url: https://convert.example.com/api
client_id: 123e4567-e89b-12d3-a456-426614174000
theme: amber
columns: 150
`)
	path := filepath.Join(t.TempDir(), "settings.json")

	s, err := NewStorage(path)
	require.NoError(t, err)
	assert.Equal(t, "https://convert.example.com/api", s.Data.ServiceURL)
	assert.Equal(t, "123e4567-e89b-12d3-a456-426614174000", s.Data.ClientID)
	assert.Equal(t, "amber", s.Data.Theme)
	assert.Equal(t, 150, s.Data.Columns)

	// A user file overrides managed values.
	s.Data.Theme = "paper"
	require.NoError(t, s.Save())
	s2, err := NewStorage(path)
	require.NoError(t, err)
	assert.Equal(t, "paper", s2.Data.Theme)
}

func TestStorage_ManagedDefaultsDropInvalidValues(t *testing.T) {
	withManagedConfig(t, `service_url: "::::"
client_id: nope
columns: 3
theme: matrix
`)
	s, err := NewStorage(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)
	assert.Empty(t, s.Data.ServiceURL)
	assert.NotEqual(t, "nope", s.Data.ClientID)
	assert.Equal(t, 100, s.Data.Columns)
	assert.Equal(t, "matrix", s.Data.Theme)
}

func TestStorage_NewOrExistingWritesFile(t *testing.T) {
	withManagedConfig(t, "")
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	_, err := NewOrExistingStorage(path)
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestStorage_ResetKeepsClientID(t *testing.T) {
	withManagedConfig(t, "")
	s, err := NewStorage(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)
	id := s.Data.ClientID

	s.Data.Columns = 200
	s.Data.Theme = "amber"
	s.Data.CustomThemes["x"] = ThemeColors{Foreground: "#fff", Background: "#000"}
	require.NoError(t, s.Reset())

	assert.Equal(t, id, s.Data.ClientID)
	assert.Equal(t, 100, s.Data.Columns)
	assert.Empty(t, s.Data.Theme)
	assert.Empty(t, s.Data.CustomThemes)
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandTilde("~/.config/ascii-view/settings.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config/ascii-view/settings.json"), got)

	got, err = expandTilde("/abs/path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)
}
