package theme

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensigniasec/ascii-view/internal/storage"
)

func TestResolve(t *testing.T) {
	custom := map[string]storage.ThemeColors{
		"mine":  {Foreground: "#123456", Background: "#abcdef"},
		"amber": {Foreground: "#000000", Background: "#ffffff"},
	}

	tests := []struct {
		name    string
		in      string
		wantFG  string
		wantErr error
	}{
		{name: "empty selects default", in: "", wantFG: "#00ff00"},
		{name: "preset", in: "ocean", wantFG: "#7fdbff"},
		{name: "custom", in: "mine", wantFG: "#123456"},
		{name: "preset shadows custom", in: "amber", wantFG: "#ffb000"},
		{name: "unknown", in: "nope", wantErr: ErrUnknownTheme},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.in, custom)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFG, got.Foreground)
		})
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New("night", "#fff", "#000")
	require.NoError(t, err)

	_, err = New("night", "white", "#000")
	require.ErrorIs(t, err, ErrInvalidTheme)

	_, err = New("", "#fff", "#000")
	require.ErrorIs(t, err, ErrInvalidTheme)

	_, err = New("matrix", "#fff", "#000")
	require.ErrorIs(t, err, ErrReservedName)
}

func TestAllAndNext(t *testing.T) {
	custom := map[string]storage.ThemeColors{
		"zz": {Foreground: "#111111", Background: "#222222"},
		"aa": {Foreground: "#333333", Background: "#444444"},
	}
	all := All(custom)
	names := make([]string, 0, len(all))
	for _, th := range all {
		names = append(names, th.Name)
	}
	assert.Equal(t, []string{"matrix", "amber", "paper", "ocean", "mono", "aa", "zz"}, names)

	assert.Equal(t, "amber", Next("matrix", custom).Name)
	assert.Equal(t, "aa", Next("mono", custom).Name)
	assert.Equal(t, "matrix", Next("zz", custom).Name)
	assert.Equal(t, "matrix", Next("unknown", custom).Name)
}

func TestPresetsReturnsCopy(t *testing.T) {
	p := Presets()
	p[0].Name = "changed"
	assert.Equal(t, "matrix", Presets()[0].Name)
}

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	m, err := NewManager(path)
	require.NoError(t, err)
	return m, path
}

func TestManager_AddPersistsAndLists(t *testing.T) {
	m, path := newTestManager(t)
	require.NoError(t, m.Add("night", "#abcdef", "#000000"))

	m2, err := NewManager(path)
	require.NoError(t, err)
	require.Contains(t, m2.Storage.Data.CustomThemes, "night")

	var buf bytes.Buffer
	m2.List(&buf)
	out := buf.String()
	assert.Contains(t, out, "* matrix")
	assert.Contains(t, out, "night")
	assert.Contains(t, out, "(custom)")
	assert.Contains(t, out, "(preset)")
}

func TestManager_AddRejectsInvalid(t *testing.T) {
	m, _ := newTestManager(t)
	require.ErrorIs(t, m.Add("night", "nope", "#000000"), ErrInvalidTheme)
	require.ErrorIs(t, m.Add("paper", "#ffffff", "#000000"), ErrReservedName)
	assert.Empty(t, m.Storage.Data.CustomThemes)
}

func TestManager_UseAndRemove(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Add("night", "#abcdef", "#000000"))
	require.NoError(t, m.Use("night"))

	cur, err := m.Current()
	require.NoError(t, err)
	assert.Equal(t, "night", cur.Name)

	require.NoError(t, m.Remove("night"))
	cur, err = m.Current()
	require.NoError(t, err)
	assert.Equal(t, DefaultName, cur.Name)

	require.ErrorIs(t, m.Remove("night"), ErrUnknownTheme)
	require.ErrorIs(t, m.Use("nope"), ErrUnknownTheme)
}

func TestManager_Reset(t *testing.T) {
	m, path := newTestManager(t)
	require.NoError(t, m.Add("night", "#abcdef", "#000000"))
	require.NoError(t, m.Use("ocean"))
	require.NoError(t, m.Reset())

	m2, err := NewManager(path)
	require.NoError(t, err)
	assert.Empty(t, m2.Storage.Data.CustomThemes)
	assert.Empty(t, m2.Storage.Data.Theme)
}
