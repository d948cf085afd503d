package theme

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/ensigniasec/ascii-view/internal/storage"
	"github.com/ensigniasec/ascii-view/internal/validate"
)

// DefaultName is used when no theme has been chosen.
const DefaultName = "matrix"

var (
	ErrUnknownTheme = errors.New("unknown theme")
	ErrReservedName = errors.New("theme name is reserved by a preset")
	ErrInvalidTheme = errors.New("invalid theme")
)

// Theme is the presentation state applied to rendered art.
type Theme struct {
	Name       string `json:"name" validate:"required,max=32"`
	Foreground string `json:"foreground" validate:"required,hexcolor"`
	Background string `json:"background" validate:"required,hexcolor"`
	Preset     bool   `json:"preset"`
}

//nolint:gochecknoglobals // fixed preset table.
var presets = []Theme{
	{Name: "matrix", Foreground: "#00ff00", Background: "#000000", Preset: true},
	{Name: "amber", Foreground: "#ffb000", Background: "#1a1200", Preset: true},
	{Name: "paper", Foreground: "#222222", Background: "#f5f1e6", Preset: true},
	{Name: "ocean", Foreground: "#7fdbff", Background: "#001f3f", Preset: true},
	{Name: "mono", Foreground: "#e0e0e0", Background: "#101010", Preset: true},
}

// Presets returns the built-in themes in display order.
func Presets() []Theme {
	return slices.Clone(presets)
}

func preset(name string) (Theme, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Theme{}, false
}

// New validates a user-defined theme.
func New(name, fg, bg string) (Theme, error) {
	t := Theme{Name: name, Foreground: fg, Background: bg}
	if err := validate.Struct(t); err != nil {
		return Theme{}, fmt.Errorf("%w: %v", ErrInvalidTheme, validate.FailedFields(err))
	}
	if _, ok := preset(name); ok {
		return Theme{}, fmt.Errorf("%w: %s", ErrReservedName, name)
	}
	return t, nil
}

// Resolve looks name up among the presets first, then custom. An empty name
// selects DefaultName.
func Resolve(name string, custom map[string]storage.ThemeColors) (Theme, error) {
	if name == "" {
		name = DefaultName
	}
	if p, ok := preset(name); ok {
		return p, nil
	}
	if c, ok := custom[name]; ok {
		return Theme{Name: name, Foreground: c.Foreground, Background: c.Background}, nil
	}
	return Theme{}, fmt.Errorf("%w: %s", ErrUnknownTheme, name)
}

// All returns the presets followed by custom themes sorted by name.
func All(custom map[string]storage.ThemeColors) []Theme {
	out := Presets()
	names := make([]string, 0, len(custom))
	for n := range custom {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		c := custom[n]
		out = append(out, Theme{Name: n, Foreground: c.Foreground, Background: c.Background})
	}
	return out
}

// Next returns the theme after current in the All ordering, wrapping around.
func Next(current string, custom map[string]storage.ThemeColors) Theme {
	all := All(custom)
	for i, t := range all {
		if t.Name == current {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}
