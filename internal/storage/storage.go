package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ensigniasec/ascii-view/internal/layout"
	"github.com/ensigniasec/ascii-view/internal/validate"
)

// DefaultPath is where user settings live unless overridden.
const DefaultPath = "~/.config/ascii-view/settings.json"

//nolint:gochecknoglobals // overridden in tests.
var managedConfigPath = "/etc/ascii-view/config.yaml"

// Default terminal cell size used to turn a terminal window into pixels.
const (
	DefaultCellWidthPx  = 8
	DefaultCellHeightPx = 16
)

// ThemeColors is a user-defined foreground/background pair.
type ThemeColors struct {
	Foreground string `json:"foreground" validate:"required,hexcolor"`
	Background string `json:"background" validate:"required,hexcolor"`
}

// CellSize is the pixel size of one terminal cell.
type CellSize struct {
	WidthPx  float64 `json:"width_px" validate:"finite,gt=0"`
	HeightPx float64 `json:"height_px" validate:"finite,gt=0"`
}

// Data represents the structure of the settings file. Only presentation
// preferences are stored here, never converted art.
type Data struct {
	ClientID     string                 `json:"client_id,omitempty" validate:"omitempty,uuid"`
	ServiceURL   string                 `json:"service_url,omitempty" validate:"omitempty,http_url"`
	Columns      int                    `json:"columns" validate:"min=10,max=400"`
	Theme        string                 `json:"theme,omitempty"`
	CustomThemes map[string]ThemeColors `json:"custom_themes" validate:"dive,keys,required,endkeys"`
	Bounds       layout.ViewportBounds  `json:"bounds"`
	Cell         CellSize               `json:"cell"`
}

// managedDefaults is the subset of settings an administrator can pin in the
// system-wide YAML file.
type managedDefaults struct {
	ServiceURL string `yaml:"service_url"`
	ClientID   string `yaml:"client_id"`
	Theme      string `yaml:"theme"`
	Columns    int    `yaml:"columns"`
}

// Storage handles the loading and saving of the settings file.
type Storage struct {
	Path string `validate:"required,filepath"`
	Data Data
}

// DefaultData returns settings with every field at its default.
func DefaultData() Data {
	return Data{
		Columns:      100,
		CustomThemes: make(map[string]ThemeColors),
		Bounds:       layout.DefaultBounds(),
		Cell:         CellSize{WidthPx: DefaultCellWidthPx, HeightPx: DefaultCellHeightPx},
	}
}

// NewStorage creates a new Storage instance, loading the file at path if present.
func NewStorage(path string) (*Storage, error) {
	expandedPath, err := expandTilde(path)
	if err != nil {
		return nil, err
	}

	s := &Storage{
		Path: expandedPath,
		Data: DefaultData(),
	}

	// System-wide managed defaults apply first; the user file overrides them.
	if md, ok := readManagedDefaults(managedConfigPath); ok {
		s.applyManaged(md)
	}

	if err := s.Load(); err != nil {
		// If the file doesn't exist, we can ignore the error.
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	// Ensure ClientID present: if not provided by managed config and not present in storage, generate one.
	if s.Data.ClientID == "" {
		s.Data.ClientID = uuid.NewString()
	}

	return s, nil
}

// NewOrExistingStorage returns existing storage if the file exists, or creates a new one otherwise.
// When creating a new storage, it writes the initial structure to disk immediately.
func NewOrExistingStorage(path string) (*Storage, error) {
	expandedPath, err := expandTilde(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(expandedPath); err == nil {
		return NewStorage(path)
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	s, err := NewStorage(path)
	if err != nil {
		return nil, err
	}
	if err := s.Save(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Storage) Load() error {
	logrus.Debug("Loading settings file from: ", s.Path)
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, &s.Data); err != nil {
		return err
	}
	if s.Data.CustomThemes == nil {
		s.Data.CustomThemes = make(map[string]ThemeColors)
	}

	// Validate loaded data and self-heal when possible.
	if err := validate.Struct(s.Data); err != nil {
		if s.heal() {
			if err := s.Save(); err != nil {
				return err
			}
		}
	}
	return nil
}

// heal resets invalid fields to defaults and reports whether anything changed.
func (s *Storage) heal() bool {
	changed := false
	defaults := DefaultData()

	if s.Data.ClientID != "" && validate.Var(s.Data.ClientID, "uuid") != nil {
		s.Data.ClientID = uuid.NewString()
		changed = true
	}
	if s.Data.ServiceURL != "" && validate.Var(s.Data.ServiceURL, "http_url") != nil {
		logrus.Warn("Invalid service_url found in settings; clearing.")
		s.Data.ServiceURL = ""
		changed = true
	}
	if validate.Var(s.Data.Columns, "min=10,max=400") != nil {
		logrus.Warnf("Invalid columns %d found in settings; using %d.", s.Data.Columns, defaults.Columns)
		s.Data.Columns = defaults.Columns
		changed = true
	}
	for name, tc := range s.Data.CustomThemes {
		if name == "" || validate.Struct(tc) != nil {
			logrus.Warnf("Invalid custom theme %q found in settings; removing.", name)
			delete(s.Data.CustomThemes, name)
			changed = true
		}
	}
	if err := s.Data.Bounds.Validate(); err != nil {
		logrus.Warnf("Invalid viewport bounds in settings (%v); using defaults.", err)
		s.Data.Bounds = defaults.Bounds
		changed = true
	}
	if validate.Struct(s.Data.Cell) != nil {
		logrus.Warn("Invalid cell size found in settings; using defaults.")
		s.Data.Cell = defaults.Cell
		changed = true
	}
	return changed
}

// Save writes the settings to the file.
func (s *Storage) Save() error {
	logrus.Debug("Saving settings file to: ", s.Path)
	// Ensure parent directory exists.
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.Data, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.Path, data, 0o600)
}

// Reset restores defaults while keeping the client identity, then saves.
func (s *Storage) Reset() error {
	id := s.Data.ClientID
	s.Data = DefaultData()
	s.Data.ClientID = id
	return s.Save()
}

func (s *Storage) applyManaged(md managedDefaults) {
	if md.ServiceURL != "" {
		s.Data.ServiceURL = md.ServiceURL
	}
	if md.ClientID != "" {
		s.Data.ClientID = md.ClientID
	}
	if md.Theme != "" {
		s.Data.Theme = md.Theme
	}
	if md.Columns != 0 {
		s.Data.Columns = md.Columns
	}
}

// expandTilde expands the tilde in a path to the user's home directory.
func expandTilde(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}

// readManagedDefaults reads the administrator-managed YAML defaults. Invalid
// values are dropped individually with a warning.
func readManagedDefaults(path string) (managedDefaults, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logrus.Debugf("error reading managed config: %v", err)
		}
		return managedDefaults{}, false
	}
	var md managedDefaults
	if err := yaml.Unmarshal(raw, &md); err != nil {
		logrus.Warnf("Invalid managed config %s: %v", path, err)
		return managedDefaults{}, false
	}
	if md.ServiceURL != "" && validate.Var(md.ServiceURL, "http_url") != nil {
		logrus.Warn("Invalid service_url in managed config; ignoring.")
		md.ServiceURL = ""
	}
	if md.ClientID != "" {
		if _, err := uuid.Parse(md.ClientID); err != nil {
			logrus.Warn("Invalid client_id in managed config; ignoring.")
			md.ClientID = ""
		}
	}
	if md.Columns != 0 && validate.Var(md.Columns, "min=10,max=400") != nil {
		logrus.Warn("Invalid columns in managed config; ignoring.")
		md.Columns = 0
	}
	return md, true
}
