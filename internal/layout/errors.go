package layout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfiguration is reported when ViewportBounds hold a non-positive or
// non-finite field, or the font ceiling is below the floor.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// InvalidConfigurationError names the offending ViewportBounds fields.
type InvalidConfigurationError struct {
	Fields []string
}

func (e *InvalidConfigurationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidConfiguration.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidConfiguration, strings.Join(e.Fields, ", "))
}

// Unwrap lets errors.Is match ErrInvalidConfiguration.
func (e *InvalidConfigurationError) Unwrap() error { return ErrInvalidConfiguration }
