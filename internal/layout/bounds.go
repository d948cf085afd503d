package layout

import (
	"github.com/ensigniasec/ascii-view/internal/validate"
)

// Defaults used when no bounds are configured.
const (
	DefaultMaxWidthPx           = 800
	DefaultMaxHeightPx          = 600
	DefaultMinFontSizePx        = 6
	DefaultMaxFontSizePx        = 24
	DefaultCharAspectRatio      = 0.6
	DefaultLineHeightMultiplier = 1.2
)

// ViewportBounds is the display region available to the art plus the
// legibility constraints the fitted size must respect.
type ViewportBounds struct {
	MaxWidthPx           float64 `json:"max_width_px" yaml:"max_width_px" validate:"finite,gt=0"`
	MaxHeightPx          float64 `json:"max_height_px" yaml:"max_height_px" validate:"finite,gt=0"`
	MinFontSizePx        float64 `json:"min_font_size_px" yaml:"min_font_size_px" validate:"finite,gt=0"`
	MaxFontSizePx        float64 `json:"max_font_size_px" yaml:"max_font_size_px" validate:"finite,gt=0,gtefield=MinFontSizePx"`
	CharAspectRatio      float64 `json:"char_aspect_ratio" yaml:"char_aspect_ratio" validate:"finite,gt=0"`
	LineHeightMultiplier float64 `json:"line_height_multiplier" yaml:"line_height_multiplier" validate:"finite,gte=1"`
}

// DefaultBounds returns an 800x600 region with a 6..24px font range.
func DefaultBounds() ViewportBounds {
	return ViewportBounds{
		MaxWidthPx:           DefaultMaxWidthPx,
		MaxHeightPx:          DefaultMaxHeightPx,
		MinFontSizePx:        DefaultMinFontSizePx,
		MaxFontSizePx:        DefaultMaxFontSizePx,
		CharAspectRatio:      DefaultCharAspectRatio,
		LineHeightMultiplier: DefaultLineHeightMultiplier,
	}
}

// Validate returns an *InvalidConfigurationError when any field is out of range.
func (b ViewportBounds) Validate() error {
	if err := validate.Struct(b); err != nil {
		return &InvalidConfigurationError{Fields: validate.FailedFields(err)}
	}
	return nil
}

// WithRegion returns a copy of b with the display region replaced.
func (b ViewportBounds) WithRegion(widthPx, heightPx float64) ViewportBounds {
	b.MaxWidthPx = widthPx
	b.MaxHeightPx = heightPx
	return b
}

// CellRegion converts a terminal area of cols x rows cells, each cellWidthPx by
// cellHeightPx, into a pixel region.
func CellRegion(cols, rows int, cellWidthPx, cellHeightPx float64) (widthPx, heightPx float64) {
	return float64(cols) * cellWidthPx, float64(rows) * cellHeightPx
}
