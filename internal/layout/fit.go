// Package layout computes a uniform character size and bounding box that fits a
// character grid inside a viewport.
package layout

import (
	"math"

	"github.com/ensigniasec/ascii-view/internal/grid"
)

// ComputedLayout is the fitted font size and the box the grid occupies at that size.
type ComputedLayout struct {
	FontSizePx           float64 `json:"font_size_px"`
	BoxWidthPx           float64 `json:"box_width_px"`
	BoxHeightPx          float64 `json:"box_height_px"`
	LineHeightMultiplier float64 `json:"line_height_multiplier"`
}

// Empty reports whether the layout has nothing to display.
func (l ComputedLayout) Empty() bool {
	return l.BoxWidthPx == 0 || l.BoxHeightPx == 0
}

// Fit picks the largest font size in [MinFontSizePx, MaxFontSizePx] at which
// the grid fits both dimensions of the region. When even the floor overflows,
// the floor wins and the caller is expected to clip or scroll.
//
// An empty grid yields the floor size and a zero box.
func Fit(g grid.CharacterGrid, b ViewportBounds) (ComputedLayout, error) {
	return FitDimensions(g.MaxLineLength(), g.LineCount(), b)
}

// FitDimensions is Fit for a grid known only by its size, as reported by a
// client that already holds the text.
func FitDimensions(cols, rows int, b ViewportBounds) (ComputedLayout, error) {
	if err := b.Validate(); err != nil {
		return ComputedLayout{}, err
	}

	if cols <= 0 || rows <= 0 {
		return ComputedLayout{
			FontSizePx:           b.MinFontSizePx,
			LineHeightMultiplier: b.LineHeightMultiplier,
		}, nil
	}

	widthBased := b.MaxWidthPx / float64(cols) / b.CharAspectRatio
	heightBased := b.MaxHeightPx / float64(rows) / b.LineHeightMultiplier

	size := math.Min(math.Min(widthBased, heightBased), b.MaxFontSizePx)
	size = clamp(size, b.MinFontSizePx, b.MaxFontSizePx)

	return ComputedLayout{
		FontSizePx:           size,
		BoxWidthPx:           float64(cols) * size * b.CharAspectRatio,
		BoxHeightPx:          float64(rows) * size * b.LineHeightMultiplier,
		LineHeightMultiplier: b.LineHeightMultiplier,
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
