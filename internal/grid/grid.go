// Package grid holds the character-grid value produced by the conversion service
// and the normalization applied to it before layout.
package grid

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// CharacterGrid is an immutable, ordered sequence of text lines rendered in a
// monospace face.
type CharacterGrid struct {
	lines []string
}

// New returns a grid holding a copy of lines as given. No normalization is applied.
func New(lines ...string) CharacterGrid {
	if len(lines) == 0 {
		return CharacterGrid{}
	}
	cp := make([]string, len(lines))
	copy(cp, lines)
	return CharacterGrid{lines: cp}
}

// Normalize splits raw on line boundaries, right-trims whitespace from every
// line and drops empty lines from the end of the sequence. Leading and interior
// empty lines are kept.
func Normalize(raw string) CharacterGrid {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		// also strips the \r left over from CRLF line endings
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	end := len(lines)
	for end > 0 && lines[end-1] == "" {
		end--
	}
	if end == 0 {
		return CharacterGrid{}
	}
	return CharacterGrid{lines: lines[:end:end]}
}

// Lines returns a copy of the grid's lines.
func (g CharacterGrid) Lines() []string {
	out := make([]string, len(g.lines))
	copy(out, g.lines)
	return out
}

// LineCount is the number of lines in the grid.
func (g CharacterGrid) LineCount() int { return len(g.lines) }

// MaxLineLength is the widest line measured in monospace cells, 0 for an empty grid.
func (g CharacterGrid) MaxLineLength() int {
	longest := 0
	for _, line := range g.lines {
		if n := CellWidth(line); n > longest {
			longest = n
		}
	}
	return longest
}

// Empty reports whether there is nothing to display.
func (g CharacterGrid) Empty() bool {
	return g.LineCount() == 0 || g.MaxLineLength() == 0
}

// String joins the lines with "\n".
func (g CharacterGrid) String() string {
	return strings.Join(g.lines, "\n")
}

// Equal reports whether both grids hold the same lines.
func (g CharacterGrid) Equal(other CharacterGrid) bool {
	if len(g.lines) != len(other.lines) {
		return false
	}
	for i := range g.lines {
		if g.lines[i] != other.lines[i] {
			return false
		}
	}
	return true
}

// cellCondition measures widths the same way whatever the locale: East Asian
// ambiguous runes such as ░ or · take one cell.
//
//nolint:gochecknoglobals // read-only width table.
var cellCondition = &runewidth.Condition{EastAsianWidth: false, StrictEmojiNeutral: true}

// CellWidth returns the number of monospace cells s occupies. East Asian wide
// runes take two cells and a tab counts as one.
func CellWidth(s string) int {
	return cellCondition.StringWidth(s) + strings.Count(s, "\t")
}

// RuneWidth is CellWidth for a single rune.
func RuneWidth(r rune) int {
	if r == '\t' {
		return 1
	}
	return cellCondition.RuneWidth(r)
}
