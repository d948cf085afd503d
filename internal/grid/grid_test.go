package grid

import (
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty input", raw: "", want: []string{}},
		{name: "only blank lines", raw: "   \n\n", want: []string{}},
		{name: "interior blank line kept", raw: "a\n\nb", want: []string{"a", "", "b"}},
		{name: "trailing whitespace lines removed", raw: "a \nb\n\n   \n", want: []string{"a", "b"}},
		{name: "leading blank lines kept", raw: "\n\n@@\n", want: []string{"", "", "@@"}},
		{name: "leading indentation kept", raw: "  ##  \n\t%%\t", want: []string{"  ##", "\t%%"}},
		{name: "interior spaces kept", raw: "@ @  @   ", want: []string{"@ @  @"}},
		{name: "crlf endings", raw: "ab\r\ncd\r\n\r\n", want: []string{"ab", "cd"}},
		{name: "whitespace only interior line becomes empty", raw: "a\n   \nb", want: []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			assert.Equal(t, tt.want, got.Lines())
			assert.Equal(t, len(tt.want), got.LineCount())
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"   \n\n",
		"a\n\nb",
		"a \nb\n\n   \n",
		"\n  x\t\n y \n\n",
		"@%#*+=-:. \n.:-=+*#%@\n\n",
		"\r\n\r\n",
	}
	for _, raw := range inputs {
		once := Normalize(raw)
		twice := Normalize(once.String())
		assert.True(t, once.Equal(twice), "normalize not idempotent for %q: %q vs %q", raw, once.Lines(), twice.Lines())
	}
}

func TestNormalize_DoesNotAliasInput(t *testing.T) {
	g := Normalize("ab\ncd")
	lines := g.Lines()
	lines[0] = "zz"
	assert.Equal(t, []string{"ab", "cd"}, g.Lines())
}

func TestMaxLineLength(t *testing.T) {
	tests := []struct {
		name  string
		grid  CharacterGrid
		lines int
		max   int
	}{
		{name: "empty", grid: New(), lines: 0, max: 0},
		{name: "uneven", grid: New("0123456789", "01234567890123456789", "012345678901234"), lines: 3, max: 20},
		{name: "wide runes", grid: New("日本", "abc"), lines: 2, max: 4},
		{name: "tab counts as one cell", grid: New("\tab"), lines: 1, max: 3},
		{name: "only empty lines", grid: New("", ""), lines: 2, max: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.lines, tt.grid.LineCount())
			assert.Equal(t, tt.max, tt.grid.MaxLineLength())
		})
	}
}

func TestEmpty(t *testing.T) {
	assert.True(t, New().Empty())
	assert.True(t, New("").Empty())
	assert.True(t, Normalize(" \n \n").Empty())
	assert.False(t, New(".").Empty())
}

func TestNew_CopiesLines(t *testing.T) {
	src := []string{"a", "b"}
	g := New(src...)
	src[0] = "x"
	require.Equal(t, []string{"a", "b"}, g.Lines())
}

func TestString(t *testing.T) {
	assert.Equal(t, "a\n\nb", Normalize("a\n\nb\n\n").String())
	assert.Equal(t, "", New().String())
}

func TestCellWidth_IgnoresLocale(t *testing.T) {
	prev := runewidth.DefaultCondition.EastAsianWidth
	runewidth.DefaultCondition.EastAsianWidth = true
	t.Cleanup(func() { runewidth.DefaultCondition.EastAsianWidth = prev })

	assert.Equal(t, 5, CellWidth("░▒▓·°"))
	assert.Equal(t, 1, RuneWidth('░'))
	assert.Equal(t, 1, RuneWidth('\t'))
	assert.Equal(t, 2, RuneWidth('漢'))
	assert.Equal(t, 5, Normalize("░▒▓·°\n").MaxLineLength())
}
