package batch

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

const reportWidth = 60

// Summary aggregates a batch run.
type Summary struct {
	Results   []Result      `json:"results"`
	Total     int           `json:"total"`
	Converted int           `json:"converted"`
	Failed    int           `json:"failed"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// NewSummary counts results.
func NewSummary(results []Result, started time.Time, d time.Duration) Summary {
	s := Summary{Results: results, Total: len(results), StartedAt: started, Duration: d}
	for _, r := range results {
		if r.OK() {
			s.Converted++
		} else {
			s.Failed++
		}
	}
	return s
}

// PrintSummary writes the results in the requested format. JSON output carries
// everything; text output prints each grid followed by its computed layout.
func PrintSummary(w io.Writer, summary Summary, jsonOutput bool) error {
	if jsonOutput {
		output, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(output))
		return err
	}

	multi := summary.Total > 1
	for _, r := range summary.Results {
		if multi {
			fmt.Fprintln(w, strings.Repeat("=", reportWidth))
			fmt.Fprintln(w, r.Path)
			fmt.Fprintln(w, strings.Repeat("=", reportWidth))
		}
		if !r.OK() {
			fmt.Fprintf(w, "error: %s\n", r.Error)
			continue
		}
		if r.Art != "" {
			fmt.Fprintln(w, r.Art)
		}
		if multi {
			fmt.Fprintln(w, LayoutLine(r))
		}
	}
	if multi {
		fmt.Fprintf(w, "\nConverted %d of %d images (%d failed) in %s\n",
			summary.Converted, summary.Total, summary.Failed, HumanDuration(summary.Duration))
	}
	return nil
}

// LayoutLine describes a result's grid and fitted layout on one line.
func LayoutLine(r Result) string {
	if r.Layout.Empty() {
		return "empty grid"
	}
	return fmt.Sprintf("%dx%d cells, font %.1fpx, box %.1fx%.1fpx",
		r.Columns, r.Rows, r.Layout.FontSizePx, r.Layout.BoxWidthPx, r.Layout.BoxHeightPx)
}

// HumanDuration renders d compactly for reports.
func HumanDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d/time.Microsecond)
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d/time.Millisecond)
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
	}
	return fmt.Sprintf("%dm%02ds", d/time.Minute, (d%time.Minute)/time.Second)
}
