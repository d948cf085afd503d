package tui

// Message types for Bubble Tea update loop.

// convertedMsg carries the outcome of one conversion request. seq identifies
// the request so replies to superseded requests can be dropped.
type convertedMsg struct {
	seq int
	raw string
	err error
}
