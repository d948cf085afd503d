package tui

import "time"

const (
	// headerLines and footerLines are the rows around the art viewport.
	headerLines = 1
	footerLines = 2

	columnStep      = 10
	horizontalStep  = 4
	convertTimeout  = 60 * time.Second
	minViewportRows = 1
)
