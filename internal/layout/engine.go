package layout

import (
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/ascii-view/internal/grid"
)

// Trigger is an event that forces the layout to be recomputed.
type Trigger interface {
	trigger()
}

// GridArrived carries raw text from a successful conversion.
type GridArrived struct{ Raw string }

// BoundsChanged carries the viewport bounds after a resize or a config change.
type BoundsChanged struct{ Bounds ViewportBounds }

func (GridArrived) trigger()   {}
func (BoundsChanged) trigger() {}

// Engine owns the current grid, bounds and layout of one presentation surface.
// Every trigger completes a full recompute before Handle returns. An Engine is
// driven from a single goroutine and does no locking.
type Engine struct {
	bounds ViewportBounds
	grid   grid.CharacterGrid
	layout ComputedLayout
}

// NewEngine validates the initial bounds and starts with an empty grid.
func NewEngine(bounds ViewportBounds) (*Engine, error) {
	l, err := Fit(grid.CharacterGrid{}, bounds)
	if err != nil {
		return nil, err
	}
	return &Engine{bounds: bounds, layout: l}, nil
}

// Handle applies a trigger and returns the resulting layout.
//
// A new grid is normalized and fitted. New bounds refit the grid already held,
// without normalizing again. Invalid bounds are rejected: the previous bounds
// and layout stay in place and the error is returned alongside them.
func (e *Engine) Handle(t Trigger) (ComputedLayout, error) {
	switch ev := t.(type) {
	case GridArrived:
		g := grid.Normalize(ev.Raw)
		// e.bounds was validated when it was accepted, so Fit cannot fail here.
		l, err := Fit(g, e.bounds)
		if err != nil {
			return e.layout, err
		}
		e.grid, e.layout = g, l
		logrus.Debugf("layout: grid %dx%d -> font %.2fpx", g.MaxLineLength(), g.LineCount(), l.FontSizePx)
	case BoundsChanged:
		l, err := Fit(e.grid, ev.Bounds)
		if err != nil {
			logrus.Debugf("layout: rejected bounds %+v: %v", ev.Bounds, err)
			return e.layout, err
		}
		e.bounds, e.layout = ev.Bounds, l
	}
	return e.layout, nil
}

// SetGrid is shorthand for Handle(GridArrived{Raw: raw}).
func (e *Engine) SetGrid(raw string) ComputedLayout {
	l, _ := e.Handle(GridArrived{Raw: raw})
	return l
}

// SetBounds is shorthand for Handle(BoundsChanged{Bounds: b}).
func (e *Engine) SetBounds(b ViewportBounds) (ComputedLayout, error) {
	return e.Handle(BoundsChanged{Bounds: b})
}

// Grid returns the normalized grid currently displayed.
func (e *Engine) Grid() grid.CharacterGrid { return e.grid }

// Bounds returns the last accepted bounds.
func (e *Engine) Bounds() ViewportBounds { return e.bounds }

// Layout returns the current layout.
func (e *Engine) Layout() ComputedLayout { return e.layout }
