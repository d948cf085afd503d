package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ensigniasec/ascii-view/internal/api"
	"github.com/ensigniasec/ascii-view/internal/layout"
	"github.com/ensigniasec/ascii-view/internal/storage"
	"github.com/ensigniasec/ascii-view/internal/theme"
)

// ErrNoConverter is returned when a Config has no Converter.
var ErrNoConverter = errors.New("tui: converter is required")

// Config is everything the viewer needs to show one image.
type Config struct {
	Converter    api.Converter
	Filename     string
	Image        []byte
	Columns      int
	Bounds       layout.ViewportBounds
	Cell         storage.CellSize
	Theme        theme.Theme
	CustomThemes map[string]storage.ThemeColors
	Anonymous    bool
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx    context.Context
	conv   api.Converter
	engine *layout.Engine

	filename  string
	image     []byte
	columns   int
	bounds    layout.ViewportBounds
	cell      storage.CellSize
	theme     theme.Theme
	custom    map[string]storage.ThemeColors
	anonymous bool

	// seq is bumped for every conversion request; only the latest reply is applied.
	seq     int
	loading bool
	err     error

	width   int
	height  int
	xOffset int

	viewport    viewport.Model
	spinner     spinner.Model
	help        help.Model
	helpVisible bool
	quitting    bool

	keys keyMap
}

// NewModel constructs a Model with initial state. Bounds are validated up front.
func NewModel(ctx context.Context, cfg Config) (Model, error) { // nolint:ireturn
	if cfg.Converter == nil {
		return Model{}, ErrNoConverter
	}
	if ctx == nil {
		ctx = context.Background()
	}
	engine, err := layout.NewEngine(cfg.Bounds)
	if err != nil {
		return Model{}, err
	}
	if _, err := api.NewConvertRequest(cfg.Filename, cfg.Image, cfg.Columns); err != nil {
		return Model{}, err
	}
	if cfg.Cell.WidthPx <= 0 || cfg.Cell.HeightPx <= 0 {
		cfg.Cell = storage.CellSize{WidthPx: storage.DefaultCellWidthPx, HeightPx: storage.DefaultCellHeightPx}
	}
	if cfg.Theme.Name == "" {
		cfg.Theme, _ = theme.Resolve("", nil)
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	return Model{
		ctx:       ctx,
		conv:      cfg.Converter,
		engine:    engine,
		filename:  cfg.Filename,
		image:     cfg.Image,
		columns:   cfg.Columns,
		bounds:    cfg.Bounds,
		cell:      cfg.Cell,
		theme:     cfg.Theme,
		custom:    cfg.CustomThemes,
		anonymous: cfg.Anonymous,
		loading:   true,
		viewport:  viewport.New(0, 0),
		spinner:   sp,
		help:      help.New(),
		keys:      newKeyMap(),
	}, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.convertCmd())
}

// Layout returns the layout currently held by the engine.
func (m Model) Layout() layout.ComputedLayout { return m.engine.Layout() }

// convertCmd returns a command that converts the image at the current column
// count, tagged with the current sequence number.
func (m Model) convertCmd() tea.Cmd {
	conv, seq, columns := m.conv, m.seq, m.columns
	ctx := m.ctx
	filename, image := m.filename, m.image
	if m.anonymous {
		ctx = api.WithIdentity(ctx, api.Identity{Anonymous: true})
	}
	return func() tea.Msg {
		req, err := api.NewConvertRequest(filename, image, columns)
		if err != nil {
			return convertedMsg{seq: seq, err: err}
		}
		cctx, cancel := context.WithTimeout(ctx, convertTimeout)
		defer cancel()
		raw, err := conv.Convert(cctx, req)
		return convertedMsg{seq: seq, raw: raw, err: err}
	}
}
