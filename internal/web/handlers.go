package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/ascii-view/internal/api"
	"github.com/ensigniasec/ascii-view/internal/layout"
	"github.com/ensigniasec/ascii-view/internal/storage"
	"github.com/ensigniasec/ascii-view/internal/theme"
)

// DefaultMaxUploadBytes caps the multipart body accepted by POST /convert.
const DefaultMaxUploadBytes = 10 << 20

// Options are the defaults applied to requests that leave a value out.
type Options struct {
	Bounds         layout.ViewportBounds
	Columns        int
	Theme          string
	CustomThemes   map[string]storage.ThemeColors
	MaxUploadBytes int64
}

// Handler serves the upload form, conversions and layout fitting.
type Handler struct {
	conv api.Converter
	opts Options
}

// NewHandler validates the default bounds and returns a Handler.
func NewHandler(conv api.Converter, opts Options) (*Handler, error) {
	if err := opts.Bounds.Validate(); err != nil {
		return nil, err
	}
	if _, err := theme.Resolve(opts.Theme, opts.CustomThemes); err != nil {
		return nil, err
	}
	if opts.Columns == 0 {
		opts.Columns = api.DefaultColumns
	}
	opts.Columns = api.ClampColumns(opts.Columns)
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{conv: conv, opts: opts}, nil
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.Post("/convert", h.convert)
	r.Get("/api/fit", h.fit)
	r.Get("/healthz", h.healthz)
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	render(w, r, homePage(h.form("")))
}

func (h *Handler) form(errMsg string) formData {
	selected, _ := theme.Resolve(h.opts.Theme, h.opts.CustomThemes)
	return formData{
		Columns:    h.opts.Columns,
		MinColumns: api.MinColumns,
		MaxColumns: api.MaxColumns,
		Themes:     theme.All(h.opts.CustomThemes),
		Selected:   selected.Name,
		Error:      errMsg,
	}
}

func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.formError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		h.formError(w, r, http.StatusBadRequest, "invalid upload: "+err.Error())
		return
	}
	file, hdr, err := r.FormFile("image")
	if err != nil {
		h.formError(w, r, http.StatusBadRequest, "No image uploaded")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		h.formError(w, r, http.StatusBadRequest, "could not read upload")
		return
	}

	columns := api.ClampColumns(parseInt(r.FormValue("width"), h.opts.Columns))
	th, err := theme.Resolve(strings.TrimSpace(r.FormValue("theme")), h.opts.CustomThemes)
	if err != nil {
		h.formError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	bounds := h.opts.Bounds.WithRegion(
		parseFloat(r.FormValue("viewport_w"), layout.DefaultMaxWidthPx),
		parseFloat(r.FormValue("viewport_h"), layout.DefaultMaxHeightPx),
	)
	engine, err := layout.NewEngine(bounds)
	if err != nil {
		h.formError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	req, err := api.NewConvertRequest(hdr.Filename, data, columns)
	if err != nil {
		h.formError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	raw, err := h.conv.Convert(r.Context(), req)
	if err != nil {
		logrus.Warnf("conversion of %s failed: %v", req.Filename, err)
		h.formError(w, r, statusFor(err), err.Error())
		return
	}
	l, _ := engine.Handle(layout.GridArrived{Raw: raw})

	render(w, r, resultPage(resultData{
		Form:     h.form(""),
		Filename: req.Filename,
		Columns:  columns,
		Grid:     engine.Grid(),
		Layout:   l,
		Theme:    th,
	}))
}

func (h *Handler) formError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	renderStatus(w, r, status, homePage(h.form(msg)))
}

// fitParams are the query parameters of GET /api/fit. Bounds other than the
// region default to the server's configuration.
type fitParams struct {
	Rows       int
	Cols       int
	Width      float64
	Height     float64
	MinFont    float64
	MaxFont    float64
	Aspect     float64
	LineHeight float64
}

func (h *Handler) fit(w http.ResponseWriter, r *http.Request) {
	p := fitParams{
		MinFont:    h.opts.Bounds.MinFontSizePx,
		MaxFont:    h.opts.Bounds.MaxFontSizePx,
		Aspect:     h.opts.Bounds.CharAspectRatio,
		LineHeight: h.opts.Bounds.LineHeightMultiplier,
	}
	q := r.URL.Query()
	binds := []struct {
		name     string
		required bool
		dest     any
	}{
		{"rows", true, &p.Rows},
		{"cols", true, &p.Cols},
		{"width", true, &p.Width},
		{"height", true, &p.Height},
		{"min_font", false, &p.MinFont},
		{"max_font", false, &p.MaxFont},
		{"aspect", false, &p.Aspect},
		{"line_height", false, &p.LineHeight},
	}
	for _, b := range binds {
		if err := runtime.BindQueryParameter("form", true, b.required, b.name, q, b.dest); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid parameter %s: %v", b.name, err)})
			return
		}
	}
	if p.Rows < 0 || p.Cols < 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "rows and cols must not be negative"})
		return
	}

	bounds := layout.ViewportBounds{
		MaxWidthPx:           p.Width,
		MaxHeightPx:          p.Height,
		MinFontSizePx:        p.MinFont,
		MaxFontSizePx:        p.MaxFont,
		CharAspectRatio:      p.Aspect,
		LineHeightMultiplier: p.LineHeight,
	}
	l, err := layout.FitDimensions(p.Cols, p.Rows, bounds)
	if err != nil {
		resp := errorResponse{Error: err.Error()}
		var ice *layout.InvalidConfigurationError
		if errors.As(err, &ice) {
			resp.Fields = ice.Fields
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": api.BuildVersion})
}

type errorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

// statusFor maps conversion errors onto the status returned to the browser.
func statusFor(err error) int {
	var rl api.RateLimitedError
	switch {
	case errors.Is(err, api.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, api.ErrInvalidImage):
		return http.StatusUnprocessableEntity
	case errors.As(err, &rl):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseFloat(value string, fallback float64) float64 {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
