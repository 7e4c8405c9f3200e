// Package api serves frame matching, frame assets, and framed previews over
// HTTP. The same Handler runs behind API Gateway (frame-lambda) and as a
// local server (frame-web).
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fpang/framekit/internal/config"
	"github.com/fpang/framekit/internal/frame"
	"github.com/fpang/framekit/internal/photo"
	"github.com/fpang/framekit/internal/render"
)

const (
	pathHealth  = "/api/health"
	pathRatios  = "/api/frame/ratios"
	pathConfig  = "/api/frame/config"
	pathAsset   = "/api/frame/asset"
	pathPreview = "/api/frame/preview"
)

// Response headers describing how a frame asset was resolved.
const (
	HeaderOutcome       = "X-Frame-Asset-Outcome"
	HeaderAssetPath     = "X-Frame-Asset-Path"
	HeaderNeedsRotation = "X-Frame-Needs-Rotation"
)

var exposedHeaders = strings.Join([]string{RequestIDHeader, HeaderOutcome, HeaderAssetPath, HeaderNeedsRotation}, ", ")

// DefaultMaxUploadBytes bounds preview uploads when Options leaves it unset.
const DefaultMaxUploadBytes = 25 << 20

// Options configures a Handler.
type Options struct {
	MaxUploadBytes     int64
	MaxPixels          int64 // 0 means photo.DefaultMaxPixels
	Preview            render.Options
	OriginVerifySecret string
	MetricsNamespace   string // empty disables request metrics
}

// Handler is the framekit HTTP API.
type Handler struct {
	manager *frame.Manager
	opts    Options
	handler http.Handler
}

// NewHandler builds the API around manager.
func NewHandler(manager *frame.Manager, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = photo.DefaultMaxPixels
	}
	h := &Handler{manager: manager, opts: opts}

	mux := http.NewServeMux()
	mux.HandleFunc(pathHealth, h.handleHealth)
	mux.HandleFunc(pathRatios, h.handleRatios)
	mux.HandleFunc(pathConfig, h.handleConfig)
	mux.HandleFunc(pathAsset, h.handleAsset)
	mux.HandleFunc(pathPreview, h.handlePreview)

	h.handler = withRequestID(withLogging(withMetrics(opts.MetricsNamespace,
		withOriginVerify(opts.OriginVerifySecret, mux))))
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "framekit"})
}

func (h *Handler) handleRatios(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"ratios": frame.Catalog()})
}

// ConfigResponse is the body of GET /api/frame/config.
type ConfigResponse struct {
	Orientation  frame.PhotoOrientation `json:"orientation"`
	Config       frame.OptimalConfig    `json:"config"`
	Path         string                 `json:"path"`
	FallbackPath string                 `json:"fallbackPath"`
}

func (h *Handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	dims, err := parseDimensions(q.Get("width"), q.Get("height"))
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	sel := frame.UserSelection{
		ColorName:    q.Get("color"),
		MaterialType: q.Get("material"),
		Thickness:    q.Get("thickness"),
	}

	orientation := frame.DetectOrientation(dims)
	opt := frame.ConfigForOrientation(orientation, sel)
	resolver := h.manager.Resolver()
	respondJSON(w, http.StatusOK, ConfigResponse{
		Orientation:  orientation,
		Config:       opt,
		Path:         resolver.Path(opt.AssetConfig),
		FallbackPath: resolver.FallbackPath(),
	})
}

func (h *Handler) handleAsset(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	ratio := frame.RatioName(q.Get("ratio"))
	if !ratio.IsValid() {
		httpError(w, http.StatusBadRequest, fmt.Sprintf("unknown aspect ratio %q", ratio))
		return
	}
	cfg := frame.AssetConfig{
		ColorName:    q.Get("color"),
		MaterialType: q.Get("material"),
		Thickness:    q.Get("thickness"),
		AspectRatio:  ratio,
	}

	res, ok := h.preload(w, r, cfg)
	if !ok {
		return
	}
	setAssetHeaders(w, res)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	respondPNG(w, r, res.Asset.Image)
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	logger := zerolog.Ctx(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", h.opts.MaxUploadBytes))
			return
		}
		httpError(w, http.StatusBadRequest, "expected multipart form with a photo field")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("photo")
	if err != nil {
		httpError(w, http.StatusBadRequest, "missing photo file")
		return
	}
	defer file.Close()

	img, info, err := photo.DecodeLimit(file, h.opts.MaxPixels)
	if errors.Is(err, photo.ErrTooLarge) {
		logger.Info().
			Int("width", info.StoredWidth).
			Int("height", info.StoredHeight).
			Str("filename", header.Filename).
			Msg("Rejected oversized preview upload")
		httpError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("photo exceeds %d pixels", h.opts.MaxPixels))
		return
	}
	if err != nil {
		logger.Debug().Err(err).Str("filename", header.Filename).Msg("Rejected preview upload")
		httpError(w, http.StatusBadRequest, "photo is not a supported image")
		return
	}

	sel := frame.UserSelection{
		ColorName:    r.FormValue("color"),
		MaterialType: r.FormValue("material"),
		Thickness:    r.FormValue("thickness"),
	}
	opt := frame.GetOptimalFrameConfig(info.Dimensions, sel)

	res, ok := h.preload(w, r, opt.AssetConfig)
	if !ok {
		return
	}

	previewOpts := h.opts.Preview
	previewOpts.NeedsRotation = opt.NeedsRotation
	out := render.Preview(img, res.Asset.Image, previewOpts)

	logger.Debug().
		Int("width", info.Dimensions.Width).
		Int("height", info.Dimensions.Height).
		Str("ratio", string(opt.AspectRatio)).
		Bool("needsRotation", opt.NeedsRotation).
		Str("outcome", string(res.Outcome)).
		Msg("Preview rendered")

	setAssetHeaders(w, res)
	w.Header().Set(HeaderNeedsRotation, strconv.FormatBool(opt.NeedsRotation))
	w.Header().Set("Cache-Control", "no-store")
	respondPNG(w, r, out)
}

// preload resolves cfg and writes the error response when no asset could be
// served.
func (h *Handler) preload(w http.ResponseWriter, r *http.Request, cfg frame.AssetConfig) (frame.LoadResult, bool) {
	res, err := h.manager.Preload(r.Context(), cfg)
	if err == nil {
		return res, true
	}

	logger := zerolog.Ctx(r.Context())
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Info().Err(err).Str("path", res.RequestedPath).Msg("Frame asset request abandoned")
		httpError(w, http.StatusServiceUnavailable, "request cancelled")
	case errors.Is(err, frame.ErrAssetUnavailable):
		logger.Error().Err(err).Str("path", res.RequestedPath).Msg("No frame asset available")
		httpError(w, http.StatusServiceUnavailable, "frame asset unavailable")
	default:
		logger.Error().Err(err).Str("path", res.RequestedPath).Msg("Frame asset request failed")
		httpError(w, http.StatusInternalServerError, "internal error")
	}
	return res, false
}

func setAssetHeaders(w http.ResponseWriter, res frame.LoadResult) {
	w.Header().Set(HeaderOutcome, string(res.Outcome))
	w.Header().Set(HeaderAssetPath, res.Path)
}

func parseDimensions(width, height string) (frame.PhotoDimensions, error) {
	if width == "" || height == "" {
		return frame.PhotoDimensions{}, errors.New("width and height are required")
	}
	w, err := strconv.Atoi(width)
	if err != nil {
		return frame.PhotoDimensions{}, fmt.Errorf("invalid width %q", width)
	}
	h, err := strconv.Atoi(height)
	if err != nil {
		return frame.PhotoDimensions{}, fmt.Errorf("invalid height %q", height)
	}
	dims := frame.PhotoDimensions{Width: w, Height: h}
	if err := dims.Validate(); err != nil {
		return frame.PhotoDimensions{}, err
	}
	return dims, nil
}

// OptionsFromConfig maps the server and preview settings in cfg to Options.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := Options{
		MaxUploadBytes:     cfg.Server.MaxUploadBytes,
		MaxPixels:          cfg.Preview.MaxPixels,
		OriginVerifySecret: cfg.Server.OriginVerifySecret,
		Preview: render.Options{
			BorderRatio:  cfg.Preview.BorderRatio,
			MaxDimension: cfg.Preview.MaxDimension,
		},
	}
	if cfg.Metrics.Enabled {
		opts.MetricsNamespace = cfg.Metrics.Namespace
	}
	return opts
}
