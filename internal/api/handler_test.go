package api

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/fpang/framekit/internal/assetsource"
	"github.com/fpang/framekit/internal/config"
	"github.com/fpang/framekit/internal/frame"
)

func pngData(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// newTestHandler serves oak 3x2 and the default frame unless withFallback is false.
func newTestHandler(t *testing.T, withFallback bool, opts Options) *Handler {
	t.Helper()
	files := fstest.MapFS{
		"oak_wood_thin_3x2.png": {Data: pngData(t, 60, 40, color.RGBA{R: 150, G: 100, B: 50, A: 255})},
		"oak_wood_thin_1x1.png": {Data: pngData(t, 40, 40, color.RGBA{R: 150, G: 100, B: 50, A: 255})},
	}
	if withFallback {
		files[frame.DefaultFallbackName] = &fstest.MapFile{Data: pngData(t, 40, 30, color.Black)}
	}
	src := &assetsource.FSSource{FS: files, BaseDir: frame.DefaultBaseDir}
	return NewHandler(frame.NewManager(src), opts)
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, true, Options{})
	rec := do(h, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["status"] != "ok" || body["service"] != "framekit" {
		t.Errorf("body = %v", body)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("missing request ID header")
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	h := newTestHandler(t, true, Options{})
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")

	if got := do(h, req).Header().Get(RequestIDHeader); got != "req-123" {
		t.Errorf("request ID = %q, want req-123", got)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, true, Options{})
	rec := do(h, httptest.NewRequest(http.MethodPost, "/api/frame/ratios", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestRatios(t *testing.T) {
	h := newTestHandler(t, true, Options{})
	rec := do(h, httptest.NewRequest(http.MethodGet, "/api/frame/ratios", nil))

	var body struct {
		Ratios []frame.AspectRatio `json:"ratios"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Ratios) != 8 || body.Ratios[0].Name != frame.Ratio3x2 || body.Ratios[7].Name != frame.Ratio3x1 {
		t.Errorf("ratios = %+v", body.Ratios)
	}
}

func TestConfig(t *testing.T) {
	h := newTestHandler(t, true, Options{})

	tests := []struct {
		name         string
		query        string
		wantStatus   int
		wantRatio    frame.RatioName
		wantRotation bool
		wantPath     string
	}{
		{
			name:       "landscape",
			query:      "width=6000&height=4000&color=Dark+Walnut&material=Wood&thickness=Thin",
			wantStatus: http.StatusOK,
			wantRatio:  frame.Ratio3x2,
			wantPath:   "/assets/frames/dark_walnut_wood_thin_3x2.png",
		},
		{
			name:         "portrait",
			query:        "width=3000&height=4000&color=Black&material=Metal&thickness=Thick",
			wantStatus:   http.StatusOK,
			wantRatio:    frame.Ratio4x3,
			wantRotation: true,
			wantPath:     "/assets/frames/black_metal_thick_4x3.png",
		},
		{
			name:       "portrait square",
			query:      "width=1000&height=1050&color=White&material=Wood&thickness=Thin",
			wantStatus: http.StatusOK,
			wantRatio:  frame.Ratio1x1,
			wantPath:   "/assets/frames/white_wood_thin_1x1.png",
		},
		{name: "missing height", query: "width=100", wantStatus: http.StatusBadRequest},
		{name: "zero width", query: "width=0&height=100", wantStatus: http.StatusBadRequest},
		{name: "not a number", query: "width=abc&height=100", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, httptest.NewRequest(http.MethodGet, "/api/frame/config?"+tt.query, nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var body ConfigResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Config.AspectRatio != tt.wantRatio {
				t.Errorf("ratio = %s, want %s", body.Config.AspectRatio, tt.wantRatio)
			}
			if body.Config.NeedsRotation != tt.wantRotation {
				t.Errorf("needsRotation = %v, want %v", body.Config.NeedsRotation, tt.wantRotation)
			}
			if body.Path != tt.wantPath {
				t.Errorf("path = %q, want %q", body.Path, tt.wantPath)
			}
			if body.FallbackPath != "/assets/frames/black_wood_thin_4x3.png" {
				t.Errorf("fallbackPath = %q", body.FallbackPath)
			}
		})
	}
}

func TestAsset(t *testing.T) {
	h := newTestHandler(t, true, Options{})

	tests := []struct {
		name        string
		query       string
		wantStatus  int
		wantOutcome string
		wantPath    string
		wantWidth   int
	}{
		{"loaded", "color=Oak&material=Wood&thickness=Thin&ratio=3x2", http.StatusOK, "loaded", "/assets/frames/oak_wood_thin_3x2.png", 60},
		{"fallback", "color=Teal&material=Wood&thickness=Thin&ratio=16x9", http.StatusOK, "fallback", "/assets/frames/black_wood_thin_4x3.png", 40},
		{"unknown ratio", "color=Oak&material=Wood&thickness=Thin&ratio=9x7", http.StatusBadRequest, "", "", 0},
		{"missing ratio", "color=Oak", http.StatusBadRequest, "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, httptest.NewRequest(http.MethodGet, "/api/frame/asset?"+tt.query, nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if got := rec.Header().Get(HeaderOutcome); got != tt.wantOutcome {
				t.Errorf("outcome = %q, want %q", got, tt.wantOutcome)
			}
			if got := rec.Header().Get(HeaderAssetPath); got != tt.wantPath {
				t.Errorf("asset path = %q, want %q", got, tt.wantPath)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
				t.Errorf("Content-Type = %q", ct)
			}
			img, err := png.Decode(rec.Body)
			if err != nil {
				t.Fatalf("body is not PNG: %v", err)
			}
			if img.Bounds().Dx() != tt.wantWidth {
				t.Errorf("width = %d, want %d", img.Bounds().Dx(), tt.wantWidth)
			}
		})
	}
}

func TestAsset_Unavailable(t *testing.T) {
	h := newTestHandler(t, false, Options{})
	rec := do(h, httptest.NewRequest(http.MethodGet, "/api/frame/asset?color=Teal&material=Wood&thickness=Thin&ratio=2x1", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func multipartPhoto(t *testing.T, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if data != nil {
		fw, err := mw.CreateFormFile("photo", "photo.png")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(data)
	}
	mw.Close()
	return &body, mw.FormDataContentType()
}

func TestPreview(t *testing.T) {
	h := newTestHandler(t, true, Options{})
	fields := map[string]string{"color": "Oak", "material": "Wood", "thickness": "Thin"}

	tests := []struct {
		name         string
		photo        []byte
		wantRotation string
		wantPath     string
		wantW, wantH int
	}{
		{"landscape 3x2", pngData(t, 300, 200, color.White), "false", "/assets/frames/oak_wood_thin_3x2.png", 60, 40},
		{"portrait 2x3 rotates", pngData(t, 200, 300, color.White), "true", "/assets/frames/oak_wood_thin_3x2.png", 60, 40},
		{"square", pngData(t, 100, 100, color.White), "false", "/assets/frames/oak_wood_thin_1x1.png", 40, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartPhoto(t, tt.photo, fields)
			req := httptest.NewRequest(http.MethodPost, "/api/frame/preview", body)
			req.Header.Set("Content-Type", ct)

			rec := do(h, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			if got := rec.Header().Get(HeaderNeedsRotation); got != tt.wantRotation {
				t.Errorf("needs rotation = %q, want %q", got, tt.wantRotation)
			}
			if got := rec.Header().Get(HeaderAssetPath); got != tt.wantPath {
				t.Errorf("asset path = %q, want %q", got, tt.wantPath)
			}
			img, err := png.Decode(rec.Body)
			if err != nil {
				t.Fatalf("body is not PNG: %v", err)
			}
			if b := img.Bounds(); b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("preview is %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestPreview_BadRequests(t *testing.T) {
	h := newTestHandler(t, true, Options{MaxUploadBytes: 4096})

	t.Run("missing photo", func(t *testing.T) {
		body, ct := multipartPhoto(t, nil, map[string]string{"color": "Oak"})
		req := httptest.NewRequest(http.MethodPost, "/api/frame/preview", body)
		req.Header.Set("Content-Type", ct)
		if rec := do(h, req); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("not an image", func(t *testing.T) {
		body, ct := multipartPhoto(t, []byte("definitely not a photo"), nil)
		req := httptest.NewRequest(http.MethodPost, "/api/frame/preview", body)
		req.Header.Set("Content-Type", ct)
		if rec := do(h, req); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/frame/preview", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		if rec := do(h, req); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("too large", func(t *testing.T) {
		body, ct := multipartPhoto(t, bytes.Repeat([]byte{0xff}, 64<<10), nil)
		req := httptest.NewRequest(http.MethodPost, "/api/frame/preview", body)
		req.Header.Set("Content-Type", ct)
		if rec := do(h, req); rec.Code == http.StatusOK {
			t.Error("oversized upload should be rejected")
		}
	})
}

// pngClaiming returns a tiny PNG whose header declares w x h pixels.
func pngClaiming(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data := pngData(t, 1, 1, color.White)
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestPreview_PixelLimit(t *testing.T) {
	fields := map[string]string{"color": "Oak", "material": "Wood", "thickness": "Thin"}

	tests := []struct {
		name  string
		opts  Options
		photo []byte
	}{
		{"declared 60000x60000 under default limit", Options{}, pngClaiming(t, 60000, 60000)},
		{"configured limit", Options{MaxPixels: 5_000}, pngData(t, 100, 100, color.White)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, true, tt.opts)
			body, ct := multipartPhoto(t, tt.photo, fields)
			req := httptest.NewRequest(http.MethodPost, "/api/frame/preview", body)
			req.Header.Set("Content-Type", ct)

			rec := do(h, req)
			if rec.Code != http.StatusRequestEntityTooLarge {
				t.Fatalf("status = %d, want 413: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Preview.MaxPixels = 2_000_000
	cfg.Server.OriginVerifySecret = "s3cret"

	opts := OptionsFromConfig(&cfg)
	if opts.MaxPixels != 2_000_000 {
		t.Errorf("MaxPixels = %d", opts.MaxPixels)
	}
	if opts.MaxUploadBytes != cfg.Server.MaxUploadBytes || opts.OriginVerifySecret != "s3cret" {
		t.Errorf("server options = %+v", opts)
	}
	if opts.MetricsNamespace != "" {
		t.Errorf("metrics disabled, namespace = %q", opts.MetricsNamespace)
	}
}

func TestOriginVerify(t *testing.T) {
	h := newTestHandler(t, true, Options{OriginVerifySecret: "s3cret"})

	if rec := do(h, httptest.NewRequest(http.MethodGet, "/api/health", nil)); rec.Code != http.StatusForbidden {
		t.Errorf("without header: status = %d, want 403", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(OriginVerifyHeader, "s3cret")
	if rec := do(h, req); rec.Code != http.StatusOK {
		t.Errorf("with header: status = %d, want 200", rec.Code)
	}
}
