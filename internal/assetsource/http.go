package assetsource

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/framekit/internal/frame"
)

// defaultHTTPTimeout is the client timeout for asset downloads.
const defaultHTTPTimeout = 15 * time.Second

// HTTPSource loads frame templates from a static file host or CDN.
type HTTPSource struct {
	BaseURL    string
	BaseDir    string
	HTTPClient *http.Client
}

// NewHTTPSource returns an HTTPSource fetching <baseURL>/<asset file name>.
func NewHTTPSource(baseURL, baseDir string) *HTTPSource {
	return &HTTPSource{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		BaseDir:    baseDir,
		HTTPClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// Load implements frame.Loader.
func (s *HTTPSource) Load(ctx context.Context, path string) (*frame.Asset, error) {
	key, err := assetKey(s.BaseDir, path)
	if err != nil {
		return nil, err
	}
	url := s.BaseURL + "/" + key

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}

	log.Debug().Str("url", url).Msg("Frame asset downloaded over HTTP")
	return DecodeAsset(path, resp.Body)
}
