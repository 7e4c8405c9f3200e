package api

import (
	"encoding/json"
	"image"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/fpang/framekit/internal/render"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func httpError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

// respondPNG writes img as a PNG body with a 200 status.
func respondPNG(w http.ResponseWriter, r *http.Request, img image.Image) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if err := render.EncodePNG(w, img); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Failed to write PNG response")
	}
}
