package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/framekit/internal/frame"
)

// parseWarm parses "color/material/thickness" selections.
func parseWarm(values []string) ([]frame.UserSelection, error) {
	var out []frame.UserSelection
	for _, v := range values {
		parts := strings.Split(v, "/")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid --warm value %q: want color/material/thickness", v)
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
			if parts[i] == "" {
				return nil, fmt.Errorf("invalid --warm value %q: empty field", v)
			}
		}
		out = append(out, frame.UserSelection{ColorName: parts[0], MaterialType: parts[1], Thickness: parts[2]})
	}
	return out, nil
}

// warmCache preloads every catalog ratio of each selection in the background
// and logs a summary once all loads have finished.
func warmCache(m *frame.Manager, selections []frame.UserSelection) {
	if len(selections) == 0 {
		return
	}
	ctx := context.Background()
	start := time.Now()

	var pending []<-chan frame.LoadResult
	for _, sel := range selections {
		for _, ratio := range frame.Catalog() {
			pending = append(pending, m.PreloadAsync(ctx, frame.AssetConfig{
				ColorName:    sel.ColorName,
				MaterialType: sel.MaterialType,
				Thickness:    sel.Thickness,
				AspectRatio:  ratio.Name,
			}))
		}
	}

	go func() {
		counts := map[frame.Outcome]int{}
		for _, ch := range pending {
			res := <-ch
			counts[res.Outcome]++
		}
		log.Info().
			Int("loaded", counts[frame.OutcomeLoaded]).
			Int("fallback", counts[frame.OutcomeFallback]).
			Int("failed", counts[frame.OutcomeFailed]).
			Int("cached", m.Cache().Len()).
			Dur("duration", time.Since(start)).
			Msg("Frame asset cache warmed")
	}()
}
