package adapters

import (
	"context"

	"github.com/hedgelabs/hedge-sim/internal/event"
	"github.com/hedgelabs/hedge-sim/internal/observ"
)

// FallbackSource tries a primary source and recovers locally when it fails.
// Scheduling cadence is preserved: a primary failure costs at most the
// primary's own timeout, never a retry loop, and is never surfaced upward.
type FallbackSource struct {
	primary Source
	local   *LocalSource
}

// NewFallbackSource composes a primary source with the local pool fallback.
// A nil primary degenerates to local-only.
func NewFallbackSource(primary Source, local *LocalSource) *FallbackSource {
	if local == nil {
		local = NewLocalSource(nil)
	}
	return &FallbackSource{primary: primary, local: local}
}

func (s *FallbackSource) Generate(ctx context.Context, req GenerateRequest) (*event.MarketEvent, error) {
	if s.primary != nil {
		ev, err := s.primary.Generate(ctx, req)
		if err == nil {
			return ev, nil
		}
		observ.IncCounter("event_source_fallbacks_total", nil)
		observ.Log("event_source_fallback", map[string]any{
			"error":            err.Error(),
			"force_black_swan": req.ForceBlackSwan,
		})
	}
	return s.local.Generate(ctx, req)
}
