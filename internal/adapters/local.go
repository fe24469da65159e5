package adapters

import (
	"context"

	"github.com/hedgelabs/hedge-sim/internal/event"
)

// LocalSource serves events from the in-process pool generator. It never
// fails and is the terminal fallback for every other source.
type LocalSource struct {
	gen *event.Generator
}

// NewLocalSource wraps a pool generator as a Source.
func NewLocalSource(gen *event.Generator) *LocalSource {
	if gen == nil {
		gen = event.NewGenerator()
	}
	return &LocalSource{gen: gen}
}

func (s *LocalSource) Generate(_ context.Context, req GenerateRequest) (*event.MarketEvent, error) {
	var ev event.MarketEvent
	if req.ForceBlackSwan {
		ev = s.gen.NextBlackSwan()
	} else {
		ev = s.gen.Next(req.Type)
	}
	return &ev, nil
}
