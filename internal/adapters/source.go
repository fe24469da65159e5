package adapters

import (
	"context"

	"github.com/hedgelabs/hedge-sim/internal/event"
)

// GenerateRequest asks a source for one event. Type is advisory for routine
// events (empty lets the source decide); ForceBlackSwan overrides it.
type GenerateRequest struct {
	Type           event.Type `json:"type,omitempty"`
	ForceBlackSwan bool       `json:"forceBlackSwan,omitempty"`
}

// Source produces market events on demand. Implementations must be safe for
// concurrent use; both schedulers call Generate from their own loops.
type Source interface {
	Generate(ctx context.Context, req GenerateRequest) (*event.MarketEvent, error)
}
