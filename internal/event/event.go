package event

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Type classifies a market event by scope.
type Type string

const (
	TypeMacro     Type = "MACRO"     // market-wide news
	TypeMicro     Type = "MICRO"     // single-company news
	TypeBlackSwan Type = "BLACKSWAN" // rare, requires a player decision
)

// Severity buckets an event by the magnitude of its realized impact.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityNormal Severity = "NORMAL"
	SeverityHigh   Severity = "HIGH"
)

// Impacts holds the optional sector and ticker impact layers. Each entry is
// a signed fraction added on top of the market-wide impact.
type Impacts struct {
	Sector map[string]float64 `json:"sector,omitempty"`
	Ticker map[string]float64 `json:"ticker,omitempty"`
}

// MarketEvent is a discrete, timestamped price perturbation. Immutable once
// emitted; aftershocks are derived clones, never in-place edits.
type MarketEvent struct {
	ID            string    `json:"id"`         // stable template id, e.g. "macro-1"
	RuntimeID     string    `json:"runtimeId"`  // unique per emission
	Type          Type      `json:"type"`
	Title         string    `json:"title"`
	Details       string    `json:"details,omitempty"`
	BaseImpactPct float64   `json:"baseImpactPct"` // template impact before jitter
	ImpactPct     float64   `json:"impactPct"`     // realized impact
	Impacts       Impacts   `json:"impacts,omitempty"`
	Severity      Severity  `json:"severity,omitempty"`
	Timestamp     time.Time `json:"ts"`
}

// Aftershock derives the follow-up event produced when a black-swan decision
// resolves. The factor scales the realized impact; the clone gets its own
// runtime id so the applied-once guard treats it as a fresh emission.
func (ev MarketEvent) Aftershock(factor float64, at time.Time) MarketEvent {
	shock := ev
	shock.Title = ev.Title + " (Aftershock)"
	shock.ImpactPct = round4(ev.ImpactPct * factor)
	shock.RuntimeID = ev.ID + "-" + uuid.NewString()
	shock.Timestamp = at
	shock.Severity = severityFor(shock.Type, shock.ImpactPct)
	return shock
}

func severityFor(t Type, impactPct float64) Severity {
	if t == TypeBlackSwan {
		return SeverityHigh
	}
	switch abs := math.Abs(impactPct); {
	case abs >= 0.02:
		return SeverityHigh
	case abs >= 0.01:
		return SeverityNormal
	default:
		return SeverityLow
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
