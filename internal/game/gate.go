package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/hedgelabs/hedge-sim/internal/event"
	"github.com/hedgelabs/hedge-sim/internal/observ"
)

// Choice is the player's answer to a black-swan event.
type Choice string

const (
	ChoiceHedge  Choice = "HEDGE"  // soften the aftershock
	ChoiceHold   Choice = "HOLD"   // ride it out
	ChoiceDouble Choice = "DOUBLE" // double down, amplifying it
)

// choiceFactors scale the black swan's realized impact into the aftershock.
var choiceFactors = map[Choice]float64{
	ChoiceHedge:  0.3,
	ChoiceHold:   0.6,
	ChoiceDouble: 1.2,
}

// GateState is the decision gate's lifecycle position.
type GateState string

const (
	GateIdle    GateState = "idle"
	GatePending GateState = "pending_decision"
)

// DecisionGate holds at most one unresolved black-swan decision. While a
// decision is pending the black-swan scheduler suppresses further firings,
// so the player never faces stacked decisions.
type DecisionGate struct {
	mu      sync.Mutex
	state   GateState
	pending event.MarketEvent
}

// NewDecisionGate creates an idle gate.
func NewDecisionGate() *DecisionGate {
	return &DecisionGate{state: GateIdle}
}

// Trigger surfaces a black-swan event for a player choice. It returns false
// when a decision is already pending; the event still applies its initial
// impact upstream, only the decision is refused.
func (g *DecisionGate) Trigger(ev event.MarketEvent) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == GatePending {
		return false
	}
	g.state = GatePending
	g.pending = ev
	observ.IncCounter("blackswan_decisions_opened_total", nil)
	return true
}

// Pending reports whether a decision is unresolved.
func (g *DecisionGate) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == GatePending
}

// PendingEvent returns the event awaiting a decision.
func (g *DecisionGate) PendingEvent() (event.MarketEvent, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != GatePending {
		return event.MarketEvent{}, false
	}
	return g.pending, true
}

// Resolve applies the player's choice and returns the aftershock event to
// feed through the normal event path. ok is false when the aftershock
// impact is zero and nothing further should be applied. The gate returns
// to idle either way.
func (g *DecisionGate) Resolve(choice Choice, at time.Time) (shock event.MarketEvent, ok bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != GatePending {
		return event.MarketEvent{}, false, fmt.Errorf("no black-swan decision pending")
	}
	factor, known := choiceFactors[choice]
	if !known {
		return event.MarketEvent{}, false, fmt.Errorf("unknown black-swan choice %q", choice)
	}

	shock = g.pending.Aftershock(factor, at)
	g.state = GateIdle
	g.pending = event.MarketEvent{}
	observ.IncCounter("blackswan_decisions_resolved_total", map[string]string{"choice": string(choice)})
	return shock, shock.ImpactPct != 0, nil
}
