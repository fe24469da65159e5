package event

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	routineJitter   = 0.008 // uniform spread around base impact, routine events
	blackSwanJitter = 0.04
	recentTrack     = 10 // avoid repeating any of the last N template ids
)

// Generator produces events from the fixed local pools. It is the fallback
// path when the remote event source is absent or failing, and the only path
// for offline play.
type Generator struct {
	mu     sync.Mutex
	rng    *rand.Rand
	recent []string
	now    func() time.Time
}

// NewGenerator creates a pool generator seeded from the clock.
func NewGenerator() *Generator {
	return NewGeneratorSeeded(time.Now().UnixNano())
}

// NewGeneratorSeeded creates a pool generator with a fixed seed for
// deterministic tests.
func NewGeneratorSeeded(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// Next emits a routine event of the given type. An empty type picks
// MACRO or MICRO with equal probability.
func (g *Generator) Next(t Type) MarketEvent {
	g.mu.Lock()
	defer g.mu.Unlock()

	if t != TypeMacro && t != TypeMicro {
		if g.rng.Float64() < 0.5 {
			t = TypeMacro
		} else {
			t = TypeMicro
		}
	}
	pool := macroPool
	if t == TypeMicro {
		pool = microPool
	}
	return g.emit(g.pick(pool), routineJitter)
}

// NextBlackSwan emits a black-swan event.
func (g *Generator) NextBlackSwan() MarketEvent {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.emit(g.pick(blackSwanPool), blackSwanJitter)
}

// pick selects a template uniformly, skipping recently used ids so short
// sessions do not replay the same headline. Falls back to the full pool
// when everything is recent.
func (g *Generator) pick(pool []template) template {
	avail := make([]template, 0, len(pool))
	for _, tpl := range pool {
		if !g.recentlyUsed(tpl.ID) {
			avail = append(avail, tpl)
		}
	}
	if len(avail) == 0 {
		avail = pool
	}
	tpl := avail[g.rng.Intn(len(avail))]

	g.recent = append(g.recent, tpl.ID)
	if len(g.recent) > recentTrack {
		g.recent = g.recent[len(g.recent)-recentTrack:]
	}
	return tpl
}

func (g *Generator) recentlyUsed(id string) bool {
	for _, r := range g.recent {
		if r == id {
			return true
		}
	}
	return false
}

func (g *Generator) emit(tpl template, jitter float64) MarketEvent {
	impact := round4(tpl.BaseImpactPct + (g.rng.Float64()-0.5)*jitter)
	return MarketEvent{
		ID:            tpl.ID,
		RuntimeID:     tpl.ID + "-" + uuid.NewString(),
		Type:          tpl.Type,
		Title:         tpl.Title,
		Details:       tpl.Details,
		BaseImpactPct: tpl.BaseImpactPct,
		ImpactPct:     impact,
		Severity:      severityFor(tpl.Type, impact),
		Timestamp:     g.now().UTC(),
	}
}
