// Package sched implements the two stochastic event schedulers: the routine
// MACRO/MICRO cadence and the rare black-swan cadence. Each scheduler is an
// independent cancellable timer loop with a single running goroutine, and
// redundant Start and Stop calls are no-ops.
package sched

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/hedgelabs/hedge-sim/internal/adapters"
	"github.com/hedgelabs/hedge-sim/internal/event"
	"github.com/hedgelabs/hedge-sim/internal/observ"
)

// EmitFunc receives each emitted event. Implementations must be quick; the
// scheduler calls it synchronously from its loop.
type EmitFunc func(ev event.MarketEvent)

// RoutineConfig tunes the routine event cadence.
type RoutineConfig struct {
	MinDelay     time.Duration // lower bound of the uniform inter-tick delay
	MaxDelay     time.Duration // upper bound
	ProbPerTick  float64       // chance to emit on a tick
	QuietCeiling time.Duration // never stay silent longer than this
	Immediate    bool          // fire one event right after Start
}

// Routine emits MACRO/MICRO events while running. On each tick it emits when
// the feed has been quiet past the ceiling, or with ProbPerTick otherwise.
type Routine struct {
	mu      sync.Mutex
	cfg     RoutineConfig
	source  adapters.Source
	emit    EmitFunc
	allowed func() bool // emission gate; nil means always allowed

	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	rng      *rand.Rand
	lastEmit time.Time
	now      func() time.Time
}

// NewRoutine creates a routine scheduler. The gate is consulted at emission
// time, never captured, so pause state is always read fresh.
func NewRoutine(cfg RoutineConfig, source adapters.Source, emit EmitFunc, allowed func() bool) *Routine {
	return &Routine{
		cfg:     cfg,
		source:  source,
		emit:    emit,
		allowed: allowed,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
}

// Start launches the emission loop. Starting while already running is a
// no-op; only one loop may exist per scheduler.
func (r *Routine) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.running = true
	r.cancel = cancel
	r.done = make(chan struct{})
	r.lastEmit = time.Time{}
	go r.loop(ctx, r.done)
	observ.Log("routine_scheduler_started", map[string]any{
		"min_delay_ms": r.cfg.MinDelay.Milliseconds(),
		"max_delay_ms": r.cfg.MaxDelay.Milliseconds(),
		"prob":         r.cfg.ProbPerTick,
	})
}

// Stop cancels the pending wait immediately and blocks until the loop has
// exited. Safe to call when not running.
func (r *Routine) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	cancel()
	<-done
	observ.Log("routine_scheduler_stopped", nil)
}

// Running reports whether the emission loop is live.
func (r *Routine) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// loop owns its done channel; Stop nils the struct field, so the loop must
// never read it back.
func (r *Routine) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	if r.cfg.Immediate {
		r.tick(ctx, true)
	}

	timer := time.NewTimer(r.nextDelay())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			r.tick(ctx, false)
			timer.Reset(r.nextDelay())
		}
	}
}

// tick applies the emit rule: forced first emission, quiet-ceiling breach,
// or a probability draw.
func (r *Routine) tick(ctx context.Context, force bool) {
	if r.allowed != nil && !r.allowed() {
		return
	}
	now := r.now()
	tooQuiet := r.cfg.QuietCeiling > 0 && now.Sub(r.last()) > r.cfg.QuietCeiling
	if !force && !tooQuiet && r.roll() >= r.cfg.ProbPerTick {
		return
	}

	ev, err := r.source.Generate(ctx, adapters.GenerateRequest{Type: r.pickType()})
	if err != nil || ev == nil {
		// only reachable with a non-fallback source wired directly
		observ.Log("routine_generate_failed", map[string]any{"error": errString(err)})
		return
	}
	r.setLast(now)
	observ.IncCounter("events_emitted_total", map[string]string{"scheduler": "routine", "type": string(ev.Type)})
	r.emit(*ev)
}

func (r *Routine) nextDelay() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	spread := r.cfg.MaxDelay - r.cfg.MinDelay
	if spread <= 0 {
		return r.cfg.MinDelay
	}
	return r.cfg.MinDelay + time.Duration(r.rng.Int63n(int64(spread)))
}

func (r *Routine) pickType() event.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rng.Float64() < 0.5 {
		return event.TypeMacro
	}
	return event.TypeMicro
}

func (r *Routine) roll() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

func (r *Routine) last() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastEmit
}

func (r *Routine) setLast(t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastEmit = t
}

func errString(err error) string {
	if err == nil {
		return "nil event"
	}
	return err.Error()
}
