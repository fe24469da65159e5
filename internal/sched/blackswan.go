package sched

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/hedgelabs/hedge-sim/internal/adapters"
	"github.com/hedgelabs/hedge-sim/internal/observ"
)

// BlackSwanConfig tunes the rare-event cadence.
type BlackSwanConfig struct {
	MeanInterval time.Duration // mean of the exponential draw
	MinInterval  time.Duration // clamp floor
	MaxInterval  time.Duration // clamp ceiling
}

// BlackSwan fires rare events on a clamped-exponential cadence. A firing is
// suppressed and re-queued while a previous black-swan decision is still
// pending, so the player never faces stacked decisions.
type BlackSwan struct {
	mu      sync.Mutex
	cfg     BlackSwanConfig
	source  adapters.Source
	emit    EmitFunc
	allowed func() bool // emission gate (active && !paused)
	pending func() bool // decision gate: true while a decision is unresolved

	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	rng *rand.Rand
}

// NewBlackSwan creates a black-swan scheduler.
func NewBlackSwan(cfg BlackSwanConfig, source adapters.Source, emit EmitFunc, allowed, pending func() bool) *BlackSwan {
	return &BlackSwan{
		cfg:     cfg,
		source:  source,
		emit:    emit,
		allowed: allowed,
		pending: pending,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start launches the firing loop; a second Start while running is a no-op.
func (b *BlackSwan) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	b.running = true
	b.cancel = cancel
	b.done = make(chan struct{})
	go b.loop(ctx, b.done)
	observ.Log("blackswan_scheduler_started", map[string]any{
		"mean_sec": b.cfg.MeanInterval.Seconds(),
		"min_sec":  b.cfg.MinInterval.Seconds(),
		"max_sec":  b.cfg.MaxInterval.Seconds(),
	})
}

// Stop cancels the pending wait and blocks until the loop exits. Idempotent.
func (b *BlackSwan) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	cancel, done := b.cancel, b.done
	b.cancel, b.done = nil, nil
	b.mu.Unlock()

	cancel()
	<-done
	observ.Log("blackswan_scheduler_stopped", nil)
}

// Running reports whether the firing loop is live.
func (b *BlackSwan) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

func (b *BlackSwan) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(b.nextDelay())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			b.fire(ctx)
			timer.Reset(b.nextDelay())
		}
	}
}

func (b *BlackSwan) fire(ctx context.Context) {
	if b.allowed != nil && !b.allowed() {
		return
	}
	// at most one unresolved decision at a time
	if b.pending != nil && b.pending() {
		observ.IncCounter("blackswan_suppressed_total", nil)
		return
	}

	ev, err := b.source.Generate(ctx, adapters.GenerateRequest{ForceBlackSwan: true})
	if err != nil || ev == nil {
		observ.Log("blackswan_generate_failed", map[string]any{"error": errString(err)})
		return
	}
	observ.IncCounter("events_emitted_total", map[string]string{"scheduler": "blackswan", "type": string(ev.Type)})
	b.emit(*ev)
}

func (b *BlackSwan) nextDelay() time.Duration {
	b.mu.Lock()
	u := b.rng.Float64()
	b.mu.Unlock()
	return sampleDelay(u, b.cfg.MeanInterval, b.cfg.MinInterval, b.cfg.MaxInterval)
}

// sampleDelay draws -ln(1-u)*mean and hard-clamps it to [min,max]. The clamp
// makes this not a true exponential; gameplay pacing was tuned against this
// exact curve, so keep the formula as is.
func sampleDelay(u float64, mean, min, max time.Duration) time.Duration {
	raw := -math.Log(1-u) * mean.Seconds()
	sec := math.Max(min.Seconds(), math.Min(raw, max.Seconds()))
	return time.Duration(sec * float64(time.Second))
}
