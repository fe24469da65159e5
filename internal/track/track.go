// Package track samples portfolio performance on a fixed cadence so the
// presentation layer can chart P&L without touching session internals.
package track

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hedgelabs/hedge-sim/internal/observ"
)

// Sample is one point on the P&L curve.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Cash      float64   `json:"cash"`
	PnL       float64   `json:"pnl"`
}

// SampleFunc produces the current sample. ok is false when there is nothing
// to record, e.g. no game in progress.
type SampleFunc func() (Sample, bool)

// Tracker drives a SampleFunc on a cron cadence and retains a bounded
// history, newest first.
type Tracker struct {
	cron   *cron.Cron
	sample SampleFunc

	mu       sync.Mutex
	capacity int
	samples  []Sample
}

// DefaultHistoryCap bounds the retained curve.
const DefaultHistoryCap = 100

// New builds a tracker from a six-field cron spec (seconds resolution),
// e.g. "*/5 * * * * *" for every five seconds.
func New(spec string, capacity int, sample SampleFunc) (*Tracker, error) {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}
	t := &Tracker{
		cron:     cron.New(cron.WithSeconds()),
		sample:   sample,
		capacity: capacity,
	}
	if _, err := t.cron.AddFunc(spec, t.take); err != nil {
		return nil, fmt.Errorf("tracker spec %q: %w", spec, err)
	}
	return t, nil
}

// Start begins sampling. Safe to call once; cron ignores repeat starts.
func (t *Tracker) Start() {
	t.cron.Start()
}

// Stop halts sampling and waits for an in-flight sample to finish.
func (t *Tracker) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
}

func (t *Tracker) take() {
	s, ok := t.sample()
	if !ok {
		return
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now()
	}

	t.mu.Lock()
	t.samples = append([]Sample{s}, t.samples...)
	if len(t.samples) > t.capacity {
		t.samples = t.samples[:t.capacity]
	}
	t.mu.Unlock()

	observ.SetGauge("tracked_value", s.Value, nil)
	observ.SetGauge("tracked_pnl", s.PnL, nil)
	observ.IncCounter("track_samples_total", nil)
}

// Samples returns a copy of the history, newest first.
func (t *Tracker) Samples() []Sample {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Sample, len(t.samples))
	copy(out, t.samples)
	return out
}

// Latest returns the most recent sample.
func (t *Tracker) Latest() (Sample, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.samples) == 0 {
		return Sample{}, false
	}
	return t.samples[0], true
}
