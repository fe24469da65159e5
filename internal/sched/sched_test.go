package sched

import (
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedgelabs/hedge-sim/internal/adapters"
	"github.com/hedgelabs/hedge-sim/internal/event"
)

type collector struct {
	mu     sync.Mutex
	events []event.MarketEvent
}

func (c *collector) emit(ev event.MarketEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func fastRoutineConfig() RoutineConfig {
	return RoutineConfig{
		MinDelay:     2 * time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		ProbPerTick:  1.0,
		QuietCeiling: 50 * time.Millisecond,
	}
}

func localSource() adapters.Source {
	return adapters.NewFallbackSource(nil, adapters.NewLocalSource(event.NewGeneratorSeeded(11)))
}

func TestRoutine_EmitsWhileRunning(t *testing.T) {
	var c collector
	r := NewRoutine(fastRoutineConfig(), localSource(), c.emit, nil)
	r.Start()
	defer r.Stop()

	require.Eventually(t, func() bool { return c.count() >= 3 }, time.Second, 2*time.Millisecond)
}

func TestRoutine_StartTwiceIsNoop(t *testing.T) {
	var c collector
	r := NewRoutine(fastRoutineConfig(), localSource(), c.emit, nil)
	r.Start()
	r.Start()
	assert.True(t, r.Running())
	r.Stop()
	assert.False(t, r.Running())
}

func TestRoutine_StopIdempotentAndImmediate(t *testing.T) {
	var c collector
	cfg := fastRoutineConfig()
	cfg.MinDelay = time.Hour // pending wait must be cancelled, not awaited
	cfg.MaxDelay = 2 * time.Hour
	r := NewRoutine(cfg, localSource(), c.emit, nil)
	r.Start()

	done := make(chan struct{})
	go func() {
		r.Stop()
		r.Stop() // second stop must not panic or block
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not cancel the pending wait")
	}
	assert.False(t, r.Running())

	n := c.count()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, c.count(), "no emissions after Stop")
}

func TestRoutine_QuietCeilingForcesEmit(t *testing.T) {
	var c collector
	cfg := RoutineConfig{
		MinDelay:     2 * time.Millisecond,
		MaxDelay:     4 * time.Millisecond,
		ProbPerTick:  0, // never emit by probability
		QuietCeiling: 10 * time.Millisecond,
	}
	r := NewRoutine(cfg, localSource(), c.emit, nil)
	r.Start()
	defer r.Stop()

	require.Eventually(t, func() bool { return c.count() >= 1 }, time.Second, 2*time.Millisecond,
		"quiet ceiling must force an emission even at prob 0")
}

func TestRoutine_GateBlocksEmission(t *testing.T) {
	var c collector
	var open atomic.Bool
	r := NewRoutine(fastRoutineConfig(), localSource(), c.emit, open.Load)
	r.Start()
	defer r.Stop()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 0, c.count(), "closed gate must block all emissions")

	open.Store(true)
	require.Eventually(t, func() bool { return c.count() >= 1 }, time.Second, 2*time.Millisecond)
}

func TestRoutine_ImmediateFiresFirst(t *testing.T) {
	var c collector
	cfg := fastRoutineConfig()
	cfg.Immediate = true
	cfg.MinDelay = time.Hour
	cfg.MaxDelay = 2 * time.Hour
	r := NewRoutine(cfg, localSource(), c.emit, nil)
	r.Start()
	defer r.Stop()

	require.Eventually(t, func() bool { return c.count() == 1 }, time.Second, time.Millisecond)
}

func TestRoutine_StartThenImmediateStop(t *testing.T) {
	var c collector
	r := NewRoutine(fastRoutineConfig(), localSource(), c.emit, nil)
	// Stop may land before the loop goroutine is even scheduled; it must
	// still wait for a clean exit rather than crash or race.
	for i := 0; i < 200; i++ {
		r.Start()
		r.Stop()
	}
	assert.False(t, r.Running())
}

func TestBlackSwan_StartThenImmediateStop(t *testing.T) {
	var c collector
	cfg := BlackSwanConfig{MeanInterval: time.Hour, MinInterval: time.Hour, MaxInterval: 2 * time.Hour}
	b := NewBlackSwan(cfg, localSource(), c.emit, nil, nil)
	for i := 0; i < 200; i++ {
		b.Start()
		b.Stop()
	}
	assert.False(t, b.Running())
}

func TestBlackSwan_FiresAndStops(t *testing.T) {
	var c collector
	cfg := BlackSwanConfig{
		MeanInterval: 5 * time.Millisecond,
		MinInterval:  time.Millisecond,
		MaxInterval:  10 * time.Millisecond,
	}
	b := NewBlackSwan(cfg, localSource(), c.emit, nil, nil)
	b.Start()
	b.Start() // no-op

	require.Eventually(t, func() bool { return c.count() >= 1 }, time.Second, time.Millisecond)
	b.Stop()
	b.Stop()
	assert.False(t, b.Running())

	c.mu.Lock()
	for _, ev := range c.events {
		assert.Equal(t, event.TypeBlackSwan, ev.Type)
	}
	c.mu.Unlock()
}

func TestBlackSwan_PendingDecisionSuppresses(t *testing.T) {
	var c collector
	var pending atomic.Bool
	pending.Store(true)
	cfg := BlackSwanConfig{
		MeanInterval: 3 * time.Millisecond,
		MinInterval:  time.Millisecond,
		MaxInterval:  5 * time.Millisecond,
	}
	b := NewBlackSwan(cfg, localSource(), c.emit, nil, pending.Load)
	b.Start()
	defer b.Stop()

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, 0, c.count(), "no firings while a decision is pending")

	pending.Store(false)
	require.Eventually(t, func() bool { return c.count() >= 1 }, time.Second, time.Millisecond,
		"suppressed firings must resume once the decision resolves")
}

func TestSampleDelay_FormulaAndClamp(t *testing.T) {
	mean := 120 * time.Second
	min := 45 * time.Second
	max := 180 * time.Second

	// u=0 -> raw 0, clamped up to min
	assert.Equal(t, min, sampleDelay(0, mean, min, max))

	// u close to 1 -> huge raw, clamped down to max
	assert.Equal(t, max, sampleDelay(0.9999999, mean, min, max))

	// mid draw inside the clamp window keeps the exact formula
	u := 0.5
	want := time.Duration(-math.Log(1-u) * mean.Seconds() * float64(time.Second))
	got := sampleDelay(u, mean, min, max)
	assert.InDelta(t, want.Seconds(), got.Seconds(), 1e-9)
	assert.GreaterOrEqual(t, got, min)
	assert.LessOrEqual(t, got, max)
}
