package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedgelabs/hedge-sim/internal/event"
)

func pendingSwan() event.MarketEvent {
	return event.MarketEvent{
		ID:        "swan-3",
		RuntimeID: "swan-3-abc",
		Type:      event.TypeBlackSwan,
		Title:     "Major bank collapse",
		ImpactPct: -0.12,
	}
}

func TestGateTriggerAndResolve(t *testing.T) {
	g := NewDecisionGate()
	assert.False(t, g.Pending())

	require.True(t, g.Trigger(pendingSwan()))
	assert.True(t, g.Pending())
	ev, ok := g.PendingEvent()
	require.True(t, ok)
	assert.Equal(t, "swan-3-abc", ev.RuntimeID)

	at := time.Now()
	shock, ok, err := g.Resolve(ChoiceHedge, at)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Major bank collapse (Aftershock)", shock.Title)
	assert.InDelta(t, -0.036, shock.ImpactPct, 1e-9)
	assert.NotEqual(t, "swan-3-abc", shock.RuntimeID)
	assert.Equal(t, at, shock.Timestamp)
	assert.False(t, g.Pending())
}

func TestGateRefusesSecondTrigger(t *testing.T) {
	g := NewDecisionGate()
	require.True(t, g.Trigger(pendingSwan()))
	assert.False(t, g.Trigger(pendingSwan()), "one decision at a time")

	_, ok := g.PendingEvent()
	assert.True(t, ok, "first event still pending")
}

func TestGateResolveChoices(t *testing.T) {
	cases := []struct {
		choice Choice
		want   float64
	}{
		{ChoiceHedge, -0.036},
		{ChoiceHold, -0.072},
		{ChoiceDouble, -0.144},
	}
	for _, tc := range cases {
		t.Run(string(tc.choice), func(t *testing.T) {
			g := NewDecisionGate()
			require.True(t, g.Trigger(pendingSwan()))
			shock, ok, err := g.Resolve(tc.choice, time.Now())
			require.NoError(t, err)
			require.True(t, ok)
			assert.InDelta(t, tc.want, shock.ImpactPct, 1e-9)
		})
	}
}

func TestGateResolveErrors(t *testing.T) {
	g := NewDecisionGate()
	_, _, err := g.Resolve(ChoiceHold, time.Now())
	assert.Error(t, err, "nothing pending")

	require.True(t, g.Trigger(pendingSwan()))
	_, _, err = g.Resolve(Choice("PANIC"), time.Now())
	assert.Error(t, err, "unknown choice")
	assert.True(t, g.Pending(), "bad choice leaves the decision open")
}

func TestGateZeroImpactYieldsNoAftershock(t *testing.T) {
	g := NewDecisionGate()
	ev := pendingSwan()
	ev.ImpactPct = 0
	require.True(t, g.Trigger(ev))

	_, ok, err := g.Resolve(ChoiceHold, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, g.Pending())
}
