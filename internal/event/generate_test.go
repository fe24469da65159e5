package event

import (
	"math"
	"testing"
)

func TestGenerator_RoutineJitterBounds(t *testing.T) {
	g := NewGeneratorSeeded(42)
	for i := 0; i < 200; i++ {
		ev := g.Next("")
		if ev.Type != TypeMacro && ev.Type != TypeMicro {
			t.Fatalf("unexpected type %s", ev.Type)
		}
		if d := math.Abs(ev.ImpactPct - ev.BaseImpactPct); d > routineJitter/2+1e-9 {
			t.Fatalf("jitter out of range: base=%v realized=%v", ev.BaseImpactPct, ev.ImpactPct)
		}
		if ev.RuntimeID == "" || ev.RuntimeID == ev.ID {
			t.Fatalf("runtime id not unique per emission: %q", ev.RuntimeID)
		}
	}
}

func TestGenerator_ForcedType(t *testing.T) {
	g := NewGeneratorSeeded(7)
	for i := 0; i < 50; i++ {
		if ev := g.Next(TypeMacro); ev.Type != TypeMacro {
			t.Fatalf("forced MACRO produced %s", ev.Type)
		}
		if ev := g.Next(TypeMicro); ev.Type != TypeMicro {
			t.Fatalf("forced MICRO produced %s", ev.Type)
		}
	}
}

func TestGenerator_BlackSwan(t *testing.T) {
	g := NewGeneratorSeeded(1)
	ev := g.NextBlackSwan()
	if ev.Type != TypeBlackSwan {
		t.Fatalf("want BLACKSWAN, got %s", ev.Type)
	}
	if ev.Severity != SeverityHigh {
		t.Fatalf("black swans are always HIGH severity, got %s", ev.Severity)
	}
	if ev.ImpactPct >= 0 {
		t.Fatalf("black swan impact should stay negative, got %v", ev.ImpactPct)
	}
}

func TestGenerator_AvoidsRecentTemplates(t *testing.T) {
	g := NewGeneratorSeeded(3)
	seen := map[string]int{}
	// 15 macro templates with a 10-deep recent list: a window of 10
	// consecutive draws must never repeat a template id.
	var window []string
	for i := 0; i < 60; i++ {
		ev := g.Next(TypeMacro)
		seen[ev.ID]++
		window = append(window, ev.ID)
		if len(window) > recentTrack {
			window = window[1:]
		}
		dup := map[string]bool{}
		for _, id := range window {
			if dup[id] {
				t.Fatalf("template %s repeated within %d draws", id, recentTrack)
			}
			dup[id] = true
		}
	}
	if len(seen) < recentTrack {
		t.Fatalf("expected variety across pool, saw %d templates", len(seen))
	}
}

func TestAftershock(t *testing.T) {
	base := MarketEvent{
		ID: "bs-1", RuntimeID: "bs-1-x", Type: TypeBlackSwan,
		Title: "Flash Crash: Liquidity Vacuum", ImpactPct: -0.10,
	}
	shock := base.Aftershock(0.6, base.Timestamp)
	if shock.ImpactPct != -0.06 {
		t.Fatalf("HOLD aftershock: want -0.06, got %v", shock.ImpactPct)
	}
	if shock.Title != "Flash Crash: Liquidity Vacuum (Aftershock)" {
		t.Fatalf("bad aftershock title %q", shock.Title)
	}
	if shock.RuntimeID == base.RuntimeID {
		t.Fatal("aftershock must get a fresh runtime id")
	}
	if base.Title != "Flash Crash: Liquidity Vacuum" {
		t.Fatal("source event mutated")
	}
}
