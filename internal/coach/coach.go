// Package coach turns portfolio shape and reaction history into short
// actionable hints shown between rounds.
package coach

import (
	"fmt"
	"time"

	"github.com/hedgelabs/hedge-sim/internal/analytics"
	"github.com/hedgelabs/hedge-sim/internal/portfolio"
)

// ReactionWindow is the tighter window the coach uses when judging how
// quickly a player responded to an event.
const ReactionWindow = 5 * time.Second

// Summary captures the portfolio shape the advice rules key off.
type Summary struct {
	DominantSector   string  `json:"dominantSector"`
	ConcentrationPct float64 `json:"concentrationPct"` // dominant sector share of holdings value
	SectorCount      int     `json:"sectorCount"`
	CashPct          float64 `json:"cashPct"` // cash share of total value
	TotalValue       float64 `json:"totalValue"`
}

// Summarize computes sector concentration from current holdings. Zero-share
// positions carry no value and are ignored.
func Summarize(p portfolio.Portfolio) Summary {
	sectorValue := map[string]float64{}
	var holdingsValue float64
	for _, h := range p.Holdings {
		v := float64(h.Shares) * h.Price
		if v == 0 {
			continue
		}
		sectorValue[h.Sector] += v
		holdingsValue += v
	}

	s := Summary{
		SectorCount: len(sectorValue),
		TotalValue:  portfolio.Round2(holdingsValue + p.Cash),
	}
	if s.TotalValue > 0 {
		s.CashPct = portfolio.Round2(p.Cash / s.TotalValue * 100)
	}
	for sector, v := range sectorValue {
		pct := v / holdingsValue * 100
		if pct > s.ConcentrationPct || (pct == s.ConcentrationPct && sector < s.DominantSector) {
			s.DominantSector = sector
			s.ConcentrationPct = portfolio.Round2(pct)
		}
	}
	return s
}

// Coach produces one hint from the current summary and reaction history.
type Coach interface {
	Advise(s Summary, records []analytics.ReactionRecord) string
}

// Noop is the disabled coach.
type Noop struct{}

func (Noop) Advise(Summary, []analytics.ReactionRecord) string { return "" }

// RuleCoach is the built-in rule-based advisor. Rules fire in priority
// order; the first match wins.
type RuleCoach struct{}

func (RuleCoach) Advise(s Summary, records []analytics.ReactionRecord) string {
	if s.ConcentrationPct >= 50 && s.DominantSector != "" {
		return fmt.Sprintf("%.0f%% of your holdings sit in %s. Spread risk across sectors before the next shock.", s.ConcentrationPct, s.DominantSector)
	}
	if s.CashPct < 10 {
		return "Cash reserves are thin. Keep dry powder so a black swan doesn't force a fire sale."
	}
	if s.CashPct > 70 {
		return "Most of your capital is idle. Put cash to work while the market is calm."
	}
	if hit, total := hitRate(records); total >= 3 && hit*2 < total {
		return "Your recent reactions fought the tape. Sell into bad news, buy into good news."
	}
	if slow, reacted := slowReactions(records); reacted >= 3 && slow*2 > reacted {
		return "You see the news but trade late. Act within five seconds of a headline to catch the move."
	}
	return "Balanced book. Watch the feed and react inside the event window."
}

// slowReactions counts rounds the player reacted in and how many of those
// responses came slower than the coach window.
func slowReactions(records []analytics.ReactionRecord) (slow, reacted int) {
	for _, r := range records {
		if r.ReactionLatencyMs == nil {
			continue
		}
		reacted++
		if time.Duration(*r.ReactionLatencyMs)*time.Millisecond > ReactionWindow {
			slow++
		}
	}
	return slow, reacted
}

// hitRate counts classified reactions and how many were correct.
func hitRate(records []analytics.ReactionRecord) (hit, total int) {
	for _, r := range records {
		if r.Correct == nil {
			continue
		}
		total++
		if *r.Correct {
			hit++
		}
	}
	return hit, total
}
