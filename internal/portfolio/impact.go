package portfolio

import (
	"github.com/hedgelabs/hedge-sim/internal/event"
)

// ApplyImpact returns a new portfolio with every holding repriced by the
// event's layered impact: market-wide, plus sector, plus ticker. It is a
// pure function; applied-once semantics are the caller's guard on the
// event's runtime id.
func ApplyImpact(p Portfolio, ev event.MarketEvent) Portfolio {
	out := p.Clone()
	for i := range out.Holdings {
		h := &out.Holdings[i]
		pct := ev.ImpactPct
		if h.Sector != "" {
			pct += ev.Impacts.Sector[h.Sector]
		}
		pct += ev.Impacts.Ticker[h.Ticker]

		price := Round2(h.Price * (1 + pct))
		if price < 0 {
			price = 0
		}
		h.Price = price
	}
	return out
}
