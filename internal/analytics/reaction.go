// Package analytics correlates player trades to market events: did the
// player react, how fast, and did the direction make sense.
package analytics

import (
	"fmt"
	"sync"
	"time"

	"github.com/hedgelabs/hedge-sim/internal/event"
)

// Action is the trade direction.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Trade is one executed player order.
type Trade struct {
	Action         Action    `json:"action"`
	Ticker         string    `json:"ticker"`
	Qty            int       `json:"qty"`
	Price          float64   `json:"price"`
	Timestamp      time.Time `json:"timestamp"`
	RelatedEventID string    `json:"relatedEventId,omitempty"`
}

// ReactionRecord classifies the player's response to one event.
// Correct is tri-state: nil means the pattern was mixed or ambiguous and no
// judgement is made.
type ReactionRecord struct {
	EventID           string `json:"eventId"`
	Reacted           bool   `json:"reacted"`
	ReactionLatencyMs *int64 `json:"reactionLatencyMs,omitempty"`
	Correct           *bool  `json:"correct,omitempty"`
}

// Analyze examines the trade history for entries inside the reaction window
// [event time, event time + window] and classifies the response.
func Analyze(ev event.MarketEvent, trades []Trade, window time.Duration) ReactionRecord {
	rec := ReactionRecord{EventID: ev.RuntimeID}

	var qualifying []Trade
	for _, tr := range trades {
		if !tr.Timestamp.Before(ev.Timestamp) && !tr.Timestamp.After(ev.Timestamp.Add(window)) {
			qualifying = append(qualifying, tr)
		}
	}
	if len(qualifying) == 0 {
		return rec
	}

	rec.Reacted = true
	first := qualifying[0]
	for _, tr := range qualifying[1:] {
		if tr.Timestamp.Before(first.Timestamp) {
			first = tr
		}
	}
	latency := first.Timestamp.Sub(ev.Timestamp).Milliseconds()
	rec.ReactionLatencyMs = &latency

	var buys, sells int
	for _, tr := range qualifying {
		switch tr.Action {
		case ActionBuy:
			buys++
		case ActionSell:
			sells++
		}
	}

	// Selling into a negative event or buying into a positive one is
	// correct; the inverse is incorrect; mixed activity or a flat event
	// stays unclassified.
	switch {
	case sells > 0 && buys == 0 && ev.ImpactPct != 0:
		correct := ev.ImpactPct < 0
		rec.Correct = &correct
	case buys > 0 && sells == 0 && ev.ImpactPct != 0:
		correct := ev.ImpactPct > 0
		rec.Correct = &correct
	}
	return rec
}

// Pattern summarizes the trading response to an event as a coach-facing
// label. Advisory only; it never feeds the Correct classification.
func Pattern(ev event.MarketEvent, trades []Trade) string {
	var buys, sells, total int
	for _, tr := range trades {
		if tr.RelatedEventID != ev.RuntimeID {
			continue
		}
		total++
		switch tr.Action {
		case ActionBuy:
			buys++
		case ActionSell:
			sells++
		}
	}
	switch {
	case total == 0:
		return "No action taken"
	case sells > buys && sells >= 2:
		return "Rapid selling detected"
	case buys > sells && buys >= 2:
		return "Aggressive buying"
	case sells > 0 && ev.ImpactPct < -0.02:
		return "Defensive selling"
	case buys > 0 && ev.ImpactPct > 0.02:
		return "Momentum buying"
	default:
		return fmt.Sprintf("%d trade(s) executed", total)
	}
}

// History is a bounded, newest-first trade log.
type History struct {
	mu       sync.Mutex
	capacity int
	trades   []Trade
}

// DefaultTradeCapacity keeps the last 10 trades, matching the coach window.
const DefaultTradeCapacity = 10

// NewHistory creates a bounded trade history.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultTradeCapacity
	}
	return &History{capacity: capacity}
}

// Record prepends a trade, evicting the oldest beyond capacity.
func (h *History) Record(tr Trade) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.trades = append([]Trade{tr}, h.trades...)
	if len(h.trades) > h.capacity {
		h.trades = h.trades[:h.capacity]
	}
}

// Trades returns a copy, newest first.
func (h *History) Trades() []Trade {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Trade, len(h.trades))
	copy(out, h.trades)
	return out
}

// RecordLog is a bounded, newest-first store of reaction records.
type RecordLog struct {
	mu       sync.Mutex
	capacity int
	records  []ReactionRecord
}

// DefaultRecordCapacity keeps the last 100 reaction records.
const DefaultRecordCapacity = 100

// NewRecordLog creates a bounded reaction record log.
func NewRecordLog(capacity int) *RecordLog {
	if capacity <= 0 {
		capacity = DefaultRecordCapacity
	}
	return &RecordLog{capacity: capacity}
}

// Add prepends a record, evicting the oldest beyond capacity.
func (l *RecordLog) Add(rec ReactionRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append([]ReactionRecord{rec}, l.records...)
	if len(l.records) > l.capacity {
		l.records = l.records[:l.capacity]
	}
}

// Records returns a copy, newest first.
func (l *RecordLog) Records() []ReactionRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ReactionRecord, len(l.records))
	copy(out, l.records)
	return out
}
