package event

import (
	"strings"
	"sync"
	"time"

	"github.com/hedgelabs/hedge-sim/internal/observ"
)

const (
	// DefaultDedupWindow suppresses a repeated (type,title) headline arriving
	// within this interval of its last acceptance.
	DefaultDedupWindow = 20 * time.Second

	// DefaultCapacity bounds the retained history.
	DefaultCapacity = 100
)

// Log is the bounded, ordered, de-duplicating store of emitted events.
// Accepted events are terminal: nothing mutates them after ingest.
type Log struct {
	mu       sync.Mutex
	window   time.Duration
	capacity int
	lastSeen map[string]time.Time // dedup key -> last acceptance
	events   []MarketEvent        // newest first
	now      func() time.Time
}

// NewLog creates an event log with the given dedup window and capacity.
// Non-positive arguments take the defaults.
func NewLog(window time.Duration, capacity int) *Log {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		window:   window,
		capacity: capacity,
		lastSeen: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Ingest offers an event to the log. It returns false when the event is a
// near-duplicate: same (type,title) accepted less than the window ago.
// An event missing both type and title keys to "|" and always passes.
func (l *Log) Ingest(ev MarketEvent) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	key := dedupKey(ev)
	if key != "|" {
		if last, ok := l.lastSeen[key]; ok && now.Sub(last) < l.window {
			observ.IncCounter("events_deduped_total", map[string]string{"type": string(ev.Type)})
			return false
		}
		l.lastSeen[key] = now
	}

	if ev.Timestamp.IsZero() {
		ev.Timestamp = now
	}
	l.events = append([]MarketEvent{ev}, l.events...)
	if len(l.events) > l.capacity {
		l.events = l.events[:l.capacity]
	}
	observ.IncCounter("events_ingested_total", map[string]string{"type": string(ev.Type)})
	return true
}

// Events returns a copy of the retained history, newest first.
func (l *Log) Events() []MarketEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]MarketEvent, len(l.events))
	copy(out, l.events)
	return out
}

// Feed returns the history visible to news-feed consumers: newest first,
// black swans excluded (they surface through the decision gate instead).
func (l *Log) Feed() []MarketEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]MarketEvent, 0, len(l.events))
	for _, ev := range l.events {
		if ev.Type != TypeBlackSwan {
			out = append(out, ev)
		}
	}
	return out
}

// Latest returns the most recently accepted event.
func (l *Log) Latest() (MarketEvent, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == 0 {
		return MarketEvent{}, false
	}
	return l.events[0], true
}

// Len reports the number of retained events.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func dedupKey(ev MarketEvent) string {
	return strings.TrimSpace(string(ev.Type)) + "|" + strings.TrimSpace(ev.Title)
}
