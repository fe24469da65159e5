package adapters

import (
	"context"
	"fmt"
	"sync"

	"github.com/hedgelabs/hedge-sim/internal/event"
)

// MockSource is a scripted Source for tests: it replays queued events in
// order and records every request it sees.
type MockSource struct {
	mu     sync.Mutex
	queue  []event.MarketEvent
	err    error
	Calls  []GenerateRequest
}

// NewMockSource creates a mock that will serve the given events in order.
func NewMockSource(events ...event.MarketEvent) *MockSource {
	return &MockSource{queue: events}
}

// Fail makes every subsequent Generate call return err.
func (m *MockSource) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockSource) Generate(_ context.Context, req GenerateRequest) (*event.MarketEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) == 0 {
		return nil, fmt.Errorf("mock source exhausted")
	}
	ev := m.queue[0]
	m.queue = m.queue[1:]
	return &ev, nil
}

// CallCount reports how many Generate calls the mock has served.
func (m *MockSource) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
