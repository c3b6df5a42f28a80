// Package journal persists the engine's committed event stream. The
// engine state stays authoritative in memory; the journal is the durable
// append-only record it is rebuilt from on startup.
package journal

import (
	"context"
	"sync"

	"dao-governance/internal/governance"
)

type Journal interface {
	// Append stores one committed event. Events arrive in sequence order.
	Append(ctx context.Context, event governance.Event) error
	// ReadAll returns every stored event in sequence order.
	ReadAll(ctx context.Context) ([]governance.Event, error)
	Close(ctx context.Context) error
}

// Memory is the journal used in tests and journal-less runs.
type Memory struct {
	mu     sync.Mutex
	events []governance.Event
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(_ context.Context, event governance.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *Memory) ReadAll(_ context.Context) ([]governance.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]governance.Event, len(m.events))
	copy(out, m.events)
	return out, nil
}

func (m *Memory) Close(_ context.Context) error { return nil }

// Replay feeds the full journal into a freshly constructed engine.
func Replay(ctx context.Context, j Journal, engine *governance.Engine) error {
	events, err := j.ReadAll(ctx)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}
	return engine.Restore(events)
}
