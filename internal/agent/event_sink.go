package agent

import (
	"context"
	"sync"

	"github.com/agentcore/agentcore/pkg/models"
)

// EventSink receives AgentEvents as an executor activation progresses.
// Implementations must not block the emitting goroutine for long; slow
// consumers should buffer internally (see ChanSink) or be wrapped in a
// BackpressureSink.
type EventSink interface {
	Emit(ctx context.Context, event models.AgentEvent)
}

// NopSink discards every event. It is the default when a caller supplies no
// sink.
type NopSink struct{}

func (NopSink) Emit(context.Context, models.AgentEvent) {}

// CallbackSink adapts a plain function into an EventSink.
type CallbackSink func(ctx context.Context, event models.AgentEvent)

func (f CallbackSink) Emit(ctx context.Context, event models.AgentEvent) {
	if f != nil {
		f(ctx, event)
	}
}

// ChanSink forwards events onto a buffered channel for an external consumer
// to drain. Emit drops the event rather than blocking once the channel is
// full, so a stalled consumer cannot stall the executor loop.
type ChanSink struct {
	C chan models.AgentEvent
}

// NewChanSink creates a ChanSink with the given buffer size.
func NewChanSink(buffer int) *ChanSink {
	return &ChanSink{C: make(chan models.AgentEvent, buffer)}
}

func (s *ChanSink) Emit(_ context.Context, event models.AgentEvent) {
	select {
	case s.C <- event:
	default:
	}
}

// Close closes the underlying channel. Callers must ensure no further Emit
// calls occur afterward.
func (s *ChanSink) Close() {
	close(s.C)
}

// MultiSink fans one event out to every wrapped sink.
type MultiSink struct {
	sinks []EventSink
}

// NewMultiSink builds a MultiSink over sinks, skipping any nil entries.
func NewMultiSink(sinks ...EventSink) *MultiSink {
	filtered := make([]EventSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			filtered = append(filtered, s)
		}
	}
	return &MultiSink{sinks: filtered}
}

func (m *MultiSink) Emit(ctx context.Context, event models.AgentEvent) {
	for _, s := range m.sinks {
		s.Emit(ctx, event)
	}
}

// BackpressureSink bounds the number of events an underlying sink may lag
// behind by, dropping the oldest pending event rather than blocking the
// executor loop when the wrapped sink falls behind.
type BackpressureSink struct {
	mu      sync.Mutex
	wrapped EventSink
	max     int
	pending int
}

// NewBackpressureSink wraps wrapped, allowing at most maxPending events to be
// in flight to it concurrently.
func NewBackpressureSink(wrapped EventSink, maxPending int) *BackpressureSink {
	return &BackpressureSink{wrapped: wrapped, max: maxPending}
}

func (b *BackpressureSink) Emit(ctx context.Context, event models.AgentEvent) {
	b.mu.Lock()
	if b.pending >= b.max {
		b.mu.Unlock()
		return
	}
	b.pending++
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.pending--
		b.mu.Unlock()
	}()
	b.wrapped.Emit(ctx, event)
}
