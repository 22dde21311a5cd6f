package audit

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"vitalis/pkg/domain"
)

// Publisher stamps events with a monotonic sequence number and hands them to
// the worker through a buffered channel. Emit never blocks the mutating
// operation: when the buffer is full the event is dropped with a warning.
type Publisher struct {
	seq    atomic.Uint64
	out    chan Event
	logger *slog.Logger
}

func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{
		out:    make(chan Event, buffer),
		logger: logger,
	}
}

// Events is the stream the worker consumes.
func (p *Publisher) Events() <-chan Event {
	return p.out
}

// Emit records one successful mutation.
func (p *Publisher) Emit(_ context.Context, op Operation, subject string, actor domain.AccountID) {
	event := Event{
		ID:        uuid.New(),
		Seq:       p.seq.Add(1),
		Timestamp: time.Now().UTC(),
		Operation: op,
		Subject:   subject,
		Actor:     actor,
		ActorID:   actor.String(),
	}
	select {
	case p.out <- event:
	default:
		p.logger.Warn("audit buffer full, dropping event",
			"operation", string(op), "subject", subject, "seq", event.Seq)
	}
}

// Close stops the stream. Call only after all mutating operations have
// quiesced.
func (p *Publisher) Close() {
	close(p.out)
}
