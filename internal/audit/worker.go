package audit

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Sink receives serialized audit events for external consumers. The kafka
// sub-package provides the production implementation.
type Sink interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// Worker drains the publisher's stream, appends each event to the store and
// forwards it to the sink when one is configured. Failures are logged and the
// event is dropped: the audit stream must never become a correctness
// dependency of the ledger.
type Worker struct {
	store  Store
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			w.handle(ctx, event)
		}
	}
}

func (w *Worker) handle(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.Error("append audit event failed",
			"seq", event.Seq, "operation", string(event.Operation), "err", err)
	}
	if w.sink == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		w.logger.Error("marshal audit event failed", "seq", event.Seq, "err", err)
		return
	}
	if err := w.sink.Publish(ctx, event.Subject, payload); err != nil {
		w.logger.Error("publish audit event failed",
			"seq", event.Seq, "operation", string(event.Operation), "err", err)
	}
}
