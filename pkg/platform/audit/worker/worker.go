package worker

import (
	"context"
	"log/slog"

	audit "talentgate/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them, keeping the
// request path free of storage latency. Persist failures are logged and the
// event dropped; the primary aggregate write has already succeeded by the
// time an event is emitted.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func New(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.WarnContext(ctx, "audit event dropped",
					"action", event.Action,
					"candidate_id", event.CandidateID,
					"error", err,
				)
			}
		}
	}
}

// ChannelPublisher emits events into the worker's inbox without blocking the
// caller; a full inbox drops the event rather than stalling a request.
type ChannelPublisher struct {
	inbox  chan<- audit.Event
	logger *slog.Logger
}

func NewChannelPublisher(inbox chan<- audit.Event, logger *slog.Logger) *ChannelPublisher {
	return &ChannelPublisher{inbox: inbox, logger: logger}
}

func (p *ChannelPublisher) Emit(ctx context.Context, event audit.Event) error {
	select {
	case p.inbox <- event:
		return nil
	default:
		p.logger.WarnContext(ctx, "audit inbox full, event dropped", "action", event.Action)
		return nil
	}
}
