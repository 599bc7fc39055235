package audit

import (
	"context"
	"errors"
)

// Fanout delivers every event to each wrapped publisher. Delivery is
// attempted on all publishers even when an earlier one fails; the errors
// are joined so the caller sees every failure.
type Fanout struct {
	publishers []Publisher
}

// NewFanout builds a Fanout over the given publishers. Nil entries are
// skipped so callers can pass optional publishers without checking.
func NewFanout(publishers ...Publisher) *Fanout {
	kept := make([]Publisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return &Fanout{publishers: kept}
}

// Emit implements Publisher.
func (f *Fanout) Emit(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
