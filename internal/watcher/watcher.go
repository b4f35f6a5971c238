package watcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/olegsm/billgate/internal/entity"
	"github.com/olegsm/billgate/internal/ledger"
)

type EventKind string

const (
	EventWaiting  EventKind = "waiting"
	EventResolved EventKind = "resolved"
	EventTimeout  EventKind = "timeout"
)

// Event is one item of a watch stream. Status is set only for resolved
// events; Message is the client-facing text line.
type Event struct {
	Kind    EventKind
	Status  entity.BillStatus
	Message string
	At      time.Time
}

// Watcher produces a finite, single-shot event stream per bill: one waiting
// event, then exactly one resolved or timeout event. A new stream requires a
// new Watch call.
type Watcher struct {
	ledger       ledger.Ledger
	maxWait      time.Duration
	pollInterval time.Duration
	now          func() time.Time
}

func New(l ledger.Ledger, maxWait, pollInterval time.Duration) *Watcher {
	return &Watcher{
		ledger:       l,
		maxWait:      maxWait,
		pollInterval: pollInterval,
		now:          time.Now,
	}
}

// Watch returns a channel that is closed after the terminal (or timeout)
// event. The loop checks the ledger once per poll interval and holds no
// locks while sleeping; cancelling ctx abandons the watch without an event.
func (w *Watcher) Watch(ctx context.Context, billID uuid.UUID) <-chan Event {
	events := make(chan Event, 1)

	go w.run(ctx, billID, events)

	return events
}

func (w *Watcher) run(ctx context.Context, billID uuid.UUID, events chan<- Event) {
	defer close(events)

	if !w.emit(ctx, events, Event{
		Kind:    EventWaiting,
		Message: "Waiting...",
		At:      w.now(),
	}) {
		return
	}

	deadline := time.NewTimer(w.maxWait)
	defer deadline.Stop()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		status, err := w.ledger.Get(ctx, billID)
		if err != nil {
			slog.ErrorContext(ctx, "watch ledger read", "bill_id", billID, "error", err)
		} else if status.IsTerminal() {
			w.emit(ctx, events, w.resolvedEvent(status))
			return
		}

		select {
		case <-ctx.Done():
			return

		case <-deadline.C:
			w.emit(ctx, events, Event{
				Kind:    EventTimeout,
				Message: "Bill was not paid!",
				At:      w.now(),
			})

			return

		case <-ticker.C:
		}
	}
}

func (w *Watcher) resolvedEvent(status entity.BillStatus) Event {
	now := w.now()

	e := Event{
		Kind:   EventResolved,
		Status: status,
		At:     now,
	}

	switch status {
	case entity.BillStatusPaid:
		e.Message = "Bill was paid! " + now.Format("02-01-2006T15:04:05")
	case entity.BillStatusRejected:
		e.Message = "Bill was rejected!"
	case entity.BillStatusExpired:
		e.Message = "Bill was expired!"
	}

	return e
}

func (w *Watcher) emit(ctx context.Context, events chan<- Event, e Event) bool {
	select {
	case events <- e:
		return true
	case <-ctx.Done():
		return false
	}
}
