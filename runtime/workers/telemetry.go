package workers

import (
	"backup-courier/domain/event"
	"context"
	"log/slog"
)

// TelemetryWorker drains the telemetry channel into the handler chain.
type TelemetryWorker struct {
	log           *slog.Logger
	telemetryChan <-chan event.Event
	handlers      []event.Handler
}

func NewTelemetryWorker(log *slog.Logger,
	telemetryChan <-chan event.Event,
	handlers []event.Handler) *TelemetryWorker {
	return &TelemetryWorker{
		log:           log,
		telemetryChan: telemetryChan,
		handlers:      handlers,
	}
}

func (w TelemetryWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.Drain()
			return nil
		case evt, ok := <-w.telemetryChan:
			if !ok {
				return nil
			}
			w.handle(evt)
		}
	}
}

// Drain hands over what is already buffered. Workers still finishing after the
// context is cancelled publish late, so it is called again once they have all returned.
func (w TelemetryWorker) Drain() {
	for {
		select {
		case evt, ok := <-w.telemetryChan:
			if !ok {
				return
			}
			w.handle(evt)
		default:
			return
		}
	}
}

func (w TelemetryWorker) handle(evt event.Event) {
	for _, h := range w.handlers {
		h.Handle(evt)
	}
}
