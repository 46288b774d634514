package workers

import (
	"backup-courier/contract"
	"context"
	"log/slog"
)

// DeliveryWorker hands queued paths one at a time to the coordinator.
// Several of them may share the same jobs channel.
type DeliveryWorker struct {
	log         *slog.Logger
	coordinator contract.Coordinator
	jobs        <-chan string
}

func NewDeliveryWorker(log *slog.Logger, coordinator contract.Coordinator, jobs <-chan string) *DeliveryWorker {
	return &DeliveryWorker{log: log, coordinator: coordinator, jobs: jobs}
}

func (w DeliveryWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-w.jobs:
			if !ok {
				w.log.Info("Delivery jobs channel closed")
				return nil
			}
			attempt := w.coordinator.Deliver(ctx, path)
			w.log.Debug("Delivery attempt done", "path", path, "outcome", attempt.Outcome)
		}
	}
}
