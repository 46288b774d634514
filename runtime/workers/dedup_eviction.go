package workers

import (
	"backup-courier/contract"
	"backup-courier/domain/event"
	"context"
	"log/slog"
	"time"
)

// DedupEvictionWorker keeps the deduplicator bounded by dropping expired entries.
type DedupEvictionWorker struct {
	log           *slog.Logger
	dedup         contract.Deduplicator
	telemetryChan chan<- event.Event
	interval      time.Duration
}

func NewDedupEvictionWorker(log *slog.Logger, dedup contract.Deduplicator,
	telemetryChan chan<- event.Event, interval time.Duration) *DedupEvictionWorker {
	return &DedupEvictionWorker{log: log, dedup: dedup, telemetryChan: telemetryChan, interval: interval}
}

func (w DedupEvictionWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			evicted := w.dedup.Evict(now)
			evt := event.New(event.DedupEvictedType, event.DedupEvicted{
				Evicted:   evicted,
				Remaining: w.dedup.Len(),
			})
			select {
			case w.telemetryChan <- evt:
			default:
				w.log.Debug("Observability telemetry event lost")
			}
		}
	}
}
