package event

import (
	"backup-courier/domain"
	"backup-courier/errors"
	"fmt"
	"log/slog"
)

// ProcessTrackerHandler logs resource samples of the courier process and warns
// once resident memory crosses the configured threshold.
type ProcessTrackerHandler struct {
	log         *slog.Logger
	memoryWarnB uint64
}

func NewProcessTrackerHandler(log *slog.Logger, memoryWarnMB int) *ProcessTrackerHandler {
	return &ProcessTrackerHandler{log: log, memoryWarnB: uint64(memoryWarnMB) * domain.MB}
}

func (h ProcessTrackerHandler) Handle(event Event) {
	switch event.Type {
	case PIDTrackerType:
		payload, ok := event.Payload.(ProcessTracker)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.log.Debug(fmt.Sprintf(" [COURIER] | PID %d | STATUS %s | CPU %.2f%% | RAM %.2f%% | RSS %.1f MB",
			payload.PID, payload.Status, payload.Cpu, payload.Ram, domain.SizeInMB(int64(payload.RSS))))
		if h.memoryWarnB > 0 && payload.RSS > h.memoryWarnB {
			h.log.Warn("resident memory above threshold",
				"rss_mb", domain.SizeInMB(int64(payload.RSS)),
				"threshold_mb", domain.SizeInMB(int64(h.memoryWarnB)))
		}
	case DedupEvictedType:
		payload, ok := event.Payload.(DedupEvicted)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.log.Debug("dedup entries evicted", "evicted", payload.Evicted, "remaining", payload.Remaining)
	}
}
