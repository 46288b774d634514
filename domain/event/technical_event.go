package event

import (
	"backup-courier/domain"
)

const (
	RestartedAfterPanicType Type = "WORKER_RESTARTED_AFTER_PANIC"
	ChannelCapacityType     Type = "CHANNEL_CAPACITY"
	PIDTrackerType          Type = "PID_TRACKER"
	DedupEvictedType        Type = "DEDUP_EVICTED"
)

type WorkerRestartedAfterPanic struct {
	WorkerName string
}

type ChannelCapacity struct {
	ChannelName string
	Capacity    int
	Length      int
}

type ProcessTracker struct {
	PID    domain.PID
	Status domain.PidStatus
	Cpu    float64
	Ram    float32
	RSS    uint64
}

type DedupEvicted struct {
	Evicted   int
	Remaining int
}
