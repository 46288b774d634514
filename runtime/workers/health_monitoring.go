package workers

import (
	"backup-courier/domain"
	"backup-courier/domain/event"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HealthMonitoringWorker samples status, CPU and memory of the courier process itself.
type HealthMonitoringWorker struct {
	log            *slog.Logger
	telemetryChan  chan<- event.Event
	metricInterval time.Duration
	pid            domain.PID
}

func NewHealthMonitoringWorker(
	log *slog.Logger,
	telemetryChan chan<- event.Event,
	metricInterval time.Duration,
) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{
		log:            log,
		telemetryChan:  telemetryChan,
		metricInterval: metricInterval,
		pid:            domain.PID(os.Getpid()),
	}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(w.pid))
	if err != nil {
		return fmt.Errorf("unable to inspect process %d: %w", w.pid, err)
	}

	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health sampling")
			return nil
		case <-ticker.C:
			evt, err := w.sample(p)
			if err != nil {
				w.log.Error("Error while sampling process", "pid", w.pid, "err", err)
				continue
			}
			select {
			case w.telemetryChan <- evt:
			default:
				w.log.Debug("Observability telemetry event lost")
			}
		}
	}
}

func (w *HealthMonitoringWorker) sample(p *process.Process) (event.Event, error) {
	status, err := p.Status()
	if err != nil {
		return event.Event{}, fmt.Errorf("status: %w", err)
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return event.Event{}, fmt.Errorf("cpu usage: %w", err)
	}
	ram, err := p.MemoryPercent()
	if err != nil {
		return event.Event{}, fmt.Errorf("ram usage: %w", err)
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return event.Event{}, fmt.Errorf("memory info: %w", err)
	}
	return event.New(event.PIDTrackerType, event.ProcessTracker{
		PID:    w.pid,
		Status: domain.ToStatus(status),
		Cpu:    cpu,
		Ram:    ram,
		RSS:    mem.RSS,
	}), nil
}
