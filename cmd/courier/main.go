package main

import (
	"backup-courier/domain/event"
	"backup-courier/infrastructure/telegram"
	"backup-courier/infrastructure/watcher"
	"backup-courier/internal"
	"backup-courier/observability"
	"backup-courier/runtime/workers"
	"backup-courier/services"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Warn when fewer slots than this are left in a pipeline channel.
const lowCapacityThreshold = 2

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Courier terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until SIGINT or SIGTERM.
// Keeping it apart from main lets deferred cleanups run before os.Exit.
func run() (int, error) {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	if err := os.MkdirAll(config.UploadDir, 0o755); err != nil {
		return exitRuntime, fmt.Errorf("unable to create upload directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Telemetry
	telemetryChan := make(chan event.Event, config.BufferSize)
	counter := event.NewCounter()
	metrics := observability.NewMetrics()
	handlers := []event.Handler{
		event.NewDeliveryHandler(logger, counter),
		event.NewWorkerRestartedAfterPanicHandler(logger, counter),
		event.NewChannelCapacityHandler(logger, lowCapacityThreshold),
		event.NewProcessTrackerHandler(logger, config.MemoryWarnMB),
		metrics,
	}

	// 3. Delivery pipeline
	client := telegram.NewBotClient(logger, config.BotAPIBase, config.APIToken, config.NotifyTimeout, config.UploadTimeout)
	dedup := services.NewEventDeduplicator(config.DedupWindow)
	coordinator := services.NewDeliveryCoordinator(
		logger,
		dedup,
		services.NewStabilityWaiter(logger, services.StabilityPolicy{
			PollInterval:   config.PollInterval,
			RequiredChecks: config.StableChecks,
			StableTimeout:  config.StableTimeout,
			ExistsTimeout:  config.ExistsTimeout,
			ExistsInterval: config.ExistsInterval,
			ReadySuffix:    config.ReadySuffix,
		}),
		services.NewFileSplitter(logger),
		services.NewDocumentUploader(logger, client, metrics, config.ChatID),
		services.NewChatNotifier(logger, client, config.ChatID, config.NotifyTimeout),
		telemetryChan,
		services.DeliveryPolicy{
			Mode:        config.Mode(),
			MaxCloudMB:  config.MaxCloudMB,
			MaxDirectMB: config.MaxLocalMB,
			Extensions:  config.Extensions(),
			ReadySuffix: config.ReadySuffix,
		},
	)

	source, err := watcher.NewFsnotifySource(logger, config.UploadDir, config.MovePairWindow, config.BufferSize)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		_ = source.Close()
	}()

	// 4. Workers
	jobs := make(chan string, config.BufferSize)
	supervisor := workers.NewSupervisor(logger, telemetryChan, config.RestartInterval)
	telemetryWorker := workers.NewTelemetryWorker(logger, telemetryChan, handlers)
	supervisor.Add(
		telemetryWorker,
		workers.NewFileWatcherWorker(logger, source, jobs),
		workers.NewDedupEvictionWorker(logger, dedup, telemetryChan, config.DedupEvictInterval),
		workers.NewHealthMonitoringWorker(logger, telemetryChan, config.MetricInterval),
		workers.NewChannelCapacityWorker(logger, []workers.NamedChannel{
			{Name: "jobs", Channel: jobs},
			{Name: "telemetry", Channel: telemetryChan},
		}, telemetryChan, config.MetricInterval),
	)
	for range config.DeliveryWorkers {
		supervisor.Add(workers.NewDeliveryWorker(logger, coordinator, jobs))
	}
	if config.MetricsPort > 0 {
		supervisor.Add(observability.NewMetricsServer(logger, config.MetricsPort, metrics))
	}

	logger.Info("Courier started",
		"dir", config.UploadDir,
		"mode", config.Mode(),
		"extensions", config.Extensions(),
		"delivery_workers", config.DeliveryWorkers)

	supervisor.Run(ctx)
	// Cancelled deliveries report their outcome after the telemetry worker stopped
	telemetryWorker.Drain()

	logger.Info("Courier stopped")
	observability.PrintSummary(os.Stdout, counter)
	return exitOK, nil
}
