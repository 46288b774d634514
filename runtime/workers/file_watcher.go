package workers

import (
	"backup-courier/contract"
	"context"
	"log/slog"
)

// FileWatcherWorker forwards the target path of every non-directory notification
// to the delivery jobs channel.
type FileWatcherWorker struct {
	log    *slog.Logger
	source contract.EventSource
	jobs   chan<- string
}

func NewFileWatcherWorker(log *slog.Logger, source contract.EventSource, jobs chan<- string) *FileWatcherWorker {
	return &FileWatcherWorker{log: log, source: source, jobs: jobs}
}

func (w FileWatcherWorker) Run(ctx context.Context) error {
	events := w.source.Events()
	errs := w.source.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.log.Warn("Watcher error", "error", err)
		case evt, ok := <-events:
			if !ok {
				w.log.Info("Event source closed")
				return nil
			}
			if evt.IsDir {
				w.log.Debug("Directory ignored", "path", evt.Target())
				continue
			}
			w.log.Debug("File event", "kind", evt.Kind, "path", evt.Target())
			select {
			case <-ctx.Done():
				return nil
			case w.jobs <- evt.Target():
			}
		}
	}
}
