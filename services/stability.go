package services

import (
	"backup-courier/domain"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"
)

// StabilityPolicy holds the polling parameters used to decide that a write is complete.
type StabilityPolicy struct {
	PollInterval   time.Duration
	RequiredChecks int
	StableTimeout  time.Duration
	ExistsTimeout  time.Duration
	ExistsInterval time.Duration
	// ReadySuffix, when set, names a sentinel file (<path><suffix>) whose presence
	// marks the file as complete without polling its size.
	ReadySuffix string
}

func DefaultStabilityPolicy() StabilityPolicy {
	return StabilityPolicy{
		PollInterval:   time.Second,
		RequiredChecks: 3,
		StableTimeout:  120 * time.Second,
		ExistsTimeout:  15 * time.Second,
		ExistsInterval: 500 * time.Millisecond,
	}
}

// StabilityWaiter infers the end of a write from a file size that stops changing.
// No completion signal is available from the producer, so this is a heuristic.
type StabilityWaiter struct {
	log    *slog.Logger
	policy StabilityPolicy
}

func NewStabilityWaiter(log *slog.Logger, policy StabilityPolicy) *StabilityWaiter {
	return &StabilityWaiter{log: log, policy: policy}
}

// WaitUntilExists polls until path is visible. Move notifications can fire before
// the destination is visible to other observers.
func (w *StabilityWaiter) WaitUntilExists(ctx context.Context, path string, timeout, interval time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		if _, err := os.Stat(path); err == nil {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			return false
		case <-time.After(interval):
		}
	}
}

// WaitUntilStable returns true once the size of path held still for the required
// number of consecutive samples. It returns false when the file never shows up,
// disappears while polled, the timeout elapses or ctx is cancelled.
func (w *StabilityWaiter) WaitUntilStable(ctx context.Context, path string) bool {
	if !w.WaitUntilExists(ctx, path, w.policy.ExistsTimeout, w.policy.ExistsInterval) {
		w.log.Warn("File not found (never appeared)", "path", path)
		return false
	}

	deadline := time.NewTimer(w.policy.StableTimeout)
	defer deadline.Stop()

	file := domain.WatchedFile{Path: path, Size: -1}
	for {
		// The producer may drop the sentinel at any point of the wait
		if w.readySentinelExists(path) {
			w.log.Debug("Ready sentinel found, skipping size polling", "path", path)
			return true
		}

		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				w.log.Warn("File disappeared while waiting for stability", "path", path)
			} else {
				w.log.Error("Unable to sample file size", "path", path, "error", err)
			}
			return false
		}

		if file.Observe(info.Size(), time.Now()) >= w.policy.RequiredChecks {
			w.log.Debug("File is stable", "path", path, "size", file.Size)
			return true
		}

		select {
		case <-ctx.Done():
			w.log.Info("Stability wait cancelled", "path", path)
			return false
		case <-deadline.C:
			w.log.Warn("Timeout waiting for file to become stable", "path", path, "timeout", w.policy.StableTimeout)
			return false
		case <-time.After(w.policy.PollInterval):
		}
	}
}

func (w *StabilityWaiter) readySentinelExists(path string) bool {
	if w.policy.ReadySuffix == "" {
		return false
	}
	_, err := os.Stat(path + w.policy.ReadySuffix)
	return err == nil
}
