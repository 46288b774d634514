package services

import (
	"backup-courier/contract"
	"backup-courier/domain"
	"backup-courier/domain/event"
	"backup-courier/errors"
	"context"
	goerrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

// DeliveryPolicy selects the transport path and its size ceilings.
type DeliveryPolicy struct {
	Mode        domain.TransportMode
	MaxCloudMB  int
	MaxDirectMB int
	Extensions  []string
	ReadySuffix string
}

// ChunkSize is the part size used when splitting for cloud mode.
func (p DeliveryPolicy) ChunkSize() int64 {
	return int64(p.MaxCloudMB) * domain.MB
}

// DeliveryCoordinator drives one file from its first notification to a delivered
// (and removed) archive, or to a failure left on disk for the operator.
type DeliveryCoordinator struct {
	log           *slog.Logger
	dedup         contract.Deduplicator
	waiter        contract.StabilityWaiter
	splitter      contract.Splitter
	uploader      contract.Uploader
	notifier      contract.Notifier
	telemetryChan chan<- event.Event
	policy        DeliveryPolicy
	now           func() time.Time

	// Paths currently owned by a Deliver call, whatever the dedup window says.
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewDeliveryCoordinator(
	log *slog.Logger,
	dedup contract.Deduplicator,
	waiter contract.StabilityWaiter,
	splitter contract.Splitter,
	uploader contract.Uploader,
	notifier contract.Notifier,
	telemetryChan chan<- event.Event,
	policy DeliveryPolicy,
) *DeliveryCoordinator {
	return &DeliveryCoordinator{
		log:           log,
		dedup:         dedup,
		waiter:        waiter,
		splitter:      splitter,
		uploader:      uploader,
		notifier:      notifier,
		telemetryChan: telemetryChan,
		policy:        policy,
		now:           time.Now,
		inFlight:      make(map[string]struct{}),
	}
}

// Deliver runs the whole pipeline for path and returns the finished attempt.
// Failures are reported through the attempt, the operator channel and the logs, never raised.
func (c *DeliveryCoordinator) Deliver(ctx context.Context, path string) domain.DeliveryAttempt {
	start := c.now()
	path = c.resolveTarget(path)
	name := filepath.Base(path)
	attempt := domain.NewDeliveryAttempt(path, name, c.policy.Mode)

	if !c.isWatched(name) {
		attempt.Outcome = domain.SKIPPED
		return attempt
	}
	if !c.dedup.ShouldProcess(path, start) {
		c.log.Debug("Duplicate event ignored", "path", path)
		attempt.Outcome = domain.SKIPPED
		return attempt
	}
	if !c.claim(path) {
		c.log.Debug("Delivery already in progress", "path", path)
		attempt.Outcome = domain.SKIPPED
		return attempt
	}
	defer c.release(path)

	log := c.log.With("attempt_id", attempt.ID, "name", name)
	c.run(ctx, log, &attempt)

	if evt, ok := event.ToDeliveryEvent(attempt, c.now().Sub(start)); ok {
		c.publish(evt)
	}
	return attempt
}

func (c *DeliveryCoordinator) run(ctx context.Context, log *slog.Logger, attempt *domain.DeliveryAttempt) {
	if !c.waiter.WaitUntilStable(ctx, attempt.Path) {
		c.abandon(log, attempt, c.abandonReason(ctx, attempt.Path))
		return
	}

	info, err := os.Stat(attempt.Path)
	if err != nil {
		log.Warn("File vanished before its size could be read", "path", attempt.Path, "error", err)
		c.abandon(log, attempt, errors.ErrNotFound)
		return
	}
	attempt.Size = info.Size()

	c.publish(event.New(event.FileDetectedType, event.FileDetected{
		AttemptID: attempt.ID,
		Name:      attempt.Name,
		Size:      attempt.Size,
		Mode:      attempt.Mode,
	}))
	c.notifier.Notify(ctx, detectedMessage(attempt.Name, attempt.Size, attempt.Mode))

	sizeMB := domain.SizeInMB(attempt.Size)
	switch {
	case attempt.Mode == domain.ModeDirect && sizeMB > float64(c.policy.MaxDirectMB):
		log.Warn("File exceeds direct mode ceiling", "size_mb", sizeMB, "limit_mb", c.policy.MaxDirectMB)
		c.notifier.Notify(ctx, overLimitMessage(attempt.Size, attempt.Mode, c.policy.MaxDirectMB))
		attempt.Outcome = domain.FAILURE
		attempt.Reason = errors.ErrOverLimit
		return
	case attempt.Mode == domain.ModeCloud && sizeMB > float64(c.policy.MaxCloudMB):
		attempt.Reason = c.uploadParts(ctx, log, attempt)
	default:
		attempt.Reason = c.uploadWhole(ctx, attempt)
	}

	if attempt.Reason != nil {
		log.Error("Delivery failed", "error", attempt.Reason)
		attempt.Outcome = domain.FAILURE
		c.notifier.Notify(ctx, failureMessage(attempt.Name))
		return
	}

	attempt.Outcome = domain.SUCCESS
	c.notifier.Notify(ctx, successMessage(attempt.Name))
	if err := c.Cleanup(attempt.Path); err != nil {
		log.Error("Cleanup failed, delivery stays successful", "error", err)
		return
	}
	log.Info("Cleanup done (file and parts removed)")
}

func (c *DeliveryCoordinator) uploadWhole(ctx context.Context, attempt *domain.DeliveryAttempt) error {
	attempt.Parts = 1
	if !c.uploader.Upload(ctx, attempt.Path, attempt.Caption) {
		return errors.ErrTransportFailure
	}
	return nil
}

// uploadParts uploads the parts strictly in order and stops at the first failure.
// Parts are left on disk when anything goes wrong.
func (c *DeliveryCoordinator) uploadParts(ctx context.Context, log *slog.Logger, attempt *domain.DeliveryAttempt) error {
	parts, err := c.splitter.Split(attempt.Path, c.policy.ChunkSize())
	if err != nil {
		return err
	}
	total := len(parts)
	attempt.Parts = total
	log.Info("File split for cloud upload", "parts", total, "chunk_mb", c.policy.MaxCloudMB)

	for i, part := range parts {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: before part %d/%d", errors.ErrCancelled, i+1, total)
		}
		caption := domain.PartCaption(attempt.Name, i+1, total)
		if !c.uploader.Upload(ctx, part.Path, caption) {
			return fmt.Errorf("%w: part %d/%d", errors.ErrTransportFailure, i+1, total)
		}
		c.publish(event.New(event.PartUploadedType, event.PartUploaded{
			AttemptID: attempt.ID,
			Index:     i + 1,
			Total:     total,
			Length:    part.Length,
		}))
	}
	return nil
}

// Cleanup removes the original, its ready sentinel and every residual part.
// Files already gone are not an error, so calling it twice is harmless.
func (c *DeliveryCoordinator) Cleanup(path string) error {
	var errs []error
	remove := func(p string) {
		if err := os.Remove(p); err != nil && !goerrors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}

	remove(path)
	if c.policy.ReadySuffix != "" {
		remove(path + c.policy.ReadySuffix)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil && !goerrors.Is(err, fs.ErrNotExist) {
		errs = append(errs, err)
	}
	prefix := domain.PartPrefix(path)
	parts := lo.Filter(entries, func(e os.DirEntry, _ int) bool {
		return !e.IsDir() && strings.HasPrefix(e.Name(), prefix)
	})
	for _, part := range parts {
		remove(filepath.Join(filepath.Dir(path), part.Name()))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", errors.ErrCleanupFailure, goerrors.Join(errs...))
	}
	return nil
}

func (c *DeliveryCoordinator) abandon(log *slog.Logger, attempt *domain.DeliveryAttempt, reason error) {
	log.Info("Delivery abandoned, file never confirmed ready", "path", attempt.Path, "reason", reason)
	attempt.Outcome = domain.ABANDONED
	attempt.Reason = reason
}

func (c *DeliveryCoordinator) abandonReason(ctx context.Context, path string) error {
	if ctx.Err() != nil {
		return errors.ErrCancelled
	}
	if _, err := os.Stat(path); err != nil {
		return errors.ErrNotFound
	}
	return errors.ErrTimeout
}

// claim reserves path for a single attempt. A late ready sentinel event for an archive
// still being polled must not start a second upload of the same file.
func (c *DeliveryCoordinator) claim(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[path]; busy {
		return false
	}
	c.inFlight[path] = struct{}{}
	return true
}

func (c *DeliveryCoordinator) release(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, path)
}

// resolveTarget maps a ready sentinel back to the archive it marks as complete.
func (c *DeliveryCoordinator) resolveTarget(path string) string {
	if c.policy.ReadySuffix != "" && strings.HasSuffix(path, c.policy.ReadySuffix) {
		return strings.TrimSuffix(path, c.policy.ReadySuffix)
	}
	return path
}

func (c *DeliveryCoordinator) isWatched(name string) bool {
	lower := strings.ToLower(name)
	return lo.ContainsBy(c.policy.Extensions, func(ext string) bool {
		return strings.HasSuffix(lower, ext)
	})
}

// publish never blocks the pipeline on a full telemetry channel.
func (c *DeliveryCoordinator) publish(evt event.Event) {
	if c.telemetryChan == nil {
		return
	}
	select {
	case c.telemetryChan <- evt:
	default:
		c.log.Debug("Telemetry event dropped", "type", evt.Type)
	}
}
