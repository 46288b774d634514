package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func fastPolicy() StabilityPolicy {
	return StabilityPolicy{
		PollInterval:   10 * time.Millisecond,
		RequiredChecks: 3,
		StableTimeout:  2 * time.Second,
		ExistsTimeout:  200 * time.Millisecond,
		ExistsInterval: 5 * time.Millisecond,
	}
}

func TestStabilityWaiter_WaitUntilStable(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	t.Run("Stable file is ready after the required checks", func(t *testing.T) {
		req := require.New(t)
		path := filepath.Join(t.TempDir(), "backup.zip")
		req.NoError(os.WriteFile(path, []byte("complete archive"), 0o644))
		waiter := NewStabilityWaiter(log, fastPolicy())

		start := time.Now()
		req.True(waiter.WaitUntilStable(context.Background(), path))
		// One baseline sample plus three matching samples
		req.Less(time.Since(start), 500*time.Millisecond)
	})

	t.Run("Growing file becomes ready only once writes stop", func(t *testing.T) {
		req := require.New(t)
		path := filepath.Join(t.TempDir(), "backup.zip")
		req.NoError(os.WriteFile(path, nil, 0o644))
		waiter := NewStabilityWaiter(log, fastPolicy())

		writeFor := 150 * time.Millisecond
		done := make(chan struct{})
		go func() {
			defer close(done)
			f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return
			}
			defer f.Close()
			end := time.Now().Add(writeFor)
			for time.Now().Before(end) {
				_, _ = f.Write([]byte("chunk"))
				time.Sleep(2 * time.Millisecond)
			}
		}()

		start := time.Now()
		req.True(waiter.WaitUntilStable(context.Background(), path))
		req.GreaterOrEqual(time.Since(start), writeFor)
		<-done
	})

	t.Run("File that never appears is abandoned", func(t *testing.T) {
		req := require.New(t)
		waiter := NewStabilityWaiter(log, fastPolicy())
		req.False(waiter.WaitUntilStable(context.Background(), filepath.Join(t.TempDir(), "missing.zip")))
	})

	t.Run("File appearing late is still picked up", func(t *testing.T) {
		req := require.New(t)
		path := filepath.Join(t.TempDir(), "late.zip")
		waiter := NewStabilityWaiter(log, fastPolicy())

		go func() {
			time.Sleep(40 * time.Millisecond)
			_ = os.WriteFile(path, []byte("late"), 0o644)
		}()

		req.True(waiter.WaitUntilStable(context.Background(), path))
	})

	t.Run("File disappearing before stability is abandoned", func(t *testing.T) {
		req := require.New(t)
		path := filepath.Join(t.TempDir(), "vanishing.zip")
		req.NoError(os.WriteFile(path, []byte("data"), 0o644))
		policy := fastPolicy()
		policy.RequiredChecks = 50
		waiter := NewStabilityWaiter(log, policy)

		go func() {
			time.Sleep(50 * time.Millisecond)
			_ = os.Remove(path)
		}()

		req.False(waiter.WaitUntilStable(context.Background(), path))
	})

	t.Run("Timeout while the file keeps growing", func(t *testing.T) {
		req := require.New(t)
		path := filepath.Join(t.TempDir(), "endless.zip")
		req.NoError(os.WriteFile(path, nil, 0o644))
		policy := fastPolicy()
		policy.StableTimeout = 100 * time.Millisecond
		waiter := NewStabilityWaiter(log, policy)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return
			}
			defer f.Close()
			for ctx.Err() == nil {
				_, _ = f.Write([]byte("more"))
				time.Sleep(time.Millisecond)
			}
		}()

		req.False(waiter.WaitUntilStable(context.Background(), path))
	})

	t.Run("Cancelled context stops polling", func(t *testing.T) {
		req := require.New(t)
		path := filepath.Join(t.TempDir(), "backup.zip")
		req.NoError(os.WriteFile(path, []byte("data"), 0o644))
		policy := fastPolicy()
		policy.RequiredChecks = 1000
		waiter := NewStabilityWaiter(log, policy)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		req.False(waiter.WaitUntilStable(ctx, path))
	})

	t.Run("Ready sentinel short-circuits size polling", func(t *testing.T) {
		req := require.New(t)
		dir := t.TempDir()
		path := filepath.Join(dir, "backup.zip")
		req.NoError(os.WriteFile(path, []byte("data"), 0o644))
		req.NoError(os.WriteFile(path+".ready", nil, 0o644))
		policy := fastPolicy()
		policy.RequiredChecks = 1000
		policy.ReadySuffix = ".ready"
		waiter := NewStabilityWaiter(log, policy)

		start := time.Now()
		req.True(waiter.WaitUntilStable(context.Background(), path))
		req.Less(time.Since(start), 100*time.Millisecond)
	})

	t.Run("Ready sentinel appearing while polling ends the wait", func(t *testing.T) {
		req := require.New(t)
		path := filepath.Join(t.TempDir(), "backup.zip")
		req.NoError(os.WriteFile(path, []byte("data"), 0o644))
		policy := fastPolicy()
		policy.RequiredChecks = 1000
		policy.ReadySuffix = ".ready"
		waiter := NewStabilityWaiter(log, policy)

		go func() {
			time.Sleep(50 * time.Millisecond)
			_ = os.WriteFile(path+".ready", nil, 0o644)
		}()

		start := time.Now()
		req.True(waiter.WaitUntilStable(context.Background(), path))
		// Far below RequiredChecks x PollInterval
		req.Less(time.Since(start), time.Second)
	})
}

func TestStabilityWaiter_WaitUntilExists(t *testing.T) {
	req := require.New(t)
	waiter := NewStabilityWaiter(logs.GetLoggerFromLevel(slog.LevelDebug), fastPolicy())
	dir := t.TempDir()
	path := filepath.Join(dir, "present.zip")
	req.NoError(os.WriteFile(path, nil, 0o644))

	req.True(waiter.WaitUntilExists(context.Background(), path, 50*time.Millisecond, 5*time.Millisecond))
	req.False(waiter.WaitUntilExists(context.Background(), filepath.Join(dir, "absent.zip"), 50*time.Millisecond, 5*time.Millisecond))
}
