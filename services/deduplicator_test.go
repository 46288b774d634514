package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEventDeduplicator_ShouldProcess(t *testing.T) {
	req := require.New(t)
	dedup := NewEventDeduplicator(5 * time.Second)
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	req.True(dedup.ShouldProcess("/backups/a.zip", start), "first signal must be processed")
	req.False(dedup.ShouldProcess("/backups/a.zip", start.Add(time.Second)), "second signal within window is a duplicate")
	req.True(dedup.ShouldProcess("/backups/a.zip", start.Add(7*time.Second)), "signal after the window must be processed again")
}

func TestEventDeduplicator_BurstExtendsWindow(t *testing.T) {
	req := require.New(t)
	dedup := NewEventDeduplicator(5 * time.Second)
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	req.True(dedup.ShouldProcess("/backups/a.zip", start))
	// Each dropped signal still refreshes the timestamp
	req.False(dedup.ShouldProcess("/backups/a.zip", start.Add(4*time.Second)))
	req.False(dedup.ShouldProcess("/backups/a.zip", start.Add(8*time.Second)))
	req.True(dedup.ShouldProcess("/backups/a.zip", start.Add(13*time.Second)))
}

func TestEventDeduplicator_PathsAreIndependent(t *testing.T) {
	req := require.New(t)
	dedup := NewEventDeduplicator(5 * time.Second)
	now := time.Now()

	req.True(dedup.ShouldProcess("/backups/a.zip", now))
	req.True(dedup.ShouldProcess("/backups/b.zip", now))
	req.Equal(2, dedup.Len())
}

func TestEventDeduplicator_Evict(t *testing.T) {
	req := require.New(t)
	dedup := NewEventDeduplicator(5 * time.Second)
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	dedup.ShouldProcess("/backups/old.zip", start)
	dedup.ShouldProcess("/backups/recent.zip", start.Add(4*time.Second))

	evicted := dedup.Evict(start.Add(6 * time.Second))
	req.Equal(1, evicted)
	req.Equal(1, dedup.Len())

	// The recent entry still suppresses duplicates
	req.False(dedup.ShouldProcess("/backups/recent.zip", start.Add(6*time.Second)))
	// The evicted entry behaves as unseen
	req.True(dedup.ShouldProcess("/backups/old.zip", start.Add(6*time.Second)))
}

func TestEventDeduplicator_ConcurrentAccess(t *testing.T) {
	req := require.New(t)
	dedup := NewEventDeduplicator(time.Minute)
	now := time.Now()

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if dedup.ShouldProcess(fmt.Sprintf("/backups/%d.zip", i%5), now) {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	req.Equal(5, accepted, "exactly one signal per path must be accepted")
	req.Equal(5, dedup.Len())
}
