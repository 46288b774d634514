package watcher

import (
	"backup-courier/domain"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FsnotifySource turns inotify-style notifications of one directory (non-recursive)
// into created and moved events.
type FsnotifySource struct {
	log        *slog.Logger
	watcher    *fsnotify.Watcher
	pairWindow time.Duration
	events     chan domain.FsEvent
	errors     chan error
	done       chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
}

// NewFsnotifySource starts watching dir. A Rename followed by a Create within
// pairWindow is reported as a single move.
func NewFsnotifySource(log *slog.Logger, dir string, pairWindow time.Duration, bufferSize int) (*FsnotifySource, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("unable to watch %s: %w", dir, err)
	}

	s := &FsnotifySource{
		log:        log,
		watcher:    w,
		pairWindow: pairWindow,
		events:     make(chan domain.FsEvent, bufferSize),
		errors:     make(chan error, 1),
		done:       make(chan struct{}),
	}
	s.wg.Add(1)
	go s.loop()
	return s, nil
}

func (s *FsnotifySource) Events() <-chan domain.FsEvent {
	return s.events
}

func (s *FsnotifySource) Errors() <-chan error {
	return s.errors
}

// Close stops watching and closes the event channel once the loop has exited.
func (s *FsnotifySource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.watcher.Close()
		s.wg.Wait()
	})
	return err
}

func (s *FsnotifySource) loop() {
	defer s.wg.Done()
	defer close(s.events)

	var renamedFrom string
	var renamedAt time.Time

	for {
		select {
		case <-s.done:
			return
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			select {
			case s.errors <- err:
			default:
				s.log.Warn("Watcher error dropped", "error", err)
			}
		case e, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			switch {
			case e.Has(fsnotify.Rename):
				renamedFrom, renamedAt = e.Name, time.Now()
			case e.Has(fsnotify.Create):
				evt := domain.FsEvent{Kind: domain.Created, Path: e.Name, IsDir: isDir(e.Name)}
				if renamedFrom != "" && time.Since(renamedAt) <= s.pairWindow {
					evt = domain.FsEvent{Kind: domain.Moved, Path: renamedFrom, DestPath: e.Name, IsDir: evt.IsDir}
				}
				renamedFrom = ""
				if !s.emit(evt) {
					return
				}
			}
		}
	}
}

func (s *FsnotifySource) emit(evt domain.FsEvent) bool {
	select {
	case <-s.done:
		return false
	case s.events <- evt:
		return true
	}
}

// isDir is false when the path is not visible yet, the stability check copes with that.
func isDir(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.IsDir()
}
