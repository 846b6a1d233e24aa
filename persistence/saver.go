package persistence

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"newsgraph/graph"
)

const saveTimeout = 30 * time.Second

// Saver writes dirty graph state through a Store in the background. Mutating
// callers mark the graph dirty; the loop saves at most once per interval and
// retries transient failures with backoff. Stop flushes any remaining dirty
// state before returning.
type Saver struct {
	store    Store
	graph    *graph.Store
	interval time.Duration
	dirty    atomic.Bool
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func NewSaver(store Store, g *graph.Store, interval time.Duration, logger *zap.Logger) *Saver {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Saver{
		store:    store,
		graph:    g,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// MarkDirty records that the graph changed since the last save.
func (s *Saver) MarkDirty() {
	s.dirty.Store(true)
}

// Start launches the autosave loop.
func (s *Saver) Start() {
	go s.loop()
}

func (s *Saver) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !s.dirty.Swap(false) {
				continue
			}
			if err := s.save(); err != nil {
				// Leave the state dirty so the next tick retries.
				s.dirty.Store(true)
				s.logger.Error("Autosave failed after retries", zap.Error(err))
			}
		case <-s.stop:
			return
		}
	}
}

// Stop halts the loop and flushes unsaved state. Safe to call more than once.
func (s *Saver) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		<-s.done

		if s.dirty.Swap(false) {
			if err := s.save(); err != nil {
				s.logger.Error("Final save on shutdown failed", zap.Error(err))
			}
		}
	})
}

func (s *Saver) save() error {
	snapshot := s.graph.Snapshot()

	const maxAttempts = 3
	var lastErr error
	for attempt := range maxAttempts {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		err := s.store.Save(ctx, snapshot)
		cancel()

		if err == nil {
			s.logger.Info("Saved graph",
				zap.Int("nodes", snapshot.Stats.NodeCount),
				zap.Int("edges", snapshot.Stats.EdgeCount))
			return nil
		}
		lastErr = err

		if attempt < maxAttempts-1 {
			// Backoff: 1s, 2s.
			time.Sleep(time.Second * time.Duration(attempt+1))
		}
	}
	return lastErr
}
