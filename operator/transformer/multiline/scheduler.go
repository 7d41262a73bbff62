// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package multiline // import "github.com/logmerge/multiline/operator/transformer/multiline"

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// flushScheduler calls flush once per interval until stopped.
type flushScheduler struct {
	clock    clockwork.Clock
	interval time.Duration
	flush    func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newFlushScheduler(clock clockwork.Clock, interval time.Duration, flush func(ctx context.Context)) *flushScheduler {
	return &flushScheduler{
		clock:    clock,
		interval: interval,
		flush:    flush,
	}
}

func (s *flushScheduler) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	ticker := s.clock.NewTicker(s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				s.flush(ctx)
			}
		}
	}()
}

// stop blocks until an in-progress flush has returned. It is safe to call
// more than once.
func (s *flushScheduler) stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}
