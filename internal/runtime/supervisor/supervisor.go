// Package supervisor manages the daemon's background goroutines (trigger
// loop, config watcher, watchdog) under one shared context.
package supervisor

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"

	logx "cadence/pkg/logx"
)

// Supervisor runs named goroutines with panic recovery and graceful,
// timeout-aware stop.
type Supervisor struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    logx.Logger
	wg     sync.WaitGroup
}

func New(parent context.Context, log logx.Logger) *Supervisor {
	ctx, cancel := context.WithCancel(parent)
	return &Supervisor{ctx: ctx, cancel: cancel, log: log}
}

func (s *Supervisor) Context() context.Context { return s.ctx }

// Go starts fn under the supervisor context. A panic is logged with its
// stack and does not take the process down; a non-nil error is logged.
func (s *Supervisor) Go(name string, fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("panic in goroutine",
					logx.String("name", name),
					logx.Any("panic", r),
					logx.String("stack", string(debug.Stack())))
			}
		}()
		s.log.Debug("goroutine started", logx.String("name", name))
		if err := fn(s.ctx); err != nil && !errIsCanceled(err) {
			s.log.Warn("goroutine exited with error",
				logx.String("name", name), logx.Err(err))
		}
		s.log.Debug("goroutine stopped", logx.String("name", name))
	}()
}

// Stop cancels the shared context and waits for all goroutines, bounded by
// ctx. Returns false when the wait timed out.
func (s *Supervisor) Stop(ctx context.Context) bool {
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-ctx.Done():
		s.log.Warn("supervisor stop timed out")
		return false
	}
}

func errIsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
