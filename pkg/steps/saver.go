package steps

import (
	"context"
	"sync"
)

// SavePayload is what each remote save carries: the whole accumulated
// collection plus the owning document and user, never a diff.
type SavePayload struct {
	DocID  string
	UserID string
	Steps  Steps
}

// SaveFunc persists a payload to the backend.
type SaveFunc func(ctx context.Context, p SavePayload) error

// saver serializes remote saves: a single in-flight save at a time,
// with at most one pending payload. A newer payload replaces an
// unstarted pending one, which is safe because every payload carries
// the full collection.
type saver struct {
	mu   sync.Mutex
	cond *sync.Cond

	save     SaveFunc
	pending  *SavePayload
	pendCbs  []func(error)
	inflight bool
	lastErr  error
}

func newSaver(save SaveFunc) *saver {
	s := &saver{save: save}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *saver) enqueue(p SavePayload, cb func(error)) {
	s.mu.Lock()
	s.pending = &p
	if cb != nil {
		s.pendCbs = append(s.pendCbs, cb)
	}
	if !s.inflight {
		s.inflight = true
		go s.run()
	}
	s.mu.Unlock()
}

func (s *saver) run() {
	for {
		s.mu.Lock()
		p := s.pending
		cbs := s.pendCbs
		s.pending = nil
		s.pendCbs = nil
		if p == nil {
			s.inflight = false
			s.cond.Broadcast()
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		err := s.save(context.Background(), *p)

		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		for _, cb := range cbs {
			cb(err)
		}
	}
}

// wait blocks until no save is in flight or queued, or ctx is done.
func (s *saver) wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.mu.Lock()
		for s.inflight || s.pending != nil {
			s.cond.Wait()
		}
		s.mu.Unlock()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *saver) lastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
