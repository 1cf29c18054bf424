package steps

import (
	"context"
	"log/slog"
	"sync"
)

// Store is the shared document-session state: the step collection for
// the in-flight document plus the ids every remote save carries. One
// Store is owned per document session and passed by reference to
// whatever edits it.
type Store struct {
	mu     sync.Mutex
	docID  string
	userID string
	steps  Steps

	saver *saver
	log   *slog.Logger
}

type StoreOption func(*Store)

func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.log = l }
}

// NewStore builds a session store. save may be nil for a purely local
// session (all updates then behave as if remote save were suppressed).
func NewStore(save SaveFunc, opts ...StoreOption) *Store {
	s := &Store{log: slog.Default()}
	if save != nil {
		s.saver = newSaver(save)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetDocument points the session at a document. It does not clear
// accumulated steps; call Reset when a new upload begins.
func (s *Store) SetDocument(docID, userID string) {
	s.mu.Lock()
	s.docID = docID
	s.userID = userID
	s.mu.Unlock()
}

func (s *Store) DocumentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docID
}

type updateOptions struct {
	skipRemoteSave bool
	onSave         func(error)
}

type UpdateOption func(*updateOptions)

// SkipRemoteSave applies the mutation in memory only.
func SkipRemoteSave() UpdateOption {
	return func(o *updateOptions) { o.skipRemoteSave = true }
}

// OnSaveResult registers a callback invoked with the outcome of the
// remote save triggered by this update. Coalesced updates share one
// save; every registered callback still fires.
func OnSaveResult(cb func(error)) UpdateOption {
	return func(o *updateOptions) { o.onSave = cb }
}

// UpdateStepData merges data into the record for step and, unless
// suppressed, queues a remote save of the entire collection. The
// in-memory mutation is applied regardless of the save outcome; a
// failed save is surfaced through OnSaveResult and LastSaveError but
// never rolled back.
func (s *Store) UpdateStepData(step int, data any, opts ...UpdateOption) {
	var o updateOptions
	for _, opt := range opts {
		opt(&o)
	}

	s.mu.Lock()
	s.steps = s.steps.merge(step, data)
	payload := SavePayload{DocID: s.docID, UserID: s.userID, Steps: s.steps.clone()}
	s.mu.Unlock()

	if o.skipRemoteSave || s.saver == nil {
		if o.onSave != nil {
			o.onSave(nil)
		}
		return
	}
	log := s.log
	s.saver.enqueue(payload, func(err error) {
		if err != nil {
			log.Warn("step save failed", "docId", payload.DocID, "step", step, "error", err)
		}
		if o.onSave != nil {
			o.onSave(err)
		}
	})
}

// GetStepData returns the data recorded for step, or nil if absent.
func (s *Store) GetStepData(step int) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps.Get(step)
}

// Snapshot returns a copy of the current collection.
func (s *Store) Snapshot() Steps {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps.clone()
}

// ResetSteps clears all records and the current document id. Pending
// saves of the old session are left to drain; their payloads already
// carry the old ids.
func (s *Store) ResetSteps() {
	s.mu.Lock()
	s.steps = nil
	s.docID = ""
	s.userID = ""
	s.mu.Unlock()
}

// Flush blocks until queued remote saves have drained, then reports
// the most recent save error, if any. Useful before process exit.
func (s *Store) Flush(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	if err := s.saver.wait(ctx); err != nil {
		return err
	}
	return s.saver.lastError()
}

// LastSaveError returns the error from the most recent completed save.
func (s *Store) LastSaveError() error {
	if s.saver == nil {
		return nil
	}
	return s.saver.lastError()
}
