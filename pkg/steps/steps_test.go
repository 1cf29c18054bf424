package steps

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMergeData_ObjectShallowMerge_IncomingWins(t *testing.T) {
	got := MergeData(
		map[string]any{"title": "old", "mode": "SEQUENTIAL"},
		map[string]any{"title": "new"},
	)
	want := map[string]any{"title": "new", "mode": "SEQUENTIAL"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestMergeData_IterativeObjectMerges(t *testing.T) {
	var acc any
	payloads := []map[string]any{
		{"a": 1},
		{"b": 2},
		{"a": 3, "c": 4},
	}
	for _, p := range payloads {
		acc = MergeData(acc, p)
	}
	want := map[string]any{"a": 3, "b": 2, "c": 4}
	if !reflect.DeepEqual(acc, want) {
		t.Fatalf("got %#v want %#v", acc, want)
	}
}

func TestMergeData_ArrayConcatNoDedup(t *testing.T) {
	first := []any{map[string]any{"a": 1}}
	second := []any{map[string]any{"b": 2}}
	got := MergeData(MergeData(nil, first), second)
	want := []any{map[string]any{"a": 1}, map[string]any{"b": 2}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}

	// Repeating the same payload duplicates entries.
	again := MergeData(got, first)
	if l := len(again.([]any)); l != 3 {
		t.Fatalf("expected 3 entries after repeated save, got %d", l)
	}
}

func TestMergeData_LengthIsSumOfInputs(t *testing.T) {
	var acc any
	total := 0
	for _, n := range []int{3, 1, 4} {
		in := make([]any, n)
		acc = MergeData(acc, in)
		total += n
	}
	if l := len(acc.([]any)); l != total {
		t.Fatalf("expected %d entries, got %d", total, l)
	}
}

func TestSteps_IndexMapRoundTrip(t *testing.T) {
	s := Steps{
		{Step: 1, Data: map[string]any{"title": "nda.pdf"}},
		{Step: 2, Data: []any{"a@example.com"}},
	}
	back := FromIndexMap(s.ToIndexMap())
	if !reflect.DeepEqual(back, s) {
		t.Fatalf("round trip mismatch: %#v vs %#v", back, s)
	}
}

func TestStore_AtMostOneRecordPerStep(t *testing.T) {
	st := NewStore(nil)
	st.UpdateStepData(2, map[string]any{"a": 1})
	st.UpdateStepData(2, map[string]any{"b": 2})
	snap := st.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected a single record for step 2, got %d", len(snap))
	}
	want := map[string]any{"a": 1, "b": 2}
	if !reflect.DeepEqual(st.GetStepData(2), want) {
		t.Fatalf("got %#v want %#v", st.GetStepData(2), want)
	}
}

func TestStore_GetAbsentStepIsNil(t *testing.T) {
	st := NewStore(nil)
	if d := st.GetStepData(4); d != nil {
		t.Fatalf("expected nil, got %#v", d)
	}
}

func TestStore_ResetClearsStepsAndDocID(t *testing.T) {
	st := NewStore(nil)
	st.SetDocument("doc_1", "usr_1")
	st.UpdateStepData(1, map[string]any{"title": "x"})
	st.ResetSteps()
	if st.DocumentID() != "" || st.GetStepData(1) != nil {
		t.Fatal("reset did not clear session")
	}
}

func TestStore_SaveCarriesWholeCollectionAndIDs(t *testing.T) {
	var mu sync.Mutex
	var got []SavePayload
	save := func(ctx context.Context, p SavePayload) error {
		mu.Lock()
		got = append(got, p)
		mu.Unlock()
		return nil
	}
	st := NewStore(save)
	st.SetDocument("doc_1", "usr_1")
	st.UpdateStepData(1, map[string]any{"title": "nda.pdf"})
	if err := st.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	st.UpdateStepData(2, []any{"a@example.com"})
	if err := st.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	last := got[len(got)-1]
	if last.DocID != "doc_1" || last.UserID != "usr_1" {
		t.Fatalf("payload ids missing: %+v", last)
	}
	if len(last.Steps) != 2 {
		t.Fatalf("expected whole collection in payload, got %d records", len(last.Steps))
	}
}

func TestStore_SkipRemoteSaveSuppressesSave(t *testing.T) {
	var calls atomic.Int32
	st := NewStore(func(ctx context.Context, p SavePayload) error {
		calls.Add(1)
		return nil
	})
	st.UpdateStepData(1, map[string]any{"a": 1}, SkipRemoteSave())
	if err := st.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if n := calls.Load(); n != 0 {
		t.Fatalf("expected no remote save, got %d", n)
	}
}

func TestStore_FailedSaveKeepsMutationAndSurfacesError(t *testing.T) {
	boom := errors.New("backend down")
	st := NewStore(func(ctx context.Context, p SavePayload) error { return boom })
	var cbErr error
	done := make(chan struct{})
	st.UpdateStepData(1, map[string]any{"a": 1}, OnSaveResult(func(err error) {
		cbErr = err
		close(done)
	}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("save callback never fired")
	}
	if !errors.Is(cbErr, boom) {
		t.Fatalf("expected save error, got %v", cbErr)
	}
	if !errors.Is(st.LastSaveError(), boom) {
		t.Fatalf("expected surfaced last error, got %v", st.LastSaveError())
	}
	if st.GetStepData(1) == nil {
		t.Fatal("in-memory mutation must survive a failed save")
	}
}

func TestSaver_CoalescesBurstsToSingleInflight(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	var lastLen atomic.Int32
	st := NewStore(func(ctx context.Context, p SavePayload) error {
		if calls.Add(1) == 1 {
			<-release
		}
		lastLen.Store(int32(len(p.Steps)))
		return nil
	})
	st.UpdateStepData(1, map[string]any{"a": 1})
	// Wait for the first save to start before bursting.
	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first save never started")
		}
		time.Sleep(time.Millisecond)
	}
	for i := 2; i <= 6; i++ {
		st.UpdateStepData(i, map[string]any{"n": i})
	}
	close(release)
	if err := st.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	// The burst behind the in-flight save coalesces into one follow-up.
	if n := calls.Load(); n != 2 {
		t.Fatalf("expected 2 saves (initial + coalesced), got %d", n)
	}
	if lastLen.Load() != 6 {
		t.Fatalf("final save must carry the full collection, got %d records", lastLen.Load())
	}
}
