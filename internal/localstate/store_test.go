package localstate

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	type profile struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := s.Put(KeyUser, profile{ID: "usr_1", Email: "a@example.com"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	var got profile
	ok, err := s.Get(KeyUser, &got)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.ID != "usr_1" || got.Email != "a@example.com" {
		t.Fatalf("unexpected profile: %+v", got)
	}
}

func TestGetAbsentKey(t *testing.T) {
	s := openTestStore(t)
	var v string
	ok, err := s.Get("missing", &v)
	if err != nil || ok {
		t.Fatalf("expected absent, ok=%v err=%v", ok, err)
	}
}

func TestPutReplaces(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put(KeySessionToken, "tok1"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(KeySessionToken, "tok2"); err != nil {
		t.Fatalf("Put replace: %v", err)
	}
	var tok string
	if _, err := s.Get(KeySessionToken, &tok); err != nil || tok != "tok2" {
		t.Fatalf("expected tok2, got %q err=%v", tok, err)
	}
}

func TestTakeIsOneShot(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put(KeyNavState, map[string]string{"redirect": "/dashboard"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	var nav map[string]string
	ok, err := s.Take(KeyNavState, &nav)
	if err != nil || !ok || nav["redirect"] != "/dashboard" {
		t.Fatalf("Take: ok=%v err=%v nav=%v", ok, err, nav)
	}
	ok, err = s.Take(KeyNavState, &nav)
	if err != nil || ok {
		t.Fatalf("second Take must miss: ok=%v err=%v", ok, err)
	}
}

func TestListAppendRemove(t *testing.T) {
	s := openTestStore(t)
	type pending struct {
		FileID string `json:"fileId"`
	}
	if err := s.AppendToList(KeyPendingDocuments, pending{FileID: "f1"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendToList(KeyPendingDocuments, pending{FileID: "f2"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	err := s.RemoveFromList(KeyPendingDocuments, func(raw json.RawMessage) bool {
		return strings.Contains(string(raw), "f1")
	})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	var list []pending
	if _, err := s.Get(KeyPendingDocuments, &list); err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(list) != 1 || list[0].FileID != "f2" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestDraftKeysIndependent(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put("field_frm1_text", map[string]any{"name": "Company"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put("field_frm1_date", map[string]any{"dateFormat": "YYYY-MM-DD"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	var draft map[string]any
	if _, err := s.Get("field_frm1_text", &draft); err != nil || draft["name"] != "Company" {
		t.Fatalf("draft mismatch: %v err=%v", draft, err)
	}
	if err := s.Delete("field_frm1_text"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	ok, _ := s.Get("field_frm1_text", &draft)
	if ok {
		t.Fatal("deleted draft still present")
	}
}
