package authbridge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/arpitWebvedant/E-signature-sub001/pkg/apiclient"
)

type fakeProvider struct {
	sessionUser *apiclient.User
	sessionErr  error
	ticket      string
	ticketErr   error
	validated   int
	ticketCalls int
}

func (p *fakeProvider) ValidateSession(ctx context.Context) (*apiclient.User, error) {
	p.validated++
	return p.sessionUser, p.sessionErr
}

func (p *fakeProvider) AutoLoginTicket(ctx context.Context) (string, error) {
	p.ticketCalls++
	return p.ticket, p.ticketErr
}

func (p *fakeProvider) LoginURL(returnURL string) string {
	return BuildLoginURL("https://auth.example.com/login", returnURL)
}

type fakeBackend struct {
	syncCalls  int
	syncErr    error
	autoCalls  int
	autoErr    error
	apiKeyErr  error
	lastTicket string
}

func (b *fakeBackend) SyncUser(ctx context.Context, u apiclient.User) (*apiclient.Session, error) {
	b.syncCalls++
	if b.syncErr != nil {
		return nil, b.syncErr
	}
	return &apiclient.Session{User: u, Token: "sess_sync"}, nil
}

func (b *fakeBackend) AutoLogin(ctx context.Context, ticket string) (*apiclient.Session, error) {
	b.autoCalls++
	b.lastTicket = ticket
	if b.autoErr != nil {
		return nil, b.autoErr
	}
	return &apiclient.Session{User: apiclient.User{ID: "usr_1", Email: "a@example.com"}, Token: "sess_auto"}, nil
}

func (b *fakeBackend) CheckAuthByAPIKey(ctx context.Context) (*apiclient.Session, error) {
	if b.apiKeyErr != nil {
		return nil, b.apiKeyErr
	}
	return &apiclient.Session{User: apiclient.User{ID: "usr_1", Email: "a@example.com"}, Token: "sess_key"}, nil
}

type memStorage map[string]string

func (m memStorage) Put(key string, v any) error {
	switch t := v.(type) {
	case string:
		m[key] = `"` + t + `"`
	case apiclient.User:
		m[key] = `{"id":"` + t.ID + `","email":"` + t.Email + `"}`
	default:
		return errors.New("unexpected type")
	}
	return nil
}

func (m memStorage) Get(key string, dst any) (bool, error) {
	raw, ok := m[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *string:
		*d = strings.Trim(raw, `"`)
	case *apiclient.User:
		d.ID = "usr_1"
		d.Email = "a@example.com"
	default:
		return false, errors.New("unexpected type")
	}
	return true, nil
}

func (m memStorage) Delete(key string) error {
	delete(m, key)
	return nil
}

func TestCheck_PersistedSessionShortCircuitsProvider(t *testing.T) {
	p := &fakeProvider{}
	be := &fakeBackend{}
	st := memStorage{
		"user":                   `{"id":"usr_1","email":"a@example.com"}`,
		"next_app_session_token": `"sess_stored"`,
	}
	b := New(be, p, st)
	res := b.Check(context.Background(), "/dashboard")
	if res.State != StateAuthenticated || res.Session == nil || res.Session.Token != "sess_stored" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if p.validated != 0 || p.ticketCalls != 0 {
		t.Fatal("provider must not be consulted when a stored session exists")
	}
}

func TestCheck_ValidSessionSyncsUser(t *testing.T) {
	p := &fakeProvider{sessionUser: &apiclient.User{ID: "usr_1", Email: "a@example.com"}}
	be := &fakeBackend{}
	st := memStorage{}
	b := New(be, p, st)
	res := b.Check(context.Background(), "/dashboard")
	if res.State != StateAuthenticated || res.Session.Token != "sess_sync" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if be.syncCalls != 1 {
		t.Fatalf("expected one sync, got %d", be.syncCalls)
	}
	if _, ok := st["next_app_session_token"]; !ok {
		t.Fatal("session token not persisted")
	}
}

func TestCheck_FallsThroughToAutoLogin(t *testing.T) {
	p := &fakeProvider{sessionErr: errors.New("no session"), ticket: "tck_1"}
	be := &fakeBackend{}
	b := New(be, p, memStorage{})
	res := b.Check(context.Background(), "/dashboard")
	if res.State != StateAuthenticated || res.Session.Token != "sess_auto" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if be.lastTicket != "tck_1" {
		t.Fatalf("ticket not forwarded: %q", be.lastTicket)
	}
}

func TestCheck_AllPathsFail_RedirectsWithReturnURL(t *testing.T) {
	p := &fakeProvider{sessionErr: errors.New("no session"), ticketErr: errors.New("no ticket")}
	b := New(&fakeBackend{}, p, memStorage{})
	res := b.Check(context.Background(), "https://app.example.com/loadingPage")
	if res.State != StateRedirecting {
		t.Fatalf("expected redirect, got %+v", res)
	}
	if !strings.Contains(res.RedirectURL, "returnUrl=") {
		t.Fatalf("redirect missing return url: %s", res.RedirectURL)
	}
}

func TestCheck_NoRetryWithoutReset(t *testing.T) {
	p := &fakeProvider{sessionErr: errors.New("down"), ticketErr: errors.New("down")}
	b := New(&fakeBackend{}, p, memStorage{})
	_ = b.Check(context.Background(), "/")
	_ = b.Check(context.Background(), "/")
	if p.validated != 1 {
		t.Fatalf("check must run once until reset, provider consulted %d times", p.validated)
	}
	b.Reset()
	_ = b.Check(context.Background(), "/")
	if p.validated != 2 {
		t.Fatalf("reset must allow a fresh check, got %d validations", p.validated)
	}
}

func TestCheck_SyncFailureFallsThrough(t *testing.T) {
	p := &fakeProvider{sessionUser: &apiclient.User{Email: "a@example.com"}, ticket: "tck_1"}
	be := &fakeBackend{syncErr: errors.New("backend down")}
	b := New(be, p, memStorage{})
	res := b.Check(context.Background(), "/")
	if res.State != StateAuthenticated || res.Session.Token != "sess_auto" {
		t.Fatalf("expected auto-login fallback, got %+v", res)
	}
}

func TestCheckAPIKey(t *testing.T) {
	b := New(&fakeBackend{}, &fakeProvider{}, nil)
	res, err := b.CheckAPIKey(context.Background())
	if err != nil || res.State != StateAuthenticated || res.Session.Token != "sess_key" {
		t.Fatalf("unexpected: res=%+v err=%v", res, err)
	}

	b2 := New(&fakeBackend{apiKeyErr: errors.New("bad key")}, &fakeProvider{}, nil)
	if _, err := b2.CheckAPIKey(context.Background()); err == nil {
		t.Fatal("expected error for bad key")
	}
	if b2.State() != StateUnauthenticated {
		t.Fatalf("unexpected state %s", b2.State())
	}
}

func TestLogout_ClearsStorage(t *testing.T) {
	st := memStorage{
		"user":                   `{}`,
		"next_app_session_token": `"tok"`,
	}
	b := New(&fakeBackend{}, &fakeProvider{}, st)
	_ = b.Check(context.Background(), "/")
	if err := b.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(st) != 0 {
		t.Fatalf("storage not cleared: %v", st)
	}
	if b.State() != StateUnauthenticated || b.Session() != nil {
		t.Fatal("session not cleared")
	}
}
