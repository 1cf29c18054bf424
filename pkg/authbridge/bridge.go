// Package authbridge synchronizes a client session with the external
// centralized identity provider and the e-signature backend. It owns
// the small state machine the app consults before rendering anything
// non-public.
package authbridge

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/arpitWebvedant/E-signature-sub001/pkg/apiclient"
	"github.com/arpitWebvedant/E-signature-sub001/pkg/logger"
)

type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateChecking        State = "checking"
	StateAuthenticated   State = "authenticated"
	StateRedirecting     State = "redirecting-to-login"
)

// Provider is the external centralized auth service. Session
// validation and interactive login are delegated to it entirely.
type Provider interface {
	// ValidateSession confirms an existing provider session and
	// returns the identity it belongs to.
	ValidateSession(ctx context.Context) (*apiclient.User, error)
	// AutoLoginTicket attempts the silent handshake and returns a
	// ticket the backend can exchange for a session.
	AutoLoginTicket(ctx context.Context) (string, error)
	// LoginURL is the interactive login page, carrying returnURL so
	// the provider can send the user back.
	LoginURL(returnURL string) string
}

// Backend is the slice of the API client the bridge needs.
type Backend interface {
	SyncUser(ctx context.Context, u apiclient.User) (*apiclient.Session, error)
	AutoLogin(ctx context.Context, ticket string) (*apiclient.Session, error)
	CheckAuthByAPIKey(ctx context.Context) (*apiclient.Session, error)
}

// Storage persists the session across processes. *localstate.Store
// satisfies it.
type Storage interface {
	Put(key string, v any) error
	Get(key string, dst any) (bool, error)
	Delete(key string) error
}

const (
	storageKeyUser  = "user"
	storageKeyToken = "next_app_session_token"
)

// Result is what a completed check hands the caller: either an
// authenticated session or the login redirect to perform.
type Result struct {
	State       State
	Session     *apiclient.Session
	RedirectURL string
}

type Bridge struct {
	mu      sync.Mutex
	state   State
	session *apiclient.Session
	checked bool

	backend  Backend
	provider Provider
	storage  Storage
}

func New(backend Backend, provider Provider, storage Storage) *Bridge {
	return &Bridge{
		state:    StateUnauthenticated,
		backend:  backend,
		provider: provider,
		storage:  storage,
	}
}

func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Session returns the authenticated session, or nil.
func (b *Bridge) Session() *apiclient.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session
}

// Check runs the authentication sequence once. Repeated calls return
// the settled outcome without re-running it; after a failed check the
// caller must Reset (the reload analogue) to try again. returnURL is
// where the login redirect should eventually land the user.
func (b *Bridge) Check(ctx context.Context, returnURL string) Result {
	b.mu.Lock()
	if b.checked {
		res := b.settledLocked(returnURL)
		b.mu.Unlock()
		return res
	}
	b.checked = true
	b.state = StateChecking
	b.mu.Unlock()

	sess := b.resolve(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if sess != nil {
		b.session = sess
		b.state = StateAuthenticated
		return Result{State: StateAuthenticated, Session: sess}
	}
	b.state = StateRedirecting
	return b.settledLocked(returnURL)
}

func (b *Bridge) settledLocked(returnURL string) Result {
	switch b.state {
	case StateAuthenticated:
		return Result{State: StateAuthenticated, Session: b.session}
	case StateRedirecting:
		return Result{State: StateRedirecting, RedirectURL: b.provider.LoginURL(returnURL)}
	default:
		return Result{State: b.state}
	}
}

// resolve walks the ordered paths: persisted session reuse, provider
// session validation, silent auto-login. Each successful provider path
// syncs the identity with the backend before it counts.
func (b *Bridge) resolve(ctx context.Context) *apiclient.Session {
	if sess := b.restore(); sess != nil {
		return sess
	}

	if u, err := b.provider.ValidateSession(ctx); err == nil && u != nil {
		if sess, err := b.backend.SyncUser(ctx, *u); err == nil {
			b.persist(sess)
			return sess
		} else {
			logger.Warn(ctx, "sync-user failed after session validation", "error", err)
		}
	}

	ticket, err := b.provider.AutoLoginTicket(ctx)
	if err != nil || ticket == "" {
		return nil
	}
	sess, err := b.backend.AutoLogin(ctx, ticket)
	if err != nil {
		logger.Warn(ctx, "auto-login failed", "error", err)
		return nil
	}
	b.persist(sess)
	return sess
}

// CheckAPIKey is the non-interactive path: it validates the configured
// API key against the backend and settles the bridge without touching
// the provider.
func (b *Bridge) CheckAPIKey(ctx context.Context) (Result, error) {
	sess, err := b.backend.CheckAuthByAPIKey(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.checked = true
	if err != nil {
		b.state = StateUnauthenticated
		return Result{State: StateUnauthenticated}, err
	}
	b.session = sess
	b.state = StateAuthenticated
	b.persist(sess)
	return Result{State: StateAuthenticated, Session: sess}, nil
}

// Reset returns the bridge to its initial state so the next Check
// re-runs the sequence. The persisted session is left alone.
func (b *Bridge) Reset() {
	b.mu.Lock()
	b.checked = false
	b.state = StateUnauthenticated
	b.session = nil
	b.mu.Unlock()
}

// Logout clears the in-memory and persisted session.
func (b *Bridge) Logout() error {
	b.mu.Lock()
	b.checked = false
	b.state = StateUnauthenticated
	b.session = nil
	b.mu.Unlock()

	if b.storage == nil {
		return nil
	}
	return errors.Join(
		b.storage.Delete(storageKeyUser),
		b.storage.Delete(storageKeyToken),
	)
}

func (b *Bridge) restore() *apiclient.Session {
	if b.storage == nil {
		return nil
	}
	var u apiclient.User
	var token string
	okUser, err := b.storage.Get(storageKeyUser, &u)
	if err != nil || !okUser {
		return nil
	}
	okTok, err := b.storage.Get(storageKeyToken, &token)
	if err != nil || !okTok || token == "" {
		return nil
	}
	return &apiclient.Session{User: u, Token: token}
}

func (b *Bridge) persist(sess *apiclient.Session) {
	if b.storage == nil || sess == nil {
		return
	}
	if err := b.storage.Put(storageKeyUser, sess.User); err != nil {
		logger.Warn(context.Background(), "persist user failed", "error", err)
	}
	if err := b.storage.Put(storageKeyToken, sess.Token); err != nil {
		logger.Warn(context.Background(), "persist token failed", "error", err)
	}
}

// BuildLoginURL composes an external login URL with a return-URL
// query parameter, the way redirecting-to-login performs its full-page
// navigation.
func BuildLoginURL(base, returnURL string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("returnUrl", returnURL)
	u.RawQuery = q.Encode()
	return u.String()
}
