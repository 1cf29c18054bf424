package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"strings"

	"github.com/arpitWebvedant/E-signature-sub001/internal/localstate"
	"github.com/arpitWebvedant/E-signature-sub001/pkg/apiclient"
	"github.com/arpitWebvedant/E-signature-sub001/pkg/authbridge"
)

// flagProvider adapts the login flags to the bridge's Provider: an
// --email acts as a validated provider session, a --ticket as the
// silent auto-login handshake.
type flagProvider struct {
	email, name, ticket, loginURL string
}

func (p flagProvider) ValidateSession(ctx context.Context) (*apiclient.User, error) {
	if p.email == "" {
		return nil, errors.New("no provider session")
	}
	return &apiclient.User{Email: p.email, Name: p.name}, nil
}

func (p flagProvider) AutoLoginTicket(ctx context.Context) (string, error) {
	if p.ticket == "" {
		return "", errors.New("no auto-login ticket")
	}
	return p.ticket, nil
}

func (p flagProvider) LoginURL(returnURL string) string {
	return authbridge.BuildLoginURL(p.loginURL, returnURL)
}

func (a *app) runLogin(args []string) {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	email := fs.String("email", "", "provider-verified email")
	name := fs.String("name", "", "display name")
	ticket := fs.String("ticket", "", "provider auto-login ticket")
	apiKey := fs.String("api-key", "", "authenticate with an issued api key")
	if err := fs.Parse(args); err != nil {
		usageErr(err.Error())
	}
	ctx := context.Background()

	if strings.TrimSpace(*apiKey) != "" {
		c := apiclient.New(a.cfg.Backend.BaseURL, apiclient.APIKeyAuth{Key: *apiKey})
		bridge := authbridge.New(c, flagProvider{loginURL: a.cfg.Auth.ProviderLoginURL}, a.state)
		res, err := bridge.CheckAPIKey(ctx)
		if err != nil {
			fail("api key rejected: " + err.Error())
		}
		emit(map[string]any{"state": string(res.State), "user": res.Session.User})
		return
	}

	anon := apiclient.New(a.cfg.Backend.BaseURL, nil)
	provider := flagProvider{
		email:    strings.TrimSpace(*email),
		name:     strings.TrimSpace(*name),
		ticket:   strings.TrimSpace(*ticket),
		loginURL: a.cfg.Auth.ProviderLoginURL,
	}
	bridge := authbridge.New(anon, provider, a.state)
	res := bridge.Check(ctx, "esignctl://login")
	switch res.State {
	case authbridge.StateAuthenticated:
		emit(map[string]any{"state": string(res.State), "user": res.Session.User})
	case authbridge.StateRedirecting:
		// No silent path succeeded; the user has to log in
		// interactively at the provider.
		emit(map[string]any{"state": string(res.State), "loginUrl": res.RedirectURL})
	default:
		fail("unexpected auth state " + string(res.State))
	}
}

func (a *app) runLogout(args []string) {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		usageErr(err.Error())
	}
	anon := apiclient.New(a.cfg.Backend.BaseURL, nil)
	bridge := authbridge.New(anon, flagProvider{loginURL: a.cfg.Auth.ProviderLoginURL}, a.state)
	if err := bridge.Logout(); err != nil {
		fail("logout: " + err.Error())
	}
	emit(map[string]any{"loggedOut": true})
}

func (a *app) runWhoami(args []string) {
	fs := flag.NewFlagSet("whoami", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		usageErr(err.Error())
	}
	var u apiclient.User
	ok, err := a.state.Get(localstate.KeyUser, &u)
	if err != nil {
		fail("read state: " + err.Error())
	}
	if !ok {
		fail("not logged in")
	}
	emit(map[string]any{"user": u})
}
