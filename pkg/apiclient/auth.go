package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// CheckAuthByAPIKey validates the client's API key and returns the
// session it maps to. The client must be configured with APIKeyAuth.
func (c *Client) CheckAuthByAPIKey(ctx context.Context) (*Session, error) {
	body, err := c.do(ctx, http.MethodGet, "/auth/check-auth-by-api-key", nil, true)
	if err != nil {
		return nil, err
	}
	return decodeSession(body)
}

// AutoLogin attempts the silent handshake with the centralized auth
// provider using a provider-issued ticket.
func (c *Client) AutoLogin(ctx context.Context, providerTicket string) (*Session, error) {
	if strings.TrimSpace(providerTicket) == "" {
		return nil, errors.New("provider ticket is required")
	}
	v := url.Values{}
	v.Set("ticket", providerTicket)
	body, err := c.do(ctx, http.MethodGet, "/auth/auto-login?"+v.Encode(), nil, false)
	if err != nil {
		return nil, err
	}
	return decodeSession(body)
}

// SyncUser mirrors an externally authenticated identity into the
// backend and returns the backend session for it.
func (c *Client) SyncUser(ctx context.Context, u User) (*Session, error) {
	if strings.TrimSpace(u.Email) == "" {
		return nil, errors.New("email is required")
	}
	body, err := c.do(ctx, http.MethodPost, "/auth/sync-user", u, false)
	if err != nil {
		return nil, err
	}
	return decodeSession(body)
}

// CreateAPIKey issues a named key. The raw key appears only in this
// response.
func (c *Client) CreateAPIKey(ctx context.Context, name string) (*APIKey, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("key name is required")
	}
	body, err := c.do(ctx, http.MethodPost, "/auth/api-keys", map[string]string{"name": name}, false)
	if err != nil {
		return nil, err
	}
	out, err := decode[struct {
		APIKey *APIKey `json:"apiKey"`
	}](body)
	if err != nil {
		return nil, err
	}
	if out.APIKey == nil {
		return nil, errors.New("response missing api key")
	}
	return out.APIKey, nil
}

func (c *Client) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	body, err := c.do(ctx, http.MethodGet, "/auth/api-keys", nil, true)
	if err != nil {
		return nil, err
	}
	out, err := decode[struct {
		APIKeys []APIKey `json:"apiKeys"`
	}](body)
	if err != nil {
		return nil, err
	}
	return out.APIKeys, nil
}

func (c *Client) RevokeAPIKey(ctx context.Context, keyID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/auth/api-keys/"+url.PathEscape(keyID), nil, false)
	return err
}

func decodeSession(body []byte) (*Session, error) {
	out, err := decode[Session](body)
	if err != nil {
		return nil, err
	}
	if out.Token == "" || out.User.Email == "" {
		return nil, errors.New("response missing session")
	}
	return out, nil
}
