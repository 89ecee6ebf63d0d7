// Package lobby talks to the arena lobby HTTP API: session, current user and
// character selection.
package lobby

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const DefaultURL = "http://localhost:8080"

var (
	ErrUnauthorized = errors.New("lobby: unauthorized")
	ErrRequest      = errors.New("lobby: request failed")
)

// User is the account returned by /api/auth/me.
type User struct {
	ID            string
	Email         string
	IsGuest       bool
	CreatedAt     time.Time
	CharacterType string
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Authenticated() bool { return c.Token() != "" }

// Health reports whether the server answers /health.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil)
	return err
}

// LoginAsGuest creates a guest session and stores its token.
func (c *Client) LoginAsGuest(ctx context.Context) (User, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/auth/guest", nil)
	if err != nil {
		return User{}, err
	}
	token := gjson.GetBytes(body, "token")
	if !token.Exists() || token.String() == "" {
		return User{}, fmt.Errorf("%w: guest login: missing token", ErrRequest)
	}
	c.SetToken(token.String())
	return parseUser(gjson.GetBytes(body, "user")), nil
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil)
	c.SetToken("")
	return err
}

func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	if !c.Authenticated() {
		return User{}, ErrUnauthorized
	}
	body, err := c.do(ctx, http.MethodGet, "/api/auth/me", nil)
	if err != nil {
		return User{}, err
	}
	res := gjson.ParseBytes(body)
	if u := res.Get("user"); u.IsObject() {
		res = u
	}
	return parseUser(res), nil
}

// CurrentCharacter returns the character type chosen by the signed-in user,
// or "" when none has been chosen yet.
func (c *Client) CurrentCharacter(ctx context.Context) (string, error) {
	u, err := c.CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	return u.CharacterType, nil
}

// SelectCharacter stores characterType as the user's choice.
func (c *Client) SelectCharacter(ctx context.Context, characterType string) error {
	if !c.Authenticated() {
		return ErrUnauthorized
	}
	body, err := sjson.SetBytes([]byte(`{}`), "character_type", characterType)
	if err != nil {
		return fmt.Errorf("lobby: encode selection: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, "/api/character", body)
	return err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrRequest, method, endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrRequest, method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrRequest, method, endpoint, err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(data, "error").String()
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("%w: %s %s: %s", ErrRequest, method, endpoint, msg)
	}
	return data, nil
}

func parseUser(res gjson.Result) User {
	u := User{
		ID:            res.Get("id").String(),
		Email:         res.Get("email").String(),
		IsGuest:       res.Get("is_guest").Bool(),
		CharacterType: res.Get("character_type").String(),
	}
	if ts := res.Get("created_at").String(); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			u.CreatedAt = t
		}
	}
	return u
}
