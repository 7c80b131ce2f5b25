package planka

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"golang.org/x/oauth2"
)

const loginPath = "/api/access-tokens"

// TokenSource resolves the bearer token attached to API requests.
type TokenSource interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

// invalidator is implemented by token sources that can drop a rejected token.
type invalidator interface {
	Invalidate()
}

// TokenCache holds the most recently obtained login token.
// It has no expiry; a token stays until Clear or process exit.
type TokenCache struct {
	mu    sync.RWMutex
	token *oauth2.Token
}

// Load returns the cached token, if any.
func (c *TokenCache) Load() (*oauth2.Token, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, c.token != nil
}

// Store installs a new token.
func (c *TokenCache) Store(tok *oauth2.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = tok
}

// Clear empties the cache.
func (c *TokenCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = nil
}

// StaticTokenSource always returns token. It never touches the network.
func StaticTokenSource(token string) TokenSource {
	return staticSource{src: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})}
}

type staticSource struct {
	src oauth2.TokenSource
}

func (s staticSource) Token(context.Context) (*oauth2.Token, error) {
	return s.src.Token()
}

// LoginTokenSource logs in with email and password on first use and keeps the
// token in cache. A failed login leaves the cache empty so the next call retries.
func LoginTokenSource(baseURL *url.URL, httpClient *http.Client, email, password string, cache *TokenCache, logger *slog.Logger) TokenSource {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cache == nil {
		cache = &TokenCache{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &loginSource{
		baseURL:  baseURL,
		http:     httpClient,
		email:    email,
		password: password,
		cache:    cache,
		logger:   logger,
	}
}

type loginSource struct {
	baseURL  *url.URL
	http     *http.Client
	email    string
	password string
	cache    *TokenCache
	logger   *slog.Logger
}

type loginRequest struct {
	EmailOrUsername string `json:"emailOrUsername"`
	Password        string `json:"password"`
}

func (s *loginSource) Token(ctx context.Context) (*oauth2.Token, error) {
	if tok, ok := s.cache.Load(); ok {
		return tok, nil
	}

	s.logger.Info("authenticating with planka", "email", s.email)

	u, err := s.baseURL.Parse(loginPath)
	if err != nil {
		return nil, &ConfigError{Msg: "URL parse error: " + err.Error()}
	}

	payload, err := json.Marshal(loginRequest{EmailOrUsername: s.email, Password: s.password})
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		s.logger.Error("login request failed", "url", u.String(), "error", err)
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Error("authentication failed", "status", resp.StatusCode, "body", string(body))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var data struct {
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &DecodeError{Err: err}
	}
	var access string
	if err := json.Unmarshal(data.Item, &access); err != nil || access == "" {
		s.logger.Error("no token in authentication response")
		return nil, &ConfigError{Msg: "No token in login response"}
	}

	tok := &oauth2.Token{AccessToken: access, TokenType: "Bearer"}
	s.cache.Store(tok)
	s.logger.Info("authentication successful, token cached")
	return tok, nil
}

// Invalidate drops the cached token after the server rejected it.
func (s *loginSource) Invalidate() {
	s.cache.Clear()
}
