// Package planka implements the service.Service interface over the Planka REST API.
package planka

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"planka-mcp/internal/config"
	"planka-mcp/internal/service"
)

// Client implements service.Service using the Planka HTTP API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
	logger  *slog.Logger
}

var _ service.Service = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithTokenSource overrides the token source derived from config.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// New creates a client for cfg. Login mode gets a fresh TokenCache.
// No timeout is set on the HTTP client; the request context bounds each call.
func New(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tokens == nil {
		if cfg.UsesLogin() {
			c.tokens = LoginTokenSource(c.baseURL, c.http, cfg.Email, cfg.Password, &TokenCache{}, c.logger)
		} else {
			c.tokens = StaticTokenSource(cfg.Token)
		}
	}
	c.logger.Info("planka client configured", "base_url", c.baseURL.String(), "login", cfg.UsesLogin())
	return c
}

// checker is implemented by response envelopes with required fields.
// encoding/json leaves absent fields zero, so presence is checked after decoding.
type checker interface {
	check() error
}

func missingField(name string) error {
	return fmt.Errorf("missing field `%s`", name)
}

type projectsResponse struct {
	Items *[]service.Project `json:"items"`
}

func (r *projectsResponse) check() error {
	if r.Items == nil {
		return missingField("items")
	}
	return nil
}

type projectResponse struct {
	Item     *service.Project `json:"item"`
	Included *struct {
		Boards []service.Board `json:"boards"`
	} `json:"included"`
}

func (r *projectResponse) check() error {
	if r.Item == nil {
		return missingField("item")
	}
	if r.Included == nil {
		return missingField("included")
	}
	return nil
}

type boardResponse struct {
	Item     *service.Board `json:"item"`
	Included *struct {
		Lists []service.List `json:"lists"`
		Cards []service.Card `json:"cards"`
	} `json:"included"`
}

func (r *boardResponse) check() error {
	if r.Item == nil {
		return missingField("item")
	}
	if r.Included == nil {
		return missingField("included")
	}
	return nil
}

type itemResponse[T any] struct {
	Item *T `json:"item"`
}

func (r *itemResponse[T]) check() error {
	if r.Item == nil {
		return missingField("item")
	}
	return nil
}

type createRequest struct {
	Name     string  `json:"name"`
	Position float64 `json:"position"`
}

type createCardRequest struct {
	Type           service.CardType   `json:"type"`
	Name           string             `json:"name"`
	Description    *string            `json:"description,omitempty"`
	Position       float64            `json:"position"`
	DueDate        *string            `json:"dueDate,omitempty"`
	IsDueCompleted *bool              `json:"isDueCompleted,omitempty"`
	Stopwatch      *service.Stopwatch `json:"stopwatch,omitempty"`
}

// ListProjects returns all projects.
func (c *Client) ListProjects(ctx context.Context) ([]service.Project, error) {
	var data projectsResponse
	if err := c.do(ctx, http.MethodGet, "/api/projects", nil, &data); err != nil {
		return nil, err
	}
	c.logger.Info("listed projects", "count", len(*data.Items))
	return orEmpty(*data.Items), nil
}

// ListBoards returns the boards included in the project response.
func (c *Client) ListBoards(ctx context.Context, projectID string) ([]service.Board, error) {
	var data projectResponse
	if err := c.do(ctx, http.MethodGet, "/api/projects/"+projectID, nil, &data); err != nil {
		return nil, err
	}
	c.logger.Info("listed boards", "project_id", projectID, "count", len(data.Included.Boards))
	return orEmpty(data.Included.Boards), nil
}

// ListLists returns the lists included in the board response.
func (c *Client) ListLists(ctx context.Context, boardID string) ([]service.List, error) {
	var data boardResponse
	if err := c.do(ctx, http.MethodGet, "/api/boards/"+boardID, nil, &data); err != nil {
		return nil, err
	}
	c.logger.Info("listed lists", "board_id", boardID, "count", len(data.Included.Lists))
	return orEmpty(data.Included.Lists), nil
}

// ListCards returns the cards included in the board response.
func (c *Client) ListCards(ctx context.Context, boardID string) ([]service.Card, error) {
	var data boardResponse
	if err := c.do(ctx, http.MethodGet, "/api/boards/"+boardID, nil, &data); err != nil {
		return nil, err
	}
	c.logger.Info("listed cards", "board_id", boardID, "count", len(data.Included.Cards))
	return orEmpty(data.Included.Cards), nil
}

// CreateBoard creates a board at the end of a project.
func (c *Client) CreateBoard(ctx context.Context, projectID, name string) (service.Board, error) {
	c.logger.Info("creating board", "project_id", projectID, "name", name)
	var data itemResponse[service.Board]
	body := createRequest{Name: name, Position: service.DefaultPosition}
	if err := c.do(ctx, http.MethodPost, "/api/projects/"+projectID+"/boards", body, &data); err != nil {
		return service.Board{}, err
	}
	return *data.Item, nil
}

// CreateList creates a list at the end of a board.
func (c *Client) CreateList(ctx context.Context, boardID, name string) (service.List, error) {
	c.logger.Info("creating list", "board_id", boardID, "name", name)
	var data itemResponse[service.List]
	body := createRequest{Name: name, Position: service.DefaultPosition}
	if err := c.do(ctx, http.MethodPost, "/api/boards/"+boardID+"/lists", body, &data); err != nil {
		return service.List{}, err
	}
	return *data.Item, nil
}

// CreateCard creates a card at the end of a list.
// An empty Type defaults to project.
func (c *Client) CreateCard(ctx context.Context, opts service.CreateCardOptions) (service.Card, error) {
	cardType := opts.Type
	if cardType == "" {
		cardType = service.CardTypeProject
	}
	c.logger.Info("creating card", "list_id", opts.ListID, "type", cardType, "name", opts.Name)

	body := createCardRequest{
		Type:           cardType,
		Name:           opts.Name,
		Description:    opts.Description,
		Position:       service.DefaultPosition,
		DueDate:        opts.DueDate,
		IsDueCompleted: opts.IsDueCompleted,
		Stopwatch:      opts.Stopwatch,
	}
	var data itemResponse[service.Card]
	if err := c.do(ctx, http.MethodPost, "/api/lists/"+opts.ListID+"/cards", body, &data); err != nil {
		return service.Card{}, err
	}
	return *data.Item, nil
}

// UpdateCard patches the card with only the fields set in opts.
func (c *Client) UpdateCard(ctx context.Context, cardID string, opts service.UpdateCardOptions) (service.Card, error) {
	body := updateBody(opts)
	c.logger.Info("updating card", "card_id", cardID, "fields", len(body))

	var data itemResponse[service.Card]
	if err := c.do(ctx, http.MethodPatch, "/api/cards/"+cardID, body, &data); err != nil {
		return service.Card{}, err
	}
	return *data.Item, nil
}

// updateBody maps the set options to their API field names.
func updateBody(opts service.UpdateCardOptions) map[string]any {
	body := make(map[string]any)
	if opts.Name != nil {
		body["name"] = *opts.Name
	}
	if opts.Description != nil {
		body["description"] = *opts.Description
	}
	if opts.Type != nil {
		body["type"] = string(*opts.Type)
	}
	if opts.DueDate != nil {
		body["dueDate"] = *opts.DueDate
	}
	if opts.IsDueCompleted != nil {
		body["isDueCompleted"] = *opts.IsDueCompleted
	}
	if opts.BoardID != nil {
		body["boardId"] = *opts.BoardID
	}
	if opts.CoverAttachmentID != nil {
		body["coverAttachmentId"] = *opts.CoverAttachmentID
	}
	return body
}

// MoveCard moves a card to listID. A nil position puts it at the end.
func (c *Client) MoveCard(ctx context.Context, cardID, listID string, position *float64) (service.Card, error) {
	pos := service.DefaultPosition
	if position != nil {
		pos = *position
	}
	c.logger.Info("moving card", "card_id", cardID, "list_id", listID, "position", pos)

	body := map[string]any{"listId": listID, "position": pos}
	var data itemResponse[service.Card]
	if err := c.do(ctx, http.MethodPatch, "/api/cards/"+cardID, body, &data); err != nil {
		return service.Card{}, err
	}
	return *data.Item, nil
}

// DeleteCard deletes a card.
func (c *Client) DeleteCard(ctx context.Context, cardID string) error {
	c.logger.Warn("deleting card", "card_id", cardID)
	return c.do(ctx, http.MethodDelete, "/api/cards/"+cardID, nil, nil)
}

// DeleteList deletes a list; Planka removes its cards with it.
func (c *Client) DeleteList(ctx context.Context, listID string) error {
	c.logger.Warn("deleting list and all its cards", "list_id", listID)
	return c.do(ctx, http.MethodDelete, "/api/lists/"+listID, nil, nil)
}

// do sends an authenticated request and decodes a 2xx body into out.
// A nil body sends no payload; a nil out ignores the response body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	u, err := c.baseURL.Parse(path)
	if err != nil {
		return &ConfigError{Msg: "URL parse error: " + err.Error()}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &DecodeError{Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return &TransportError{Err: err}
	}
	tok.SetAuthHeader(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("sending request", "method", method, "path", path)
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("request failed", "method", method, "path", path, "error", err)
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("api request failed", "method", method, "path", path, "status", resp.StatusCode, "body", string(raw))
		if resp.StatusCode == http.StatusUnauthorized {
			if inv, ok := c.tokens.(invalidator); ok {
				c.logger.Warn("token rejected, clearing cached token")
				inv.Invalidate()
			}
		}
		return &StatusError{Code: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Error("failed to parse response", "method", method, "path", path, "error", err)
		return &DecodeError{Err: err}
	}
	if ch, ok := out.(checker); ok {
		if err := ch.check(); err != nil {
			c.logger.Error("incomplete response", "method", method, "path", path, "error", err)
			return &DecodeError{Err: err}
		}
	}
	return nil
}

// orEmpty keeps absent collections rendering as [] rather than null.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
