// Package logseq talks to a running Logseq app through its local HTTP API
// server (POST /api with a bearer token).
package logseq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/starford/habitdash/internal/apperr"
	"github.com/starford/habitdash/internal/models"
	"github.com/starford/habitdash/internal/storage"
)

const maxResponseSize = 64 << 20

// Client calls Logseq API methods such as "logseq.Editor.getAllPages".
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	logger   *slog.Logger
}

var _ storage.Provider = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a Client for the API server at baseURL (e.g.
// http://127.0.0.1:12315).
func New(baseURL, token string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimRight(baseURL, "/") + "/api",
		token:    token,
		http:     &http.Client{Timeout: timeout},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Call invokes method with args and decodes the JSON result into out (which
// may be nil). A JSON null result leaves out untouched.
func (c *Client) Call(ctx context.Context, method string, out any, args ...any) error {
	if args == nil {
		args = []any{}
	}
	body, err := json.Marshal(request{Method: method, Args: args})
	if err != nil {
		return fmt.Errorf("logseq: encode %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("logseq: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("logseq: %s: %w: %w", method, apperr.ErrHost, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("logseq: %s: read body: %w: %w", method, apperr.ErrHost, err)
	}

	c.logger.Debug("logseq: call",
		slog.String("method", method),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(data)),
		slog.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(data))
		var er errorResponse
		if json.Unmarshal(data, &er) == nil && er.Error != "" {
			msg = er.Error
		}
		return fmt.Errorf("logseq: %s: HTTP %d: %s: %w", method, resp.StatusCode, msg, apperr.ErrHost)
	}

	trimmed := bytes.TrimSpace(data)
	if out == nil || len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("logseq: %s: decode result: %w", method, err)
	}
	return nil
}

// GetAllPages implements storage.Provider.
func (c *Client) GetAllPages(ctx context.Context) ([]models.Page, error) {
	var pages []wirePage
	if err := c.Call(ctx, "logseq.Editor.getAllPages", &pages); err != nil {
		return nil, err
	}
	out := make([]models.Page, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.model())
	}
	return out, nil
}

// GetPageBlocksTree implements storage.Provider.
func (c *Client) GetPageBlocksTree(ctx context.Context, pageName string) ([]*models.Block, error) {
	var blocks []wireBlock
	if err := c.Call(ctx, "logseq.Editor.getPageBlocksTree", &blocks, pageName); err != nil {
		return nil, err
	}
	if blocks == nil {
		return nil, nil
	}
	return convertBlocks(blocks), nil
}

// GetPage implements storage.Provider.
func (c *Client) GetPage(ctx context.Context, name string) (*models.Page, error) {
	var p *wirePage
	if err := c.Call(ctx, "logseq.Editor.getPage", &p, name); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	m := p.model()
	return &m, nil
}

// CreatePage implements storage.Provider.
func (c *Client) CreatePage(ctx context.Context, name string, properties map[string]string, opts storage.PageOptions) (*models.Page, error) {
	if properties == nil {
		properties = map[string]string{}
	}
	var p *wirePage
	if err := c.Call(ctx, "logseq.Editor.createPage", &p, name, properties, opts); err != nil {
		return nil, err
	}
	if p == nil {
		return &models.Page{Name: strings.ToLower(name), OriginalName: name}, nil
	}
	m := p.model()
	return &m, nil
}

// AppendBlockInPage implements storage.Provider.
func (c *Client) AppendBlockInPage(ctx context.Context, pageName, content string) (*models.Block, error) {
	var b *wireBlock
	if err := c.Call(ctx, "logseq.Editor.appendBlockInPage", &b, pageName, content); err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("logseq: append to %q: %w", pageName, apperr.ErrNotFound)
	}
	return b.model(), nil
}
