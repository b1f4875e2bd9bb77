// Package syncclient talks to the remote /todos record store.
//
// Every call is a single request/response pair: no retries, no backoff and no
// timeout beyond what the caller's context or WithTimeout sets.
package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nuid"

	"github.com/idilsaglam/todo-sync/internal/model"
)

const (
	basePath        = "/todos"
	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 4 << 10
)

// Client is safe for concurrent use; it holds no per-call state.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	timeout time.Duration
	newID   func() string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sends "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithTimeout bounds each call. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithRequestID(fn func() string) Option {
	return func(c *Client) { c.newID = fn }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		newID:   nuid.Next,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// List fetches the records in scope for showCompleted, in backend order.
func (c *Client) List(ctx context.Context, showCompleted bool) ([]model.Todo, error) {
	q := url.Values{}
	q.Set("showCompleted", strconv.FormatBool(showCompleted))

	var todos []model.Todo
	if err := c.do(ctx, "list", http.MethodGet, basePath+"?"+q.Encode(), nil, &todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}

// Create posts a draft and returns the record with its backend-assigned id.
func (c *Client) Create(ctx context.Context, d model.Draft) (model.Todo, error) {
	var t model.Todo
	if err := c.do(ctx, "create", http.MethodPost, basePath, d.Payload(), &t); err != nil {
		return model.Todo{}, err
	}
	return t, nil
}

// Complete marks id completed. The backend picks the completion date and
// usually echoes the record; an empty body yields a zero Todo.
func (c *Client) Complete(ctx context.Context, id int64) (model.Todo, error) {
	var t model.Todo
	err := c.do(ctx, "complete", http.MethodPatch, todoPath(id)+"/complete", nil, &t)
	if errors.Is(err, errEmptyBody) {
		return model.Todo{}, nil
	}
	if err != nil {
		return model.Todo{}, err
	}
	return t, nil
}

// Update sends the full editable field set and returns the canonical record.
func (c *Client) Update(ctx context.Context, id int64, d model.Draft) (model.Todo, error) {
	var t model.Todo
	if err := c.do(ctx, "update", http.MethodPatch, todoPath(id), d.Payload(), &t); err != nil {
		return model.Todo{}, err
	}
	return t, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, "delete", http.MethodDelete, todoPath(id), nil, nil)
}

func todoPath(id int64) string {
	return basePath + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.newID != nil {
		req.Header.Set(requestIDHeader, c.newID())
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &transportError{op: op, err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return &transportError{op: op, err: err}
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return fmt.Errorf("%s: %w", op, errEmptyBody)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrDecode, err)
	}
	return nil
}

func statusError(op string, resp *http.Response) error {
	se := &StatusError{Op: op, StatusCode: resp.StatusCode}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &payload) == nil && payload.Error != "" {
		se.Message = payload.Error
	} else {
		se.Message = strings.TrimSpace(string(b))
	}
	return se
}
