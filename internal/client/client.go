// Package client talks to the transactions API and holds the page state of
// the expense tracker: the transaction list, the add form and its guard.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"solde/internal/core"
)

// ExecutionContext selects which configured root the client resolves.
type ExecutionContext int

const (
	// ServerSide runs next to the API (e.g. on an internal network) and
	// uses API_URL.
	ServerSide ExecutionContext = iota
	// UserFacing runs on the user's machine and uses PUBLIC_API_URL.
	UserFacing
)

// RootFor picks the API root for the execution context.
func RootFor(ec ExecutionContext, apiURL, publicAPIURL string) string {
	if ec == UserFacing && strings.TrimSpace(publicAPIURL) != "" {
		return publicAPIURL
	}
	return apiURL
}

// BaseURL returns root + "api/", adding the slash root is missing.
func BaseURL(root string) string {
	root = strings.TrimSpace(root)
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	return root + "api/"
}

// RequestError is returned for transport failures and non-2xx responses.
type RequestError struct {
	Method string
	Path   string
	Status int                 // 0 when no response was received
	Fields map[string][]string // field errors sent by the server, if any
	Err    error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Method, e.Path)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, ": %v", core.FieldErrors(e.Fields).Error())
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *RequestError) Unwrap() error { return e.Err }

// Client is an API client for the transactions endpoints.
type Client struct {
	base *url.URL
	http *http.Client
}

// New builds a client for root (see BaseURL). A non-positive timeout means
// 10 seconds.
func New(root string, timeout time.Duration) (*Client, error) {
	base, err := url.Parse(BaseURL(root))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api url %q: scheme must be http or https", root)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{base: base, http: newHTTPClientWithPooling(timeout)}, nil
}

// BaseURL returns the resolved base, ending in "api/".
func (c *Client) BaseURL() string { return c.base.String() }

func newHTTPClientWithPooling(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

// wireTransaction accepts amounts as JSON numbers or numeric strings.
type wireTransaction struct {
	ID        string      `json:"id"`
	Text      string      `json:"text"`
	Amount    json.Number `json:"amount"`
	CreatedAt time.Time   `json:"created_at"`
}

func (w wireTransaction) transaction() (core.Transaction, error) {
	amount, err := core.ParseAmount(w.Amount.String())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: amount %q: %w", w.ID, w.Amount, err)
	}
	return core.Transaction{ID: w.ID, Text: w.Text, Amount: amount, CreatedAt: w.CreatedAt}, nil
}

// List issues GET transactions/ and returns the items in server order.
func (c *Client) List(ctx context.Context) ([]core.Transaction, error) {
	var items []wireTransaction
	if err := c.do(ctx, http.MethodGet, "transactions/", nil, &items); err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(items))
	for _, it := range items {
		t, err := it.transaction()
		if err != nil {
			return nil, &RequestError{Method: http.MethodGet, Path: "transactions/", Status: http.StatusOK, Err: err}
		}
		out = append(out, t)
	}
	return out, nil
}

type createRequest struct {
	Text   string      `json:"text"`
	Amount json.Number `json:"amount"`
}

// Create issues POST transactions/ with {text, amount}. The amount is sent
// as a JSON number.
func (c *Client) Create(ctx context.Context, n core.NewTransaction) (core.Transaction, error) {
	body := createRequest{Text: n.Text, Amount: json.Number(n.Amount.String())}
	var item wireTransaction
	if err := c.do(ctx, http.MethodPost, "transactions/", body, &item); err != nil {
		return core.Transaction{}, err
	}
	t, err := item.transaction()
	if err != nil {
		return core.Transaction{}, &RequestError{Method: http.MethodPost, Path: "transactions/", Status: http.StatusCreated, Err: err}
	}
	return t, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	rerr := func(status int, fields map[string][]string, err error) error {
		return &RequestError{Method: method, Path: path, Status: status, Fields: fields, Err: err}
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return rerr(0, nil, fmt.Errorf("encode request: %w", err))
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.ResolveReference(&url.URL{Path: path}).String(), body)
	if err != nil {
		return rerr(0, nil, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return rerr(0, nil, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return rerr(resp.StatusCode, nil, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rerr(resp.StatusCode, fieldErrors(data), errors.New(http.StatusText(resp.StatusCode)))
	}

	if out != nil {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(out); err != nil {
			return rerr(resp.StatusCode, nil, fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}

// fieldErrors extracts {"field": ["message", ...]} bodies. Anything else
// yields nil.
func fieldErrors(body []byte) map[string][]string {
	var fields map[string][]string
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		return nil
	}
	return fields
}
