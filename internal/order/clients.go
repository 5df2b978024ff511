package order

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/MikeMC777/ordenes-pos/internal/httpx"
	"github.com/MikeMC777/ordenes-pos/internal/menu"
)

// TokenSource supplies the bearer token. Storage and refresh belong to the session manager.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// Client talks to the Remote Order Service.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	Tokens  TokenSource
}

// NewClient returns a client without a request timeout: calls run until ctx ends.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		HTTP:    &http.Client{},
		BaseURL: strings.TrimRight(baseURL, "/"),
		Tokens:  tokens,
	}
}

func (c *Client) ListMenu(ctx context.Context) ([]menu.MenuItem, error) {
	var out []menu.MenuItem
	if err := c.do(ctx, "list menu", http.MethodGet, "/menu/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListTables(ctx context.Context) ([]menu.Table, error) {
	var out []menu.Table
	if err := c.do(ctx, "list tables", http.MethodGet, "/tables/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListOrders(ctx context.Context, offset, limit int) ([]Order, error) {
	q := url.Values{}
	q.Set("offset", fmt.Sprint(offset))
	q.Set("limit", fmt.Sprint(limit))
	var out []Order
	if err := c.do(ctx, "list orders", http.MethodGet, "/orders/?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListOrdersByDate expects date as YYYY-MM-DD.
func (c *Client) ListOrdersByDate(ctx context.Context, date string) ([]Order, error) {
	var out []Order
	p := "/orders/by-date/" + url.PathEscape(date)
	if err := c.do(ctx, "orders by date", http.MethodGet, p, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetOrder(ctx context.Context, id int) (*Order, error) {
	var o Order
	if err := c.do(ctx, "get order", http.MethodGet, fmt.Sprintf("/orders/%d/", id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	var o Order
	if err := c.do(ctx, "create order", http.MethodPost, "/orders/", req, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) UpdateOrder(ctx context.Context, id int, req UpdateOrderRequest) (*Order, error) {
	var o Order
	if err := c.do(ctx, "update order", http.MethodPut, fmt.Sprintf("/orders/%d/", id), req, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) ExtendOrder(ctx context.Context, id int, items []CreateOrderItem) (*Order, error) {
	var o Order
	if err := c.do(ctx, "extend order", http.MethodPut, fmt.Sprintf("/orders/%d/extend", id), items, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode: %w", op, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(httpx.HeaderRequestID, httpx.RequestIDFrom(ctx))
	if c.Tokens != nil {
		tok, err := c.Tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("%s: token: %w", op, err)
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case res.StatusCode == http.StatusNotFound:
		return &NetworkError{Op: op, StatusCode: res.StatusCode, Err: ErrNotFound}
	case res.StatusCode < 200 || res.StatusCode > 299:
		return &NetworkError{Op: op, StatusCode: res.StatusCode, Err: errors.New(detail(res))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return &NetworkError{Op: op, StatusCode: res.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// detail extracts the backend's {"detail": "..."} message, falling back to the status text.
func detail(res *http.Response) string {
	var e struct {
		Detail any `json:"detail"`
	}
	b, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
	if json.Unmarshal(b, &e) == nil && e.Detail != nil {
		if s, ok := e.Detail.(string); ok {
			return s
		}
		return fmt.Sprint(e.Detail)
	}
	return res.Status
}
