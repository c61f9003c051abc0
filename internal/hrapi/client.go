// Package hrapi is the typed client for the upstream HR attendance API.
package hrapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Role selects which archive the HR API exposes to the caller.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// TokenSource supplies the bearer token forwarded to the HR API. Tokens are
// short lived upstream, so the client asks on every request instead of
// caching one at construction time.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource backed by a fixed service token.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// Client talks to the HR attendance API.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	validate   *validator.Validate
}

// NewClient constructs a Client against the given base URL.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("hrapi: base url required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("hrapi: token source required")
	}
	c := &Client{
		baseURL:    baseURL,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		validate:   validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// Archive lists the months for which monthly reports exist.
func (c *Client) Archive(ctx context.Context, role Role) ([]ArchiveItem, error) {
	q := url.Values{}
	q.Set("role", string(role))
	var payload struct {
		Archive []ArchiveItem `json:"archive"`
	}
	if err := c.getJSON(ctx, "/attendance/archive", q, &payload); err != nil {
		return nil, err
	}
	items := payload.Archive[:0]
	for _, it := range payload.Archive {
		if err := c.validate.Struct(it); err != nil {
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// MyMonthlyReport fetches the calling employee's report for a month.
func (c *Client) MyMonthlyReport(ctx context.Context, year, month int) (*MonthlyReport, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(month))
	var payload struct {
		Report *MonthlyReport `json:"report"`
	}
	if err := c.getJSON(ctx, "/attendance/report/me", q, &payload); err != nil {
		return nil, err
	}
	if payload.Report == nil {
		return nil, ErrNotFound
	}
	return payload.Report, nil
}

// AllMonthlyReports fetches every employee's report for a month.
//
// The upstream wraps the list twice, reports.reports, a quirk the API team
// has declined to fix. The decode mirrors it here so the client keeps
// working against the real service.
func (c *Client) AllMonthlyReports(ctx context.Context, year, month int) ([]MonthlyReport, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(month))
	var payload struct {
		Reports struct {
			Reports []MonthlyReport `json:"reports"`
		} `json:"reports"`
	}
	if err := c.getJSON(ctx, "/attendance/report/all", q, &payload); err != nil {
		return nil, err
	}
	return payload.Reports.Reports, nil
}

// ActionResult is the upstream reply to check-in and check-out requests.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CheckIn records the start of the calling employee's work day.
func (c *Client) CheckIn(ctx context.Context) (*ActionResult, error) {
	return c.postAction(ctx, "/attendance/checkin")
}

// CheckOut records the end of the calling employee's work day.
func (c *Client) CheckOut(ctx context.Context) (*ActionResult, error) {
	return c.postAction(ctx, "/attendance/checkout")
}

// TodayStatus reports whether the calling employee currently has an open
// check-in.
func (c *Client) TodayStatus(ctx context.Context) (*TodayStatus, error) {
	var status TodayStatus
	if err := c.getJSON(ctx, "/attendance/status/today", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) postAction(ctx context.Context, path string) (*ActionResult, error) {
	req, err := c.newRequest(ctx, http.MethodPost, path, nil)
	if err != nil {
		return nil, err
	}
	var result ActionResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, target any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query)
	if err != nil {
		return err
	}
	return c.do(req, target)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, err
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("hrapi: token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, target any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return fmt.Errorf("%w: status %d", ErrBadPayload, resp.StatusCode)
	}

	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}
