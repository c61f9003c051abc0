// Package report wraps the Gotenberg rendering service.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrTimeout indicates the rendering request exceeded the configured timeout.
	ErrTimeout = errors.New("gotenberg: timeout")
	// ErrInvalidResponse indicates Gotenberg returned a non-success status code.
	ErrInvalidResponse = errors.New("gotenberg: invalid response")
	// ErrTooSmall indicates the generated artefact was below the minimum expected size.
	ErrTooSmall = errors.New("gotenberg: artefact below minimum size")
)

const (
	minSizeBytes   = 1024
	maxRetry       = 2
	requestTimeout = 15 * time.Second

	// High quality keeps the fine grid lines legible after PDF pagination.
	jpegQuality = "95"
)

// Client wraps interactions with the Gotenberg API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	timeout    time.Duration
	minSize    int
}

// NewClient constructs a new client.
func NewClient(baseURL string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("gotenberg endpoint required")
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		retries:    maxRetry,
		timeout:    requestTimeout,
		minSize:    minSizeBytes,
	}, nil
}

// Ping checks if the remote Gotenberg service is available.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

// RenderHTML converts raw HTML into a PDF document using Gotenberg.
func (c *Client) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	fields := map[string]string{
		"landscape":    "true",
		"paperWidth":   "11.7",
		"paperHeight":  "8.27",
		"marginTop":    "0",
		"marginBottom": "0",
		"marginLeft":   "0",
		"marginRight":  "0",
	}
	return c.submit(ctx, "/forms/chromium/convert/html", html, fields)
}

// Rasterize screenshots the document at its full natural size and returns
// JPEG bytes. Width zero means the Chromium default viewport width.
func (c *Client) Rasterize(ctx context.Context, html string) ([]byte, error) {
	fields := map[string]string{
		"format":  "jpeg",
		"quality": jpegQuality,
		// Capture the whole scroll height, not just the viewport.
		"clip": "false",
	}
	return c.submit(ctx, "/forms/chromium/screenshot/html", html, fields)
}

func (c *Client) submit(ctx context.Context, path, html string, fields map[string]string) ([]byte, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("gotenberg client not initialised")
	}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, html); err != nil {
		return nil, err
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	payload := body.Bytes()
	contentType := writer.FormDataContentType()

	attempts := c.retries + 1
	var lastErr error
	for i := 0; i < attempts; i++ {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if c.timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, c.timeout)
		}
		req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			if cancel != nil {
				cancel()
			}
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if cancel != nil {
				cancel()
			}
			if ne := classifyNetError(err); ne != nil {
				lastErr = ne
			} else {
				lastErr = err
			}
			continue
		}
		data, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if cancel != nil {
			cancel()
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			lastErr = fmt.Errorf("%w: status %d", ErrInvalidResponse, resp.StatusCode)
			continue
		}
		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return nil, fmt.Errorf("%w: status %d", ErrInvalidResponse, resp.StatusCode)
		}
		if readErr != nil {
			lastErr = readErr
			continue
		}
		if len(data) < c.minSize {
			lastErr = ErrTooSmall
			continue
		}
		return data, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("%w: exhausted attempts", ErrInvalidResponse)
	}
	return nil, fmt.Errorf("gotenberg request failed after %d attempts: %w", attempts, lastErr)
}

func classifyNetError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return err
}
