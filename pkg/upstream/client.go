package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrTransport         = errors.New("upstream transport error")
	ErrStatus            = fmt.Errorf("%w: unexpected status", ErrTransport)
	ErrDecode            = errors.New("upstream decode error")
	ErrMissingCredential = errors.New("upstream credential not configured")
)

const DefaultTimeout = 30 * time.Second

// Client performs single-attempt JSON GETs against third-party APIs.
type Client struct {
	httpClient *http.Client
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{httpClient: httpClient}
}

type Request struct {
	URL     string
	Headers map[string]string
}

// GetJSON issues one GET and decodes the body into out. Errors wrap
// ErrTransport (including ErrStatus) or ErrDecode.
func (c *Client) GetJSON(ctx context.Context, r Request, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return fmt.Errorf("%w: building request: %w", ErrTransport, err)
	}

	req.Header.Set("Accept", "application/json")
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w %d from %s", ErrStatus, resp.StatusCode, req.URL.Host)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return nil
}

// RequireCredential returns ErrMissingCredential naming the variable when
// value is empty.
func RequireCredential(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", ErrMissingCredential, name)
	}
	return nil
}
