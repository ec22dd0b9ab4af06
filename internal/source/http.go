package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxSourceBytes bounds the size of a single fetched source.
const maxSourceBytes = 16 << 20

// HTTP fetches sources over http and https.
type HTTP struct {
	Client *http.Client
}

// NewHTTP creates an HTTP fetcher with a pooled client. A zero timeout leaves
// the deadline to the request context.
func NewHTTP(timeout time.Duration) *HTTP {
	return &HTTP{
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Fetch implements Fetcher.
func (h *HTTP) Fetch(ctx context.Context, req *Request) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.Locator, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create source request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", req.Locator, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, req.Locator)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch %s failed with status: %s", req.Locator, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", req.Locator, err)
	}
	if len(data) > maxSourceBytes {
		return nil, fmt.Errorf("source %s exceeds %d bytes", req.Locator, maxSourceBytes)
	}
	return data, nil
}

// CloseIdleConnections releases pooled connections.
func (h *HTTP) CloseIdleConnections() {
	if h.Client != nil {
		h.Client.CloseIdleConnections()
	}
}
