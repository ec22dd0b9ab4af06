package http_client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vk/amdgo/internal/ctxlog"
	"github.com/vk/amdgo/internal/eventloop"
)

type client struct {
	ctx  context.Context
	http *http.Client
	loop *eventloop.Loop
}

// Callback receives an error message (empty on success) and the response.
type Callback func(errMsg string, res map[string]any)

func (c *client) exports() map[string]any {
	return map[string]any{
		"fetch": c.fetch,
		"get":   c.get,
	}
}

// fetch performs a blocking request. method defaults to GET.
func (c *client) fetch(url string, method ...string) (map[string]any, error) {
	m := http.MethodGet
	if len(method) > 0 && method[0] != "" {
		m = strings.ToUpper(method[0])
	}
	return c.do(c.ctx, m, url)
}

// get performs a GET off the loop and reports through cb on the loop.
func (c *client) get(url string, cb Callback) {
	if c.loop == nil {
		res, err := c.do(c.ctx, http.MethodGet, url)
		cb(errString(err), res)
		return
	}
	c.loop.Go(c.ctx, func(ctx context.Context) func() {
		res, err := c.do(ctx, http.MethodGet, url)
		return func() { cb(errString(err), res) }
	})
}

func (c *client) do(ctx context.Context, method, url string) (map[string]any, error) {
	logger := ctxlog.FromContext(ctx).With("module", ModuleID)
	logger.Info("Making HTTP request", "method", method, "url", url)

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	logger.Info("Received HTTP response", "status", resp.Status)

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return map[string]any{
		"status_code": resp.StatusCode,
		"body":        string(bodyBytes),
	}, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
