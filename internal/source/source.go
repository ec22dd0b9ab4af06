// Package source fetches the raw source of a module given its locator. It is
// the transport half of the runtime's external source loader; evaluating the
// fetched bytes is the job of an engine.Evaluator.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound is wrapped by fetchers when a locator names nothing.
var ErrNotFound = errors.New("module source not found")

// Request is the platform handle for one fetch. The runtime's fetch hook
// receives it immediately before Fetch is called and may adjust it.
type Request struct {
	// ID is the canonical module id being loaded.
	ID string
	// Locator is where the source lives: a path, URL or sio:// address.
	Locator string
	// Header is sent by transports that have headers (HTTP).
	Header http.Header
	// Reject aborts the fetch with this error when set by the hook.
	Reject error
}

// NewRequest returns a request with an empty header set.
func NewRequest(id, locator string) *Request {
	return &Request{ID: id, Locator: locator, Header: make(http.Header)}
}

// Fetcher retrieves module sources.
type Fetcher interface {
	Fetch(ctx context.Context, req *Request) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, req *Request) ([]byte, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, req *Request) ([]byte, error) {
	return f(ctx, req)
}

// Router dispatches a request to a fetcher by locator scheme. Locators
// without a scheme go to the fetcher registered for "".
type Router struct {
	routes map[string]Fetcher
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{routes: make(map[string]Fetcher)}
}

// Handle registers f for scheme. Registering a scheme twice panics.
func (r *Router) Handle(scheme string, f Fetcher) *Router {
	scheme = strings.ToLower(scheme)
	if _, exists := r.routes[scheme]; exists {
		panic(fmt.Sprintf("source: fetcher for scheme '%s' already registered", scheme))
	}
	r.routes[scheme] = f
	return r
}

// Fetch implements Fetcher.
func (r *Router) Fetch(ctx context.Context, req *Request) ([]byte, error) {
	scheme := Scheme(req.Locator)
	f, ok := r.routes[scheme]
	if !ok {
		return nil, fmt.Errorf("no fetcher for scheme %q (locator %s)", scheme, req.Locator)
	}
	return f.Fetch(ctx, req)
}

// Scheme returns the lower-cased URL scheme of locator, or "" for plain paths.
// Single letters are treated as Windows drive names, not schemes.
func Scheme(locator string) string {
	i := strings.Index(locator, ":")
	if i <= 1 {
		return ""
	}
	for _, c := range locator[:i] {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.') {
			return ""
		}
	}
	return strings.ToLower(locator[:i])
}
