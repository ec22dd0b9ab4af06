package source

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vk/amdgo/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// SocketIOScheme is the locator scheme served by the SocketIO fetcher.
const SocketIOScheme = "sio"

// Default event names of the socket.io source protocol.
const (
	DefaultFetchEvent = "module:fetch"
	defaultDialWait   = 15 * time.Second
)

// SocketIOOptions configures a SocketIO fetcher.
type SocketIOOptions struct {
	// URL is the socket.io server, e.g. http://localhost:3000/socket.io/.
	URL                string
	Namespace          string
	FetchEvent         string
	InsecureSkipVerify bool
}

// SocketIO fetches sources from a socket.io server. For a locator
// sio://<path> it emits FetchEvent with {"path": <path>, "reply": <event>}
// and waits for the server to emit <event> with {"source": "..."} or
// {"error": "..."}. The connection is opened on first use and shared.
type SocketIO struct {
	opts SocketIOOptions

	mu sync.Mutex
	io *socket.Socket
}

// NewSocketIO creates a fetcher; no connection is made until the first fetch.
func NewSocketIO(opts SocketIOOptions) *SocketIO {
	if opts.FetchEvent == "" {
		opts.FetchEvent = DefaultFetchEvent
	}
	return &SocketIO{opts: opts}
}

type sioReply struct {
	data []byte
	err  error
}

// Fetch implements Fetcher.
func (s *SocketIO) Fetch(ctx context.Context, req *Request) ([]byte, error) {
	path, ok := strings.CutPrefix(req.Locator, SocketIOScheme+"://")
	if !ok {
		return nil, fmt.Errorf("locator %s is not a %s:// address", req.Locator, SocketIOScheme)
	}

	io, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}

	logger := ctxlog.FromContext(ctx).With("fetcher", "socketio", "sid", io.Id())
	replyEvent := "module:source:" + uuid.NewString()
	done := make(chan sioReply, 1)

	io.Once(types.EventName(replyEvent), func(data ...any) {
		logger.Debug("EVENT HANDLER: source reply received", "event", replyEvent)
		done <- decodeSIOReply(data)
	})

	logger.Debug("Emitting fetch event", "event", s.opts.FetchEvent, "path", path)
	io.Emit(s.opts.FetchEvent, map[string]any{"path": path, "id": req.ID, "reply": replyEvent})

	select {
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("socket.io fetch of %s failed: %w", path, res.err)
		}
		return res.data, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for socket.io source %s: %w", path, ctx.Err())
	}
}

func decodeSIOReply(data []any) sioReply {
	if len(data) == 0 {
		return sioReply{err: errors.New("empty reply")}
	}
	switch v := data[0].(type) {
	case string:
		return sioReply{data: []byte(v)}
	case []byte:
		return sioReply{data: v}
	case map[string]any:
		if msg, ok := v["error"].(string); ok && msg != "" {
			if msg == "not found" {
				return sioReply{err: ErrNotFound}
			}
			return sioReply{err: errors.New(msg)}
		}
		if src, ok := v["source"].(string); ok {
			return sioReply{data: []byte(src)}
		}
		return sioReply{err: errors.New("reply has no 'source' field")}
	default:
		return sioReply{err: fmt.Errorf("unexpected reply payload %T", v)}
	}
}

// connect returns the shared socket, dialing it if needed.
func (s *SocketIO) connect(ctx context.Context) (*socket.Socket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.io != nil && s.io.Connected() {
		return s.io, nil
	}

	io, err := DialSocketIO(ctx, s.opts.URL, s.opts.Namespace, s.opts.InsecureSkipVerify)
	if err != nil {
		return nil, err
	}
	s.io = io
	return io, nil
}

// DialSocketIO connects to a socket.io server over websocket and waits for
// the connection to be established.
func DialSocketIO(ctx context.Context, rawURL, namespace string, insecureSkipVerify bool) (*socket.Socket, error) {
	logger := ctxlog.FromContext(ctx).With("socketio", rawURL)
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse socket.io URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("socket.io URL %q must be absolute", rawURL)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if insecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	connected := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("EVENT HANDLER: 'connect' event fired", "sid", io.Id())
		connected <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err, _ := errs[0].(error)
		if err == nil {
			err = fmt.Errorf("%v", errs[0])
		}
		connected <- err
	})
	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(defaultDialWait):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", defaultDialWait)
	}

	logger.Info("Connected to socket.io server", "sid", io.Id())
	return io, nil
}

// Close disconnects the shared socket, if any.
func (s *SocketIO) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.io != nil {
		s.io.Disconnect()
		s.io = nil
	}
}
