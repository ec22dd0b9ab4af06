package app

import (
	"time"

	"github.com/vk/amdgo/internal/source"
)

// newFetcher builds the scheme router for the configured sources. Plain
// paths and file:// go to disk, http(s) to the network, and sio:// to the
// socket.io server when one is configured.
func (a *App) newFetcher() (source.Fetcher, func()) {
	timeout := a.config.Runtime.FetchTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	file := source.NewFile(a.config.Runtime.Root)
	web := source.NewHTTP(timeout)
	router := source.NewRouter().
		Handle("", file).
		Handle("file", file).
		Handle("http", web).
		Handle("https", web)

	closers := []func(){web.CloseIdleConnections}

	if sio := a.config.SocketIO; sio != nil {
		s := source.NewSocketIO(source.SocketIOOptions{
			URL:                sio.URL,
			Namespace:          sio.Namespace,
			FetchEvent:         sio.FetchEvent,
			InsecureSkipVerify: sio.InsecureSkipVerify,
		})
		router.Handle(source.SocketIOScheme, s)
		closers = append(closers, s.Close)
		a.logger.Debug("Socket.IO source enabled.", "url", sio.URL)
	}

	return router, func() {
		for _, c := range closers {
			c()
		}
	}
}

// onFetch stamps the configured headers on every outgoing source request.
func (a *App) onFetch(req *source.Request) {
	for k, v := range a.config.Headers {
		req.Header.Set(k, v)
	}
	a.logger.Debug("Fetching module source.", "module", req.ID, "locator", req.Locator)
}
