package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const (
	handlerTimeout    = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 2 * time.Second
)

// An HTTPServer serves the catalog until it is closed.
type HTTPServer struct {
	srv *http.Server
}

func NewHTTPServer(addr string, handler http.Handler) HTTPServer {
	return HTTPServer{&http.Server{
		Addr:              addr,
		Handler:           http.TimeoutHandler(handler, handlerTimeout, "unavailable"),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}}
}

// NewCatalogHandler returns the routed catalog API with its middleware.
func NewCatalogHandler(catalog Catalog) http.Handler {
	mux := http.NewServeMux()
	RegisterCatalog(mux, catalog)
	return LogRequests(ServeJSON(mux))
}

// Run listens on the configured address. stopFn is called when serving ends
// for any reason other than Close.
func (s HTTPServer) Run(stopFn context.CancelFunc) {
	s.serve(stopFn, s.srv.Addr, s.srv.ListenAndServe)
}

// Serve is Run on an existing listener.
func (s HTTPServer) Serve(ln net.Listener, stopFn context.CancelFunc) {
	s.serve(stopFn, ln.Addr().String(), func() error {
		return s.srv.Serve(ln)
	})
}

func (s HTTPServer) serve(stopFn context.CancelFunc, addr string, fn func() error) {
	const op = "HTTPServer.serve"
	log := slog.With("op", op, "addr", addr)

	defer stopFn()
	log.Info("listening")
	if err := fn(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("unexpected server shutdown", "err", err)
	}
}

func (s HTTPServer) Close(ctx context.Context) {
	const op = "HTTPServer.Close"
	log := slog.With("op", op)

	log.Info("closing http server...")
	if err := s.srv.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown gracefully", "err", err)
		return
	}
	log.Info("http server is closed")
}
