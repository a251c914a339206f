// Package httpapi exposes the dispatcher over plain JSON/HTTP.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/uptimekeeper/internal/common"
	"github.com/dmitrijs2005/uptimekeeper/internal/logging"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/dispatch"
	"github.com/julienschmidt/httprouter"
)

const shutdownTimeout = 5 * time.Second

// Dispatcher is the slice of dispatch.Dispatcher the server needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, req dispatch.Request) dispatch.Response
}

type Server struct {
	address    string
	dispatcher Dispatcher
	logger     logging.Logger
	handler    http.Handler
}

func NewServer(address string, d Dispatcher, l logging.Logger) *Server {
	s := &Server{
		address:    address,
		dispatcher: d,
		logger:     l.With("module", "http_server"),
	}
	s.handler = s.withAccessLog(s.routes())
	return s
}

// routes registers the known resources explicitly. Everything else, including
// methods the router has no handle for, lands in the dispatcher too so that
// 404 and 405 are decided in one place.
func (s *Server) routes() *httprouter.Router {
	r := httprouter.New()
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.HandleMethodNotAllowed = false
	r.HandleOPTIONS = false

	r.GET("/"+dispatch.ResourcePing, s.handle)

	for _, resource := range []string{common.ResourceUsers, common.ResourceTokens, common.ResourceChecks} {
		path := "/" + resource
		r.POST(path, s.handle)
		r.GET(path, s.handle)
		r.PUT(path, s.handle)
		r.DELETE(path, s.handle)
	}

	r.PanicHandler = s.recovered
	// The router only recovers panics in registered handles.
	r.NotFound = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				s.recovered(w, req, v)
			}
		}()
		s.handle(w, req, nil)
	})

	return r
}

func (s *Server) recovered(w http.ResponseWriter, req *http.Request, v any) {
	s.logger.Error(req.Context(), "handler panic", "path", req.URL.Path, "panic", v)
	writeJSON(w, http.StatusInternalServerError, map[string]any{"Error": "An unexpected error occurred"})
}

// Handler returns the fully wired http.Handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
