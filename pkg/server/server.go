package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mandelsoft/cimrepository/pkg/service"
)

type Server struct {
	*http.Server
	*http.ServeMux

	shutdownTimeout time.Duration
	lock            sync.Mutex
	addr            net.Addr
}

var _ service.Service = (*Server)(nil)

// NewServer creates a server for the given port. Port 0 chooses a
// free port. With def the handlers registered with Register are
// served, also.
func NewServer(port int, def bool, shutdownTimeout time.Duration) *Server {
	mux := http.NewServeMux()
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if def {
		mux.Handle("/", default_mux)
	}
	return &Server{
		Server:          server,
		ServeMux:        mux,
		shutdownTimeout: shutdownTimeout,
	}
}

// Address returns the address the server is listening on after
// it has been started.
func (s *Server) Address() net.Addr {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.addr
}

// Start starts serving in the background. The server is shut
// down when the context is cancelled.
func (s *Server) Start(ctx context.Context) (service.Syncher, service.Syncher, error) {
	l, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return nil, nil, err
	}
	s.lock.Lock()
	s.addr = l.Addr()
	s.lock.Unlock()
	log.Info("listening on {{address}}", "address", l.Addr().String())

	ready := service.SyncTrigger()
	done := service.SyncTrigger()
	go func() {
		ready.Trigger()
		done.SetError(s.serveContext(ctx, l, "", ""))
		done.Trigger()
	}()
	return ready, done, nil
}

func (s *Server) ListenAndServeContext(ctx context.Context) error {
	return s.ListenAndServeTLSContext(ctx, "", "")
}

func (s *Server) ListenAndServeTLSContext(ctx context.Context, certFile, keyFile string) error {
	l, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.serveContext(ctx, l, certFile, keyFile)
}

func (s *Server) serveContext(ctx context.Context, l net.Listener, certFile, keyFile string) error {
	serverErr := make(chan error, 1)
	go func() {
		// Shutdown causes Serve to return http.ErrServerClosed.
		if certFile != "" && keyFile != "" {
			serverErr <- s.ServeTLS(l, certFile, keyFile)
		} else {
			serverErr <- s.Serve(l)
		}
	}()
	var err error
	select {
	case <-ctx.Done():
		log.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		err = s.Shutdown(ctx)
	case err = <-serverErr:
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
