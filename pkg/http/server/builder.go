package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Observer receives one call per finished request. route is the matched mux
// path template, or "unmatched".
type Observer func(route string, status int, duration time.Duration)

type Option func(*Options)

type Options struct {
	port           int
	logger         *zap.Logger
	allowedOrigins []string
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
	observer       Observer
}

// WithPort sets the listening port. Port 0 picks a free port.
func WithPort(port int) Option {
	return func(o *Options) { o.port = port }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) { o.logger = logger }
}

func WithAllowedOrigins(origins ...string) Option {
	return func(o *Options) { o.allowedOrigins = origins }
}

func WithTimeouts(read, write time.Duration) Option {
	return func(o *Options) {
		o.readTimeout = read
		o.writeTimeout = write
	}
}

func WithObserver(obs Observer) Option {
	return func(o *Options) { o.observer = obs }
}

// Server is an HTTP server around a gorilla/mux router with request ids,
// panic recovery, access logging and CORS applied to every request.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	lis        net.Listener
	logger     *zap.Logger
}

func New(opts ...Option) (*Server, error) {
	options := &Options{
		port:           8080,
		logger:         zap.NewNop(),
		allowedOrigins: []string{"*"},
		readTimeout:    15 * time.Second,
		writeTimeout:   30 * time.Second,
		idleTimeout:    60 * time.Second,
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.port < 0 || options.port > 65535 {
		return nil, fmt.Errorf("invalid port %d: must be between 0 and 65535", options.port)
	}

	logger := options.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http-server")

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", options.port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", options.port, err)
	}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: options.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Origin", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         86400,
	})

	var handler http.Handler = router
	handler = Recovery(logger)(handler)
	handler = Logging(logger, routeTemplate(router), options.observer)(handler)
	handler = RequestID(handler)
	handler = corsHandler.Handler(handler)

	return &Server{
		httpServer: &http.Server{
			Handler:           handler,
			ReadTimeout:       options.readTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      options.writeTimeout,
			IdleTimeout:       options.idleTimeout,
			MaxHeaderBytes:    1 << 20,
		},
		router: router,
		lis:    lis,
		logger: logger,
	}, nil
}

// Router returns the router for route registration.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Start serves in a goroutine and returns immediately.
func (s *Server) Start() {
	s.logger.Info("HTTP server starting", zap.String("addr", s.lis.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(s.lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}()
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	defer s.lis.Close()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("forced shutdown due to timeout", zap.Error(err))
		_ = s.httpServer.Close()
		return err
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
