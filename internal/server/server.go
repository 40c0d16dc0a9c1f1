package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/tapcalc/internal/calc"
	"github.com/muurk/tapcalc/internal/logging"
	"go.uber.org/zap"
)

// DefaultShutdownTimeout bounds how long Shutdown waits for sessions.
const DefaultShutdownTimeout = 10 * time.Second

// Config holds the server configuration
type Config struct {
	Host     string
	Port     int
	CertPath string // TLS is enabled when both CertPath and KeyPath are set
	KeyPath  string

	Calculator calc.Options

	RateLimit float64 // key messages per second per remote host; 0 disables
	RateBurst int

	ShutdownTimeout time.Duration
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, fmt.Sprint(c.Port))
}

// TLSEnabled reports whether both certificate paths are configured.
func (c *Config) TLSEnabled() bool {
	return c.CertPath != "" && c.KeyPath != ""
}

// Server serves the browser calculator page and its WebSocket sessions.
// Every session owns an independent calc.Display.
type Server struct {
	config    *Config
	tlsConfig *tls.Config
	httpSrv   *http.Server
	upgrader  websocket.Upgrader
	limiter   *hostLimiter
	metrics   *Metrics

	wg       sync.WaitGroup
	mu       sync.Mutex
	listener net.Listener
	sessions map[*session]struct{}
	closing  bool // set by Shutdown; track refuses new sessions
}

// New creates a new Server instance
func New(config *Config) (*Server, error) {
	if config.CertPath != "" && config.KeyPath == "" || config.CertPath == "" && config.KeyPath != "" {
		return nil, fmt.Errorf("both a certificate and a key are required for TLS")
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = DefaultShutdownTimeout
	}

	var tlsConfig *tls.Config
	if config.TLSEnabled() {
		var err error
		tlsConfig, err = NewTLSConfig(config.CertPath, config.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	s := &Server{
		config:    config,
		tlsConfig: tlsConfig,
		limiter:   newHostLimiter(config.RateLimit, config.RateBurst, 10*time.Minute),
		metrics:   NewMetrics(),
		sessions:  make(map[*session]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	s.httpSrv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Metrics returns the server's metric set.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Start listens on the configured address and blocks until SIGINT, SIGTERM
// or a serve error.
func (s *Server) Start() error {
	addr := s.config.Addr()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	fields := []zap.Field{
		zap.String("addr", listener.Addr().String()),
		zap.Bool("tls", s.tlsConfig != nil),
		zap.String("division_check", string(s.config.Calculator.DivisionCheck)),
		zap.Float64("rate_limit", s.config.RateLimit),
	}
	if s.tlsConfig != nil {
		fields = append(fields, zap.Any("tls_info", GetTLSInfo(s.tlsConfig)))
	}
	logging.Info("Starting tapcalc server", fields...)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve(listener)
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(ctx)
	case err := <-errChan:
		return err
	}
}

// Serve accepts connections on listener until Shutdown is called. The
// listener is wrapped in TLS when certificates are configured.
func (s *Server) Serve(listener net.Listener) error {
	if s.tlsConfig != nil {
		listener = tls.NewListener(listener, s.tlsConfig)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	logging.Info("Server listening for connections", zap.String("addr", listener.Addr().String()))

	if err := s.httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Addr returns the bound listener address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops accepting connections, closes every session and waits for
// their goroutines. It returns ctx.Err() when ctx expires first.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	// Sessions upgraded from here on are refused by track.
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	// Hijacked WebSocket connections are not tracked by http.Server.
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		logging.Error("Error stopping HTTP server", zap.Error(err))
	}

	s.mu.Lock()
	open := make([]*session, 0, len(s.sessions))
	for sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()

	for _, sess := range open {
		logging.Info("Closing active session", zap.String("remote_addr", sess.remoteAddr))
		sess.close(websocket.CloseGoingAway, "server shutting down")
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
		logging.Info("All sessions closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
		err = ctx.Err()
	}

	logging.Sync()
	return err
}

// GetActiveSessions returns the number of open WebSocket sessions.
func (s *Server) GetActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// track registers sess with the session set and the shutdown wait group.
// It reports false once Shutdown has started.
func (s *Server) track(sess *session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.sessions[sess] = struct{}{}
	s.wg.Add(1)
	s.metrics.sessionsActive.Inc()
	s.metrics.sessionsTotal.Inc()
	return true
}

func (s *Server) untrack(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
	s.metrics.sessionsActive.Dec()
	s.wg.Done()
}
