// ABOUTME: Server orchestrator that owns the Discord session and HTTP surface
// ABOUTME: Startup gates on gateway readiness, shutdown drains HTTP before the session

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"tailscale.com/tsnet"

	"github.com/Phinfire/miniDiscordGateway/internal/config"
	"github.com/Phinfire/miniDiscordGateway/internal/discord"
	"github.com/Phinfire/miniDiscordGateway/internal/roster"
)

const (
	serviceName     = "Mini Discord Gateway API"
	shutdownTimeout = 5 * time.Second
)

// discordSession is the lifecycle and state surface the server drives.
type discordSession interface {
	Run(ctx context.Context) error
	WaitReady(ctx context.Context) error
	Ready() bool
	BotName() string
	Close() error
}

// memberLister is what the guild route needs from the roster layer.
type memberLister interface {
	MemberList(ctx context.Context, guildID int64) (*roster.MemberList, error)
}

var (
	_ discordSession = (*discord.Client)(nil)
	_ memberLister   = (*roster.Service)(nil)
)

// Server coordinates the singleton Discord session and the HTTP API.
// The session outlives every request; handlers only read its state.
type Server struct {
	config      *config.Config
	discord     discordSession
	roster      memberLister
	httpServer  *http.Server
	tsnetServer *tsnet.Server
	logger      *slog.Logger
	version     string
}

// New creates a new Server instance with the given configuration.
func New(cfg *config.Config, logger *slog.Logger, version string) *Server {
	client := discord.NewClient(cfg.Discord.Token, logger)

	s := &Server{
		config:  cfg,
		discord: client,
		roster:  roster.New(client, logger),
		logger:  logger.With("component", "server"),
		version: version,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/ready", s.handleReady)
	mux.HandleFunc("/guild/", s.handleGuildUsers)
	mux.HandleFunc("/docs", s.handleDocs)
	mux.HandleFunc("/openapi.json", s.handleOpenAPI)
	mux.HandleFunc("/", s.handleRoot)

	s.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           requestLogger(logger.With("component", "http"), mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Run starts the Discord session and HTTP server and blocks until the context
// is canceled. The HTTP server does not accept requests until the session has
// reported ready; a session that cannot get ready within the configured window
// is fatal. Returns nil on graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.setupListener(ctx)
	if err != nil {
		return err
	}

	// The session gets its own cancellation token so HTTP can drain fully
	// before the connection winds down during shutdown.
	discordCtx, cancelDiscord := context.WithCancel(context.Background())
	defer cancelDiscord()

	// Closed after the single send so later receives never block on a
	// goroutine that already exited.
	discordErr := make(chan error, 1)
	go func() {
		discordErr <- s.discord.Run(discordCtx)
		close(discordErr)
	}()

	if err := s.waitDiscordReady(ctx, discordErr); err != nil {
		cancelDiscord()
		s.awaitDiscordExit(discordErr)
		_ = ln.Close()
		s.closeTailscale()
		return err
	}

	errCh := s.startServer(ln)
	serverErr := s.waitForShutdownSignal(ctx, errCh)

	shutdownErr := s.gracefulShutdown(cancelDiscord, discordErr)

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// setupListener creates a listener based on configuration (Tailscale or TCP).
func (s *Server) setupListener(ctx context.Context) (net.Listener, error) {
	if s.config.Tailscale.Enabled {
		if s.config.Server.HTTPAddr != "" {
			s.logger.Warn("server.http_addr is ignored when tailscale is enabled",
				"http_addr", s.config.Server.HTTPAddr)
		}
		return s.setupTailscaleListener(ctx)
	}
	return s.setupTCPListener()
}

// setupTCPListener creates a standard TCP listener for the HTTP server.
func (s *Server) setupTCPListener() (net.Listener, error) {
	s.logger.Info("starting server", "http_addr", s.config.Server.HTTPAddr)

	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on HTTP address: %w", err)
	}
	return ln, nil
}

// waitDiscordReady blocks until the session reports ready, the session
// goroutine exits, or the startup window closes. Ready never regresses once
// reported, so a single wait here covers the whole server lifetime.
func (s *Server) waitDiscordReady(ctx context.Context, discordErr <-chan error) error {
	timeout := s.config.Discord.ReadyTimeout

	readyCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.logger.Info("waiting for discord session", "timeout", timeout)

	ready := make(chan error, 1)
	go func() {
		ready <- s.discord.WaitReady(readyCtx)
	}()

	select {
	case err := <-ready:
		if err != nil {
			return fmt.Errorf("discord session not ready after %s: %w", timeout, err)
		}
	case err := <-discordErr:
		return fmt.Errorf("discord session exited during startup: %w", err)
	}

	s.logger.Info("discord session ready", "bot", s.discord.BotName())
	return nil
}

// awaitDiscordExit blocks until the session goroutine acknowledges
// cancellation, bounded by the shutdown grace window. An aborted startup
// must not leave the session mid-teardown behind the fatal return.
func (s *Server) awaitDiscordExit(discordErr <-chan error) {
	select {
	case <-discordErr:
	case <-time.After(shutdownTimeout):
		s.logger.Warn("discord session did not exit before deadline")
	}
}

// startServer starts the HTTP server in a goroutine, returning an error channel.
func (s *Server) startServer(ln net.Listener) chan error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return errCh
}

// waitForShutdownSignal waits for context cancellation or a server error.
func (s *Server) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		s.logger.Error("server error", "error", err)
		return err
	}
}

// gracefulShutdown drains the HTTP server, closes the Discord session, and
// waits for the session goroutine to acknowledge cancellation. Runs on a
// fresh context since the original one is already canceled.
func (s *Server) gracefulShutdown(cancelDiscord context.CancelFunc, discordErr <-chan error) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", s.httpServer.Shutdown(ctx))
	errs = appendCloseError(errs, "discord close", s.discord.Close())

	cancelDiscord()
	select {
	case err := <-discordErr:
		// Cancellation is the expected way down for the session goroutine.
		if err != nil && !errors.Is(err, context.Canceled) {
			errs = appendCloseError(errs, "discord session", err)
		}
	case <-ctx.Done():
		s.logger.Warn("discord session did not exit before deadline")
	}

	if s.tsnetServer != nil {
		errs = appendCloseError(errs, "tailscale shutdown", s.tsnetServer.Close())
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// closeTailscale closes the tsnet server if one was started.
func (s *Server) closeTailscale() {
	if s.tsnetServer != nil {
		_ = s.tsnetServer.Close()
	}
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}
