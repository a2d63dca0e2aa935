// ABOUTME: Tests for the server run loop: startup gating, fatal paths, shutdown
// ABOUTME: Drives Run with scripted sessions instead of a live gateway connection

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"
)

func TestRun_FailsWhenSessionNeverReady(t *testing.T) {
	srv, _, _ := newTestServer(t)
	srv.config.Discord.ReadyTimeout = 50 * time.Millisecond
	srv.config.Server.HTTPAddr = "127.0.0.1:0"

	session := &fakeSession{ready: false}
	srv.discord = session

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(context.Background())
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected Run to fail when session never gets ready")
		}
		if !strings.Contains(err.Error(), "not ready after") {
			t.Errorf("unexpected error: %v", err)
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline error in chain, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not fail within the startup window")
	}
}

func TestRun_FailsWhenSessionDiesDuringStartup(t *testing.T) {
	srv, _, _ := newTestServer(t)
	srv.config.Server.HTTPAddr = "127.0.0.1:0"

	openErr := errors.New("opening discord session: websocket: bad handshake")
	session := &fakeSession{
		runFn: func(ctx context.Context) error {
			return openErr
		},
	}
	srv.discord = session

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(context.Background())
	}()

	select {
	case err := <-done:
		if !errors.Is(err, openErr) {
			t.Errorf("expected the session error in chain, got %v", err)
		}
		if !strings.Contains(err.Error(), "exited during startup") {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not fail after the session died")
	}
}

func TestRun_StartupFailureAwaitsSessionExit(t *testing.T) {
	srv, _, _ := newTestServer(t)
	srv.config.Discord.ReadyTimeout = 50 * time.Millisecond
	srv.config.Server.HTTPAddr = "127.0.0.1:0"

	exited := make(chan struct{})
	session := &fakeSession{
		runFn: func(ctx context.Context) error {
			defer close(exited)
			<-ctx.Done()
			return ctx.Err()
		},
	}
	srv.discord = session

	err := srv.Run(context.Background())
	if err == nil {
		t.Fatal("expected Run to fail when session never gets ready")
	}

	// The fatal return must come after the session goroutine acknowledged
	// its cancellation, not concurrently with its teardown.
	select {
	case <-exited:
	default:
		t.Error("session goroutine still running when Run returned")
	}
}

func TestRun_GracefulShutdown(t *testing.T) {
	srv, session, _ := newTestServer(t)
	srv.config.Server.HTTPAddr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	// Give the run loop time to pass the readiness gate and start serving.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected graceful shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}

	if got := session.closeCount(); got != 1 {
		t.Errorf("expected exactly one session close, got %d", got)
	}
}

func TestRun_ListenError(t *testing.T) {
	// Occupy a port so the server cannot bind it.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to open blocking listener: %v", err)
	}
	defer ln.Close()

	srv, _, _ := newTestServer(t)
	srv.config.Server.HTTPAddr = ln.Addr().String()

	if err := srv.Run(context.Background()); err == nil {
		t.Fatal("expected Run to fail on an occupied address")
	} else if !strings.Contains(err.Error(), "listening on HTTP address") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestWaitDiscordReady_ReportsBotName(t *testing.T) {
	srv, session, _ := newTestServer(t)
	session.ready = true
	session.bot = "TestBot"

	discordErr := make(chan error, 1)
	if err := srv.waitDiscordReady(context.Background(), discordErr); err != nil {
		t.Fatalf("expected immediate readiness, got %v", err)
	}
}

func TestAppendCloseError(t *testing.T) {
	var errs []error
	errs = appendCloseError(errs, "first", nil)
	if len(errs) != 0 {
		t.Errorf("nil error should not append, got %d entries", len(errs))
	}

	sentinel := errors.New("boom")
	errs = appendCloseError(errs, "second", sentinel)
	if len(errs) != 1 {
		t.Fatalf("expected one entry, got %d", len(errs))
	}
	if !errors.Is(errs[0], sentinel) {
		t.Errorf("expected wrapped sentinel, got %v", errs[0])
	}
	if got := errs[0].Error(); got != fmt.Sprintf("second: %v", sentinel) {
		t.Errorf("unexpected label format: %s", got)
	}
}
