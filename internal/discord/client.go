// ABOUTME: Owns the single long-lived Discord gateway session for the process.
// ABOUTME: Mediates session creation, startup, readiness signaling, and teardown.

package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// ErrNotReady indicates the gateway session has not completed its initial
// handshake, so cached lookups cannot be served yet.
var ErrNotReady = errors.New("discord session not ready")

// Client owns the process's one gateway session. All mutation goes
// through Client; consumers read through it and never touch the session
// directly. Readiness transitions false to true at most once per session
// instance and resets only when a new session is acquired.
type Client struct {
	token  string
	logger *slog.Logger

	mu      sync.RWMutex
	session Session
	state   *discordgo.State
	ready   bool
	readyCh chan struct{}
	botName string
}

// NewClient creates a Client for the given bot token. No session exists
// until Acquire or Run is called.
func NewClient(token string, logger *slog.Logger) *Client {
	return &Client{
		token:  token,
		logger: logger,
	}
}

// Acquire returns the session handle, constructing it on first use.
// Construction only configures the handle (identify intents, ready
// handler); no network I/O happens here. Subsequent calls return the
// existing handle unchanged.
func (c *Client) Acquire() (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return c.session, nil
	}

	sess, err := discordgo.New("Bot " + c.token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}

	// Listing guild members requires both the guild and member scopes.
	sess.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	c.adopt(sess, sess.State)
	c.logger.Debug("discord session configured")
	return c.session, nil
}

// adopt installs a freshly constructed session handle and arms a new
// readiness signal for it. Caller must hold c.mu.
func (c *Client) adopt(sess Session, state *discordgo.State) {
	c.session = sess
	c.state = state
	c.ready = false
	c.readyCh = make(chan struct{})
	c.botName = ""

	// The handler carries the signal it was armed with, so an event
	// dispatched late by an older session cannot resolve a newer one.
	ch := c.readyCh
	sess.AddHandlerOnce(func(_ *discordgo.Session, r *discordgo.Ready) {
		c.markReady(ch, r)
	})
}

// markReady resolves the readiness signal the event's session armed.
// Late or duplicate events from a session that has since been closed or
// replaced no longer match the live signal and are ignored.
func (c *Client) markReady(ch chan struct{}, r *discordgo.Ready) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ready || c.readyCh != ch {
		return
	}

	c.ready = true
	if r.User != nil {
		c.botName = r.User.String()
	}
	close(c.readyCh)

	c.logger.Info("discord session ready",
		"bot", c.botName,
		"guilds", len(r.Guilds),
	)
}

// Run opens the gateway session and keeps it alive until ctx is
// cancelled, then closes it. The expected return after a graceful
// shutdown is ctx.Err(); an open failure (bad token, unreachable
// gateway) is returned immediately.
func (c *Client) Run(ctx context.Context) error {
	sess, err := c.Acquire()
	if err != nil {
		return err
	}

	c.logger.Info("opening discord session")
	if err := sess.Open(); err != nil {
		return fmt.Errorf("opening discord session: %w", err)
	}

	<-ctx.Done()

	if err := c.Close(); err != nil {
		c.logger.Warn("closing discord session after cancel", "error", err)
	}
	return ctx.Err()
}

// Ready reports whether the current session has completed its initial
// handshake. Non-blocking.
func (c *Client) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// WaitReady blocks until the session reports ready or ctx ends. A client
// with no acquired session waits out the context.
func (c *Client) WaitReady(ctx context.Context) error {
	c.mu.RLock()
	ch := c.readyCh
	c.mu.RUnlock()

	// A nil channel never receives, so the select below degrades to a
	// plain context wait when nothing has been acquired.
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BotName returns the logged-in account name, or the empty string before
// the session is ready.
func (c *Client) BotName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.botName
}

// Close gracefully shuts down the session, clears the handle, and resets
// the readiness signal. Idempotent: closing an already-closed or
// never-acquired client is a no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil
	}

	sess := c.session
	c.session = nil
	c.state = nil
	c.ready = false
	c.readyCh = nil
	c.botName = ""

	if err := sess.Close(); err != nil {
		return fmt.Errorf("closing discord session: %w", err)
	}

	c.logger.Info("discord session closed")
	return nil
}
