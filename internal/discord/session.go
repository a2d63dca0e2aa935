// ABOUTME: Narrow interface over the discordgo session for testability.
// ABOUTME: The live implementation is *discordgo.Session itself.

package discord

import (
	"github.com/bwmarrin/discordgo"
)

// Session is the slice of the underlying gateway session the service
// relies on: opening and closing the websocket, one-shot event
// registration, and the paged member listing call. Keeping it narrow
// lets tests substitute a mock without any network connection.
type Session interface {
	// Open establishes the gateway websocket and begins the session.
	Open() error

	// Close performs a graceful shutdown of the gateway connection.
	Close() error

	// AddHandlerOnce registers an event handler that fires at most once.
	// The returned function removes the handler early.
	AddHandlerOnce(handler interface{}) func()

	// GuildMembers returns up to limit members of the guild with IDs
	// greater than after, in ascending ID order.
	GuildMembers(guildID string, after string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error)
}

// Interface check: the real session must satisfy Session.
var _ Session = (*discordgo.Session)(nil)
