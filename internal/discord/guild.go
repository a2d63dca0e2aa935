// ABOUTME: Read-only guild queries against the gateway session.
// ABOUTME: Cache lookups for guilds, paged member enumeration, and error classification.

package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// ErrGuildNotFound indicates the guild is not in the session's cache:
// the bot is not a member of it, or it does not exist.
var ErrGuildNotFound = errors.New("guild not found")

// ErrForbidden indicates Discord denied access to the requested resource.
var ErrForbidden = errors.New("missing access to guild")

// ErrUpstream indicates a Discord API or network failure outside this
// service's control.
var ErrUpstream = errors.New("discord api error")

// memberPageSize is the Discord API maximum for one page of the member
// listing endpoint.
const memberPageSize = 1000

// Guild resolves a guild from the session's local cache. No network I/O.
// Returns ErrNotReady before the session handshake completes and
// ErrGuildNotFound when the guild is not cached.
func (c *Client) Guild(id int64) (*discordgo.Guild, error) {
	c.mu.RLock()
	state, ready := c.state, c.ready
	c.mu.RUnlock()

	if !ready || state == nil {
		return nil, ErrNotReady
	}

	guild, err := state.Guild(strconv.FormatInt(id, 10))
	if err != nil {
		if errors.Is(err, discordgo.ErrStateNotFound) {
			return nil, fmt.Errorf("guild %d: %w", id, ErrGuildNotFound)
		}
		return nil, fmt.Errorf("reading guild %d from state: %w", id, err)
	}
	return guild, nil
}

// Members enumerates every member of the guild through the REST API,
// paging until the final short page. A guild the bot can see but not
// enumerate yields ErrForbidden; other remote faults yield ErrUpstream.
// An empty result is valid.
func (c *Client) Members(ctx context.Context, id int64) ([]*discordgo.Member, error) {
	c.mu.RLock()
	sess, ready := c.session, c.ready
	c.mu.RUnlock()

	if !ready || sess == nil {
		return nil, ErrNotReady
	}

	guildID := strconv.FormatInt(id, 10)
	var members []*discordgo.Member
	after := ""

	for {
		page, err := sess.GuildMembers(guildID, after, memberPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, classifyRESTError(err)
		}

		members = append(members, page...)
		if len(page) < memberPageSize {
			return members, nil
		}
		after = page[len(page)-1].User.ID
	}
}

// classifyRESTError maps discordgo failures onto the error taxonomy.
// Permission denials are kept distinct from generic upstream faults so
// callers can answer 403 versus 502.
func classifyRESTError(err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %v", ErrForbidden, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
