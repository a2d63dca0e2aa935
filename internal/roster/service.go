// ABOUTME: Roster service turns cached guild state into the member-list wire shape
// ABOUTME: Projection rules live here so handlers stay free of Discord types

package roster

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Phinfire/miniDiscordGateway/internal/discord"
)

// GuildSource defines what the service needs from the Discord layer
type GuildSource interface {
	Guild(id int64) (*discordgo.Guild, error)
	Members(ctx context.Context, id int64) ([]*discordgo.Member, error)
}

var _ GuildSource = (*discord.Client)(nil)

// Member is one guild member in the shape clients receive.
// AvatarURL and JoinedAt serialize to null when Discord has no value for them.
type Member struct {
	ID            int64   `json:"id"`
	Username      string  `json:"username"`
	Discriminator string  `json:"discriminator"`
	DisplayName   string  `json:"display_name"`
	AvatarURL     *string `json:"avatar_url"`
	IsBot         bool    `json:"is_bot"`
	JoinedAt      *string `json:"joined_at"`
}

// MemberList is the full roster of a guild, keyed by stringified member ID.
type MemberList struct {
	GuildID      int64             `json:"guild_id"`
	GuildName    string            `json:"guild_name"`
	TotalMembers int               `json:"total_members"`
	Users        map[string]Member `json:"users"`
}

// Service assembles member lists from a guild source.
type Service struct {
	source GuildSource
	logger *slog.Logger
}

// New creates a roster service backed by the given source
func New(source GuildSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		source: source,
		logger: logger.With("component", "roster"),
	}
}

// MemberList resolves the guild, enumerates its members, and projects them
// into the wire shape. Duplicate member payloads collapse onto one entry, so
// TotalMembers counts distinct users rather than raw pages.
func (s *Service) MemberList(ctx context.Context, guildID int64) (*MemberList, error) {
	guild, err := s.source.Guild(guildID)
	if err != nil {
		return nil, err
	}

	members, err := s.source.Members(ctx, guildID)
	if err != nil {
		return nil, err
	}

	users := make(map[string]Member, len(members))
	for _, m := range members {
		// Membership payloads without a user carry nothing listable.
		if m.User == nil {
			continue
		}
		users[m.User.ID] = projectMember(m)
	}

	s.logger.Debug("member list assembled",
		"guild_id", guildID,
		"guild_name", guild.Name,
		"members", len(users))

	return &MemberList{
		GuildID:      guildID,
		GuildName:    guild.Name,
		TotalMembers: len(users),
		Users:        users,
	}, nil
}

// projectMember maps a Discord member onto the wire shape. Users migrated off
// the legacy username system report discriminator "0"; only a missing value
// becomes the "0000" placeholder.
func projectMember(m *discordgo.Member) Member {
	id, _ := strconv.ParseInt(m.User.ID, 10, 64)

	out := Member{
		ID:            id,
		Username:      m.User.Username,
		Discriminator: m.User.Discriminator,
		DisplayName:   displayName(m),
		IsBot:         m.User.Bot,
	}
	if out.Discriminator == "" {
		out.Discriminator = "0000"
	}
	if m.User.Avatar != "" {
		url := m.User.AvatarURL("")
		out.AvatarURL = &url
	}
	if !m.JoinedAt.IsZero() {
		joined := m.JoinedAt.Format(time.RFC3339)
		out.JoinedAt = &joined
	}
	return out
}

// displayName follows Discord's own precedence: server nickname, then the
// user's global display name, then the account username.
func displayName(m *discordgo.Member) string {
	switch {
	case m.Nick != "":
		return m.Nick
	case m.User.GlobalName != "":
		return m.User.GlobalName
	default:
		return m.User.Username
	}
}
