// ABOUTME: Tests for roster projection and member-list assembly
// ABOUTME: Uses a fake guild source so no gateway connection is involved

package roster

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Phinfire/miniDiscordGateway/internal/discord"
)

type fakeSource struct {
	guild      *discordgo.Guild
	guildErr   error
	members    []*discordgo.Member
	membersErr error

	memberCalls int
}

func (f *fakeSource) Guild(id int64) (*discordgo.Guild, error) {
	if f.guildErr != nil {
		return nil, f.guildErr
	}
	return f.guild, nil
}

func (f *fakeSource) Members(ctx context.Context, id int64) ([]*discordgo.Member, error) {
	f.memberCalls++
	if f.membersErr != nil {
		return nil, f.membersErr
	}
	return f.members, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string {
	return &s
}

func TestMemberList_AssemblesRoster(t *testing.T) {
	source := &fakeSource{
		guild: &discordgo.Guild{ID: "987654321", Name: "Test Guild"},
		members: []*discordgo.Member{
			{User: &discordgo.User{ID: "111111111111111111", Username: "alice", Discriminator: "0"}},
			{User: &discordgo.User{ID: "222222222222222222", Username: "bot-user", Discriminator: "0", Bot: true}},
		},
	}
	svc := New(source, testLogger())

	list, err := svc.MemberList(context.Background(), 987654321)
	require.NoError(t, err)

	assert.Equal(t, int64(987654321), list.GuildID)
	assert.Equal(t, "Test Guild", list.GuildName)
	assert.Equal(t, 2, list.TotalMembers)

	require.Contains(t, list.Users, "111111111111111111")
	alice := list.Users["111111111111111111"]
	assert.Equal(t, "alice", alice.Username)
	assert.False(t, alice.IsBot)

	require.Contains(t, list.Users, "222222222222222222")
	bot := list.Users["222222222222222222"]
	assert.Equal(t, "bot-user", bot.Username)
	assert.True(t, bot.IsBot)
}

func TestMemberList_EmptyGuild(t *testing.T) {
	source := &fakeSource{
		guild: &discordgo.Guild{ID: "42", Name: "Empty"},
	}
	svc := New(source, testLogger())

	list, err := svc.MemberList(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, 0, list.TotalMembers)
	require.NotNil(t, list.Users, "users must serialize as {} rather than null")
	assert.Empty(t, list.Users)
}

func TestMemberList_DeduplicatesMembers(t *testing.T) {
	source := &fakeSource{
		guild: &discordgo.Guild{ID: "42", Name: "Dupes"},
		members: []*discordgo.Member{
			{User: &discordgo.User{ID: "7", Username: "alice"}},
			{User: &discordgo.User{ID: "7", Username: "alice"}},
		},
	}
	svc := New(source, testLogger())

	list, err := svc.MemberList(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, 1, list.TotalMembers, "duplicate payloads should collapse")
}

func TestMemberList_SkipsMemberWithoutUser(t *testing.T) {
	source := &fakeSource{
		guild: &discordgo.Guild{ID: "42", Name: "Partial"},
		members: []*discordgo.Member{
			{User: &discordgo.User{ID: "7", Username: "alice"}},
			{Nick: "ghost"},
		},
	}
	svc := New(source, testLogger())

	list, err := svc.MemberList(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, 1, list.TotalMembers, "userless payloads should be skipped")
}

func TestMemberList_GuildErrorPassthrough(t *testing.T) {
	source := &fakeSource{
		guildErr: fmt.Errorf("guild 42: %w", discord.ErrGuildNotFound),
	}
	svc := New(source, testLogger())

	_, err := svc.MemberList(context.Background(), 42)
	assert.ErrorIs(t, err, discord.ErrGuildNotFound)
	assert.Equal(t, 0, source.memberCalls, "no member enumeration after guild lookup failure")
}

func TestMemberList_MembersErrorPassthrough(t *testing.T) {
	source := &fakeSource{
		guild:      &discordgo.Guild{ID: "42", Name: "Broken"},
		membersErr: fmt.Errorf("%w: status 502", discord.ErrUpstream),
	}
	svc := New(source, testLogger())

	_, err := svc.MemberList(context.Background(), 42)
	assert.ErrorIs(t, err, discord.ErrUpstream)
}

func TestProjectMember(t *testing.T) {
	joined := time.Date(2020, 5, 4, 13, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		member *discordgo.Member
		want   Member
	}{
		{
			name:   "legacy discriminator kept",
			member: &discordgo.Member{User: &discordgo.User{ID: "42", Username: "oldtimer", Discriminator: "1234"}},
			want:   Member{ID: 42, Username: "oldtimer", Discriminator: "1234", DisplayName: "oldtimer"},
		},
		{
			name:   "missing discriminator becomes placeholder",
			member: &discordgo.Member{User: &discordgo.User{ID: "42", Username: "alice"}},
			want:   Member{ID: 42, Username: "alice", Discriminator: "0000", DisplayName: "alice"},
		},
		{
			name:   "migrated discriminator zero survives",
			member: &discordgo.Member{User: &discordgo.User{ID: "42", Username: "alice", Discriminator: "0"}},
			want:   Member{ID: 42, Username: "alice", Discriminator: "0", DisplayName: "alice"},
		},
		{
			name: "nickname wins display name",
			member: &discordgo.Member{
				Nick: "Cool Alice",
				User: &discordgo.User{ID: "42", Username: "alice", Discriminator: "0", GlobalName: "Alice G"},
			},
			want: Member{ID: 42, Username: "alice", Discriminator: "0", DisplayName: "Cool Alice"},
		},
		{
			name: "global name beats username",
			member: &discordgo.Member{
				User: &discordgo.User{ID: "42", Username: "alice", Discriminator: "0", GlobalName: "Alice G"},
			},
			want: Member{ID: 42, Username: "alice", Discriminator: "0", DisplayName: "Alice G"},
		},
		{
			name:   "bot flag carries over",
			member: &discordgo.Member{User: &discordgo.User{ID: "42", Username: "helper", Discriminator: "0", Bot: true}},
			want:   Member{ID: 42, Username: "helper", Discriminator: "0", DisplayName: "helper", IsBot: true},
		},
		{
			name: "join date formatted as RFC 3339",
			member: &discordgo.Member{
				JoinedAt: joined,
				User:     &discordgo.User{ID: "42", Username: "alice", Discriminator: "0"},
			},
			want: Member{ID: 42, Username: "alice", Discriminator: "0", DisplayName: "alice", JoinedAt: strPtr("2020-05-04T13:30:00Z")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, projectMember(tt.member))
		})
	}
}

func TestProjectMember_AvatarURL(t *testing.T) {
	withAvatar := projectMember(&discordgo.Member{
		User: &discordgo.User{ID: "42", Username: "alice", Discriminator: "0", Avatar: "abc123"},
	})
	require.NotNil(t, withAvatar.AvatarURL)
	assert.Contains(t, *withAvatar.AvatarURL, "abc123")
	assert.Contains(t, *withAvatar.AvatarURL, "42")

	noAvatar := projectMember(&discordgo.Member{
		User: &discordgo.User{ID: "42", Username: "alice", Discriminator: "0"},
	})
	assert.Nil(t, noAvatar.AvatarURL, "no hash means null avatar URL")
}
