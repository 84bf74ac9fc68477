package common

import (
	"errors"
	"testing"

	"dicehall/config"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMembers struct {
	member *discordgo.Member
	user   *discordgo.User
}

func (f fakeMembers) GuildMember(_, _ string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	if f.member == nil {
		return nil, errors.New("unknown member")
	}
	return f.member, nil
}

func (f fakeMembers) User(_ string, _ ...discordgo.RequestOption) (*discordgo.User, error) {
	if f.user == nil {
		return nil, errors.New("unknown user")
	}
	return f.user, nil
}

func TestGetDisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fetcher  fakeMembers
		expected string
	}{
		{
			name:     "nickname wins",
			fetcher:  fakeMembers{member: &discordgo.Member{Nick: "Lan", User: &discordgo.User{Username: "lan99"}}},
			expected: "Lan",
		},
		{
			name:     "global name when no nickname",
			fetcher:  fakeMembers{member: &discordgo.Member{User: &discordgo.User{Username: "lan99", GlobalName: "Lan N"}}},
			expected: "Lan N",
		},
		{
			name:     "falls back to user lookup",
			fetcher:  fakeMembers{user: &discordgo.User{Username: "lan99"}},
			expected: "lan99",
		},
		{
			name:     "unknown",
			fetcher:  fakeMembers{},
			expected: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, GetDisplayName(tt.fetcher, "1", "2"))
		})
	}
}

func guildInteraction(userID string, permissions int64) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "4242",
		ChannelID: "77",
		Member: &discordgo.Member{
			User:        &discordgo.User{ID: userID, Username: "lan99"},
			Nick:        "Lan",
			Permissions: permissions,
		},
	}}
}

func TestActorFrom(t *testing.T) {
	t.Parallel()

	actor, err := ActorFrom(guildInteraction("1001", 0))
	require.NoError(t, err)
	assert.Equal(t, Actor{GuildID: 4242, ChannelID: 77, UserID: 1001, Name: "Lan", Username: "lan99"}, actor)

	dm := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{User: &discordgo.User{ID: "1001"}}}
	_, err = ActorFrom(dm)
	var botErr *BotError
	require.ErrorAs(t, err, &botErr)
	assert.True(t, botErr.IsUserError())
}

func TestPermissions(t *testing.T) {
	testConfig := config.NewTestConfig()
	testConfig.DevUserID = "9999"
	config.SetTestConfig(testConfig)
	t.Cleanup(config.ResetConfig)

	tests := []struct {
		name        string
		interaction *discordgo.InteractionCreate
		admin       bool
		manage      bool
	}{
		{"regular member", guildInteraction("1001", 0), false, false},
		{"channel manager", guildInteraction("1001", discordgo.PermissionManageChannels), false, true},
		{"administrator", guildInteraction("1001", discordgo.PermissionAdministrator), true, true},
		{"developer", guildInteraction("9999", 0), true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.admin, IsUserAdmin(tt.interaction))
			assert.Equal(t, tt.manage, CanManageChannels(tt.interaction))
		})
	}
}

func TestMentions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "<@1001>", GetUserMention(1001))
	assert.Equal(t, "<#77>", GetChannelMention(77))
}
