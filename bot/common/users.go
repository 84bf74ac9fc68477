package common

import (
	"fmt"
	"strconv"

	"dicehall/config"

	"github.com/bwmarrin/discordgo"
)

// MemberFetcher is the slice of the Discord session used to look up members
type MemberFetcher interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
}

// GetDisplayName returns the server-specific display name for a user
// Falls back to username if nickname is not set or if there's an error
func GetDisplayName(s MemberFetcher, guildID, userID string) string {
	member, err := s.GuildMember(guildID, userID)
	if err == nil && member != nil && member.User != nil {
		return member.DisplayName()
	}

	user, err := s.User(userID)
	if err == nil && user != nil {
		return user.DisplayName()
	}

	return "Unknown"
}

// MemberName returns the display name carried on an interaction member
func MemberName(member *discordgo.Member) string {
	if member == nil || member.User == nil {
		return "Unknown"
	}
	return member.DisplayName()
}

// ParseUserID converts a Discord user ID string to int64
func ParseUserID(userID string) (int64, error) {
	return strconv.ParseInt(userID, 10, 64)
}

// FormatUserID converts an int64 user ID to string
func FormatUserID(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// GetUserMention returns a Discord mention string for a user
func GetUserMention(userID int64) string {
	return "<@" + FormatUserID(userID) + ">"
}

// GetChannelMention returns a Discord mention string for a channel
func GetChannelMention(channelID int64) string {
	return "<#" + strconv.FormatInt(channelID, 10) + ">"
}

// InteractionUser returns the invoking user for guild and DM interactions alike
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// InteractionUserID returns the invoking user's ID or an empty string
func InteractionUserID(i *discordgo.InteractionCreate) string {
	if user := InteractionUser(i); user != nil {
		return user.ID
	}
	return ""
}

// InteractionName names the command or component behind an interaction for logs
func InteractionName(i *discordgo.InteractionCreate) string {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return i.ApplicationCommandData().Name
	case discordgo.InteractionMessageComponent:
		return i.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		return i.ModalSubmitData().CustomID
	default:
		return i.Type.String()
	}
}

// Actor identifies who triggered an interaction and where
type Actor struct {
	GuildID   int64
	ChannelID int64
	UserID    int64
	Name      string
	Username  string
}

// ActorFrom parses the guild, channel and user IDs of a guild interaction
func ActorFrom(i *discordgo.InteractionCreate) (Actor, error) {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return Actor{}, NewUserError("This command can only be used in a server.", "interaction outside a guild")
	}

	guildID, err := strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		return Actor{}, NewSystemError(err, fmt.Sprintf("invalid guild ID %s", i.GuildID))
	}
	channelID, err := strconv.ParseInt(i.ChannelID, 10, 64)
	if err != nil {
		return Actor{}, NewSystemError(err, fmt.Sprintf("invalid channel ID %s", i.ChannelID))
	}
	userID, err := ParseUserID(i.Member.User.ID)
	if err != nil {
		return Actor{}, NewSystemError(err, fmt.Sprintf("invalid user ID %s", i.Member.User.ID))
	}

	return Actor{
		GuildID:   guildID,
		ChannelID: channelID,
		UserID:    userID,
		Name:      MemberName(i.Member),
		Username:  i.Member.User.Username,
	}, nil
}

// IsUserAdmin checks if the invoking member has administrator permissions,
// or is the configured developer
func IsUserAdmin(i *discordgo.InteractionCreate) bool {
	if i.Member == nil || i.Member.User == nil {
		return false
	}
	if IsDeveloper(i) {
		return true
	}
	return i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

// CanManageChannels checks the permission required to start and stop sessions
func CanManageChannels(i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	if IsUserAdmin(i) {
		return true
	}
	return i.Member.Permissions&discordgo.PermissionManageChannels != 0
}

// IsDeveloper checks the invoking user against DEV_USER_ID
func IsDeveloper(i *discordgo.InteractionCreate) bool {
	return config.Get().IsDeveloper(InteractionUserID(i))
}
