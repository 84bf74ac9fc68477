package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

var (
	manageChannels int64 = discordgo.PermissionManageChannels
	administrator  int64 = discordgo.PermissionAdministrator
	minAmount            = 1.0
	minRingIndex         = 1.0
)

func userOption(description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		Required:    required,
	}
}

func amountOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "amount",
		Description: description,
		Required:    true,
	}
}

func ringNameOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "name",
		Description: "Ring name",
		Required:    true,
		MaxLength:   50,
	}
}

func subcommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

// commandDefinitions lists every slash command. /topup is left out when no bank account is configured.
func commandDefinitions(topupEnabled bool) []*discordgo.ApplicationCommand {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:                     "session",
			Description:              "Run a recurring dice game in this channel",
			DefaultMemberPermissions: &manageChannels,
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("taixiu", "Start a Tai Xiu session in this channel"),
				subcommand("baucua", "Start a Bau Cua session in this channel"),
				subcommand("stop", "Stop the session in this channel"),
				subcommand("status", "Show the current round"),
			},
		},
		{
			Name:        "taixiu",
			Description: "Play a private game of Tai Xiu",
		},
		{
			Name:        "baucua",
			Description: "Play a private game of Bau Cua",
		},
		{
			Name:        "balance",
			Description: "Check your balance",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("Check someone else's balance", false),
			},
		},
		{
			Name:        "leaderboard",
			Description: "Show the richest players in this server",
		},
		{
			Name:        "give",
			Description: "Send coins to another player",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("Who receives the coins", true),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Amount to send",
					Required:    true,
					MinValue:    &minAmount,
				},
			},
		},
		{
			Name:        "ring",
			Description: "Browse and buy rings",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("list", "Show the ring shop"),
				subcommand("buy", "Buy a ring", ringNameOption()),
				subcommand("add", "Stock a new ring (admin)",
					ringNameOption(),
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "price",
						Description: "Price in coins",
						Required:    true,
						MinValue:    &minAmount,
					},
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "emoji",
						Description: "Emoji shown next to the ring",
					},
				),
				subcommand("remove", "Remove a ring from the shop (admin)", ringNameOption()),
			},
		},
		{
			Name:        "inventory",
			Description: "Show the rings you own",
		},
		{
			Name:        "marry",
			Description: "Propose, answer and tend your marriage",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("propose", "Propose with a ring from your inventory",
					userOption("Who to propose to", true),
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "ring",
						Description: "Ring number from /inventory",
						MinValue:    &minRingIndex,
					},
				),
				subcommand("accept", "Accept the proposal addressed to you"),
				subcommand("deny", "Turn down the proposal addressed to you"),
				subcommand("divorce", "End your marriage"),
				subcommand("status", "Show your marriage"),
				subcommand("love", "Show your partner some love"),
				subcommand("hate", "Pick a fight with your partner"),
			},
		},
		{
			Name:                     "admin",
			Description:              "Balance and revenue tools",
			DefaultMemberPermissions: &administrator,
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("addmoney", "Add to a balance, negative amounts subtract",
					userOption("Member to adjust", true), amountOption("Amount to add")),
				subcommand("setmoney", "Set a balance",
					userOption("Member to adjust", true), amountOption("New balance")),
				subcommand("resetmoney", "Reset a balance to the starting amount",
					userOption("Member to reset", true)),
				subcommand("resetall", "Reset every balance in this server (developer)"),
				subcommand("revenue", "Show topup revenue"),
				subcommand("resetrevenue", "Clear the revenue report"),
			},
		},
	}

	if topupEnabled {
		commands = append(commands, &discordgo.ApplicationCommand{
			Name:        "topup",
			Description: "Buy coins by bank transfer",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("request", "Get a transfer code and QR"),
				subcommand("confirm", "Check whether your transfer arrived", &discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "code",
					Description: "Your topup code",
					Required:    true,
				}),
				subcommand("cancel", "Cancel an open topup", &discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "code",
					Description: "Your topup code",
					Required:    true,
				}),
			},
		})
	}
	return commands
}

// registerCommands replaces the application's slash commands in one call
func (b *Bot) registerCommands() error {
	commands := commandDefinitions(b.config.BankAccount.Enabled())

	registered, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.config.GuildID, commands)
	if err != nil {
		return fmt.Errorf("cannot register commands: %w", err)
	}

	log.WithFields(log.Fields{
		"count":   len(registered),
		"guildID": b.config.GuildID,
	}).Info("Slash commands registered")
	return nil
}
