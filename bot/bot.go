package bot

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"dicehall/application"
	"dicehall/bot/common"
	"dicehall/bot/features/admin"
	"dicehall/bot/features/balance"
	"dicehall/bot/features/marriage"
	"dicehall/bot/features/sessions"
	"dicehall/bot/features/shop"
	"dicehall/bot/features/solo"
	"dicehall/bot/features/topup"
	"dicehall/bot/features/transfer"
	"dicehall/bot/render"
	"dicehall/domain/interfaces"
	"dicehall/domain/services"
	"dicehall/domain/session"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token string
	// GuildID registers commands in one guild only, which applies instantly. Empty registers globally.
	GuildID         string
	StartingBalance int64
	BankAccount     topup.BankAccount
}

// Dependencies are the collaborators built by the composition root
type Dependencies struct {
	UOWFactory application.UnitOfWorkFactory
	// Sessions configures the channel session engine. Presenter and Identity are filled in by the bot.
	Sessions  session.Dependencies
	SoloGames *services.SoloService
	Proposals interfaces.ProposalStore
	Cooldowns interfaces.CooldownStore
	Roller    dice.Roller
}

// Bot manages the Discord bot and all feature modules
type Bot struct {
	// Core components
	config   Config
	session  *discordgo.Session
	registry *session.Registry
	jackpots *session.JackpotPool
	identity *IdentityResolver
	ready    atomic.Bool

	// Feature modules
	sessions *sessions.Feature
	solo     *solo.Feature
	balance  *balance.Feature
	transfer *transfer.Feature
	topup    *topup.Feature
	shop     *shop.Feature
	marriage *marriage.Feature
	admin    *admin.Feature

	paidNotifier *topup.PaidNotifier
}

// New creates a new bot instance with all features. The gateway is opened by Open.
func New(config Config, deps Dependencies) (*Bot, error) {
	// Create Discord session
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	// Create shared components
	identity := NewIdentityResolver(dg)
	renderer, err := render.NewRenderer(render.DefaultStyle())
	if err != nil {
		return nil, fmt.Errorf("error loading board fonts: %w", err)
	}

	sessionDeps := deps.Sessions
	sessionDeps.Presenter = sessions.NewPresenter(dg, renderer, sessionDeps.Timing)
	sessionDeps.Identity = identity

	bot := &Bot{
		config:   config,
		session:  dg,
		registry: session.NewRegistry(sessionDeps),
		jackpots: sessionDeps.Jackpots,
		identity: identity,
	}

	// Create feature modules
	bot.sessions = sessions.NewFeature(bot.registry)
	bot.solo = solo.New(deps.SoloGames)
	bot.balance = balance.New(deps.UOWFactory, config.StartingBalance)
	bot.transfer = transfer.New(deps.UOWFactory, config.StartingBalance)
	bot.topup = topup.New(deps.UOWFactory, config.BankAccount, deps.Roller)
	bot.shop = shop.New(deps.UOWFactory, config.StartingBalance)
	bot.marriage = marriage.New(deps.UOWFactory, deps.Proposals, deps.Cooldowns, deps.Roller)
	bot.admin = admin.New(deps.UOWFactory, config.StartingBalance)
	bot.paidNotifier = topup.NewPaidNotifier(dg)

	// Register handlers
	dg.AddHandler(bot.handleReady)
	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleInteractions)
	dg.AddHandler(bot.handleGuildCreate)
	dg.AddHandler(bot.handleMemberUpdate)

	return bot, nil
}

// Open connects to the gateway and registers slash commands
func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	if err := b.registerCommands(); err != nil {
		b.session.Close()
		return fmt.Errorf("error registering commands: %w", err)
	}
	return nil
}

// Close stops every session and disconnects
func (b *Bot) Close(ctx context.Context) error {
	b.ready.Store(false)
	b.registry.Shutdown(ctx)
	return b.session.Close()
}

// Registry returns the channel session registry
func (b *Bot) Registry() *session.Registry {
	return b.registry
}

// PaidNotifier returns the topup_paid handler that announces credited topups
func (b *Bot) PaidNotifier() *topup.PaidNotifier {
	return b.paidNotifier
}

// Ready reports whether the gateway connection is up
func (b *Bot) Ready() bool {
	return b.ready.Load()
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	b.ready.Store(true)
	log.WithFields(log.Fields{
		"user":   r.User.Username,
		"guilds": len(r.Guilds),
	}).Info("Connected to Discord")
}

// handleCommands routes slash commands to appropriate handlers
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "session":
		b.sessions.HandleCommand(s, i)
	case "taixiu", "baucua":
		b.solo.HandleCommand(s, i)
	case "balance", "leaderboard":
		b.balance.HandleCommand(s, i)
	case "give":
		b.transfer.HandleCommand(s, i)
	case "topup":
		b.topup.HandleCommand(s, i)
	case "ring", "inventory":
		b.shop.HandleCommand(s, i)
	case "marry":
		b.marriage.HandleCommand(s, i)
	case "admin":
		b.admin.HandleCommand(s, i)
	}
}

// handleInteractions routes component interactions by custom ID prefix
func (b *Bot) handleInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	customID := i.MessageComponentData().CustomID
	switch {
	case common.HasPrefix(customID, common.PrefixSession):
		b.sessions.HandleInteraction(s, i)

	case common.HasPrefix(customID, common.PrefixSolo):
		b.solo.HandleInteraction(s, i)

	case common.HasPrefix(customID, common.PrefixTopup):
		b.topup.HandleInteraction(s, i)

	case common.HasPrefix(customID, common.PrefixMarriage):
		b.marriage.HandleInteraction(s, i)

	default:
		log.WithField("customID", customID).Debug("Ignoring component without a handler")
	}
}

// handleGuildCreate logs guilds as they become available
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.WithFields(log.Fields{
		"guildID": g.ID,
		"name":    g.Name,
		"members": g.MemberCount,
	}).Info("Guild available")
}

// handleMemberUpdate drops cached names when a member changes their nickname
func (b *Bot) handleMemberUpdate(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	if m.Member == nil || m.User == nil {
		return
	}
	guildID, err := strconv.ParseInt(m.GuildID, 10, 64)
	if err != nil {
		return
	}
	userID, err := common.ParseUserID(m.User.ID)
	if err != nil {
		return
	}
	b.identity.Forget(guildID, userID)
}

// GuildInfo represents basic guild information
type GuildInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Guilds lists the guilds in the gateway state
func (b *Bot) Guilds() []GuildInfo {
	if b.session.State == nil {
		return nil
	}
	b.session.State.RLock()
	defer b.session.State.RUnlock()

	guilds := make([]GuildInfo, 0, len(b.session.State.Guilds))
	for _, g := range b.session.State.Guilds {
		guilds = append(guilds, GuildInfo{ID: g.ID, Name: g.Name})
	}
	return guilds
}
