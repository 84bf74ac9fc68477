package cmd

import (
	"context"
	"fmt"
	"time"

	"dicehall/application"
	"dicehall/bot"
	"dicehall/bot/features/topup"
	"dicehall/config"
	"dicehall/database"
	"dicehall/domain/events"
	"dicehall/domain/interfaces"
	"dicehall/domain/services"
	"dicehall/domain/session"
	"dicehall/domain/utils"
	"dicehall/infrastructure"
	"dicehall/infrastructure/observability"
	"dicehall/repository"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	log "github.com/sirupsen/logrus"
)

// localHandlerRegistrar is implemented by both the NATS and in-process publishers
type localHandlerRegistrar interface {
	interfaces.EventPublisher
	RegisterLocalHandler(eventType events.EventType, handler infrastructure.LocalHandler)
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	configureLogging(cfg)
	log.WithField("environment", cfg.Environment).Info("Starting dice hall bot...")

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	log.Info("Running database migrations...")
	if err := database.MigrateUp(cfg.GetDatabaseURL()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize metrics
	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metrics.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Error shutting down metrics provider")
		}
	}()

	// Initialize Redis for proposals and cooldowns
	log.WithField("addr", cfg.RedisAddr).Info("Connecting to Redis...")
	redisClient, err := infrastructure.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info("Redis connection established successfully")

	// Initialize event publishing
	var (
		publisher  localHandlerRegistrar
		natsClient *infrastructure.NATSClient
	)
	if cfg.NATSEnabled() {
		log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer natsClient.Close()

		mapper := infrastructure.NewEventSubjectMapper()
		if err := infrastructure.EnsureDomainEventStream(natsClient, mapper); err != nil {
			return fmt.Errorf("failed to ensure domain event stream: %w", err)
		}
		publisher = infrastructure.NewNATSEventPublisher(natsClient, mapper, metrics)
		log.Info("NATS event publisher initialized successfully")
	} else {
		log.Info("NATS_SERVERS not set, events stay in process")
		publisher = infrastructure.NewLocalEventPublisher()
	}

	uowFactory := infrastructure.NewUnitOfWorkFactoryWrapper(db, publisher)

	// Initialize game engines
	roller := dice.DefaultRoller
	wallet := utils.NewWallet(application.NewLedgerGateway(uowFactory, cfg.StartingBalance))
	jackpots := session.NewJackpotPool(application.NewJackpotGateway(uowFactory))
	soloGames := services.NewSoloService(wallet, roller)

	// Initialize Discord bot
	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(bot.Config{
		Token:           cfg.DiscordToken,
		GuildID:         cfg.DiscordGuildID,
		StartingBalance: cfg.StartingBalance,
		BankAccount:     topup.AccountFromConfig(cfg),
	}, bot.Dependencies{
		UOWFactory: uowFactory,
		Sessions: session.Dependencies{
			Wallet:    wallet,
			Store:     repository.NewGameSessionRepository(db),
			Jackpots:  jackpots,
			Roller:    roller,
			Publisher: publisher,
			Observer:  metrics,
			Timing:    session.DefaultTiming(),
		},
		SoloGames: soloGames,
		Proposals: infrastructure.NewRedisProposalStore(redisClient),
		Cooldowns: infrastructure.NewRedisCooldownStore(redisClient),
		Roller:    roller,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	publisher.RegisterLocalHandler(events.EventTypeTopupPaid, discordBot.PaidNotifier().HandleTopupPaid)
	publisher.RegisterLocalHandler(events.EventTypeTopupPaid, func(ctx context.Context, event events.Event) error {
		metrics.RecordTopupPaid()
		return nil
	})

	if err := discordBot.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	log.Info("Discord bot initialized successfully")

	// Resume channel sessions from before the restart
	restored, err := discordBot.Registry().Restore(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to restore sessions")
	}
	log.WithField("sessions", restored).Info("Session restore finished")

	// Start background workers
	stopScheduler := session.NewScheduler(discordBot.Registry(), time.Second).Start(ctx)
	stopTopupExpiry := application.NewTopupExpiryWorker(uowFactory).Start(ctx)
	stopSoloExpiry := application.NewSoloExpiryWorker(soloGames).Start(ctx)

	if natsClient != nil && cfg.TopupEnabled() {
		if err := infrastructure.EnsurePaymentStream(natsClient, cfg.PaymentsSubject); err != nil {
			return fmt.Errorf("failed to ensure payment stream: %w", err)
		}
		payments := infrastructure.NewPaymentSubscriber(natsClient, cfg.PaymentsSubject, application.NewPaymentHandler(uowFactory).HandleMessage, metrics)
		if err := payments.Start(ctx); err != nil {
			return fmt.Errorf("failed to subscribe to payments: %w", err)
		}
	}

	// Start ops surfaces
	stopOpsAPI, err := bot.StartOpsAPI(ctx, cfg.OpsHTTPPort, discordBot)
	if err != nil {
		return fmt.Errorf("failed to start ops API: %w", err)
	}
	healthServer, err := NewHealthServer(cfg.GRPCHealthPort, discordBot)
	if err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}
	stopHealth := healthServer.Start(ctx)

	// Wait for context cancellation
	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down bot...")
	stopHealth()
	stopOpsAPI()
	stopScheduler()
	stopTopupExpiry()
	stopSoloExpiry()

	// Give sessions time to refund and persist before connections close
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := discordBot.Close(shutdownCtx); err != nil {
		log.WithError(err).Error("Error closing Discord bot")
	}

	log.Info("Shutdown completed")
	return nil
}

func configureLogging(cfg *config.Config) {
	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
