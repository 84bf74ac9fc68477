package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"dicehall/cmd"
	"dicehall/database"
	"dicehall/domain/services"
	"dicehall/infrastructure"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	envFile         string
	startingBalance int64
)

var rootCmd = &cobra.Command{
	Use:   "dicehall",
	Short: "Discord dice hall bot",
	Long:  `Dice hall runs Tai Xiu and Bau Cua games, a coin economy, rings and marriages inside Discord guilds.`,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		if envFile == "" {
			return nil
		}
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
		return nil
	},
	RunE: runBot,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bot until interrupted",
	RunE:  runBot,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(c *cobra.Command, args []string) error {
		return database.MigrateUp(database.MigrationURLFromEnv())
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back migrations, one step by default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		steps := 1
		if len(args) == 1 {
			parsed, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid steps %q: %w", args[0], err)
			}
			steps = parsed
		}
		return database.MigrateDown(database.MigrationURLFromEnv(), steps)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the applied schema version",
	RunE: func(c *cobra.Command, args []string) error {
		status, err := database.MigrateStatus(database.MigrationURLFromEnv())
		if err != nil {
			return err
		}
		if !status.Applied {
			fmt.Fprintln(c.OutOrStdout(), "No migrations applied")
			return nil
		}
		fmt.Fprintf(c.OutOrStdout(), "Version: %d (dirty: %t)\n", status.Version, status.Dirty)
		return nil
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Inspect and repair player balances",
}

var balanceSetCmd = &cobra.Command{
	Use:   "set <guild-id> <user-id> <amount>",
	Short: "Set a player's balance, recording an admin adjustment",
	Args:  cobra.ExactArgs(3),
	RunE:  setBalance,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading configuration, ignored when missing")
	balanceSetCmd.Flags().Int64Var(&startingBalance, "starting-balance", 10000, "balance given to the player if they have no account yet")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	balanceCmd.AddCommand(balanceSetCmd)
	rootCmd.AddCommand(runCmd, migrateCmd, balanceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runBot(c *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	return cmd.Run(ctx)
}

func setBalance(c *cobra.Command, args []string) error {
	var ids [3]int64
	for n, arg := range args {
		parsed, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid argument %q: %w", arg, err)
		}
		ids[n] = parsed
	}
	guildID, userID, amount := ids[0], ids[1], ids[2]
	if amount < 0 {
		return fmt.Errorf("amount cannot be negative")
	}

	ctx := c.Context()
	db, err := database.NewConnection(ctx, database.MigrationURLFromEnv())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	uowFactory := infrastructure.NewUnitOfWorkFactoryWrapper(db, infrastructure.NewNoopEventPublisher())
	uow := uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	economy := services.NewEconomyService(uow.UserRepository(), uow.BalanceHistoryRepository(), uow.EventBus(), startingBalance)
	adjustment, err := economy.SetMoney(ctx, userID, "", amount)
	if err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	fmt.Fprintf(c.OutOrStdout(), "User %d in guild %d: %d -> %d\n", userID, guildID, adjustment.BalanceBefore, adjustment.BalanceAfter)
	return nil
}
