package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/intrntsrfr/slxshybot/ai"
	"github.com/intrntsrfr/slxshybot/bot"
	"github.com/intrntsrfr/slxshybot/config"
	"github.com/intrntsrfr/slxshybot/database"
	"github.com/intrntsrfr/slxshybot/kvstore"
	"github.com/intrntsrfr/slxshybot/logging"
	"github.com/intrntsrfr/slxshybot/owo"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to discord and run the bot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load(configFile, envFile)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		log := logging.New("slxshybot", cfg.LogLevel)
		defer func() { _ = log.Sync() }()

		db, err := openDatabase(cfg, log)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return err
		}
		store, err := kvstore.NewStore(filepath.Join(cfg.DataDir, "kv"), log.Named("kvstore"))
		if err != nil {
			return err
		}
		defer store.Close()

		var relay *ai.Relay
		if cfg.AI.Token != "" {
			relay = ai.NewRelay(&ai.Config{
				Token:          cfg.AI.Token,
				BaseURL:        cfg.AI.BaseURL,
				Model:          cfg.AI.Model,
				RequestsPerMin: cfg.AI.RequestsPerMin,
				BlockedPhrases: cfg.AI.BlockedPhrases,
				Log:            log.Named("ai"),
			})
		} else {
			log.Info("no ai token set, !ask is disabled")
		}

		var paste *owo.Client
		if cfg.Paste.Token != "" {
			paste = owo.NewClient(cfg.Paste.Token, cfg.Paste.Endpoint, cfg.Paste.ResultBase)
		}

		b, err := bot.NewBot(&bot.Config{
			Settings: cfg,
			Store:    store,
			Log:      log.Named("bot"),
			DB:       db,
			Owo:      paste,
			AI:       relay,
		})
		if err != nil {
			return err
		}
		defer b.Close()

		log.Info("starting", zap.String("guildID", cfg.GuildID), zap.String("server", cfg.Server.Addr()))
		err = b.Run(ctx)
		log.Info("shutting down")
		return err
	},
}

func openDatabase(cfg *config.Config, log *zap.Logger) (*database.SqlDB, error) {
	return database.NewDatabase(&database.Config{
		Log:     log.Named("database"),
		Driver:  cfg.Database.Driver,
		ConnStr: cfg.Database.ConnectionString,
	})
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database tables and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configFile, envFile)
		if err != nil {
			return err
		}

		log := logging.New("slxshybot", cfg.LogLevel)
		db, err := openDatabase(cfg, log)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Migrate(cmd.Context()); err != nil {
			return err
		}
		log.Info("database is up to date", zap.String("driver", cfg.Database.Driver))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd, migrateCmd)
}
