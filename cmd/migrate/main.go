package main

import (
	"fmt"
	"os"

	"notefiber-editor-be/internal/config"
	"notefiber-editor-be/pkg/database"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	dsnFlag      string
	seedPassword string
	confirmDrop  bool
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the editor note schema.",
	Long: `Schema and fixture tool for the editor note store.

  migrate up            create or update tables, triggers and indexes
  migrate seed          insert the demo vault and notes (idempotent)
  migrate drop --yes    drop editor tables`,
	SilenceUsage: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply the schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := connect()
		if err != nil {
			return err
		}
		if err := migrateUp(db); err != nil {
			return err
		}
		color.Green("schema is up to date")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo notes and a locked vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := connect()
		if err != nil {
			return err
		}
		seeded, err := seedDemo(db, seedPassword)
		if err != nil {
			return err
		}
		for _, n := range seeded {
			fmt.Printf("%s  %s\n", color.CyanString(n.Id.String()), n.Title)
		}
		color.Green("seeded %d notes", len(seeded))
		return nil
	},
}

var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop editor tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmDrop {
			return fmt.Errorf("refusing to drop tables without --yes")
		}
		db, err := connect()
		if err != nil {
			return err
		}
		if err := dropAll(db); err != nil {
			return err
		}
		color.Yellow("editor tables dropped")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dsnFlag, "dsn", "", "postgres DSN (default $DB_CONNECTION_STRING)")
	seedCmd.Flags().StringVar(&seedPassword, "vault-password", envOr("SEED_VAULT_PASSWORD", "demo-vault"), "password for the demo vault")
	dropCmd.Flags().BoolVar(&confirmDrop, "yes", false, "confirm dropping tables")
	rootCmd.AddCommand(upCmd, seedCmd, dropCmd)
}

func connect() (*gorm.DB, error) {
	cfg := config.Load()
	dsn := dsnFlag
	if dsn == "" {
		dsn = cfg.Database.Connection
	}
	opts := database.DefaultOptions()
	opts.MaxOpenConns = 2
	db, err := database.Open(dsn, opts)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return db, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}
