// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskloom Contributors

package main

import (
	"strconv"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/taskloom/taskloom/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down|steps N|version|force N]",
		Short: "Manage database schema migrations",
		Long: `Manage database schema migrations against the PostgreSQL database.

With no arguments, applies all pending migrations (same as "up").
"down" rolls everything back, "steps N" moves N migrations (negative
for down), "version" prints the current version, and "force N" marks
version N without running migrations (dirty-state recovery).`,
		Args: cobra.MaximumNArgs(2),
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configFile, nil)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database URL is required (database.url or DATABASE_URL)")
	}

	migrator, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			cmd.PrintErrln("warning: failed to close migrator:", closeErr)
		}
	}()

	verb := "up"
	if len(args) > 0 {
		verb = args[0]
	}

	switch verb {
	case "up":
		cmd.Println("Running migrations...")
		if err := migrator.Up(); err != nil {
			return err
		}
		cmd.Println("Migrations completed successfully")

	case "down":
		cmd.Println("Rolling back all migrations...")
		if err := migrator.Down(); err != nil {
			return err
		}
		cmd.Println("Rollback completed successfully")

	case "steps":
		n, err := migrateArgInt(args, "steps")
		if err != nil {
			return err
		}
		cmd.Printf("Applying %d migration step(s)...\n", n)
		if err := migrator.Steps(n); err != nil {
			return err
		}
		cmd.Println("Steps completed successfully")

	case "version":
		version, dirty, err := migrator.Version()
		if err != nil {
			return err
		}
		if dirty {
			cmd.Printf("Version: %d (dirty)\n", version)
		} else {
			cmd.Printf("Version: %d\n", version)
		}

	case "force":
		n, err := migrateArgInt(args, "force")
		if err != nil {
			return err
		}
		if err := migrator.Force(n); err != nil {
			return err
		}
		cmd.Printf("Forced version to %d\n", n)

	default:
		return oops.Code("MIGRATION_INVALID_COMMAND").
			With("command", verb).
			Errorf("unknown migrate command %q", verb)
	}

	return nil
}

func migrateArgInt(args []string, verb string) (int, error) {
	if len(args) < 2 {
		return 0, oops.Code("MIGRATION_INVALID_COMMAND").
			Errorf("%q requires a numeric argument", verb)
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, oops.Code("MIGRATION_INVALID_COMMAND").
			With("argument", args[1]).
			Wrapf(err, "%q requires a numeric argument", verb)
	}
	return n, nil
}
