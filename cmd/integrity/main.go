// Package main provides the integrity CLI for auditing and repairing
// ownership references.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/cortexahq/cortexa/internal/db"
	"github.com/cortexahq/cortexa/internal/integrity"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cortexa-integrity",
		Short: "Audit and repair Cortexa ownership references",
		Long: `cortexa-integrity scans organizations and projects for ownership
references that no longer resolve to a user, and can reassign them to a
designated fallback user.

The verify command is read-only. The repair command mutates data and is
idempotent: running it twice performs no further changes.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("db", "", "Database URL (or set DATABASE_URL env var)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newRepairCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cortexa-integrity %s\n", Version)
		},
	}
}

func newVerifyCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Scan for dangling ownership references (read-only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, database, logger, err := connect(cmd)
			if err != nil {
				return err
			}
			defer database.Close()

			report, err := integrity.NewVerifier(database, logger).Run(ctx)
			if err != nil {
				return fmt.Errorf("verify: %w", err)
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			fmt.Printf("Scanned %d organization(s), %d project(s)\n",
				report.OrganizationsScanned, report.ProjectsScanned)
			if report.Clean() {
				fmt.Println("No integrity errors found")
				return nil
			}
			for _, e := range report.Errors {
				if e.ScopeType == "organization" {
					fmt.Printf("  %s %q (%s): %s -> %s (members resolvable %d/%d)\n",
						e.ScopeType, e.ScopeName, e.ScopeID, e.Field, e.DanglingID,
						e.ResolvableMembers, e.TotalMembers)
				} else {
					fmt.Printf("  %s %q (%s): %s -> %s\n",
						e.ScopeType, e.ScopeName, e.ScopeID, e.Field, e.DanglingID)
				}
			}
			return fmt.Errorf("%d integrity error(s) found", len(report.Errors))
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the report as JSON")
	return cmd
}

func newRepairCmd() *cobra.Command {
	var fallbackEmail string

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Reassign dangling ownership references to a fallback user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if fallbackEmail == "" {
				fallbackEmail = os.Getenv("FALLBACK_USER_EMAIL")
			}
			if fallbackEmail == "" {
				return fmt.Errorf("fallback user required: use --fallback-email or set FALLBACK_USER_EMAIL")
			}

			ctx, database, logger, err := connect(cmd)
			if err != nil {
				return err
			}
			defer database.Close()

			fallback, err := database.GetUserByEmail(ctx, fallbackEmail)
			if err != nil {
				return fmt.Errorf("resolve fallback user %q: %w", fallbackEmail, err)
			}

			result, err := integrity.NewRepairer(database, logger).Run(ctx, fallback.ID)
			if err != nil {
				return fmt.Errorf("repair: %w", err)
			}

			fmt.Printf("Repaired %d organization(s), %d project(s)\n",
				result.OrganizationsRepaired, result.ProjectsRepaired)
			return nil
		},
	}

	cmd.Flags().StringVar(&fallbackEmail, "fallback-email", "", "Email of the user to receive reassigned ownership")
	return cmd
}

func connect(cmd *cobra.Command) (context.Context, *db.DB, zerolog.Logger, error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()

	url, _ := cmd.Flags().GetString("db")
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		return nil, nil, logger, fmt.Errorf("database URL required: use --db or set DATABASE_URL")
	}

	ctx := cmd.Context()
	cfg := db.DefaultConfig(url)
	cfg.MaxConns = 5
	cfg.MinConns = 1

	database, err := db.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, logger, fmt.Errorf("connect to database: %w", err)
	}
	return ctx, database, logger, nil
}
