/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/bootstrap"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/config"
	"github.com/spf13/cobra"
)

var migrationCmd = &cobra.Command{
	Use:   "migration [action] [version]",
	Short: "Apply the helpdesk schema migrations",
	Long: `Runs the embedded goose migrations (companies, users, tickets, replies,
sessions, audit_logs and notifications) against the primary database.

Actions: ` + strings.Join(bootstrap.MigrationActions(), ", ") + `
up-to and down-to take the target version as second argument.`,
	Args: cobra.RangeArgs(0, 2),
	Run: func(cmd *cobra.Command, args []string) {
		req := bootstrap.MigrationRequest{Action: "up"}
		if len(args) > 0 {
			req.Action = args[0]
		}
		if bootstrap.NeedsVersion(req.Action) {
			if len(args) < 2 {
				fmt.Fprintln(os.Stderr, "version is required for", req.Action)
				os.Exit(1)
			}
			v, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				fmt.Fprintln(os.Stderr, "invalid version:", err)
				os.Exit(1)
			}
			req.Version = v
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "config error:", err)
			os.Exit(1)
		}
		if err := bootstrap.Migrate(cmd.Context(), cfg, req); err != nil {
			fmt.Fprintln(os.Stderr, "migration error:", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(migrationCmd)
}
