/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/bootstrap"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/config"
	"github.com/spf13/cobra"
)

var auditStatsCmd = &cobra.Command{
	Use:   "audit-stats",
	Short: "Print audit log statistics and retention eligibility",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "config error:", err)
			os.Exit(1)
		}
		if err := bootstrap.PrintAuditStats(cmd.Context(), cfg, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "stats error:", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(auditStatsCmd)
}
