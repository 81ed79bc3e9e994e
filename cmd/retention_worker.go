/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/bootstrap"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/config"
	"github.com/spf13/cobra"
)

var retentionOnce bool

var retentionWorkerCmd = &cobra.Command{
	Use:   "retention-worker",
	Short: "Run the retention scheduler standalone",
	Long: `Deletes aged audit entries, sessions, notifications and files on the
configured schedule and writes the annual backup. Use --once to run a single
cycle and print its report.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "config error:", err)
			os.Exit(1)
		}
		if err := bootstrap.RunRetention(ctx, cfg, retentionOnce, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "retention error:", err)
			os.Exit(1)
		}
	},
}

func init() {
	retentionWorkerCmd.Flags().BoolVar(&retentionOnce, "once", false, "run one cleanup cycle and exit")
	rootCmd.AddCommand(retentionWorkerCmd)
}
