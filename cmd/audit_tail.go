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

var auditTailCmd = &cobra.Command{
	Use:   "audit-tail",
	Short: "Follow audit entries published on JetStream",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "config error:", err)
			os.Exit(1)
		}
		if err := bootstrap.TailAudit(ctx, cfg, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "audit-tail error:", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(auditTailCmd)
}
