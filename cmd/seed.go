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

var seedOpts bootstrap.SeedOptions

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample companies, users and tickets",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "config error:", err)
			os.Exit(1)
		}
		if err := bootstrap.Seed(cmd.Context(), cfg, seedOpts); err != nil {
			fmt.Fprintln(os.Stderr, "seed error:", err)
			os.Exit(1)
		}
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedOpts.Users, "users", 10, "number of users to seed")
	seedCmd.Flags().IntVar(&seedOpts.Tickets, "tickets", 20, "number of tickets to seed")
	seedCmd.Flags().IntVar(&seedOpts.BatchSize, "batch-size", 100, "batch size for inserts")
	rootCmd.AddCommand(seedCmd)
}
