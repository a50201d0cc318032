package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "shopsync",
	Short: "shopsync - shop-floor spreadsheet conversion and import",
	Long: `shopsync converts manufacturing-shop spreadsheet regions into normalized
relational CSV files and loads them into the import API through the
two-phase preview/confirm protocol.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env overrides the inherited environment, matching local dev habits.
		if err := godotenv.Overload(); err == nil {
			slog.Info("loaded .env file")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
