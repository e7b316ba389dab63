package mealcoach

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	dbPath  string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "mealcoach",
	Short: "mealcoach plans your week of meals and tracks your progress from the terminal",
	Long:  "mealcoach is a local-first AI nutrition coach: macro targets, 7-day meal plans, swaps, grocery lists, meal check-offs and weigh-ins.",
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file (default ./.env if present)")
}
