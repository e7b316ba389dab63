package mealcoach

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alecrj/nutrition/internal/model"
	"github.com/alecrj/nutrition/internal/service"
)

var (
	progressWeight float64
	progressUnits  string
	progressNotes  string
	progressDate   string
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Log weigh-ins and see your trend",
}

var progressAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a weigh-in",
	RunE: func(cmd *cobra.Command, args []string) error {
		kg, err := service.WeightToKg(progressWeight, service.UnitSystem(progressUnits))
		if err != nil {
			return err
		}
		return withSession(cmd, func(s *session) error {
			entry, err := s.state.AddProgressEntry(model.ProgressEntry{
				Date:   strings.TrimSpace(progressDate),
				Weight: kg,
				Notes:  progressNotes,
			}, timeNow())
			if err := s.persisted(err); err != nil {
				return err
			}
			fmt.Fprintf(s.out(), "Logged %.1f kg on %s (%s)\n", entry.Weight, entry.Date, entry.ID)
			return nil
		})
	},
}

var progressListCmd = &cobra.Command{
	Use:   "list",
	Short: "List weigh-ins, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			entries, err := s.state.ListProgress()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(s.out(), "No weigh-ins yet")
				return nil
			}
			fmt.Fprintln(s.out(), "DATE\tWEIGHT\tNOTES")
			for _, e := range entries {
				w, err := service.WeightFromKg(e.Weight, service.UnitSystem(progressUnits))
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out(), "%s\t%.1f\t%s\n", e.Date, w, e.Notes)
			}
			return nil
		})
	},
}

var progressStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show start, current and change in weight",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			entries, err := s.state.LoadProgress()
			if err != nil {
				return err
			}
			p, ok, err := s.state.LoadProfile()
			if err != nil {
				return err
			}
			var initial float64
			if ok {
				initial = p.Stats.WeightKg
			}
			stats := service.ComputeStats(entries, initial)
			units := service.UnitSystem(progressUnits)
			start, err := service.WeightFromKg(stats.StartWeight, units)
			if err != nil {
				return err
			}
			current, _ := service.WeightFromKg(stats.CurrentWeight, units)
			change := current - start
			fmt.Fprintf(s.out(), "Start: %.1f\n", start)
			fmt.Fprintf(s.out(), "Current: %.1f\n", current)
			fmt.Fprintf(s.out(), "Change: %+.1f (%s)\n", change, stats.Trend)
			fmt.Fprintf(s.out(), "Weigh-ins: %d\n", stats.Entries)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(progressCmd)
	progressCmd.AddCommand(progressAddCmd, progressListCmd, progressStatsCmd)
	progressCmd.PersistentFlags().StringVar(&progressUnits, "units", "metric", "metric (kg) or imperial (lb)")

	progressAddCmd.Flags().Float64Var(&progressWeight, "weight", 0, "Weight in the chosen units")
	progressAddCmd.Flags().StringVar(&progressNotes, "notes", "", "Optional notes")
	progressAddCmd.Flags().StringVar(&progressDate, "date", "", "Date YYYY-MM-DD (default today)")
	_ = progressAddCmd.MarkFlagRequired("weight")
}
