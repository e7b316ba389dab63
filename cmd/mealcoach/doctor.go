package mealcoach

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alecrj/nutrition/internal/service"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check stored coach data for corruption",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			var integrity string
			if err := s.db.QueryRow(`PRAGMA integrity_check`).Scan(&integrity); err != nil {
				return fmt.Errorf("integrity check: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "SQLite integrity: %s\n", integrity)

			report, err := service.RunDoctor(s.state, doctorFix)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Checked keys: %d\n", report.Checked)
			for _, is := range report.Issues {
				status := ""
				if is.Fixed {
					status = " (fixed)"
				}
				fmt.Fprintf(out, "- %s: %s%s\n", is.Key, is.Problem, status)
			}
			if integrity != "ok" || report.Unfixed() > 0 {
				return fmt.Errorf("doctor found integrity issues")
			}
			fmt.Fprintln(out, "No problems found.")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Remove unreadable values and drop invalid items")
}
