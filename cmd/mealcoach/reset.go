package mealcoach

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete your profile, plan, progress, chat and meal check-offs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			return fmt.Errorf("reset deletes all coach data; re-run with --yes to confirm")
		}
		return withSession(cmd, func(s *session) error {
			if err := s.state.ClearAll(); err != nil {
				return err
			}
			if err := s.kv.Remove(pendingSwapKey); err != nil {
				return err
			}
			fmt.Fprintln(s.out(), "All coach data cleared")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Confirm deletion")
}
