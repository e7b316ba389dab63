package mealcoach

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alecrj/nutrition/internal/service"
)

var mealDate string

var mealCmd = &cobra.Command{
	Use:   "meal",
	Short: "Check off meals you have eaten",
}

var mealCompleteCmd = &cobra.Command{
	Use:   "complete <meal-type>",
	Short: "Mark a meal as eaten",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mealType := strings.ToLower(strings.TrimSpace(args[0]))
		return withSession(cmd, func(s *session) error {
			date := mealDateOrToday()
			if err := s.persisted(s.state.MarkMealComplete(date, mealType)); err != nil {
				return err
			}
			fmt.Fprintf(s.out(), "Marked %s complete for %s\n", mealType, date)
			return nil
		})
	},
}

var mealStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which of the current day's meals are done",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			date := mealDateOrToday()
			done, err := s.state.CompletedMeals(date)
			if err != nil {
				return err
			}
			plan, ok, err := s.state.LoadMealPlan()
			if err != nil {
				return err
			}
			fmt.Fprintf(s.out(), "Date: %s\n", date)
			if !ok {
				fmt.Fprintf(s.out(), "Completed: %s\n", orNone(done))
				return nil
			}
			idx, err := s.resolveDay(nil, plan)
			if err != nil {
				return err
			}
			if idx >= len(plan.Days) {
				fmt.Fprintf(s.out(), "Completed: %s\n", orNone(done))
				return nil
			}
			meals := plan.Days[idx].Meals
			count := 0
			for _, m := range meals {
				status := "pending"
				if contains(done, m.Type) {
					status = "done"
					count++
				}
				fmt.Fprintf(s.out(), "%s\t%s\t%s\n", m.Type, m.Name, status)
			}
			fmt.Fprintf(s.out(), "%d/%d meals complete\n", count, len(meals))
			return nil
		})
	},
}

func mealDateOrToday() string {
	if strings.TrimSpace(mealDate) != "" {
		return strings.TrimSpace(mealDate)
	}
	return service.Today(timeNow())
}

func init() {
	rootCmd.AddCommand(mealCmd)
	mealCmd.AddCommand(mealCompleteCmd, mealStatusCmd)
	mealCmd.PersistentFlags().StringVar(&mealDate, "date", "", "Date YYYY-MM-DD (default today)")
}
