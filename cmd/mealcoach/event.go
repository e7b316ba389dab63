package mealcoach

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alecrj/nutrition/internal/service"
)

var (
	eventCalories   int
	eventRestaurant string
	eventCuisine    string
	eventMeal       string
)

var eventCmd = &cobra.Command{
	Use:   "event <ate_off_plan|restaurant|not_hungry|other> [description]",
	Short: "Get advice when life happens",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := service.LifeEventKind(strings.ReplaceAll(strings.ToLower(args[0]), "-", "_"))
		ev := service.LifeEvent{
			Kind:        kind,
			Description: strings.TrimSpace(strings.Join(args[1:], " ")),
			Calories:    eventCalories,
			Restaurant:  eventRestaurant,
			Cuisine:     eventCuisine,
			MealType:    eventMeal,
		}
		return withSession(cmd, func(s *session) error {
			p, err := s.requireProfile()
			if err != nil {
				return err
			}
			coach, err := s.coach()
			if err != nil {
				return err
			}
			reply, err := coach.LifeEvent(cmd.Context(), p, ev)
			if err != nil {
				return err
			}
			fmt.Fprintln(s.out(), reply)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(eventCmd)
	eventCmd.Flags().IntVar(&eventCalories, "calories", 0, "Estimated calories eaten (ate_off_plan)")
	eventCmd.Flags().StringVar(&eventRestaurant, "restaurant", "", "Restaurant name (restaurant)")
	eventCmd.Flags().StringVar(&eventCuisine, "cuisine", "", "Cuisine type (restaurant)")
	eventCmd.Flags().StringVar(&eventMeal, "meal", "", "Meal you are skipping (not_hungry)")
}
