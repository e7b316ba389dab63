package mealcoach

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alecrj/nutrition/internal/service"
)

var profileUnits string

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your stored profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show profile, restrictions and daily targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			p, err := s.requireProfile()
			if err != nil {
				return err
			}
			weight, err := service.WeightFromKg(p.Stats.WeightKg, service.UnitSystem(profileUnits))
			if err != nil {
				return err
			}
			unit := "kg"
			if strings.EqualFold(profileUnits, string(service.UnitsImperial)) {
				unit = "lb"
			}
			out := s.out()
			fmt.Fprintf(out, "Name: %s\n", p.Name)
			fmt.Fprintf(out, "Stats: %d y, %s, %.0f cm, %.1f %s, %s\n", p.Stats.Age, p.Stats.Sex, p.Stats.HeightCm, weight, unit, p.Stats.ActivityLevel)
			fmt.Fprintf(out, "Goal: %s\n", p.Goal)
			fmt.Fprintf(out, "Allergies: %s\n", orNone(p.Restrictions.Allergies))
			fmt.Fprintf(out, "Dislikes: %s\n", orNone(p.Restrictions.Dislikes))
			fmt.Fprintf(out, "Diet: %s\n", orNone(p.Restrictions.Dietary))
			fmt.Fprintf(out, "Philosophy: %s\n", p.Philosophy)
			fmt.Fprintf(out, "Cooking: %s, %s, %d meals/day\n", p.Cooking.Skill, p.Cooking.TimeAvailable, p.MealFrequency)
			if p.Macros != nil {
				fmt.Fprintf(out, "Targets: %s\n", formatTargets(*p.Macros))
			}
			return nil
		})
	},
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileShowCmd.Flags().StringVar(&profileUnits, "units", "metric", "Display units: metric|imperial")
}
