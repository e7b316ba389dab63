package mealcoach

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alecrj/nutrition/internal/model"
	"github.com/alecrj/nutrition/internal/service"
)

// timeNow is replaced in tests.
var timeNow = time.Now

var (
	onboardStats      statsFlags
	onboardName       string
	onboardDiet       []string
	onboardAllergies  []string
	onboardDislikes   []string
	onboardPhilosophy string
	onboardSkill      string
	onboardTime       string
	onboardMeals      int
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Create your profile and generate your first 7-day meal plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.ProfileInput{
			Name:          onboardName,
			Age:           onboardStats.age,
			Sex:           onboardStats.sex,
			Height:        onboardStats.height(),
			Weight:        onboardStats.weight,
			ActivityLevel: onboardStats.activity,
			Goal:          onboardStats.goal,
			Dietary:       onboardDiet,
			Allergies:     onboardAllergies,
			Dislikes:      onboardDislikes,
			Philosophy:    onboardPhilosophy,
			CookingSkill:  onboardSkill,
			CookingTime:   onboardTime,
			MealFrequency: onboardMeals,
		}
		p, err := service.NewProfile(in, timeNow())
		if err != nil {
			return err
		}
		return withSession(cmd, func(s *session) error {
			fmt.Fprintf(s.out(), "Hi %s! Your daily targets: %s\n", p.Name, formatTargets(*p.Macros))
			if len(p.Restrictions.Allergies) > 0 {
				fmt.Fprintf(s.out(), "Allergies (%s) are sent as hard exclusions, but meals are not independently checked. Always read ingredients.\n",
					strings.Join(p.Restrictions.Allergies, ", "))
			}
			return generatePlan(s, p)
		})
	},
}

// generatePlan stores the profile first so a failed generation can be
// retried with `plan generate`.
func generatePlan(s *session, p model.UserProfile) error {
	if err := s.persisted(s.state.SaveProfile(p)); err != nil {
		return err
	}
	coach, err := s.coach()
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out(), "Creating your personalized meal plan...")
	_, plan, report, err := coach.GeneratePlan(s.cmd.Context(), p)
	if err != nil && !errors.Is(err, service.ErrStorageUnavailable) {
		if service.IsRetryable(err) {
			return fmt.Errorf("%w (run `mealcoach plan generate` to try again)", err)
		}
		return err
	}
	if err := s.persisted(err); err != nil {
		return err
	}
	fmt.Fprintf(s.out(), "Week %d plan ready: %d days\n", plan.Week, len(plan.Days))
	if len(report.DegenerateDays) > 0 {
		fmt.Fprintf(s.out(), "Note: %d day(s) came back without meals\n", len(report.DegenerateDays))
	}
	fmt.Fprintln(s.out(), "Run `mealcoach plan day` to see today's meals.")
	return nil
}

func init() {
	rootCmd.AddCommand(onboardCmd)
	addStatsFlags(onboardCmd, &onboardStats)
	onboardCmd.Flags().StringVar(&onboardName, "name", "", "Your name")
	onboardCmd.Flags().StringSliceVar(&onboardDiet, "diet", nil, "Dietary preferences (vegetarian, vegan, pescatarian, halal, kosher, lactose_free, gluten_free)")
	onboardCmd.Flags().StringSliceVar(&onboardAllergies, "allergy", nil, "Allergies, never included (dairy, eggs, fish, shellfish, tree_nuts, peanuts, soy, wheat, ...)")
	onboardCmd.Flags().StringSliceVar(&onboardDislikes, "dislike", nil, "Foods to avoid when possible")
	onboardCmd.Flags().StringVar(&onboardPhilosophy, "philosophy", string(model.PhilosophyFlexible), "flexible|whole_foods|clean_eating|whatever_works")
	onboardCmd.Flags().StringVar(&onboardSkill, "skill", string(model.SkillBeginner), "beginner|intermediate|advanced")
	onboardCmd.Flags().StringVar(&onboardTime, "time", "30min", "Cooking time per meal: 15min|30min|45min+")
	onboardCmd.Flags().IntVar(&onboardMeals, "meals", 3, "Meals per day (2-6)")
	for _, name := range []string{"name", "age", "sex", "weight"} {
		_ = onboardCmd.MarkFlagRequired(name)
	}
}
