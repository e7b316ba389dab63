package mealcoach

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alecrj/nutrition/internal/model"
	"github.com/alecrj/nutrition/internal/service"
)

// statsFlags are the body measurement flags shared by macros and onboard.
type statsFlags struct {
	age      string
	sex      string
	units    string
	heightCm string
	feet     string
	inches   string
	weight   string
	activity string
	goal     string
}

func addStatsFlags(cmd *cobra.Command, f *statsFlags) {
	cmd.Flags().StringVar(&f.age, "age", "", "Age in years")
	cmd.Flags().StringVar(&f.sex, "sex", "", "male|female|other")
	cmd.Flags().StringVar(&f.units, "units", "metric", "metric|imperial")
	cmd.Flags().StringVar(&f.heightCm, "height-cm", "", "Height in cm (metric)")
	cmd.Flags().StringVar(&f.feet, "feet", "", "Height feet (imperial)")
	cmd.Flags().StringVar(&f.inches, "inches", "0", "Height inches (imperial)")
	cmd.Flags().StringVar(&f.weight, "weight", "", "Weight in kg (metric) or lb (imperial)")
	cmd.Flags().StringVar(&f.activity, "activity", "moderately_active", "sedentary|lightly_active|moderately_active|very_active|athlete")
	cmd.Flags().StringVar(&f.goal, "goal", "maintain", "lose_weight|gain_muscle|maintain|feel_better")
}

func (f statsFlags) height() service.HeightInput {
	return service.HeightInput{
		Units:  service.UnitSystem(f.units),
		Cm:     f.heightCm,
		Feet:   f.feet,
		Inches: f.inches,
	}
}

var macrosFlags statsFlags

var macrosCmd = &cobra.Command{
	Use:   "macros",
	Short: "Calculate daily calorie and macro targets (offline)",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.ProfileInput{
			Name:          "macros",
			Age:           macrosFlags.age,
			Sex:           macrosFlags.sex,
			Height:        macrosFlags.height(),
			Weight:        macrosFlags.weight,
			ActivityLevel: macrosFlags.activity,
			Goal:          macrosFlags.goal,
			Philosophy:    string(model.PhilosophyFlexible),
			CookingSkill:  string(model.SkillBeginner),
			CookingTime:   "30min",
			MealFrequency: 3,
		}
		p, err := service.NewProfile(in, timeNow())
		if err != nil {
			return err
		}
		b, err := service.ExplainMacros(p.Stats, p.Goal)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Height: %.0f cm | Weight: %.0f kg\n", p.Stats.HeightCm, p.Stats.WeightKg)
		fmt.Fprintf(out, "BMR: %.1f kcal\n", b.BMR)
		fmt.Fprintf(out, "TDEE: %d kcal (x%.3g %s)\n", b.TDEE, b.Multiplier, p.Stats.ActivityLevel)
		fmt.Fprintf(out, "Split: P %.0f%% | C %.0f%% | F %.0f%% (%s)\n", b.Split.Protein*100, b.Split.Carbs*100, b.Split.Fats*100, p.Goal)
		fmt.Fprintf(out, "Targets: %s\n", formatTargets(b.Targets))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(macrosCmd)
	addStatsFlags(macrosCmd, &macrosFlags)
	for _, name := range []string{"age", "sex", "weight"} {
		_ = macrosCmd.MarkFlagRequired(name)
	}
}
