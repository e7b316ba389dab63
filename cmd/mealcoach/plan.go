package mealcoach

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alecrj/nutrition/internal/model"
	"github.com/alecrj/nutrition/internal/service"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "View and change your 7-day meal plan",
}

var planGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a fresh 7-day plan from your stored profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			p, err := s.requireProfile()
			if err != nil {
				return err
			}
			return generatePlan(s, p)
		})
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the week at a glance",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			plan, err := s.requirePlan()
			if err != nil {
				return err
			}
			current, err := s.state.LoadCurrentDay()
			if err != nil {
				return err
			}
			fmt.Fprintf(s.out(), "Week %d | target %s\n", plan.Week, formatTargets(plan.DailyTarget))
			for i, day := range plan.Days {
				marker := " "
				if i == current {
					marker = "*"
				}
				names := make([]string, 0, len(day.Meals))
				for _, m := range day.Meals {
					names = append(names, m.Name)
				}
				fmt.Fprintf(s.out(), "%s %d\t%s\t%.0f kcal\t%s\n", marker, i+1, day.Day, service.DailyTotals(day).Calories, strings.Join(names, "; "))
			}
			return nil
		})
	},
}

var planDayDate string

var planDayCmd = &cobra.Command{
	Use:   "day [day]",
	Short: "Show meals for a day (default: current day)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			plan, err := s.requirePlan()
			if err != nil {
				return err
			}
			idx, err := s.resolveDay(args, plan)
			if err != nil {
				return err
			}
			date := planDayDate
			if date == "" {
				date = service.Today(timeNow())
			}
			done, err := s.state.CompletedMeals(date)
			if err != nil {
				return err
			}
			day := plan.Days[idx]
			fmt.Fprintf(s.out(), "%s (day %d of week %d)\n", day.Day, idx+1, plan.Week)
			for _, m := range day.Meals {
				check := "[ ]"
				if contains(done, m.Type) {
					check = "[x]"
				}
				fmt.Fprintf(s.out(), "%s %s: %s (%s)\n", check, strings.ToUpper(m.Type), m.Name, m.PrepTime)
				fmt.Fprintf(s.out(), "    %s\n", formatMacros(m.Macros))
				for _, ing := range m.Ingredients {
					fmt.Fprintf(s.out(), "    - %s\n", formatIngredient(ing))
				}
				for i, step := range m.Instructions {
					fmt.Fprintf(s.out(), "    %d. %s\n", i+1, step)
				}
			}
			return nil
		})
	},
}

var planTotalsCmd = &cobra.Command{
	Use:   "totals [day]",
	Short: "Show a day's macro totals against your targets",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			plan, err := s.requirePlan()
			if err != nil {
				return err
			}
			idx, err := s.resolveDay(args, plan)
			if err != nil {
				return err
			}
			totals := service.DailyTotals(plan.Days[idx])
			fmt.Fprintf(s.out(), "%s totals: %s\n", plan.Days[idx].Day, formatMacros(totals))
			fmt.Fprintf(s.out(), "Target: %s\n", formatTargets(plan.DailyTarget))
			return nil
		})
	},
}

var (
	swapDay    string
	swapCustom string
	swapPick   int
)

var planSwapCmd = &cobra.Command{
	Use:   "swap <meal-type>",
	Short: "Swap a meal for a similar option or a custom request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mealType := strings.ToLower(strings.TrimSpace(args[0]))
		return withSession(cmd, func(s *session) error {
			p, err := s.requireProfile()
			if err != nil {
				return err
			}
			plan, err := s.requirePlan()
			if err != nil {
				return err
			}
			var dayArgs []string
			if swapDay != "" {
				dayArgs = []string{swapDay}
			}
			idx, err := s.resolveDay(dayArgs, plan)
			if err != nil {
				return err
			}
			current, ok := service.FindMeal(plan.Days[idx], mealType)
			if !ok {
				return fmt.Errorf("no %s on %s", mealType, plan.Days[idx].Day)
			}

			req := service.SwapRequest{Kind: service.SwapQuick, Meal: current}
			if strings.TrimSpace(swapCustom) != "" {
				req = service.SwapRequest{Kind: service.SwapCustom, Meal: current, Custom: swapCustom}
			}
			coach, backendErr := s.coach()

			pick := swapPick
			var options []model.Meal
			if req.Kind == service.SwapQuick && pick > 0 {
				options = s.loadPendingSwap(idx, mealType)
			}
			if options == nil {
				if backendErr != nil {
					return backendErr
				}
				options, err = coach.GenerateSwap(cmd.Context(), p, req)
				if err != nil {
					return err
				}
			}
			if req.Kind == service.SwapCustom {
				pick = 1
			}
			if pick == 0 {
				for i, m := range options {
					fmt.Fprintf(s.out(), "%d. %s (%s)\n   %s\n", i+1, m.Name, m.PrepTime, formatMacros(m.Macros))
				}
				fmt.Fprintf(s.out(), "Re-run with --pick N to swap %s on %s\n", mealType, plan.Days[idx].Day)
				return s.persisted(s.savePendingSwap(idx, mealType, options))
			}
			if pick < 1 || pick > len(options) {
				return fmt.Errorf("--pick must be between 1 and %d", len(options))
			}
			updated, err := coach.ReplaceMeal(idx, mealType, options[pick-1])
			if err := s.persisted(err); err != nil {
				return err
			}
			_ = s.kv.Remove(pendingSwapKey)
			fmt.Fprintf(s.out(), "Swapped %s on %s for %s\n", mealType, plan.Days[idx].Day, options[pick-1].Name)
			if len(updated.Days) > idx {
				fmt.Fprintf(s.out(), "Day totals: %s\n", formatMacros(service.DailyTotals(updated.Days[idx])))
			}
			return nil
		})
	},
}

var planSetDayCmd = &cobra.Command{
	Use:   "set-day <day>",
	Short: "Set the current day of the plan (1-7 or a day name)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			plan, err := s.requirePlan()
			if err != nil {
				return err
			}
			idx, err := parseDayArg(args[0], len(plan.Days))
			if err != nil {
				return err
			}
			if err := s.persisted(s.state.SaveCurrentDay(idx)); err != nil {
				return err
			}
			fmt.Fprintf(s.out(), "Current day: %s\n", plan.Days[idx].Day)
			return nil
		})
	},
}

// pendingSwapKey holds the last listed quick-swap options so --pick applies
// the options the user actually saw.
const pendingSwapKey = "mealcoach_pendingSwap"

type pendingSwap struct {
	Day      int          `json:"day"`
	MealType string       `json:"mealType"`
	Options  []model.Meal `json:"options"`
}

func (s *session) savePendingSwap(day int, mealType string, options []model.Meal) error {
	b, err := json.Marshal(pendingSwap{Day: day, MealType: mealType, Options: options})
	if err != nil {
		return fmt.Errorf("encode swap options: %w", err)
	}
	return s.kv.Set(pendingSwapKey, string(b))
}

func (s *session) loadPendingSwap(day int, mealType string) []model.Meal {
	raw, ok, err := s.kv.Get(pendingSwapKey)
	if err != nil || !ok {
		return nil
	}
	var pending pendingSwap
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		s.logger.Debug("discarding unreadable swap options", "error", err)
		return nil
	}
	if pending.Day != day || pending.MealType != mealType {
		return nil
	}
	return pending.Options
}

func formatIngredient(ing model.Ingredient) string {
	switch {
	case ing.Grams > 0:
		return ing.Item + " (" + strconv.FormatFloat(ing.Grams, 'f', -1, 64) + "g)"
	case ing.Descriptive != "":
		return ing.Item + " (" + ing.Descriptive + ")"
	default:
		return ing.Item
	}
}

func contains(items []string, v string) bool {
	for _, it := range items {
		if strings.EqualFold(it, v) {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.AddCommand(planGenerateCmd, planShowCmd, planDayCmd, planTotalsCmd, planSwapCmd, planSetDayCmd)

	planDayCmd.Flags().StringVar(&planDayDate, "date", "", "Date for completion marks YYYY-MM-DD (default today)")
	planSwapCmd.Flags().StringVar(&swapDay, "day", "", "Day to change (1-7 or name, default current day)")
	planSwapCmd.Flags().StringVar(&swapCustom, "custom", "", "Describe the meal you want instead of similar options")
	planSwapCmd.Flags().IntVar(&swapPick, "pick", 0, "Option number to apply (lists options when 0)")
}
