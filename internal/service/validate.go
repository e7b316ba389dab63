package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/alecrj/nutrition/internal/model"
)

var codeFence = regexp.MustCompile("```(?:json)?\n?")

var macroFields = []string{"calories", "protein", "carbs", "fats"}

const QuickSwapOptions = 3

// PlanReport lists tolerated oddities found while validating a plan.
type PlanReport struct {
	// DegenerateDays holds indexes of days with an empty meals list.
	DegenerateDays []int
	// MealCountMismatch holds indexes of days whose meal count differs from
	// the requested frequency. Filled by CheckMealCounts.
	MealCountMismatch []int
}

func StripCodeFences(text string) string {
	return strings.TrimSpace(codeFence.ReplaceAllString(text, ""))
}

// ParsePlan validates the raw generator output and decodes it. Only a plan
// that passes every structural rule is returned.
func ParsePlan(text string) (model.MealPlan, PlanReport, error) {
	var report PlanReport
	raw := StripCodeFences(text)
	if !gjson.Valid(raw) {
		return model.MealPlan{}, report, fmt.Errorf("%w: response is not valid JSON", ErrInvalidPlanShape)
	}
	root := gjson.Parse(raw)
	if !root.IsObject() {
		return model.MealPlan{}, report, fmt.Errorf("%w: expected a JSON object", ErrInvalidPlanShape)
	}
	days := root.Get("days")
	if !days.IsArray() {
		return model.MealPlan{}, report, fmt.Errorf("%w: missing days list", ErrInvalidPlanShape)
	}
	dayList := days.Array()
	if len(dayList) != model.DaysPerPlan {
		return model.MealPlan{}, report, fmt.Errorf("%w: expected %d days, got %d", ErrInvalidPlanShape, model.DaysPerPlan, len(dayList))
	}
	for i, day := range dayList {
		meals := day.Get("meals")
		if !day.IsObject() || !meals.IsArray() {
			return model.MealPlan{}, report, fmt.Errorf("%w: day %d has no meals list", ErrInvalidPlanShape, i+1)
		}
		mealList := meals.Array()
		if len(mealList) == 0 {
			report.DegenerateDays = append(report.DegenerateDays, i)
		}
		for j, meal := range mealList {
			if err := validateMeal(meal); err != nil {
				return model.MealPlan{}, report, fmt.Errorf("day %d meal %d: %w", i+1, j+1, err)
			}
		}
	}

	var plan model.MealPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return model.MealPlan{}, report, fmt.Errorf("%w: %v", ErrInvalidPlanShape, err)
	}
	if plan.Week < 1 {
		plan.Week = 1
	}
	for i, day := range dayList {
		// An index instead of a name is labelled by position.
		if day.Get("day").Type == gjson.Number {
			plan.Days[i].Day = model.DayNames[i]
		}
	}
	return plan, report, nil
}

// CheckMealCounts records days whose meal count differs from the expected
// frequency. A mismatch is reported, not rejected.
func CheckMealCounts(plan model.MealPlan, frequency int, report *PlanReport) {
	for i, d := range plan.Days {
		if frequency > 0 && len(d.Meals) != frequency {
			report.MealCountMismatch = append(report.MealCountMismatch, i)
		}
	}
}

// ParseSwapOptions decodes swap output: exactly three meals for a quick swap,
// a single meal object for a custom swap.
func ParseSwapOptions(text string, kind SwapKind) ([]model.Meal, error) {
	raw := StripCodeFences(text)
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("%w: response is not valid JSON", ErrInvalidMealShape)
	}
	root := gjson.Parse(raw)

	var items []gjson.Result
	switch kind {
	case SwapQuick:
		if !root.IsArray() {
			return nil, fmt.Errorf("%w: expected a list of meals", ErrInvalidMealShape)
		}
		items = root.Array()
		if len(items) != QuickSwapOptions {
			return nil, fmt.Errorf("%w: expected %d options, got %d", ErrInvalidMealShape, QuickSwapOptions, len(items))
		}
	case SwapCustom:
		if !root.IsObject() {
			return nil, fmt.Errorf("%w: expected a single meal object", ErrInvalidMealShape)
		}
		items = []gjson.Result{root}
	default:
		return nil, fmt.Errorf("%w: swap kind %q", ErrInvalidInput, kind)
	}

	meals := make([]model.Meal, 0, len(items))
	for i, item := range items {
		if err := validateMeal(item); err != nil {
			return nil, fmt.Errorf("option %d: %w", i+1, err)
		}
		var m model.Meal
		if err := json.Unmarshal([]byte(item.Raw), &m); err != nil {
			return nil, fmt.Errorf("%w: option %d: %v", ErrInvalidMealShape, i+1, err)
		}
		m.Type = ""
		meals = append(meals, m)
	}
	return meals, nil
}

func validateMeal(meal gjson.Result) error {
	if !meal.IsObject() {
		return fmt.Errorf("%w: meal is not an object", ErrInvalidMealShape)
	}
	macros := meal.Get("macros")
	if !macros.IsObject() {
		return fmt.Errorf("%w: missing macros", ErrInvalidMealShape)
	}
	for _, field := range macroFields {
		if v := macros.Get(field); v.Type != gjson.Number {
			return fmt.Errorf("%w: macros.%s must be a number", ErrInvalidMealShape, field)
		}
	}
	return nil
}
