package service

import (
	"fmt"
	"strings"

	"github.com/alecrj/nutrition/internal/model"
)

// ApplySwap returns a copy of plan with the meal of mealType on dayIndex
// replaced wholesale by meal. The replaced meal keeps its type.
func ApplySwap(plan model.MealPlan, dayIndex int, mealType string, meal model.Meal) (model.MealPlan, error) {
	if dayIndex < 0 || dayIndex >= len(plan.Days) {
		return plan, fmt.Errorf("%w: day index %d out of range", ErrInvalidInput, dayIndex)
	}
	days := make([]model.Day, len(plan.Days))
	copy(days, plan.Days)

	day := days[dayIndex]
	meals := make([]model.Meal, len(day.Meals))
	copy(meals, day.Meals)

	replaced := false
	for i, m := range meals {
		if strings.EqualFold(m.Type, mealType) {
			meal.Type = m.Type
			meals[i] = meal
			replaced = true
			break
		}
	}
	if !replaced {
		return plan, fmt.Errorf("%w: no %s on %s", ErrInvalidInput, mealType, day.Day)
	}
	day.Meals = meals
	days[dayIndex] = day
	plan.Days = days
	return plan, nil
}

func DailyTotals(day model.Day) model.Macros {
	var total model.Macros
	for _, m := range day.Meals {
		total.Calories += m.Macros.Calories
		total.Protein += m.Macros.Protein
		total.Carbs += m.Macros.Carbs
		total.Fats += m.Macros.Fats
	}
	return total
}

func FindMeal(day model.Day, mealType string) (model.Meal, bool) {
	for _, m := range day.Meals {
		if strings.EqualFold(m.Type, mealType) {
			return m, true
		}
	}
	return model.Meal{}, false
}
