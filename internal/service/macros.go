package service

import (
	"fmt"
	"math"

	"github.com/alecrj/nutrition/internal/model"
)

var activityMultipliers = map[model.ActivityLevel]float64{
	model.ActivitySedentary:        1.2,
	model.ActivityLightlyActive:    1.375,
	model.ActivityModeratelyActive: 1.55,
	model.ActivityVeryActive:       1.725,
	model.ActivityAthlete:          1.9,
}

const defaultActivityMultiplier = 1.2

// MacroSplit is the share of calories given to each macro; shares sum to 1.
type MacroSplit struct {
	Protein float64
	Carbs   float64
	Fats    float64
}

// ActivityMultiplier falls back to the sedentary multiplier for unknown levels.
func ActivityMultiplier(level model.ActivityLevel) float64 {
	if m, ok := activityMultipliers[level]; ok {
		return m
	}
	return defaultActivityMultiplier
}

// BMR uses Mifflin-St Jeor. Any sex other than male takes the female constant.
func BMR(stats model.Stats) float64 {
	base := 10*stats.WeightKg + 6.25*stats.HeightCm - 5*float64(stats.Age)
	if stats.Sex == model.SexMale {
		return base + 5
	}
	return base - 161
}

func TDEE(stats model.Stats) int {
	return int(math.Round(BMR(stats) * ActivityMultiplier(stats.ActivityLevel)))
}

func TargetCalories(tdee int, goal model.Goal) int {
	switch goal {
	case model.GoalLoseWeight:
		return int(math.Round(float64(tdee) * 0.8))
	case model.GoalGainMuscle:
		return int(math.Round(float64(tdee) * 1.1))
	default:
		return tdee
	}
}

func SplitForGoal(goal model.Goal) MacroSplit {
	switch goal {
	case model.GoalGainMuscle:
		return MacroSplit{Protein: 0.35, Carbs: 0.40, Fats: 0.25}
	case model.GoalLoseWeight:
		return MacroSplit{Protein: 0.40, Carbs: 0.30, Fats: 0.30}
	default:
		return MacroSplit{Protein: 0.30, Carbs: 0.40, Fats: 0.30}
	}
}

// MacrosForCalories converts a calorie target to grams at 4/4/9 kcal per gram.
func MacrosForCalories(calories int, split MacroSplit) model.MacroTargets {
	c := float64(calories)
	return model.MacroTargets{
		Calories: calories,
		Protein:  int(math.Round(c * split.Protein / 4)),
		Carbs:    int(math.Round(c * split.Carbs / 4)),
		Fats:     int(math.Round(c * split.Fats / 9)),
	}
}

func CalculateMacros(stats model.Stats, goal model.Goal) (model.MacroTargets, error) {
	if err := ValidateStats(stats); err != nil {
		return model.MacroTargets{}, err
	}
	calories := TargetCalories(TDEE(stats), goal)
	return MacrosForCalories(calories, SplitForGoal(goal)), nil
}

type MacroBreakdown struct {
	BMR        float64
	Multiplier float64
	TDEE       int
	Split      MacroSplit
	Targets    model.MacroTargets
}

func ExplainMacros(stats model.Stats, goal model.Goal) (MacroBreakdown, error) {
	targets, err := CalculateMacros(stats, goal)
	if err != nil {
		return MacroBreakdown{}, err
	}
	return MacroBreakdown{
		BMR:        BMR(stats),
		Multiplier: ActivityMultiplier(stats.ActivityLevel),
		TDEE:       TDEE(stats),
		Split:      SplitForGoal(goal),
		Targets:    targets,
	}, nil
}

func ValidateStats(stats model.Stats) error {
	if stats.Age <= 0 {
		return fmt.Errorf("%w: age must be > 0", ErrInvalidProfile)
	}
	switch stats.Sex {
	case model.SexMale, model.SexFemale, model.SexOther:
	default:
		return fmt.Errorf("%w: sex %q (use male, female or other)", ErrInvalidProfile, stats.Sex)
	}
	if !(stats.HeightCm > 0) || math.IsInf(stats.HeightCm, 0) {
		return fmt.Errorf("%w: height must be > 0", ErrInvalidProfile)
	}
	if !(stats.WeightKg > 0) || math.IsInf(stats.WeightKg, 0) {
		return fmt.Errorf("%w: weight must be > 0", ErrInvalidProfile)
	}
	return nil
}
