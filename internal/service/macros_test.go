package service_test

import (
	"errors"
	"math"
	"testing"

	"github.com/alecrj/nutrition/internal/model"
	"github.com/alecrj/nutrition/internal/service"
)

func maleStats() model.Stats {
	return model.Stats{
		Age:           30,
		Sex:           model.SexMale,
		HeightCm:      178,
		WeightKg:      80,
		ActivityLevel: model.ActivityModeratelyActive,
	}
}

func TestBMRAndTDEEMaleModeratelyActive(t *testing.T) {
	t.Parallel()
	stats := maleStats()
	if bmr := service.BMR(stats); math.Abs(bmr-1767.5) > 1e-9 {
		t.Fatalf("expected BMR 1767.5, got %.3f", bmr)
	}
	if tdee := service.TDEE(stats); tdee != 2740 {
		t.Fatalf("expected TDEE 2740, got %d", tdee)
	}
	targets, err := service.CalculateMacros(stats, model.GoalMaintain)
	if err != nil {
		t.Fatalf("calculate macros: %v", err)
	}
	if targets.Calories != 2740 {
		t.Fatalf("maintain should keep TDEE, got %d", targets.Calories)
	}
}

func TestBMRFemaleAndOtherUseSameConstant(t *testing.T) {
	t.Parallel()
	stats := model.Stats{Age: 30, Sex: model.SexFemale, HeightCm: 165, WeightKg: 60, ActivityLevel: model.ActivitySedentary}
	if bmr := service.BMR(stats); math.Abs(bmr-1320.25) > 1e-9 {
		t.Fatalf("expected BMR 1320.25, got %.3f", bmr)
	}
	other := stats
	other.Sex = model.SexOther
	if service.BMR(other) != service.BMR(stats) {
		t.Fatalf("other should use the female constant")
	}
	if tdee := service.TDEE(stats); tdee != 1584 {
		t.Fatalf("expected TDEE 1584, got %d", tdee)
	}
}

func TestUnknownActivityLevelDefaultsToSedentary(t *testing.T) {
	t.Parallel()
	if m := service.ActivityMultiplier("couch_potato"); m != 1.2 {
		t.Fatalf("expected 1.2, got %.3f", m)
	}
	if m := service.ActivityMultiplier(model.ActivityAthlete); m != 1.9 {
		t.Fatalf("expected 1.9, got %.3f", m)
	}
}

func TestTargetCaloriesByGoal(t *testing.T) {
	t.Parallel()
	if got := service.TargetCalories(2819, model.GoalLoseWeight); got != 2255 {
		t.Fatalf("expected 2255, got %d", got)
	}
	if got := service.TargetCalories(2740, model.GoalGainMuscle); got != 3014 {
		t.Fatalf("expected 3014, got %d", got)
	}
	if got := service.TargetCalories(2740, model.GoalFeelBetter); got != 2740 {
		t.Fatalf("expected 2740, got %d", got)
	}
	if got := service.TargetCalories(2740, "something_else"); got != 2740 {
		t.Fatalf("unknown goal should keep TDEE, got %d", got)
	}
}

func TestLoseWeightSplitProteinGrams(t *testing.T) {
	t.Parallel()
	targets := service.MacrosForCalories(2255, service.SplitForGoal(model.GoalLoseWeight))
	if targets.Protein != 226 {
		t.Fatalf("expected 226g protein, got %d", targets.Protein)
	}
	if targets.Carbs != 169 {
		t.Fatalf("expected 169g carbs, got %d", targets.Carbs)
	}
	if targets.Fats != 75 {
		t.Fatalf("expected 75g fat, got %d", targets.Fats)
	}
}

func TestSplitsSumToOne(t *testing.T) {
	t.Parallel()
	for _, goal := range []model.Goal{model.GoalLoseWeight, model.GoalGainMuscle, model.GoalMaintain, model.GoalFeelBetter} {
		s := service.SplitForGoal(goal)
		if math.Abs(s.Protein+s.Carbs+s.Fats-1) > 1e-9 {
			t.Fatalf("split for %s does not sum to 1: %+v", goal, s)
		}
	}
}

// Each gram target is rounded independently, so the energy implied by the
// grams can drift from the calorie target by at most 2+2+4.5 kcal.
func TestMacroEnergyStaysWithinRoundingOfCalories(t *testing.T) {
	t.Parallel()
	const maxDrift = 8.5
	goals := []model.Goal{model.GoalLoseWeight, model.GoalGainMuscle, model.GoalMaintain, model.GoalFeelBetter}
	levels := []model.ActivityLevel{
		model.ActivitySedentary, model.ActivityLightlyActive, model.ActivityModeratelyActive,
		model.ActivityVeryActive, model.ActivityAthlete,
	}
	for age := 18; age <= 80; age += 7 {
		for weight := 45.0; weight <= 140; weight += 9 {
			for height := 150.0; height <= 200; height += 11 {
				for _, level := range levels {
					for _, goal := range goals {
						stats := model.Stats{Age: age, Sex: model.SexMale, HeightCm: height, WeightKg: weight, ActivityLevel: level}
						targets, err := service.CalculateMacros(stats, goal)
						if err != nil {
							t.Fatalf("calculate macros: %v", err)
						}
						drift := math.Abs(float64(targets.Energy() - targets.Calories))
						if drift > maxDrift {
							t.Fatalf("energy drift %.1f for %+v %s: %+v", drift, stats, goal, targets)
						}
					}
				}
			}
		}
	}
}

func TestCalculateMacrosRejectsInvalidStats(t *testing.T) {
	t.Parallel()
	cases := []model.Stats{
		{Age: 0, Sex: model.SexMale, HeightCm: 178, WeightKg: 80},
		{Age: 30, Sex: "", HeightCm: 178, WeightKg: 80},
		{Age: 30, Sex: model.SexMale, HeightCm: 0, WeightKg: 80},
		{Age: 30, Sex: model.SexMale, HeightCm: 178, WeightKg: math.NaN()},
	}
	for _, stats := range cases {
		if _, err := service.CalculateMacros(stats, model.GoalMaintain); !errors.Is(err, service.ErrInvalidProfile) {
			t.Fatalf("expected ErrInvalidProfile for %+v, got %v", stats, err)
		}
	}
}
