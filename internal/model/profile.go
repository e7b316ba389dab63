package model

import (
	"encoding/json"
	"math"
	"time"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "sedentary"
	ActivityLightlyActive    ActivityLevel = "lightly_active"
	ActivityModeratelyActive ActivityLevel = "moderately_active"
	ActivityVeryActive       ActivityLevel = "very_active"
	ActivityAthlete          ActivityLevel = "athlete"
)

type Goal string

const (
	GoalLoseWeight Goal = "lose_weight"
	GoalGainMuscle Goal = "gain_muscle"
	GoalMaintain   Goal = "maintain"
	GoalFeelBetter Goal = "feel_better"
)

type Philosophy string

const (
	PhilosophyFlexible      Philosophy = "flexible"
	PhilosophyWholeFoods    Philosophy = "whole_foods"
	PhilosophyCleanEating   Philosophy = "clean_eating"
	PhilosophyWhateverWorks Philosophy = "whatever_works"
)

type CookingSkill string

const (
	SkillBeginner     CookingSkill = "beginner"
	SkillIntermediate CookingSkill = "intermediate"
	SkillAdvanced     CookingSkill = "advanced"
)

// Stats holds metric body measurements. Height and weight are stored under
// the short keys the onboarding form always used.
type Stats struct {
	Age           int           `json:"age"`
	Sex           Sex           `json:"sex"`
	HeightCm      float64       `json:"height"`
	WeightKg      float64       `json:"weight"`
	ActivityLevel ActivityLevel `json:"activityLevel"`
}

type Restrictions struct {
	Dietary   []string `json:"dietary"`
	Allergies []string `json:"allergies"`
	Dislikes  []string `json:"dislikes"`
}

type Cooking struct {
	Skill         CookingSkill `json:"skill"`
	TimeAvailable string       `json:"timeAvailable"`
}

type UserProfile struct {
	Name          string        `json:"name"`
	Stats         Stats         `json:"stats"`
	Goal          Goal          `json:"goal"`
	Restrictions  Restrictions  `json:"restrictions"`
	Philosophy    Philosophy    `json:"philosophy"`
	Cooking       Cooking       `json:"cooking"`
	MealFrequency int           `json:"mealFrequency"`
	Macros        *MacroTargets `json:"macros,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// MacroTargets is a daily calorie and gram target. Values are whole numbers;
// fractional numbers in decoded JSON are rounded.
type MacroTargets struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fats     int `json:"fats"`
}

func (m *MacroTargets) UnmarshalJSON(data []byte) error {
	var raw struct {
		Calories float64 `json:"calories"`
		Protein  float64 `json:"protein"`
		Carbs    float64 `json:"carbs"`
		Fats     float64 `json:"fats"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Calories = int(math.Round(raw.Calories))
	m.Protein = int(math.Round(raw.Protein))
	m.Carbs = int(math.Round(raw.Carbs))
	m.Fats = int(math.Round(raw.Fats))
	return nil
}

// Energy returns the calories implied by the gram targets.
func (m MacroTargets) Energy() int {
	return m.Protein*4 + m.Carbs*4 + m.Fats*9
}
