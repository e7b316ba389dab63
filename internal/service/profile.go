package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alecrj/nutrition/internal/model"
)

const (
	MinMealFrequency = 2
	MaxMealFrequency = 6
)

var validCookingTimes = map[string]bool{"15min": true, "30min": true, "45min+": true}

// ProfileInput is the raw onboarding answer set. Height and weight are text in
// the chosen unit system and converted to metric by NewProfile.
type ProfileInput struct {
	Name          string
	Age           string
	Sex           string
	Height        HeightInput
	Weight        string
	ActivityLevel string
	Goal          string
	Dietary       []string
	Allergies     []string
	Dislikes      []string
	Philosophy    string
	CookingSkill  string
	CookingTime   string
	MealFrequency int
}

// NewProfile converts units, validates every required answer and attaches the
// derived macro targets.
func NewProfile(in ProfileInput, now time.Time) (model.UserProfile, error) {
	age, err := strconv.Atoi(strings.TrimSpace(in.Age))
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("%w: age %q is not a number", ErrInvalidInput, in.Age)
	}
	heightCm, err := ParseHeightCm(in.Height)
	if err != nil {
		return model.UserProfile{}, err
	}
	weightKg, err := ParseWeightKg(in.Height.Units, in.Weight)
	if err != nil {
		return model.UserProfile{}, err
	}

	p := model.UserProfile{
		Name: strings.TrimSpace(in.Name),
		Stats: model.Stats{
			Age:           age,
			Sex:           model.Sex(normalizeName(in.Sex)),
			HeightCm:      float64(heightCm),
			WeightKg:      float64(weightKg),
			ActivityLevel: model.ActivityLevel(normalizeName(in.ActivityLevel)),
		},
		Goal: model.Goal(normalizeName(in.Goal)),
		Restrictions: model.Restrictions{
			Dietary:   normalizeList(in.Dietary),
			Allergies: normalizeList(in.Allergies),
			Dislikes:  normalizeList(in.Dislikes),
		},
		Philosophy: model.Philosophy(normalizeName(in.Philosophy)),
		Cooking: model.Cooking{
			Skill:         model.CookingSkill(normalizeName(in.CookingSkill)),
			TimeAvailable: normalizeName(in.CookingTime),
		},
		MealFrequency: in.MealFrequency,
		CreatedAt:     now,
	}
	if err := ValidateProfile(p); err != nil {
		return model.UserProfile{}, err
	}
	if err := AttachMacros(&p); err != nil {
		return model.UserProfile{}, err
	}
	return p, nil
}

// AttachMacros recomputes the profile's targets; they are never taken from input.
func AttachMacros(p *model.UserProfile) error {
	targets, err := CalculateMacros(p.Stats, p.Goal)
	if err != nil {
		return err
	}
	p.Macros = &targets
	return nil
}

func ValidateProfile(p model.UserProfile) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if err := ValidateStats(p.Stats); err != nil {
		return err
	}
	if _, ok := activityMultipliers[p.Stats.ActivityLevel]; !ok {
		return fmt.Errorf("%w: activity level %q", ErrInvalidProfile, p.Stats.ActivityLevel)
	}
	switch p.Goal {
	case model.GoalLoseWeight, model.GoalGainMuscle, model.GoalMaintain, model.GoalFeelBetter:
	default:
		return fmt.Errorf("%w: goal %q", ErrInvalidProfile, p.Goal)
	}
	switch p.Philosophy {
	case model.PhilosophyFlexible, model.PhilosophyWholeFoods, model.PhilosophyCleanEating, model.PhilosophyWhateverWorks:
	default:
		return fmt.Errorf("%w: philosophy %q", ErrInvalidProfile, p.Philosophy)
	}
	switch p.Cooking.Skill {
	case model.SkillBeginner, model.SkillIntermediate, model.SkillAdvanced:
	default:
		return fmt.Errorf("%w: cooking skill %q", ErrInvalidProfile, p.Cooking.Skill)
	}
	if !validCookingTimes[p.Cooking.TimeAvailable] {
		return fmt.Errorf("%w: cooking time %q (use 15min, 30min or 45min+)", ErrInvalidProfile, p.Cooking.TimeAvailable)
	}
	if p.MealFrequency < MinMealFrequency || p.MealFrequency > MaxMealFrequency {
		return fmt.Errorf("%w: meal frequency must be between %d and %d", ErrInvalidProfile, MinMealFrequency, MaxMealFrequency)
	}
	return nil
}

// normalizeList trims and lower-cases entries, dropping blanks and duplicates.
func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := map[string]bool{}
	for _, item := range items {
		v := normalizeName(item)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func normalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}
