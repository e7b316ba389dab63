package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DayNames is the fixed week order used by a plan.
var DayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

const DaysPerPlan = 7

type MealPlan struct {
	Week        int          `json:"week"`
	DailyTarget MacroTargets `json:"dailyTarget"`
	Days        []Day        `json:"days"`
}

// Day names its weekday. Generators sometimes send an index instead of a
// name; the number is kept as text.
type Day struct {
	Day   string `json:"day"`
	Meals []Meal `json:"meals"`
}

func (d *Day) UnmarshalJSON(data []byte) error {
	type plain Day
	var raw struct {
		plain
		Day json.RawMessage `json:"day"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	name, err := looseString(raw.Day)
	if err != nil {
		return fmt.Errorf("day: %w", err)
	}
	*d = Day(raw.plain)
	d.Day = name
	return nil
}

// Meal is replaced wholesale by a swap, never edited in place.
type Meal struct {
	Type         string       `json:"type,omitempty"`
	Name         string       `json:"name"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
	Macros       Macros       `json:"macros"`
	PrepTime     string       `json:"prepTime"`
}

func (m *Meal) UnmarshalJSON(data []byte) error {
	type plain Meal
	var raw struct {
		plain
		PrepTime json.RawMessage `json:"prepTime"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	prep, err := looseString(raw.PrepTime)
	if err != nil {
		return fmt.Errorf("prepTime: %w", err)
	}
	*m = Meal(raw.plain)
	m.PrepTime = prep
	return nil
}

// Macros are per-meal amounts as returned by the generator.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

type Ingredient struct {
	Item        string  `json:"item"`
	Grams       float64 `json:"grams,omitempty"`
	Descriptive string  `json:"descriptive,omitempty"`
}

// UnmarshalJSON accepts grams as a number or numeric text ("100", "100g").
// Text that is not a number becomes the descriptive amount when none is set.
func (i *Ingredient) UnmarshalJSON(data []byte) error {
	type plain Ingredient
	var raw struct {
		plain
		Grams json.RawMessage `json:"grams"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = Ingredient(raw.plain)
	i.Grams = 0
	text, err := looseString(raw.Grams)
	if err != nil {
		return fmt.Errorf("grams: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	g, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.ToLower(text), "g")), 64)
	if err != nil {
		if i.Descriptive == "" {
			i.Descriptive = text
		}
		return nil
	}
	i.Grams = g
	return nil
}

type GroceryCategory string

const (
	CategoryProteins   GroceryCategory = "proteins"
	CategoryCarbs      GroceryCategory = "carbs"
	CategoryVegetables GroceryCategory = "vegetables"
	CategoryFruits     GroceryCategory = "fruits"
	CategoryDairy      GroceryCategory = "dairy"
	CategoryPantry     GroceryCategory = "pantry"
	CategoryOther      GroceryCategory = "other"
)

// GroceryCategories is the fixed display and classification order.
var GroceryCategories = []GroceryCategory{
	CategoryProteins,
	CategoryCarbs,
	CategoryVegetables,
	CategoryFruits,
	CategoryDairy,
	CategoryPantry,
	CategoryOther,
}

type GroceryEntry struct {
	Item        string          `json:"item"`
	Grams       float64         `json:"grams"`
	Count       int             `json:"count"`
	Descriptive string          `json:"descriptive"`
	Category    GroceryCategory `json:"category"`
}

type ProgressEntry struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Weight    float64   `json:"weight"`
	Notes     string    `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// CompletionLedger maps a YYYY-MM-DD date to the meal types marked done.
type CompletionLedger map[string][]string

// looseString reads a JSON string or number as text; null or absent is empty.
func looseString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", err
		}
		return n.String(), nil
	}
	return "", fmt.Errorf("expected string or number, got %s", raw)
}
