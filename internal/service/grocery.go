package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/alecrj/nutrition/internal/model"
)

const GroceryListHeader = "🛒 AI Meal Coach - Grocery List\n\n"

type CategoryRule struct {
	Category model.GroceryCategory
	Keywords []string
}

// DefaultCategoryRules are evaluated in order and the first substring match
// wins, so "pepper" lands in vegetables before pantry.
var DefaultCategoryRules = []CategoryRule{
	{Category: model.CategoryProteins, Keywords: []string{"chicken", "beef", "pork", "fish", "salmon", "tuna", "turkey", "shrimp", "tofu", "tempeh", "eggs"}},
	{Category: model.CategoryCarbs, Keywords: []string{"rice", "pasta", "bread", "quinoa", "oats", "potato", "tortilla", "bagel", "cereal"}},
	{Category: model.CategoryVegetables, Keywords: []string{"broccoli", "spinach", "lettuce", "tomato", "cucumber", "pepper", "onion", "garlic", "mushroom", "carrot", "zucchini", "kale", "cabbage"}},
	{Category: model.CategoryFruits, Keywords: []string{"apple", "banana", "berry", "orange", "grape", "melon", "mango", "peach", "pear", "strawberry", "blueberry"}},
	{Category: model.CategoryDairy, Keywords: []string{"milk", "yogurt", "cheese", "butter", "cream"}},
	{Category: model.CategoryPantry, Keywords: []string{"oil", "sauce", "spice", "salt", "pepper", "honey", "syrup", "vinegar", "flour", "sugar"}},
}

// Classify returns the category of the first rule with a keyword contained
// in item, or other.
func Classify(item string, rules []CategoryRule) model.GroceryCategory {
	lower := strings.ToLower(item)
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Category
			}
		}
	}
	return model.CategoryOther
}

type GroceryGroup struct {
	Category model.GroceryCategory `json:"category"`
	Entries  []model.GroceryEntry  `json:"entries"`
}

type GroceryList struct {
	Groups []GroceryGroup `json:"groups"`
}

func (l GroceryList) Entries(c model.GroceryCategory) []model.GroceryEntry {
	for _, g := range l.Groups {
		if g.Category == c {
			return g.Entries
		}
	}
	return nil
}

func (l GroceryList) Len() int {
	n := 0
	for _, g := range l.Groups {
		n += len(g.Entries)
	}
	return n
}

// BuildGroceryList merges every ingredient of the plan by case-insensitive
// item name and groups the result with DefaultCategoryRules.
func BuildGroceryList(plan model.MealPlan) GroceryList {
	return BuildGroceryListWithRules(plan, DefaultCategoryRules)
}

func BuildGroceryListWithRules(plan model.MealPlan, rules []CategoryRule) GroceryList {
	index := map[string]int{}
	var merged []model.GroceryEntry
	for _, day := range plan.Days {
		for _, meal := range day.Meals {
			for _, ing := range meal.Ingredients {
				key := strings.ToLower(ing.Item)
				if i, ok := index[key]; ok {
					merged[i].Grams += ing.Grams
					merged[i].Count++
					continue
				}
				index[key] = len(merged)
				merged = append(merged, model.GroceryEntry{
					Item:        ing.Item,
					Grams:       ing.Grams,
					Count:       1,
					Descriptive: ing.Descriptive,
				})
			}
		}
	}

	byCategory := map[model.GroceryCategory][]model.GroceryEntry{}
	for _, e := range merged {
		e.Category = Classify(e.Item, rules)
		byCategory[e.Category] = append(byCategory[e.Category], e)
	}

	var list GroceryList
	for _, c := range categoryOrder(rules) {
		if entries := byCategory[c]; len(entries) > 0 {
			list.Groups = append(list.Groups, GroceryGroup{Category: c, Entries: entries})
		}
	}
	return list
}

func categoryOrder(rules []CategoryRule) []model.GroceryCategory {
	seen := map[model.GroceryCategory]bool{}
	order := make([]model.GroceryCategory, 0, len(rules)+1)
	for _, r := range rules {
		if !seen[r.Category] {
			seen[r.Category] = true
			order = append(order, r.Category)
		}
	}
	if !seen[model.CategoryOther] {
		order = append(order, model.CategoryOther)
	}
	return order
}

func FormatAmount(e model.GroceryEntry) string {
	switch {
	case e.Grams > 0:
		return fmt.Sprintf("%dg", int(math.Round(e.Grams)))
	case e.Descriptive != "":
		return e.Descriptive
	default:
		return fmt.Sprintf("%dx", e.Count)
	}
}

func ExportText(list GroceryList) string {
	var b strings.Builder
	b.WriteString(GroceryListHeader)
	for _, g := range list.Groups {
		if len(g.Entries) == 0 {
			continue
		}
		b.WriteString(strings.ToUpper(string(g.Category)))
		b.WriteByte('\n')
		for _, e := range g.Entries {
			fmt.Fprintf(&b, "- %s (%s)\n", e.Item, FormatAmount(e))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
