package service_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/alecrj/nutrition/internal/model"
	"github.com/alecrj/nutrition/internal/service"
)

const sampleMeal = `{"type":"breakfast","name":"Greek Yogurt Bowl","ingredients":[{"item":"greek yogurt","grams":200},{"item":"honey","descriptive":"1 tsp"}],"instructions":["Mix"],"macros":{"calories":420,"protein":32,"carbs":48,"fats":10},"prepTime":"5 min"}`

func planJSON(days int, meals string) string {
	parts := make([]string, 0, days)
	for i := 0; i < days; i++ {
		name := fmt.Sprintf("Day %d", i+1)
		if i < len(model.DayNames) {
			name = model.DayNames[i]
		}
		parts = append(parts, fmt.Sprintf(`{"day":%q,"meals":[%s]}`, name, meals))
	}
	return fmt.Sprintf(`{"week":1,"dailyTarget":{"calories":2192,"protein":219,"carbs":164,"fats":73},"days":[%s]}`, strings.Join(parts, ","))
}

func TestParsePlanAcceptsSevenDays(t *testing.T) {
	t.Parallel()
	plan, report, err := service.ParsePlan(planJSON(7, sampleMeal))
	if err != nil {
		t.Fatalf("parse plan: %v", err)
	}
	if len(plan.Days) != 7 || plan.Days[6].Day != "Sunday" {
		t.Fatalf("unexpected days: %+v", plan.Days)
	}
	if plan.DailyTarget.Calories != 2192 {
		t.Fatalf("expected daily target 2192, got %d", plan.DailyTarget.Calories)
	}
	meal := plan.Days[0].Meals[0]
	if meal.Macros.Protein != 32 || meal.Ingredients[1].Descriptive != "1 tsp" {
		t.Fatalf("unexpected meal: %+v", meal)
	}
	if len(report.DegenerateDays) != 0 {
		t.Fatalf("expected no degenerate days, got %v", report.DegenerateDays)
	}
}

func TestParsePlanRejectsWrongDayCount(t *testing.T) {
	t.Parallel()
	for _, n := range []int{0, 6, 8} {
		_, _, err := service.ParsePlan(planJSON(n, sampleMeal))
		if !errors.Is(err, service.ErrInvalidPlanShape) {
			t.Fatalf("%d days: expected invalid plan shape, got %v", n, err)
		}
	}
}

func TestParsePlanStripsCodeFences(t *testing.T) {
	t.Parallel()
	text := "```json\n" + planJSON(7, sampleMeal) + "\n```"
	if _, _, err := service.ParsePlan(text); err != nil {
		t.Fatalf("fenced plan should parse: %v", err)
	}
}

func TestParsePlanRejectsNonJSON(t *testing.T) {
	t.Parallel()
	_, _, err := service.ParsePlan("Sure! Here is your plan: Monday...")
	if !errors.Is(err, service.ErrInvalidPlanShape) {
		t.Fatalf("expected invalid plan shape, got %v", err)
	}
	_, _, err = service.ParsePlan(`[1,2,3]`)
	if !errors.Is(err, service.ErrInvalidPlanShape) {
		t.Fatalf("expected invalid plan shape for array, got %v", err)
	}
}

func TestParsePlanRejectsNonNumericMacros(t *testing.T) {
	t.Parallel()
	bad := strings.Replace(sampleMeal, `"protein":32`, `"protein":"32g"`, 1)
	_, _, err := service.ParsePlan(planJSON(7, bad))
	if !errors.Is(err, service.ErrInvalidMealShape) {
		t.Fatalf("expected invalid meal shape, got %v", err)
	}

	missing := `{"name":"Toast","ingredients":[],"instructions":[],"prepTime":"2 min"}`
	_, _, err = service.ParsePlan(planJSON(7, missing))
	if !errors.Is(err, service.ErrInvalidMealShape) {
		t.Fatalf("expected invalid meal shape for missing macros, got %v", err)
	}
}

func TestParsePlanReportsEmptyDays(t *testing.T) {
	t.Parallel()
	_, report, err := service.ParsePlan(planJSON(7, ""))
	if err != nil {
		t.Fatalf("empty meal lists are tolerated: %v", err)
	}
	if len(report.DegenerateDays) != 7 {
		t.Fatalf("expected 7 degenerate days, got %v", report.DegenerateDays)
	}
}

func TestCheckMealCounts(t *testing.T) {
	t.Parallel()
	plan, report, err := service.ParsePlan(planJSON(7, sampleMeal+","+sampleMeal))
	if err != nil {
		t.Fatalf("parse plan: %v", err)
	}
	service.CheckMealCounts(plan, 3, &report)
	if len(report.MealCountMismatch) != 7 {
		t.Fatalf("expected every day flagged, got %v", report.MealCountMismatch)
	}
}

func TestParseSwapOptions(t *testing.T) {
	t.Parallel()
	three := "[" + strings.Join([]string{sampleMeal, sampleMeal, sampleMeal}, ",") + "]"
	meals, err := service.ParseSwapOptions(three, service.SwapQuick)
	if err != nil {
		t.Fatalf("quick swap: %v", err)
	}
	if len(meals) != 3 {
		t.Fatalf("expected 3 options, got %d", len(meals))
	}
	if meals[0].Type != "" {
		t.Fatalf("swap options carry no meal type, got %q", meals[0].Type)
	}

	two := "[" + sampleMeal + "," + sampleMeal + "]"
	if _, err := service.ParseSwapOptions(two, service.SwapQuick); !errors.Is(err, service.ErrInvalidMealShape) {
		t.Fatalf("expected invalid meal shape for two options, got %v", err)
	}

	custom, err := service.ParseSwapOptions("```json\n"+sampleMeal+"\n```", service.SwapCustom)
	if err != nil {
		t.Fatalf("custom swap: %v", err)
	}
	if len(custom) != 1 || custom[0].Name != "Greek Yogurt Bowl" {
		t.Fatalf("unexpected custom option: %+v", custom)
	}
	if _, err := service.ParseSwapOptions(three, service.SwapCustom); !errors.Is(err, service.ErrInvalidMealShape) {
		t.Fatalf("custom swap must be a single object, got %v", err)
	}
}

func TestParsePlanAcceptsLooseFieldTypes(t *testing.T) {
	t.Parallel()
	meal := `{"type":"lunch","name":"Rice Bowl","ingredients":[{"item":"rice","grams":"100"},{"item":"salmon","grams":"150g"},{"item":"nori","grams":"2 sheets"}],"instructions":["Cook"],"macros":{"calories":550,"protein":40,"carbs":60,"fats":12},"prepTime":5}`
	days := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		days = append(days, fmt.Sprintf(`{"day":%d,"meals":[%s]}`, i, meal))
	}
	raw := fmt.Sprintf(`{"week":1,"days":[%s]}`, strings.Join(days, ","))

	plan, _, err := service.ParsePlan(raw)
	if err != nil {
		t.Fatalf("parse plan: %v", err)
	}
	if plan.Days[0].Day != "Monday" || plan.Days[6].Day != "Sunday" {
		t.Fatalf("expected indexes labelled by position, got %q..%q", plan.Days[0].Day, plan.Days[6].Day)
	}
	got := plan.Days[3].Meals[0]
	if got.PrepTime != "5" {
		t.Fatalf("expected numeric prepTime kept as text, got %q", got.PrepTime)
	}
	if got.Ingredients[0].Grams != 100 || got.Ingredients[1].Grams != 150 {
		t.Fatalf("expected text grams parsed, got %+v", got.Ingredients)
	}
	if got.Ingredients[2].Grams != 0 || got.Ingredients[2].Descriptive != "2 sheets" {
		t.Fatalf("expected non-numeric grams kept as descriptive, got %+v", got.Ingredients[2])
	}
}

func TestParsePlanRejectsObjectPrepTime(t *testing.T) {
	t.Parallel()
	meal := strings.Replace(sampleMeal, `"prepTime":"5 min"`, `"prepTime":{"minutes":5}`, 1)
	_, _, err := service.ParsePlan(planJSON(7, meal))
	if !errors.Is(err, service.ErrInvalidPlanShape) {
		t.Fatalf("expected ErrInvalidPlanShape, got %v", err)
	}
}
