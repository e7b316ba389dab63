package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alecrj/nutrition/internal/model"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CompletionRequest struct {
	System    string
	Messages  []Message
	MaxTokens int
}

type ConstraintPriority string

const (
	// PriorityNever marks a safety constraint the generator must honour.
	PriorityNever ConstraintPriority = "never"
	// PriorityAvoid marks a preference the generator may break.
	PriorityAvoid ConstraintPriority = "avoid"
)

type Constraint struct {
	Priority ConstraintPriority `json:"priority"`
	Foods    []string           `json:"foods"`
}

// PlanRequest is everything sent for a 7-day plan. Allergies and dislikes are
// kept apart; they must never be merged into one list.
type PlanRequest struct {
	Targets    model.MacroTargets `json:"targets"`
	Allergies  Constraint         `json:"allergies"`
	Dislikes   Constraint         `json:"dislikes"`
	Dietary    []string           `json:"dietary"`
	Cooking    model.Cooking      `json:"cooking"`
	MealCount  int                `json:"mealCount"`
	Philosophy model.Philosophy   `json:"philosophy"`

	System string `json:"-"`
	User   string `json:"-"`
}

func (r PlanRequest) Completion() CompletionRequest {
	return CompletionRequest{
		System:   r.System,
		Messages: []Message{{Role: "user", Content: r.User}},
	}
}

const planSystemPrompt = "You are a supportive, knowledgeable AI nutrition coach creating personalized meal plans. " +
	"Your tone is warm, encouraging, and never judgmental. You understand that people want flexible, " +
	"sustainable plans that fit their real lives."

// BuildPlanRequest requires a profile with macros attached.
func BuildPlanRequest(p model.UserProfile) (PlanRequest, error) {
	if p.Macros == nil {
		return PlanRequest{}, fmt.Errorf("%w: macros have not been calculated", ErrInvalidProfile)
	}
	req := PlanRequest{
		Targets:    *p.Macros,
		Allergies:  Constraint{Priority: PriorityNever, Foods: copyList(p.Restrictions.Allergies)},
		Dislikes:   Constraint{Priority: PriorityAvoid, Foods: copyList(p.Restrictions.Dislikes)},
		Dietary:    copyList(p.Restrictions.Dietary),
		Cooking:    p.Cooking,
		MealCount:  p.MealFrequency,
		Philosophy: p.Philosophy,
		System:     planSystemPrompt,
	}
	req.User = renderPlanPrompt(p, req)
	return req, nil
}

func renderPlanPrompt(p model.UserProfile, req PlanRequest) string {
	t := req.Targets
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a personalized 7-day meal plan for %s.\n\n", p.Name)

	b.WriteString("USER PROFILE:\n")
	fmt.Fprintf(&b, "- Age: %d, Sex: %s\n", p.Stats.Age, p.Stats.Sex)
	fmt.Fprintf(&b, "- Goal: %s\n", humanize(string(p.Goal)))
	fmt.Fprintf(&b, "- Activity Level: %s\n", humanize(string(p.Stats.ActivityLevel)))
	fmt.Fprintf(&b, "- Philosophy: %s\n", humanize(string(req.Philosophy)))
	fmt.Fprintf(&b, "- Cooking: %s, max %s per meal\n", req.Cooking.Skill, req.Cooking.TimeAvailable)
	fmt.Fprintf(&b, "- Meals per day: %d\n\n", req.MealCount)

	b.WriteString("CRITICAL REQUIREMENTS:\n")
	writeConstraints(&b, req.Allergies, req.Dislikes, req.Dietary, "NEVER INCLUDE (ALLERGIES)", "Avoid when possible", "Dietary restrictions")
	b.WriteString("\n")

	b.WriteString("DAILY MACRO TARGETS:\n")
	fmt.Fprintf(&b, "- Calories: %d kcal\n- Protein: %dg\n- Carbs: %dg\n- Fat: %dg\n\n", t.Calories, t.Protein, t.Carbs, t.Fats)

	b.WriteString("RESPONSE FORMAT (MUST BE VALID JSON):\n")
	fmt.Fprintf(&b, `{
  "week": 1,
  "dailyTarget": {"calories": %d, "protein": %d, "carbs": %d, "fats": %d},
  "days": [
    {
      "day": "Monday",
      "meals": [
        {
          "type": "breakfast",
          "name": "Greek Yogurt Power Bowl",
          "ingredients": [
            {"item": "Greek yogurt (plain, non-fat)", "grams": 200, "descriptive": "1 cup / standard container"}
          ],
          "instructions": ["Add yogurt to bowl", "Top with berries"],
          "macros": {"protein": 25, "carbs": 35, "fats": 8, "calories": 310},
          "prepTime": "5 min"
        }
      ]
    }
  ]
}
`, t.Calories, t.Protein, t.Carbs, t.Fats)

	b.WriteString("\nIMPORTANT GUIDELINES:\n")
	b.WriteString("1. Include exactly 7 days, Monday through Sunday\n")
	fmt.Fprintf(&b, "2. Each day should have exactly %d meals/snacks\n", req.MealCount)
	b.WriteString("3. Daily totals should be within 50 calories of target\n")
	b.WriteString("4. Include both gram measurements AND descriptive portions (palm-sized, fist-sized, etc.)\n")
	fmt.Fprintf(&b, "5. Keep recipes under %s prep time\n", req.Cooking.TimeAvailable)
	fmt.Fprintf(&b, "6. Match their %s philosophy\n", req.Philosophy)
	b.WriteString("7. Be creative with variety, different meals each day\n")
	b.WriteString("8. Instructions should be simple, clear steps\n")
	if len(req.Allergies.Foods) > 0 {
		fmt.Fprintf(&b, "9. ABSOLUTELY NO foods from the allergy list: %s\n", strings.Join(req.Allergies.Foods, ", "))
	}
	b.WriteString("\nRespond ONLY with valid JSON. No additional text before or after.")
	return b.String()
}

// writeConstraints always emits allergies before dislikes.
func writeConstraints(b *strings.Builder, allergies, dislikes Constraint, dietary []string, allergyLabel, dislikeLabel, dietLabel string) {
	if len(allergies.Foods) > 0 {
		fmt.Fprintf(b, "- %s: %s\n", allergyLabel, strings.Join(allergies.Foods, ", "))
	}
	if dislikeLabel != "" && len(dislikes.Foods) > 0 {
		fmt.Fprintf(b, "- %s: %s\n", dislikeLabel, strings.Join(dislikes.Foods, ", "))
	}
	if len(dietary) > 0 {
		fmt.Fprintf(b, "- %s: %s\n", dietLabel, strings.Join(dietary, ", "))
	}
}

type SwapKind string

const (
	SwapQuick  SwapKind = "quick"
	SwapCustom SwapKind = "custom"
)

// SwapRequest asks for replacements of one meal. Custom is the free-text
// intent and is required for SwapCustom.
type SwapRequest struct {
	Kind   SwapKind
	Meal   model.Meal
	Custom string
}

const swapSystemPrompt = "You are a supportive AI nutrition coach helping users swap meals. " +
	"Always provide options that match their dietary needs and preferences. Be creative and encouraging."

func BuildSwapRequest(p model.UserProfile, req SwapRequest) (CompletionRequest, error) {
	allergies := Constraint{Priority: PriorityNever, Foods: p.Restrictions.Allergies}
	dislikes := Constraint{Priority: PriorityAvoid, Foods: p.Restrictions.Dislikes}
	m := req.Meal.Macros

	var b strings.Builder
	switch req.Kind {
	case SwapQuick:
		current, err := json.MarshalIndent(req.Meal, "", "  ")
		if err != nil {
			return CompletionRequest{}, fmt.Errorf("encode current meal: %w", err)
		}
		b.WriteString("Generate 3 quick meal swap options with similar macros.\n\n")
		fmt.Fprintf(&b, "CURRENT MEAL:\n%s\n\n", current)
		b.WriteString("USER REQUIREMENTS:\n")
		writeConstraints(&b, allergies, dislikes, p.Restrictions.Dietary, "NEVER include", "Avoid", "Diet")
		fmt.Fprintf(&b, "- Philosophy: %s\n- Max prep time: %s\n\n", p.Philosophy, p.Cooking.TimeAvailable)
		b.WriteString("TARGET MACROS (within 50 cal):\n")
		fmt.Fprintf(&b, "- Protein: %sg ± 5g\n- Carbs: %sg ± 10g\n- Fats: %sg ± 5g\n- Calories: %s ± 50\n\n",
			num(m.Protein), num(m.Carbs), num(m.Fats), num(m.Calories))
		b.WriteString("Respond with ONLY valid JSON array of 3 meal options in the same format as the current meal.")
	case SwapCustom:
		custom := strings.TrimSpace(req.Custom)
		if custom == "" {
			return CompletionRequest{}, fmt.Errorf("%w: describe the meal you want", ErrInvalidInput)
		}
		fmt.Fprintf(&b, "Generate a custom meal based on this request: %q\n\n", custom)
		b.WriteString("USER REQUIREMENTS:\n")
		writeConstraints(&b, allergies, dislikes, p.Restrictions.Dietary, "NEVER include", "", "Diet")
		fmt.Fprintf(&b, "- Philosophy: %s\n- Max prep time: %s\n\n", p.Philosophy, p.Cooking.TimeAvailable)
		b.WriteString("TARGET MACROS (try to match but flexibility ok):\n")
		fmt.Fprintf(&b, "- Protein: %sg\n- Carbs: %sg\n- Fats: %sg\n- Calories: %s\n\n",
			num(m.Protein), num(m.Carbs), num(m.Fats), num(m.Calories))
		b.WriteString(`Respond with ONLY a valid JSON object for ONE meal in this format:
{
  "name": "...",
  "ingredients": [...],
  "instructions": [...],
  "macros": {...},
  "prepTime": "..."
}`)
	default:
		return CompletionRequest{}, fmt.Errorf("%w: swap kind %q", ErrInvalidInput, req.Kind)
	}

	return CompletionRequest{
		System:   swapSystemPrompt,
		Messages: []Message{{Role: "user", Content: b.String()}},
	}, nil
}

// BuildChatRequest replays the stored history and appends the new message.
func BuildChatRequest(p model.UserProfile, history []model.ChatMessage, message string) (CompletionRequest, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return CompletionRequest{}, fmt.Errorf("%w: message is empty", ErrInvalidInput)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s's supportive AI nutrition coach. Your personality:\n\n", p.Name)
	b.WriteString("- Never judgmental, life happens!\n- Flexible and solution-oriented\n- Educational without preaching\n- Encouraging and warm\n")
	fmt.Fprintf(&b, "- Match their philosophy: %s\n\n", humanize(string(p.Philosophy)))
	b.WriteString("USER CONTEXT:\n")
	fmt.Fprintf(&b, "- Goal: %s\n", humanize(string(p.Goal)))
	if p.Macros != nil {
		fmt.Fprintf(&b, "- Daily targets: %d cal, %dg protein\n", p.Macros.Calories, p.Macros.Protein)
	}
	fmt.Fprintf(&b, "- Allergies: %s\n", joinOrNone(p.Restrictions.Allergies))
	fmt.Fprintf(&b, "- Dislikes: %s\n\n", joinOrNone(p.Restrictions.Dislikes))
	b.WriteString("Guidelines:\n- Keep responses conversational (2-4 sentences usually)\n- Be warm and supportive, never robotic\n")
	b.WriteString("- Include specific advice or numbers when helpful\n- Celebrate wins, normalize challenges\n- Provide actionable suggestions")

	messages := make([]Message, 0, len(history)+1)
	for _, h := range history {
		messages = append(messages, Message{Role: h.Role, Content: h.Content})
	}
	messages = append(messages, Message{Role: "user", Content: message})
	return CompletionRequest{System: b.String(), Messages: messages}, nil
}

type LifeEventKind string

const (
	EventAteOffPlan LifeEventKind = "ate_off_plan"
	EventRestaurant LifeEventKind = "restaurant"
	EventNotHungry  LifeEventKind = "not_hungry"
)

type LifeEvent struct {
	Kind        LifeEventKind
	Description string
	Calories    int
	Restaurant  string
	Cuisine     string
	MealType    string
}

const lifeEventSystemPrompt = "You are a supportive AI nutrition coach helping users navigate real-life situations. " +
	"Provide practical, non-judgmental advice and adjusted meal suggestions."

func BuildLifeEventRequest(p model.UserProfile, ev LifeEvent) (CompletionRequest, error) {
	var calories, protein int
	if p.Macros != nil {
		calories, protein = p.Macros.Calories, p.Macros.Protein
	}
	var prompt string
	switch ev.Kind {
	case EventAteOffPlan:
		estimate := "unknown"
		if ev.Calories > 0 {
			estimate = fmt.Sprint(ev.Calories)
		}
		prompt = fmt.Sprintf("User ate off-plan: %s\nEstimated: %s calories\n\nProvide:\n"+
			"1. Supportive response (no judgment!)\n2. Adjusted dinner option if needed\n3. Quick tips to get back on track\n\n"+
			"User's daily target: %d cal\nPhilosophy: %s", ev.Description, estimate, calories, p.Philosophy)
	case EventRestaurant:
		prompt = fmt.Sprintf("User is at: %s\nCuisine type: %s\n\nSuggest:\n1. 3-5 menu items that fit their macros\n"+
			"2. Ordering tips\n3. What to avoid\n\nTarget: %dg protein, ~%d cal for this meal\nAllergies: %s",
			orDefault(ev.Restaurant, "a restaurant"), orDefault(ev.Cuisine, "unknown"),
			protein, roundDiv(calories, 3), joinOrNone(p.Restrictions.Allergies))
	case EventNotHungry:
		prompt = fmt.Sprintf("User is not hungry for %s\n\nProvide:\n1. Why it's okay to listen to your body\n"+
			"2. Suggestion: skip, smaller portion, or save for later?\n3. How to adjust rest of day\n\nTheir approach: %s",
			orDefault(ev.MealType, "their next meal"), p.Philosophy)
	default:
		prompt = strings.TrimSpace(ev.Description)
	}
	if strings.TrimSpace(prompt) == "" {
		return CompletionRequest{}, fmt.Errorf("%w: event description is empty", ErrInvalidInput)
	}
	return CompletionRequest{
		System:   lifeEventSystemPrompt,
		Messages: []Message{{Role: "user", Content: prompt}},
	}, nil
}

func humanize(s string) string {
	return strings.Replace(s, "_", " ", 1)
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func roundDiv(a, b int) int {
	return int(float64(a)/float64(b) + 0.5)
}

func num(v float64) string {
	return fmt.Sprintf("%g", v)
}

func copyList(items []string) []string {
	if len(items) == 0 {
		return []string{}
	}
	out := make([]string, len(items))
	copy(out, items)
	return out
}
