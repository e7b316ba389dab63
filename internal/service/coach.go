package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alecrj/nutrition/internal/model"
)

const DefaultGenerationTimeout = 30 * time.Second

type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Coach runs the generator-backed flows and persists their results. Calls
// are never retried; the caller decides whether to try again.
type Coach struct {
	Client  Completer
	State   *State
	Timeout time.Duration
	Logger  *slog.Logger
	Now     func() time.Time
}

func (c *Coach) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *Coach) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Coach) complete(ctx context.Context, req CompletionRequest) (string, error) {
	if c.Client == nil {
		return "", errors.New("no generator configured")
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultGenerationTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	text, err := c.Client.Complete(ctx, req)
	if err != nil {
		c.logger().Warn("generator call failed", "error", err, "elapsed", time.Since(started))
		return "", err
	}
	c.logger().Debug("generator call finished", "elapsed", time.Since(started), "bytes", len(text))
	return text, nil
}

// GeneratePlan recalculates the profile's macros, requests a 7-day plan and
// validates it. On success the profile and plan are stored and the week and
// day pointers reset. A storage failure is returned alongside the plan.
func (c *Coach) GeneratePlan(ctx context.Context, p model.UserProfile) (model.UserProfile, model.MealPlan, PlanReport, error) {
	if err := ValidateProfile(p); err != nil {
		return p, model.MealPlan{}, PlanReport{}, err
	}
	if err := AttachMacros(&p); err != nil {
		return p, model.MealPlan{}, PlanReport{}, err
	}
	req, err := BuildPlanRequest(p)
	if err != nil {
		return p, model.MealPlan{}, PlanReport{}, err
	}
	text, err := c.complete(ctx, req.Completion())
	if err != nil {
		return p, model.MealPlan{}, PlanReport{}, wrapGeneration(ErrPlanGenerationFailed, err)
	}
	plan, report, err := ParsePlan(text)
	if err != nil {
		return p, model.MealPlan{}, report, wrapGeneration(ErrPlanGenerationFailed, err)
	}
	CheckMealCounts(plan, p.MealFrequency, &report)
	if len(report.DegenerateDays) > 0 {
		c.logger().Warn("plan has days without meals", "days", report.DegenerateDays)
	}
	if len(report.MealCountMismatch) > 0 {
		c.logger().Warn("plan meal count differs from requested frequency",
			"days", report.MealCountMismatch, "frequency", p.MealFrequency)
	}

	if c.State == nil {
		return p, plan, report, nil
	}
	err = errors.Join(
		c.State.SaveProfile(p),
		c.State.SaveMealPlan(plan),
		c.State.SaveCurrentWeek(1),
		c.State.SaveCurrentDay(0),
	)
	return p, plan, report, err
}

// GenerateSwap asks for replacement options for one meal. Quick swaps return
// three options, custom swaps one.
func (c *Coach) GenerateSwap(ctx context.Context, p model.UserProfile, req SwapRequest) ([]model.Meal, error) {
	completion, err := BuildSwapRequest(p, req)
	if err != nil {
		return nil, err
	}
	text, err := c.complete(ctx, completion)
	if err != nil {
		return nil, wrapGeneration(ErrSwapGenerationFailed, err)
	}
	meals, err := ParseSwapOptions(text, req.Kind)
	if err != nil {
		return nil, wrapGeneration(ErrSwapGenerationFailed, err)
	}
	return meals, nil
}

func (c *Coach) ReplaceMeal(dayIndex int, mealType string, meal model.Meal) (model.MealPlan, error) {
	plan, ok, err := c.State.LoadMealPlan()
	if err != nil {
		return model.MealPlan{}, err
	}
	if !ok {
		return model.MealPlan{}, fmt.Errorf("%w: no meal plan yet", ErrInvalidInput)
	}
	plan, err = ApplySwap(plan, dayIndex, mealType, meal)
	if err != nil {
		return model.MealPlan{}, err
	}
	return plan, c.State.SaveMealPlan(plan)
}

// Chat sends message with the stored history and records both sides of the
// exchange. A storage failure is returned alongside the reply.
func (c *Coach) Chat(ctx context.Context, p model.UserProfile, message string) (string, error) {
	history, loadErr := c.State.LoadChatHistory()
	if loadErr != nil {
		c.logger().Warn("chat history unavailable, answering without it", "error", loadErr)
		history = nil
	}
	req, err := BuildChatRequest(p, history, message)
	if err != nil {
		return "", err
	}
	reply, err := c.complete(ctx, req)
	if err != nil {
		return "", wrapGeneration(ErrChatFailed, err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", wrapGeneration(ErrChatFailed, errors.New("empty reply"))
	}
	if loadErr != nil {
		// Saving now would overwrite the unreadable history with this exchange.
		return reply, fmt.Errorf("chat history not saved: %w", loadErr)
	}
	now := c.now().UTC()
	history = append(history,
		model.ChatMessage{Role: "user", Content: strings.TrimSpace(message), Timestamp: now},
		model.ChatMessage{Role: "assistant", Content: reply, Timestamp: now},
	)
	return reply, c.State.SaveChatHistory(history)
}

// LifeEvent asks for advice on an off-plan situation. Nothing is stored.
func (c *Coach) LifeEvent(ctx context.Context, p model.UserProfile, ev LifeEvent) (string, error) {
	req, err := BuildLifeEventRequest(p, ev)
	if err != nil {
		return "", err
	}
	reply, err := c.complete(ctx, req)
	if err != nil {
		return "", wrapGeneration(ErrChatFailed, err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", wrapGeneration(ErrChatFailed, errors.New("empty reply"))
	}
	return reply, nil
}
