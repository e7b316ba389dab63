package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alecrj/nutrition/internal/logging"
	"github.com/alecrj/nutrition/internal/service"
	"github.com/alecrj/nutrition/internal/store"
)

type fakeCompleter struct {
	mu       sync.Mutex
	replies  []string
	err      error
	block    bool
	requests []service.CompletionRequest
}

func (f *fakeCompleter) Complete(ctx context.Context, req service.CompletionRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.replies) == 0 {
		return "", errors.New("no reply queued")
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

func newTestCoach(t *testing.T, client *fakeCompleter) (*service.Coach, *service.State) {
	t.Helper()
	st, _ := newTestState(t)
	return &service.Coach{
		Client: client,
		State:  st,
		Logger: logging.Discard(),
		Now:    func() time.Time { return time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC) },
	}, st
}

func TestGeneratePlanPersistsState(t *testing.T) {
	t.Parallel()
	client := &fakeCompleter{replies: []string{"```json\n" + planJSON(7, sampleMeal) + "\n```"}}
	coach, st := newTestCoach(t, client)
	_ = st.SaveCurrentDay(5)

	p := testProfile(t)
	p.Macros = nil
	profile, plan, report, err := coach.GeneratePlan(context.Background(), p)
	if err != nil {
		t.Fatalf("generate plan: %v", err)
	}
	if profile.Macros == nil || profile.Macros.Calories != 2192 {
		t.Fatalf("expected macros attached, got %+v", profile.Macros)
	}
	if len(plan.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(plan.Days))
	}
	if len(report.MealCountMismatch) != 7 {
		t.Fatalf("one meal per day against frequency 3 should be reported, got %v", report.MealCountMismatch)
	}
	if ok, _ := st.HasOnboarded(); !ok {
		t.Fatalf("expected onboarded after plan generation")
	}
	if day, _ := st.LoadCurrentDay(); day != 0 {
		t.Fatalf("expected day reset to 0, got %d", day)
	}
	if len(client.requests) != 1 || !strings.Contains(client.requests[0].Messages[0].Content, "NEVER INCLUDE (ALLERGIES)") {
		t.Fatalf("unexpected request: %+v", client.requests)
	}
}

func TestGeneratePlanRejectsInvalidProfileWithoutCalling(t *testing.T) {
	t.Parallel()
	client := &fakeCompleter{}
	coach, _ := newTestCoach(t, client)
	p := testProfile(t)
	p.Stats.Age = 0
	_, _, _, err := coach.GeneratePlan(context.Background(), p)
	if !errors.Is(err, service.ErrInvalidProfile) {
		t.Fatalf("expected invalid profile, got %v", err)
	}
	if len(client.requests) != 0 {
		t.Fatalf("generator must not be called for an invalid profile")
	}
}

func TestGeneratePlanShapeErrorIsGenerationFailure(t *testing.T) {
	t.Parallel()
	client := &fakeCompleter{replies: []string{planJSON(6, sampleMeal)}}
	coach, st := newTestCoach(t, client)
	_, _, _, err := coach.GeneratePlan(context.Background(), testProfile(t))
	if !errors.Is(err, service.ErrPlanGenerationFailed) || !errors.Is(err, service.ErrInvalidPlanShape) {
		t.Fatalf("expected plan generation failure wrapping shape error, got %v", err)
	}
	if !service.IsRetryable(err) {
		t.Fatalf("expected retryable error")
	}
	if _, ok, _ := st.LoadMealPlan(); ok {
		t.Fatalf("no partial plan may be stored")
	}
}

func TestGeneratePlanTimeout(t *testing.T) {
	t.Parallel()
	client := &fakeCompleter{block: true}
	coach, _ := newTestCoach(t, client)
	coach.Timeout = 10 * time.Millisecond
	_, _, _, err := coach.GeneratePlan(context.Background(), testProfile(t))
	if !errors.Is(err, context.DeadlineExceeded) || !errors.Is(err, service.ErrPlanGenerationFailed) {
		t.Fatalf("expected deadline exceeded plan failure, got %v", err)
	}
	if !service.IsRetryable(err) {
		t.Fatalf("timeouts are retryable")
	}
}

func TestGenerateSwapAndReplaceMeal(t *testing.T) {
	t.Parallel()
	options := "[" + strings.Join([]string{sampleMeal, sampleMeal, sampleMeal}, ",") + "]"
	client := &fakeCompleter{replies: []string{options}}
	coach, st := newTestCoach(t, client)
	if err := st.SaveMealPlan(twoMealPlan()); err != nil {
		t.Fatalf("save plan: %v", err)
	}

	p := testProfile(t)
	current := twoMealPlan().Days[0].Meals[1]
	meals, err := coach.GenerateSwap(context.Background(), p, service.SwapRequest{Kind: service.SwapQuick, Meal: current})
	if err != nil {
		t.Fatalf("generate swap: %v", err)
	}
	plan, err := coach.ReplaceMeal(0, "lunch", meals[2])
	if err != nil {
		t.Fatalf("replace meal: %v", err)
	}
	if got := plan.Days[0].Meals[1]; got.Name != "Greek Yogurt Bowl" || got.Type != "lunch" {
		t.Fatalf("unexpected replaced meal: %+v", got)
	}
	stored, _, _ := st.LoadMealPlan()
	if stored.Days[0].Meals[1].Name != "Greek Yogurt Bowl" {
		t.Fatalf("replacement not persisted")
	}
}

func TestGenerateSwapFailure(t *testing.T) {
	t.Parallel()
	client := &fakeCompleter{replies: []string{"I can't do that"}}
	coach, _ := newTestCoach(t, client)
	_, err := coach.GenerateSwap(context.Background(), testProfile(t), service.SwapRequest{Kind: service.SwapCustom, Custom: "pizza"})
	if !errors.Is(err, service.ErrSwapGenerationFailed) {
		t.Fatalf("expected swap generation failure, got %v", err)
	}
}

func TestChatRecordsExchange(t *testing.T) {
	t.Parallel()
	client := &fakeCompleter{replies: []string{"  Great question! Aim for 30g protein at breakfast.  ", "You got this."}}
	coach, st := newTestCoach(t, client)
	p := testProfile(t)

	reply, err := coach.Chat(context.Background(), p, "How much protein at breakfast?")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "Great question! Aim for 30g protein at breakfast." {
		t.Fatalf("unexpected reply %q", reply)
	}
	if _, err := coach.Chat(context.Background(), p, "Thanks"); err != nil {
		t.Fatalf("second chat: %v", err)
	}
	history, _ := st.LoadChatHistory()
	if len(history) != 4 || history[1].Role != "assistant" || history[2].Content != "Thanks" {
		t.Fatalf("unexpected history: %+v", history)
	}
	// the second request replays the first exchange
	if got := len(client.requests[1].Messages); got != 3 {
		t.Fatalf("expected 3 messages in second request, got %d", got)
	}
}

func TestChatFailureStoresNothing(t *testing.T) {
	t.Parallel()
	client := &fakeCompleter{err: errors.New("connection reset")}
	coach, st := newTestCoach(t, client)
	_, err := coach.Chat(context.Background(), testProfile(t), "hello")
	if !errors.Is(err, service.ErrChatFailed) {
		t.Fatalf("expected chat failure, got %v", err)
	}
	history, _ := st.LoadChatHistory()
	if len(history) != 0 {
		t.Fatalf("expected no history, got %+v", history)
	}
}

func TestLifeEvent(t *testing.T) {
	t.Parallel()
	client := &fakeCompleter{replies: []string{"Try the grilled fish tacos."}}
	coach, _ := newTestCoach(t, client)
	reply, err := coach.LifeEvent(context.Background(), testProfile(t), service.LifeEvent{
		Kind:       service.EventRestaurant,
		Restaurant: "Chipotle",
		Cuisine:    "Mexican",
	})
	if err != nil {
		t.Fatalf("life event: %v", err)
	}
	if reply != "Try the grilled fish tacos." {
		t.Fatalf("unexpected reply %q", reply)
	}
	if !strings.Contains(client.requests[0].Messages[0].Content, "Chipotle") {
		t.Fatalf("restaurant missing from prompt")
	}
}


func TestChatKeepsUnreadableHistory(t *testing.T) {
	t.Parallel()
	kv := store.NewMemory()
	const corrupt = `[{"role":"user","content":"earlier"`
	if err := kv.Set(service.KeyChatHistory, corrupt); err != nil {
		t.Fatalf("seed history: %v", err)
	}
	coach := &service.Coach{
		Client: &fakeCompleter{replies: []string{"Drink water."}},
		State:  service.NewState(kv),
		Logger: logging.Discard(),
	}

	reply, err := coach.Chat(context.Background(), testProfile(t), "Any tips?")
	if reply != "Drink water." {
		t.Fatalf("expected reply despite unreadable history, got %q", reply)
	}
	if !errors.Is(err, service.ErrStorageUnavailable) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if raw, _, _ := kv.Get(service.KeyChatHistory); raw != corrupt {
		t.Fatalf("expected stored history untouched, got %q", raw)
	}
}
