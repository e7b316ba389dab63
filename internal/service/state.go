package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/alecrj/nutrition/internal/model"
	"github.com/alecrj/nutrition/internal/store"
)

const (
	KeyUserProfile    = "aimealcoach_userProfile"
	KeyMealPlan       = "aimealcoach_mealPlan"
	KeyCurrentWeek    = "aimealcoach_currentWeek"
	KeyCurrentDay     = "aimealcoach_currentDay"
	KeyProgress       = "aimealcoach_progress"
	KeyChatHistory    = "aimealcoach_chatHistory"
	KeyCompletedMeals = "aimealcoach_completedMeals"
)

var AllKeys = []string{
	KeyUserProfile,
	KeyMealPlan,
	KeyCurrentWeek,
	KeyCurrentDay,
	KeyProgress,
	KeyChatHistory,
	KeyCompletedMeals,
}

const MaxChatHistory = 40

// State is the typed view over the coach's key-value store. Every value is
// independently loadable and clearable.
type State struct {
	kv store.KV
}

func NewState(kv store.KV) *State {
	return &State{kv: kv}
}

func (s *State) SaveProfile(p model.UserProfile) error {
	return s.saveJSON(KeyUserProfile, p)
}

func (s *State) LoadProfile() (model.UserProfile, bool, error) {
	var p model.UserProfile
	ok, err := s.loadJSON(KeyUserProfile, &p)
	return p, ok, err
}

func (s *State) SaveMealPlan(plan model.MealPlan) error {
	return s.saveJSON(KeyMealPlan, plan)
}

func (s *State) LoadMealPlan() (model.MealPlan, bool, error) {
	var plan model.MealPlan
	ok, err := s.loadJSON(KeyMealPlan, &plan)
	return plan, ok, err
}

func (s *State) SaveCurrentWeek(week int) error {
	return s.set(KeyCurrentWeek, strconv.Itoa(week))
}

// LoadCurrentWeek defaults to 1.
func (s *State) LoadCurrentWeek() (int, error) {
	return s.loadInt(KeyCurrentWeek, 1)
}

func (s *State) SaveCurrentDay(day int) error {
	return s.set(KeyCurrentDay, strconv.Itoa(day))
}

// LoadCurrentDay defaults to 0, the first day of the plan.
func (s *State) LoadCurrentDay() (int, error) {
	return s.loadInt(KeyCurrentDay, 0)
}

func (s *State) SaveProgress(entries []model.ProgressEntry) error {
	if entries == nil {
		entries = []model.ProgressEntry{}
	}
	return s.saveJSON(KeyProgress, entries)
}

func (s *State) LoadProgress() ([]model.ProgressEntry, error) {
	var entries []model.ProgressEntry
	if _, err := s.loadJSON(KeyProgress, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SaveChatHistory keeps only the most recent MaxChatHistory messages.
func (s *State) SaveChatHistory(history []model.ChatMessage) error {
	if len(history) > MaxChatHistory {
		history = history[len(history)-MaxChatHistory:]
	}
	if history == nil {
		history = []model.ChatMessage{}
	}
	return s.saveJSON(KeyChatHistory, history)
}

func (s *State) LoadChatHistory() ([]model.ChatMessage, error) {
	var history []model.ChatMessage
	if _, err := s.loadJSON(KeyChatHistory, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *State) SaveCompletedMeals(ledger model.CompletionLedger) error {
	if ledger == nil {
		ledger = model.CompletionLedger{}
	}
	return s.saveJSON(KeyCompletedMeals, ledger)
}

func (s *State) LoadCompletedMeals() (model.CompletionLedger, error) {
	ledger := model.CompletionLedger{}
	if _, err := s.loadJSON(KeyCompletedMeals, &ledger); err != nil {
		return nil, err
	}
	return ledger, nil
}

func (s *State) Clear(key string) error {
	if err := s.kv.Remove(key); err != nil {
		return fmt.Errorf("clear %s: %w", key, err)
	}
	return nil
}

// ClearAll removes every key and reports all failures together.
func (s *State) ClearAll() error {
	var errs []error
	for _, key := range AllKeys {
		if err := s.Clear(key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *State) HasOnboarded() (bool, error) {
	_, hasProfile, err := s.get(KeyUserProfile)
	if err != nil {
		return false, err
	}
	_, hasPlan, err := s.get(KeyMealPlan)
	if err != nil {
		return false, err
	}
	return hasProfile && hasPlan, nil
}

func (s *State) get(key string) (string, bool, error) {
	v, ok, err := s.kv.Get(key)
	if err != nil {
		return "", false, fmt.Errorf("load %s: %w", key, err)
	}
	return v, ok, nil
}

func (s *State) set(key, value string) error {
	if err := s.kv.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *State) saveJSON(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.set(key, string(b))
}

func (s *State) loadJSON(key string, dst any) (bool, error) {
	raw, ok, err := s.get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("%w: decode %s: %v", ErrStorageUnavailable, key, err)
	}
	return true, nil
}

func (s *State) loadInt(key string, def int) (int, error) {
	raw, ok, err := s.get(key)
	if err != nil {
		return def, err
	}
	if !ok || raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def, fmt.Errorf("%w: decode %s: %v", ErrStorageUnavailable, key, err)
	}
	return n, nil
}
