package service

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alecrj/nutrition/internal/model"
)

const dateLayout = "2006-01-02"

func Today(t time.Time) string {
	return t.Format(dateLayout)
}

func validateDate(date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", ErrInvalidInput, date)
	}
	return nil
}

// MarkMealComplete records mealType as done on date. Marking the same meal
// twice leaves the ledger unchanged.
func (s *State) MarkMealComplete(date, mealType string) error {
	if err := validateDate(date); err != nil {
		return err
	}
	mealType = strings.TrimSpace(mealType)
	if mealType == "" {
		return fmt.Errorf("%w: meal type is required", ErrInvalidInput)
	}
	ledger, err := s.LoadCompletedMeals()
	if err != nil {
		return err
	}
	if slices.Contains(ledger[date], mealType) {
		return nil
	}
	ledger[date] = append(ledger[date], mealType)
	return s.SaveCompletedMeals(ledger)
}

func (s *State) IsMealComplete(date, mealType string) (bool, error) {
	ledger, err := s.LoadCompletedMeals()
	if err != nil {
		return false, err
	}
	return slices.Contains(ledger[date], mealType), nil
}

func (s *State) CompletedMeals(date string) ([]string, error) {
	ledger, err := s.LoadCompletedMeals()
	if err != nil {
		return nil, err
	}
	return slices.Clone(ledger[date]), nil
}

// AddProgressEntry appends a weigh-in. ID, date and timestamp are filled from
// now when empty.
func (s *State) AddProgressEntry(entry model.ProgressEntry, now time.Time) (model.ProgressEntry, error) {
	if math.IsNaN(entry.Weight) || math.IsInf(entry.Weight, 0) || entry.Weight <= 0 {
		return model.ProgressEntry{}, fmt.Errorf("%w: weight must be a positive number", ErrInvalidInput)
	}
	if entry.Date == "" {
		entry.Date = Today(now)
	} else if err := validateDate(entry.Date); err != nil {
		return model.ProgressEntry{}, err
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = now.UTC()
	}
	entry.Notes = strings.TrimSpace(entry.Notes)

	entries, err := s.LoadProgress()
	if err != nil {
		return model.ProgressEntry{}, err
	}
	entries = append(entries, entry)
	if err := s.SaveProgress(entries); err != nil {
		return entry, err
	}
	return entry, nil
}

// ListProgress returns every weigh-in, newest first.
func (s *State) ListProgress() ([]model.ProgressEntry, error) {
	entries, err := s.LoadProgress()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries, nil
}

type Trend string

const (
	TrendDown    Trend = "down"
	TrendUp      Trend = "up"
	TrendNeutral Trend = "neutral"
)

type ProgressStats struct {
	CurrentWeight float64 `json:"currentWeight"`
	StartWeight   float64 `json:"startWeight"`
	Change        float64 `json:"change"`
	Trend         Trend   `json:"trend"`
	Entries       int     `json:"entries"`
}

// ComputeStats summarizes weigh-ins in timestamp order. With no entries both
// weights fall back to initialWeight.
func ComputeStats(entries []model.ProgressEntry, initialWeight float64) ProgressStats {
	if len(entries) == 0 {
		return ProgressStats{CurrentWeight: initialWeight, StartWeight: initialWeight, Trend: TrendNeutral}
	}
	sorted := slices.Clone(entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	start := sorted[0].Weight
	current := sorted[len(sorted)-1].Weight
	change := current - start
	trend := TrendNeutral
	switch {
	case change < 0:
		trend = TrendDown
	case change > 0:
		trend = TrendUp
	}
	return ProgressStats{
		CurrentWeight: current,
		StartWeight:   start,
		Change:        change,
		Trend:         trend,
		Entries:       len(sorted),
	}
}
