package mealcoach

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alecrj/nutrition/internal/app"
	"github.com/alecrj/nutrition/internal/config"
	"github.com/alecrj/nutrition/internal/db"
	"github.com/alecrj/nutrition/internal/logging"
	"github.com/alecrj/nutrition/internal/model"
	"github.com/alecrj/nutrition/internal/provider/anthropic"
	"github.com/alecrj/nutrition/internal/proxy"
	"github.com/alecrj/nutrition/internal/service"
	"github.com/alecrj/nutrition/internal/store"
)

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		return err
	}
	return run(sqldb)
}

// session bundles what a coach command needs: persisted state, effective
// configuration and a logger.
type session struct {
	cmd    *cobra.Command
	db     *sql.DB
	kv     *store.Fallback
	state  *service.State
	cfg    config.Config
	logger *slog.Logger
}

func withSession(cmd *cobra.Command, run func(*session) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog := logging.New(cfg.Log)
	defer closeLog()

	return withDB(func(sqldb *sql.DB) error {
		stored, err := service.ListConfig(sqldb)
		if err != nil {
			return err
		}
		if err := cfg.ApplyStored(stored); err != nil {
			return err
		}
		kv := store.NewFallback(store.NewSQLite(sqldb), logger)
		s := &session{
			cmd:    cmd,
			db:     sqldb,
			kv:     kv,
			state:  service.NewState(kv),
			cfg:    cfg,
			logger: logger,
		}
		return run(s)
	})
}

func loadConfig() (config.Config, error) {
	if envFile != "" {
		return config.Load(envFile)
	}
	return config.Load()
}

func (s *session) out() io.Writer {
	return s.cmd.OutOrStdout()
}

// persisted turns a storage failure into a warning; the command's result
// still stands for this run.
func (s *session) persisted(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, service.ErrStorageUnavailable) {
		fmt.Fprintf(s.cmd.ErrOrStderr(), "warning: could not save changes: %v\n", err)
		return nil
	}
	return err
}

// coach always returns a usable coach for stored-state operations; the error
// reports a missing generator backend.
func (s *session) coach() (*service.Coach, error) {
	coach := &service.Coach{
		State:   s.state,
		Timeout: s.cfg.Timeout,
		Logger:  s.logger,
	}
	client, err := newClient(s.cfg)
	if err != nil {
		return coach, err
	}
	coach.Client = client
	return coach, nil
}

// newClient talks to the API directly when a key is set, otherwise through
// the configured proxy.
func newClient(cfg config.Config) (*anthropic.Client, error) {
	switch {
	case cfg.APIKey != "":
		return &anthropic.Client{APIKey: cfg.APIKey, Model: cfg.Model}, nil
	case cfg.ProxyURL != "":
		return &anthropic.Client{BaseURL: cfg.ProxyURL, Path: proxy.Route, Model: cfg.Model}, nil
	default:
		return nil, fmt.Errorf("no coach backend configured: set CLAUDE_API_KEY or run `mealcoach config set --proxy-url <url>`")
	}
}

func (s *session) requireProfile() (model.UserProfile, error) {
	p, ok, err := s.state.LoadProfile()
	if err != nil {
		return model.UserProfile{}, err
	}
	if !ok {
		return model.UserProfile{}, fmt.Errorf("no profile yet; run `mealcoach onboard` first")
	}
	return p, nil
}

func (s *session) requirePlan() (model.MealPlan, error) {
	plan, ok, err := s.state.LoadMealPlan()
	if err != nil {
		return model.MealPlan{}, err
	}
	if !ok {
		return model.MealPlan{}, fmt.Errorf("no meal plan yet; run `mealcoach onboard` or `mealcoach plan generate`")
	}
	return plan, nil
}

// resolveDay picks the 1-based day from args, or the stored current day.
func (s *session) resolveDay(args []string, plan model.MealPlan) (int, error) {
	if len(args) == 0 {
		day, err := s.state.LoadCurrentDay()
		if err != nil {
			return 0, err
		}
		if day < 0 || day >= len(plan.Days) {
			day = 0
		}
		return day, nil
	}
	return parseDayArg(args[0], len(plan.Days))
}

// parseDayArg accepts 1-7 or a day name and returns a 0-based index.
func parseDayArg(raw string, days int) (int, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 1 || n > days {
			return 0, fmt.Errorf("day must be between 1 and %d", days)
		}
		return n - 1, nil
	}
	for i, name := range model.DayNames {
		if i < days && strings.EqualFold(name, raw) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("invalid day %q (use 1-%d or a day name)", raw, days)
}

func formatMacros(m model.Macros) string {
	return fmt.Sprintf("%.0f kcal | P %.0fg | C %.0fg | F %.0fg", m.Calories, m.Protein, m.Carbs, m.Fats)
}

func formatTargets(m model.MacroTargets) string {
	return fmt.Sprintf("%d kcal | P %dg | C %dg | F %dg", m.Calories, m.Protein, m.Carbs, m.Fats)
}
