package service_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecrj/nutrition/internal/db"
	"github.com/alecrj/nutrition/internal/service"
	"github.com/alecrj/nutrition/internal/store"
)

func TestBackupAndRestore(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	st := service.NewState(store.NewSQLite(sqldb))
	if err := st.SaveProfile(testProfile(t)); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	out := filepath.Join(t.TempDir(), "backups", "mealcoach-test.db")
	info, err := service.CreateBackup(sqldb, out)
	if err != nil {
		t.Fatalf("create backup: %v", err)
	}
	if info.Checksum == "" || info.SizeBytes == 0 {
		t.Fatalf("unexpected backup info: %+v", info)
	}
	if _, err := service.CreateBackup(sqldb, out); err == nil {
		t.Fatalf("expected existing backup to be refused")
	}

	items, err := service.ListBackups(filepath.Dir(out))
	if err != nil || len(items) != 1 || items[0].Checksum != info.Checksum {
		t.Fatalf("unexpected backup list %+v (%v)", items, err)
	}

	target := filepath.Join(t.TempDir(), "restored.db")
	if err := service.RestoreBackup(out, target, false); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if err := service.RestoreBackup(out, target, false); err == nil {
		t.Fatalf("expected restore over existing db to need force")
	}

	restored, err := db.Open(target)
	if err != nil {
		t.Fatalf("open restored: %v", err)
	}
	defer restored.Close()
	p, ok, err := service.NewState(store.NewSQLite(restored)).LoadProfile()
	if err != nil || !ok || p.Name != testProfile(t).Name {
		t.Fatalf("restored profile mismatch: %+v ok=%v err=%v", p, ok, err)
	}
}

func TestRestoreRejectsChecksumMismatch(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	out := filepath.Join(t.TempDir(), "b.db")
	if _, err := service.CreateBackup(sqldb, out); err != nil {
		t.Fatalf("create backup: %v", err)
	}
	if err := os.WriteFile(out+".sha256", []byte("deadbeef\n"), 0o644); err != nil {
		t.Fatalf("write checksum: %v", err)
	}
	err := service.RestoreBackup(out, filepath.Join(t.TempDir(), "x.db"), false)
	if err == nil || !strings.Contains(err.Error(), "checksum mismatch") {
		t.Fatalf("expected checksum mismatch, got %v", err)
	}
}

func TestListBackupsMissingDir(t *testing.T) {
	t.Parallel()
	items, err := service.ListBackups(filepath.Join(t.TempDir(), "nope"))
	if err != nil || len(items) != 0 {
		t.Fatalf("expected empty list, got %v (%v)", items, err)
	}
}

func TestRunDoctorCleanState(t *testing.T) {
	t.Parallel()
	st, _ := newTestState(t)
	if err := st.SaveProfile(testProfile(t)); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	plan, _, err := service.ParsePlan(planJSON(7, sampleMeal))
	if err != nil {
		t.Fatalf("parse plan: %v", err)
	}
	if err := st.SaveMealPlan(plan); err != nil {
		t.Fatalf("save plan: %v", err)
	}
	report, err := service.RunDoctor(st, false)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if report.Checked != 2 || len(report.Issues) != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestRunDoctorFindsAndFixesCorruption(t *testing.T) {
	t.Parallel()
	st, kv := newTestState(t)
	seed := map[string]string{
		service.KeyMealPlan:       planJSON(6, sampleMeal),
		service.KeyCurrentDay:     "9",
		service.KeyCurrentWeek:    "two",
		service.KeyProgress:       `[{"id":"a","date":"2026-01-01","weight":80},{"id":"b","date":"2026-01-02","weight":-1}]`,
		service.KeyChatHistory:    "{not json",
		service.KeyCompletedMeals: `{"2026-01-01":["breakfast"],"yesterday":["lunch"]}`,
	}
	for k, v := range seed {
		if err := kv.Set(k, v); err != nil {
			t.Fatalf("seed %s: %v", k, err)
		}
	}

	report, err := service.RunDoctor(st, false)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(report.Issues) != len(seed) || report.Unfixed() != len(seed) {
		t.Fatalf("expected %d issues, got %+v", len(seed), report.Issues)
	}

	report, err = service.RunDoctor(st, true)
	if err != nil {
		t.Fatalf("doctor fix: %v", err)
	}
	if report.Unfixed() != 0 {
		t.Fatalf("expected everything fixed, got %+v", report.Issues)
	}

	if _, ok, _ := kv.Get(service.KeyMealPlan); ok {
		t.Fatalf("expected broken plan removed")
	}
	progress, err := st.LoadProgress()
	if err != nil || len(progress) != 1 || progress[0].ID != "a" {
		t.Fatalf("expected only valid progress entry kept, got %+v (%v)", progress, err)
	}
	ledger, err := st.LoadCompletedMeals()
	if err != nil || len(ledger) != 1 || len(ledger["2026-01-01"]) != 1 {
		t.Fatalf("expected invalid ledger date dropped, got %v (%v)", ledger, err)
	}
	day, err := st.LoadCurrentDay()
	if err != nil || day != 0 {
		t.Fatalf("expected day reset to default, got %d (%v)", day, err)
	}

	report, err = service.RunDoctor(st, false)
	if err != nil || len(report.Issues) != 0 {
		t.Fatalf("expected clean state after fix, got %+v (%v)", report, err)
	}
}
