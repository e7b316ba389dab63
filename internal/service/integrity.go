package service

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alecrj/nutrition/internal/model"
)

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

// CreateBackup writes a consistent snapshot with VACUUM INTO, so pages still
// in the WAL are included, plus a .sha256 file next to it.
func CreateBackup(db *sql.DB, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, fmt.Errorf("backup output path is required")
	}
	if _, err := os.Stat(outPath); err == nil {
		return BackupInfo{}, fmt.Errorf("backup %s already exists", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if _, err := db.Exec(`VACUUM INTO ?`, outPath); err != nil {
		return BackupInfo{}, fmt.Errorf("snapshot database: %w", err)
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

// RestoreBackup copies a verified backup over dbPath. Stale WAL files of the
// old database are removed so they cannot be replayed onto the restored one.
func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return fmt.Errorf("backup path and db path are required")
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return fmt.Errorf("target db already exists; use --force to overwrite")
		}
	}
	if expected, err := os.ReadFile(backupPath + ".sha256"); err == nil {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(expected)) != actual {
			return fmt.Errorf("backup checksum mismatch")
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", dbPath+suffix, err)
		}
	}
	return copyFile(backupPath, dbPath)
}

func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".db") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type DoctorIssue struct {
	Key     string `json:"key"`
	Problem string `json:"problem"`
	Fixed   bool   `json:"fixed,omitempty"`
}

type DoctorReport struct {
	Checked int           `json:"checked"`
	Issues  []DoctorIssue `json:"issues"`
}

func (r DoctorReport) Unfixed() int {
	n := 0
	for _, is := range r.Issues {
		if !is.Fixed {
			n++
		}
	}
	return n
}

// RunDoctor checks every stored value against the rules it was written
// under. With fix set, unreadable values are removed and invalid list items
// dropped; nothing valid is rewritten.
func RunDoctor(st *State, fix bool) (DoctorReport, error) {
	var report DoctorReport
	add := func(key, problem string, repair func() error) error {
		issue := DoctorIssue{Key: key, Problem: problem}
		if fix && repair != nil {
			if err := repair(); err != nil {
				return fmt.Errorf("doctor fix %s: %w", key, err)
			}
			issue.Fixed = true
		}
		report.Issues = append(report.Issues, issue)
		return nil
	}
	remove := func(key string) func() error {
		return func() error { return st.Clear(key) }
	}

	for _, key := range AllKeys {
		raw, ok, err := st.get(key)
		if err != nil {
			return report, err
		}
		if !ok {
			continue
		}
		report.Checked++

		var problem string
		var repair func() error
		switch key {
		case KeyUserProfile:
			var p model.UserProfile
			if err := json.Unmarshal([]byte(raw), &p); err != nil {
				problem, repair = "profile is not valid JSON", remove(key)
			} else if err := ValidateProfile(p); err != nil {
				problem = err.Error()
			} else if p.Macros == nil {
				problem = "profile has no macro targets"
				repair = func() error {
					if err := AttachMacros(&p); err != nil {
						return err
					}
					return st.SaveProfile(p)
				}
			}
		case KeyMealPlan:
			if _, _, err := ParsePlan(raw); err != nil {
				problem, repair = err.Error(), remove(key)
			}
		case KeyCurrentWeek, KeyCurrentDay:
			n, err := strconv.Atoi(raw)
			switch {
			case err != nil:
				problem, repair = "not a number", remove(key)
			case key == KeyCurrentWeek && n < 1:
				problem, repair = "week must be >= 1", remove(key)
			case key == KeyCurrentDay && (n < 0 || n >= model.DaysPerPlan):
				problem, repair = fmt.Sprintf("day must be 0-%d", model.DaysPerPlan-1), remove(key)
			}
		case KeyProgress:
			var entries []model.ProgressEntry
			if err := json.Unmarshal([]byte(raw), &entries); err != nil {
				problem, repair = "progress log is not valid JSON", remove(key)
				break
			}
			kept := entries[:0:0]
			for _, e := range entries {
				if e.Weight > 0 && !math.IsInf(e.Weight, 0) && !math.IsNaN(e.Weight) {
					kept = append(kept, e)
				}
			}
			if dropped := len(entries) - len(kept); dropped > 0 {
				problem = fmt.Sprintf("%d entries with invalid weight", dropped)
				repair = func() error { return st.SaveProgress(kept) }
			}
		case KeyChatHistory:
			var history []model.ChatMessage
			if err := json.Unmarshal([]byte(raw), &history); err != nil {
				problem, repair = "chat history is not valid JSON", remove(key)
			} else if len(history) > MaxChatHistory {
				problem = fmt.Sprintf("%d messages, more than %d", len(history), MaxChatHistory)
				repair = func() error { return st.SaveChatHistory(history) }
			}
		case KeyCompletedMeals:
			var ledger model.CompletionLedger
			if err := json.Unmarshal([]byte(raw), &ledger); err != nil {
				problem, repair = "completed meals are not valid JSON", remove(key)
				break
			}
			var bad []string
			for date := range ledger {
				if validateDate(date) != nil {
					bad = append(bad, date)
				}
			}
			if len(bad) > 0 {
				sort.Strings(bad)
				problem = "invalid dates: " + strings.Join(bad, ", ")
				repair = func() error {
					for _, d := range bad {
						delete(ledger, d)
					}
					return st.SaveCompletedMeals(ledger)
				}
			}
		}
		if problem != "" {
			if err := add(key, problem, repair); err != nil {
				return report, err
			}
		}
	}
	return report, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
