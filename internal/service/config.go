package service

import (
	"database/sql"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// Keys stored in app_config. Environment variables take precedence.
const (
	ConfigProxyURL = "proxy_url"
	ConfigModel    = "model"
	ConfigTimeout  = "timeout"
)

var configKeys = []string{ConfigModel, ConfigProxyURL, ConfigTimeout}

func SetConfig(db *sql.DB, key, value string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return fmt.Errorf("%w: config key is required", ErrInvalidInput)
	}
	if !slices.Contains(configKeys, key) {
		return fmt.Errorf("%w: unknown config key %q (use %s)", ErrInvalidInput, key, strings.Join(configKeys, ", "))
	}
	value = strings.TrimSpace(value)
	if key == ConfigProxyURL && value != "" {
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: proxy url must be an http(s) URL", ErrInvalidInput)
		}
	}
	_, err := db.Exec(`
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, value)
	if err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

func GetConfig(db *sql.DB, key string) (string, bool, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return "", false, fmt.Errorf("%w: config key is required", ErrInvalidInput)
	}
	var value string
	err := db.QueryRow(`SELECT value FROM app_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get config %q: %w", key, err)
	}
	return value, true, nil
}

func ListConfig(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM app_config ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list config: %w", err)
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate config: %w", err)
	}
	return out, nil
}
