package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Setting returns a runtime setting value and whether it exists.
func (s *Store) Setting(ctx context.Context, name string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read setting %q: %w", name, err)
	}
	return value, true, nil
}

// SetSetting stores a runtime setting, overwriting any existing value.
func (s *Store) SetSetting(ctx context.Context, name, value string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO settings (name, value) VALUES (?, ?)
         ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		name,
		value,
	)
	if err != nil {
		return fmt.Errorf("write setting %q: %w", name, err)
	}
	return nil
}

// SetSettingDefault stores a setting only when it does not exist yet.
func (s *Store) SetSettingDefault(ctx context.Context, name, value string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO settings (name, value) VALUES (?, ?)`,
		name,
		value,
	)
	if err != nil {
		return fmt.Errorf("default setting %q: %w", name, err)
	}
	return nil
}
