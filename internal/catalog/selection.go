package catalog

import (
	"context"
	"fmt"
)

// Select adds record ids to the active selection set.
func (s *Store) Select(ctx context.Context, ids ...int64) error {
	for _, id := range ids {
		if _, err := s.db.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO selected_records (record_id) VALUES (?)`,
			id,
		); err != nil {
			return fmt.Errorf("select record %d: %w", id, err)
		}
	}
	return nil
}

// Deselect removes record ids from the active selection set.
func (s *Store) Deselect(ctx context.Context, ids ...int64) error {
	for _, id := range ids {
		if _, err := s.db.ExecContext(
			ctx,
			`DELETE FROM selected_records WHERE record_id = ?`,
			id,
		); err != nil {
			return fmt.Errorf("deselect record %d: %w", id, err)
		}
	}
	return nil
}

// ClearSelection empties the active selection set.
func (s *Store) ClearSelection(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM selected_records`); err != nil {
		return fmt.Errorf("clear selection: %w", err)
	}
	return nil
}

// SelectedRecords returns the active selection ordered by record id. It
// satisfies the meta package's selection resolver.
func (s *Store) SelectedRecords(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record_id FROM selected_records ORDER BY record_id`)
	if err != nil {
		return nil, fmt.Errorf("selected records: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
