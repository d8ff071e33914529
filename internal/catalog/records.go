package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Record is one cataloged media file.
type Record struct {
	ID int64
	// Filename is the imported file's name as supplied by the caller.
	Filename string
	// CapturedAt is kept verbatim; it participates in the synthetic
	// "<filename>-<datetime>" import id and must not be reformatted.
	CapturedAt string
	Flags      int64
	CreatedAt  time.Time
}

// ratingMask covers the low three flag bits holding the star rating offset by
// one, so a zero value means unrated.
const ratingMask = 0x7

// Rating returns the record's star rating, -1 when unrated.
func (r *Record) Rating() int {
	return int(r.Flags&ratingMask) - 1
}

// AddRecord inserts a new record and returns it with its assigned id.
func (s *Store) AddRecord(ctx context.Context, filename, capturedAt string) (*Record, error) {
	if filename == "" {
		return nil, errors.New("filename is required")
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO records (filename, captured_at, flags, created_at) VALUES (?, ?, 0, ?)`,
		filename,
		capturedAt,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetRecord(ctx, id)
}

// GetRecord fetches a record by identifier. Returns nil when absent.
func (s *Store) GetRecord(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, filename, captured_at, flags, created_at FROM records WHERE id = ?`,
		id,
	)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return record, nil
}

// ListRecords returns all records ordered by creation time.
func (s *Store) ListRecords(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, filename, captured_at, flags, created_at FROM records ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// SetRating stores a star rating (0-5) in the record's flag bits, or clears
// it when stars is negative.
func (s *Store) SetRating(ctx context.Context, id int64, stars int) error {
	if stars > 5 {
		return fmt.Errorf("rating %d out of range", stars)
	}
	stored := 0
	if stars >= 0 {
		stored = stars + 1
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE records SET flags = (flags & ~?) | ? WHERE id = ?`,
		ratingMask,
		stored,
		id,
	)
	if err != nil {
		return fmt.Errorf("set rating: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("record %d not found", id)
	}
	return nil
}

// Tag associates a named tag with a record, creating the tag on first use.
func (s *Store) Tag(ctx context.Context, id int64, name string) error {
	if name == "" {
		return errors.New("tag name is required")
	}
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO tags (name) VALUES (?)`, name); err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO tagged_records (tag_id, record_id)
         SELECT id, ? FROM tags WHERE name = ?`,
		id,
		name,
	)
	if err != nil {
		return fmt.Errorf("tag record: %w", err)
	}
	return nil
}

// Untag removes a tag association from a record.
func (s *Store) Untag(ctx context.Context, id int64, name string) error {
	_, err := s.db.ExecContext(
		ctx,
		`DELETE FROM tagged_records WHERE record_id = ? AND tag_id IN (SELECT id FROM tags WHERE name = ?)`,
		id,
		name,
	)
	if err != nil {
		return fmt.Errorf("untag record: %w", err)
	}
	return nil
}

// TagsOf returns the tag names attached to a record, sorted by name.
func (s *Store) TagsOf(ctx context.Context, id int64) ([]string, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT t.name FROM tags t JOIN tagged_records tr ON tr.tag_id = t.id
         WHERE tr.record_id = ? ORDER BY t.name`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("record tags: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// SetColorLabel attaches a color label (0-4) to a record.
func (s *Store) SetColorLabel(ctx context.Context, id int64, color int) error {
	if color < 0 || color > 4 {
		return fmt.Errorf("color label %d out of range", color)
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO color_labels (record_id, color) VALUES (?, ?)`,
		id,
		color,
	)
	if err != nil {
		return fmt.Errorf("set color label: %w", err)
	}
	return nil
}

// RemoveColorLabel detaches a color label from a record.
func (s *Store) RemoveColorLabel(ctx context.Context, id int64, color int) error {
	_, err := s.db.ExecContext(
		ctx,
		`DELETE FROM color_labels WHERE record_id = ? AND color = ?`,
		id,
		color,
	)
	if err != nil {
		return fmt.Errorf("remove color label: %w", err)
	}
	return nil
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id         int64
		filename   string
		capturedAt sql.NullString
		flags      int64
		createdRaw string
	)
	if err := scanner.Scan(&id, &filename, &capturedAt, &flags, &createdRaw); err != nil {
		return nil, err
	}

	record := &Record{
		ID:         id,
		Filename:   filename,
		CapturedAt: capturedAt.String,
		Flags:      flags,
	}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		record.CreatedAt = created
	}
	return record, nil
}
