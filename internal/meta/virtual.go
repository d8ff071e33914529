package meta

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Virtual keys are read-only synthetic attributes addressable through the
// same name surface as catalog keys. They have no key id, so the write path
// never reaches them.
const (
	// VirtualRating derives from the record's flag bits; the stored value
	// is offset by one, so the read applies -1.
	VirtualRating = "Xmp.xmp.Rating"
	// VirtualTags derives from the tag association tables.
	VirtualTags = "Xmp.dc.subject"
	// VirtualColorLabels derives from the color label table.
	VirtualColorLabels = "Xmp.darktable.colorlabels"
)

// virtualKeyFor returns the virtual key a name addresses, or "" when none.
// A virtual name matches as a prefix of the requested name.
func virtualKeyFor(name string) string {
	switch {
	case strings.HasPrefix(name, VirtualRating):
		return VirtualRating
	case strings.HasPrefix(name, VirtualTags):
		return VirtualTags
	case strings.HasPrefix(name, VirtualColorLabels):
		return VirtualColorLabels
	default:
		return ""
	}
}

// readVirtual synthesizes a virtual key's values for one record or, when
// recordID is NoRecord, across the active selection. These reads bypass the
// diff engine entirely.
func (s *Service) readVirtual(ctx context.Context, virtual string, recordID int64) ([]string, error) {
	single := validRecord(recordID)

	var (
		query string
		args  []any
	)
	switch virtual {
	case VirtualRating:
		if single {
			query = `SELECT flags FROM records WHERE id = ?`
			args = append(args, recordID)
		} else {
			ids, err := s.selectionArgs(ctx)
			if err != nil || len(ids) == 0 {
				return nil, err
			}
			query = `SELECT flags FROM records WHERE id IN (` + makePlaceholders(len(ids)) + `)`
			args = ids
		}
	case VirtualTags:
		if single {
			query = `SELECT t.name FROM tags t JOIN tagged_records tr ON tr.tag_id = t.id WHERE tr.record_id = ? ORDER BY t.name`
			args = append(args, recordID)
		} else {
			ids, err := s.selectionArgs(ctx)
			if err != nil || len(ids) == 0 {
				return nil, err
			}
			query = `SELECT t.name FROM tags t JOIN tagged_records tr ON tr.tag_id = t.id WHERE tr.record_id IN (` + makePlaceholders(len(ids)) + `) ORDER BY t.name`
			args = ids
		}
	case VirtualColorLabels:
		if single {
			query = `SELECT color FROM color_labels WHERE record_id = ? ORDER BY color`
			args = append(args, recordID)
		} else {
			ids, err := s.selectionArgs(ctx)
			if err != nil || len(ids) == 0 {
				return nil, err
			}
			query = `SELECT color FROM color_labels WHERE record_id IN (` + makePlaceholders(len(ids)) + `)`
			args = ids
		}
	default:
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("read virtual %s: %w", virtual, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		switch virtual {
		case VirtualRating:
			var flags int64
			if err := rows.Scan(&flags); err != nil {
				return nil, err
			}
			values = append(values, strconv.Itoa(int(flags&0x7)-1))
		case VirtualColorLabels:
			var color int
			if err := rows.Scan(&color); err != nil {
				return nil, err
			}
			values = append(values, strconv.Itoa(color))
		default:
			var name string
			if err := rows.Scan(&name); err != nil {
				return nil, err
			}
			values = append(values, name)
		}
	}
	return values, rows.Err()
}

func (s *Service) selectionArgs(ctx context.Context) ([]any, error) {
	ids, err := s.selection.SelectedRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve selection: %w", err)
	}
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	return args, nil
}
