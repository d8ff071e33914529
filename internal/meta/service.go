package meta

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"lightbox/internal/logging"
	"lightbox/internal/undo"
)

// NoRecord routes an operation to the active selection instead of a single
// record.
const NoRecord int64 = -1

func validRecord(id int64) bool {
	return id > 0
}

// SelectionResolver supplies the active working set of record ids when a
// caller passes NoRecord.
type SelectionResolver interface {
	SelectedRecords(ctx context.Context) ([]int64, error)
}

// KeyValue pairs a key name with a proposed value.
type KeyValue struct {
	Tagname string
	Value   string
}

// Action selects the merge rule turning a current snapshot and a proposal
// into the new snapshot.
type Action int

const (
	// ActionSet replaces the snapshot with the proposal verbatim.
	ActionSet Action = iota
	// ActionAdd merges proposed entries into the snapshot.
	ActionAdd
	// ActionRemove drops the named keys from the snapshot.
	ActionRemove
)

// Service orchestrates attribute mutations: snapshot before, compute after,
// reduce to a minimal delta, persist, and optionally record an undoable
// change.
type Service struct {
	db        *sql.DB
	registry  *Registry
	selection SelectionResolver
	history   *undo.History
	log       *slog.Logger
}

// NewService wires the mutation executor to its collaborators. history may
// be nil when undo recording is not wanted.
func NewService(db *sql.DB, registry *Registry, selection SelectionResolver, history *undo.History, logger *slog.Logger) *Service {
	return &Service{
		db:        db,
		registry:  registry,
		selection: selection,
		history:   history,
		log:       logging.NewComponentLogger(logger, "meta"),
	}
}

// Registry returns the key definition registry the service resolves names
// against.
func (s *Service) Registry() *Registry {
	return s.registry
}

// History returns the undo ledger, nil when recording is disabled.
func (s *Service) History() *undo.History {
	return s.history
}

// ReadSnapshot returns all attribute entries of a record. NULL values are
// normalized to empty strings and duplicate key rows are folded keep-first,
// so legacy multi-valued rows stay readable without violating the
// one-value-per-key convention.
func (s *Service) ReadSnapshot(ctx context.Context, recordID int64) (Snapshot, error) {
	if !validRecord(recordID) {
		return nil, nil
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT key_id, value FROM attributes WHERE record_id = ?`,
		recordID,
	)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %d: %w", recordID, err)
	}
	defer rows.Close()

	var snapshot Snapshot
	seen := make(map[uint32]struct{})
	for rows.Next() {
		var (
			keyID uint32
			value sql.NullString
		)
		if err := rows.Scan(&keyID, &value); err != nil {
			return nil, err
		}
		if _, dup := seen[keyID]; dup {
			continue
		}
		seen[keyID] = struct{}{}
		snapshot = append(snapshot, Entry{KeyID: keyID, Value: value.String})
	}
	return snapshot, rows.Err()
}

// Get returns the values stored under a key name. Virtual keys resolve to
// their synthesized multi-valued reads; an unresolvable name yields an empty
// result. recordID may be NoRecord to read across the active selection.
func (s *Service) Get(ctx context.Context, recordID int64, name string) ([]string, error) {
	keyID, ok := s.registry.KeyID(name)
	if !ok {
		if virtual := virtualKeyFor(name); virtual != "" {
			return s.readVirtual(ctx, virtual, recordID)
		}
		return nil, nil
	}

	if validRecord(recordID) {
		rows, err := s.db.QueryContext(
			ctx,
			`SELECT value FROM attributes WHERE record_id = ? AND key_id = ?`,
			recordID,
			keyID,
		)
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", name, err)
		}
		return collectValues(rows)
	}

	ids, err := s.selection.SelectedRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve selection: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, keyID)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT value FROM attributes WHERE record_id IN (`+makePlaceholders(len(ids))+`) AND key_id = ? ORDER BY value`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("get %s across selection: %w", name, err)
	}
	return collectValues(rows)
}

// Set merges a single key/value onto one record or the active selection.
// An unresolvable key name is a silent no-op.
func (s *Service) Set(ctx context.Context, recordID int64, name, value string, recordUndo bool) error {
	keyID, ok := s.registry.KeyID(name)
	if !ok {
		return nil
	}
	ids, err := s.resolveRecords(ctx, recordID)
	if err != nil || len(ids) == 0 {
		return err
	}
	proposed := Snapshot{{KeyID: keyID, Value: CleanValue(value)}}
	s.execute(ctx, ids, proposed, nil, ActionAdd, recordUndo, "set "+name)
	return nil
}

// SetMany merges a key/value list onto a set of records. Unknown keys are
// filtered out before the diff engine runs; an empty result is a no-op.
func (s *Service) SetMany(ctx context.Context, recordIDs []int64, pairs []KeyValue, recordUndo bool) error {
	proposed := s.resolvePairs(pairs)
	if len(proposed) == 0 || len(recordIDs) == 0 {
		return nil
	}
	s.execute(ctx, recordIDs, proposed, nil, ActionAdd, recordUndo, "edit metadata")
	return nil
}

// SetList applies a key/value list with SET semantics when clearFirst is
// true (discarding entries not in the list) and ADD semantics otherwise.
func (s *Service) SetList(ctx context.Context, recordIDs []int64, pairs []KeyValue, clearFirst, recordUndo bool) error {
	if len(recordIDs) == 0 {
		return nil
	}
	proposed := s.resolvePairs(pairs)
	action := ActionAdd
	label := "edit metadata"
	if clearFirst {
		action = ActionSet
		label = "replace metadata"
	} else if len(proposed) == 0 {
		return nil
	}
	s.execute(ctx, recordIDs, proposed, nil, action, recordUndo, label)
	return nil
}

// Clear removes every non-internal, visible key from the given records.
// Internal and hidden keys retain their values.
func (s *Service) Clear(ctx context.Context, recordIDs []int64, recordUndo bool) error {
	var keys []uint32
	for _, def := range s.registry.Keys() {
		if !def.Internal && def.Visible {
			keys = append(keys, def.ID)
		}
	}
	if len(keys) == 0 || len(recordIDs) == 0 {
		return nil
	}
	s.execute(ctx, recordIDs, nil, keys, ActionRemove, recordUndo, "clear metadata")
	return nil
}

// SetImport writes a value during ingest, honoring the per-key import flag.
// Internal keys are always written; the write never records undo.
func (s *Service) SetImport(ctx context.Context, recordID int64, name, value string) error {
	if !validRecord(recordID) {
		return nil
	}
	def, ok := s.registry.ByTagname(name)
	if !ok {
		return nil
	}
	imported, err := s.registry.ImportEnabled(ctx, def)
	if err != nil {
		return err
	}
	if !imported {
		return nil
	}
	proposed := Snapshot{{KeyID: def.ID, Value: CleanValue(value)}}
	s.execute(ctx, []int64{recordID}, proposed, nil, ActionAdd, false, "import "+name)
	return nil
}

// AlreadyImported reports whether a record carrying the synthetic
// "<filename>-<datetime>" import id exists anywhere in the attribute table.
func (s *Service) AlreadyImported(ctx context.Context, filename, datetime string) (bool, error) {
	if filename == "" || datetime == "" {
		return false, nil
	}
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM attributes WHERE value = ?`,
		filename+"-"+datetime,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("already imported probe: %w", err)
	}
	return count > 0, nil
}

// execute runs one mutation against each record independently: a failure on
// one record is logged and does not roll back or stop the others. All
// per-record changes of one call land in a single undo group.
func (s *Service) execute(ctx context.Context, recordIDs []int64, proposed Snapshot, keys []uint32, action Action, recordUndo bool, label string) {
	var group *undo.Group
	if recordUndo && s.history != nil {
		group = undo.NewGroup(label)
	}

	for _, id := range recordIDs {
		if !validRecord(id) {
			continue
		}
		before, err := s.ReadSnapshot(ctx, id)
		if err != nil {
			s.log.Error("snapshot read failed", logging.Args(logging.Int64("record", id), logging.Error(err))...)
			continue
		}

		var after Snapshot
		switch action {
		case ActionSet:
			after = proposed.Clone()
		case ActionAdd:
			after = Merge(before, proposed)
		case ActionRemove:
			after = RemoveKeys(before, keys)
		default:
			after = before.Clone()
		}

		change := &attributeChange{svc: s, recordID: id, before: before, after: after}
		if err := change.Apply(ctx); err != nil {
			s.log.Error("delta apply failed", logging.Args(logging.Int64("record", id), logging.Error(err))...)
			continue
		}
		if group != nil {
			group.Add(change)
		}
	}

	if group != nil && !group.Empty() {
		s.history.Record(group)
	}
}

// applyDelta persists a reduced delta for one record: one bulk delete and
// one bulk insert inside a single transaction.
func (s *Service) applyDelta(ctx context.Context, recordID int64, delta Delta) error {
	if delta.Empty() {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delta tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if len(delta.Remove) > 0 {
		args := make([]any, 0, len(delta.Remove)+1)
		args = append(args, recordID)
		for _, key := range delta.Remove {
			args = append(args, key)
		}
		query := `DELETE FROM attributes WHERE record_id = ? AND key_id IN (` + makePlaceholders(len(delta.Remove)) + `)`
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("bulk remove record %d: %w", recordID, err)
		}
	}

	if len(delta.Add) > 0 {
		query := `INSERT INTO attributes (record_id, key_id, value) VALUES `
		args := make([]any, 0, len(delta.Add)*3)
		for i, entry := range delta.Add {
			if i > 0 {
				query += ", "
			}
			query += "(?, ?, ?)"
			args = append(args, recordID, entry.KeyID, entry.Value)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("bulk add record %d: %w", recordID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delta record %d: %w", recordID, err)
	}
	return nil
}

func (s *Service) resolveRecords(ctx context.Context, recordID int64) ([]int64, error) {
	if validRecord(recordID) {
		return []int64{recordID}, nil
	}
	ids, err := s.selection.SelectedRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve selection: %w", err)
	}
	return ids, nil
}

// resolvePairs translates key names to catalog entries, dropping unknown
// keys and normalizing values.
func (s *Service) resolvePairs(pairs []KeyValue) Snapshot {
	var proposed Snapshot
	for _, pair := range pairs {
		keyID, ok := s.registry.KeyID(pair.Tagname)
		if !ok {
			continue
		}
		proposed = append(proposed, Entry{KeyID: keyID, Value: CleanValue(pair.Value)})
	}
	return proposed
}

// attributeChange is one record's reversible edit. Apply reduces the stored
// snapshots to a delta and persists it; Invert swaps them. The stored
// snapshots are trusted on replay, never re-read.
type attributeChange struct {
	svc      *Service
	recordID int64
	before   Snapshot
	after    Snapshot
}

func (c *attributeChange) Apply(ctx context.Context) error {
	return c.svc.applyDelta(ctx, c.recordID, Reduce(c.before, c.after))
}

func (c *attributeChange) Invert() undo.Change {
	return &attributeChange{svc: c.svc, recordID: c.recordID, before: c.after, after: c.before}
}

func collectValues(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	var values []string
	for rows.Next() {
		var value sql.NullString
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		values = append(values, value.String)
	}
	return values, rows.Err()
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
