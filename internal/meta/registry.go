package meta

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"lightbox/internal/logging"
)

// KeyDefinition describes one attribute key of the catalog.
type KeyDefinition struct {
	ID           uint32
	Tagname      string
	DisplayName  string
	Internal     bool
	Visible      bool
	Private      bool
	DisplayOrder int32
}

// Subkey returns the suffix after the last dot of the tagname. It serves as
// the stable handle for per-key settings.
func (d KeyDefinition) Subkey() string {
	if i := strings.LastIndexByte(d.Tagname, '.'); i >= 0 {
		return d.Tagname[i+1:]
	}
	return d.Tagname
}

// SettingsStore persists per-key runtime settings.
type SettingsStore interface {
	Setting(ctx context.Context, name string) (string, bool, error)
	SetSetting(ctx context.Context, name, value string) error
	SetSettingDefault(ctx context.Context, name, value string) error
}

// ImportSettingName returns the settings key holding a key's import-on-ingest
// flag.
func ImportSettingName(subkey string) string {
	return "meta/" + subkey + "/import"
}

// Registry is the in-memory catalog of key definitions, ordered by display
// order. One instance is shared by all components; a single mutex guards it
// because lookups can come from background work.
type Registry struct {
	mu       sync.Mutex
	db       *sql.DB
	settings SettingsStore
	keys     []KeyDefinition
	log      *slog.Logger
}

// NewRegistry creates an empty registry. Call Load before first use.
func NewRegistry(db *sql.DB, settings SettingsStore, logger *slog.Logger) *Registry {
	return &Registry{
		db:       db,
		settings: settings,
		log:      logging.NewComponentLogger(logger, "registry"),
	}
}

// Load replaces the catalog wholesale from the persistent store, ordered by
// display order, and ensures every key has a default import setting.
func (r *Registry) Load(ctx context.Context) error {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT key_id, tagname, display_name, internal, visible, private, display_order
         FROM key_catalog ORDER BY display_order`,
	)
	if err != nil {
		return fmt.Errorf("load key catalog: %w", err)
	}
	defer rows.Close()

	var keys []KeyDefinition
	for rows.Next() {
		var (
			def                     KeyDefinition
			internal, visible, priv int
		)
		if err := rows.Scan(&def.ID, &def.Tagname, &def.DisplayName, &internal, &visible, &priv, &def.DisplayOrder); err != nil {
			return fmt.Errorf("scan key definition: %w", err)
		}
		def.Internal = internal != 0
		def.Visible = visible != 0
		def.Private = priv != 0
		keys = append(keys, def)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate key catalog: %w", err)
	}

	for _, def := range keys {
		if err := r.ensureImportDefault(ctx, def); err != nil {
			return err
		}
	}

	r.mu.Lock()
	r.keys = keys
	r.mu.Unlock()

	r.log.Debug("key catalog loaded", logging.Args(logging.Int("keys", len(keys)))...)
	return nil
}

// Insert persists a new key definition, assigns its generated id, and
// prepends it to the in-memory catalog. A duplicate tagname yields
// ErrKeyExists.
func (r *Registry) Insert(ctx context.Context, def *KeyDefinition) error {
	if def == nil || strings.TrimSpace(def.Tagname) == "" {
		return errors.New("tagname is required")
	}

	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO key_catalog (tagname, display_name, internal, visible, private, display_order)
         VALUES (?, ?, ?, ?, ?, ?)`,
		def.Tagname,
		def.DisplayName,
		boolToInt(def.Internal),
		boolToInt(def.Visible),
		boolToInt(def.Private),
		def.DisplayOrder,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrKeyExists, def.Tagname)
		}
		return fmt.Errorf("insert key %s: %w", def.Tagname, err)
	}

	// Read back the store-assigned id rather than trusting LastInsertId,
	// mirroring how the catalog treats key ids as store-owned.
	row := r.db.QueryRowContext(ctx, `SELECT key_id FROM key_catalog WHERE tagname = ?`, def.Tagname)
	if err := row.Scan(&def.ID); err != nil {
		return fmt.Errorf("read back key id for %s: %w", def.Tagname, err)
	}

	if err := r.ensureImportDefault(ctx, *def); err != nil {
		return err
	}

	r.mu.Lock()
	r.keys = append([]KeyDefinition{*def}, r.keys...)
	r.mu.Unlock()

	r.log.Info("key added", logging.Args(
		logging.String("tagname", def.Tagname),
		logging.Uint64("key_id", uint64(def.ID)),
	)...)
	return nil
}

// ByID returns the definition with the given key id.
func (r *Registry) ByID(id uint32) (KeyDefinition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, def := range r.keys {
		if def.ID == id {
			return def, true
		}
	}
	return KeyDefinition{}, false
}

// ByTagname returns the definition with the exact tagname.
func (r *Registry) ByTagname(tagname string) (KeyDefinition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, def := range r.keys {
		if def.Tagname == tagname {
			return def, true
		}
	}
	return KeyDefinition{}, false
}

// BySubkey returns the definition whose tagname ends in the given subkey.
func (r *Registry) BySubkey(subkey string) (KeyDefinition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, def := range r.keys {
		if def.Subkey() == subkey {
			return def, true
		}
	}
	return KeyDefinition{}, false
}

// KeyID resolves a name to a key id. The name matches as a prefix of a
// stored tagname, first match wins, so callers may pass a shortened handle
// such as "Xmp.dc.desc". Virtual key names never resolve here.
func (r *Registry) KeyID(name string) (uint32, bool) {
	if name == "" {
		return 0, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, def := range r.keys {
		if strings.HasPrefix(def.Tagname, name) {
			return def.ID, true
		}
	}
	return 0, false
}

// Keys returns a copy of the catalog in display order.
func (r *Registry) Keys() []KeyDefinition {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]KeyDefinition, len(r.keys))
	copy(out, r.keys)
	return out
}

// Resort re-sorts the in-memory catalog by display order. Order values are
// unique in practice, so stability across ties is not needed.
func (r *Registry) Resort() {
	r.mu.Lock()
	defer r.mu.Unlock()
	sort.Slice(r.keys, func(i, j int) bool {
		return r.keys[i].DisplayOrder < r.keys[j].DisplayOrder
	})
}

// ImportEnabled reports whether values for this key should be written on
// ingest. Internal keys are always imported; other keys consult their
// per-key setting.
func (r *Registry) ImportEnabled(ctx context.Context, def KeyDefinition) (bool, error) {
	if def.Internal {
		return true, nil
	}
	value, ok, err := r.settings.Setting(ctx, ImportSettingName(def.Subkey()))
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return value == "true", nil
}

// ensureImportDefault creates the per-key import setting the first time a
// key is seen. An existing value is never overwritten.
func (r *Registry) ensureImportDefault(ctx context.Context, def KeyDefinition) error {
	if err := r.settings.SetSettingDefault(ctx, ImportSettingName(def.Subkey()), "true"); err != nil {
		return fmt.Errorf("default import setting for %s: %w", def.Tagname, err)
	}
	return nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
