// Package storage persists client-state documents under fixed keys in the state database.
// Each key holds one whole document; every write replaces it.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/stockboard/internal/utils"
)

// Fixed storage keys
const (
	KeyAuth      = "auth-storage"
	KeyPortfolio = "portfolio-storage"
	KeyUI        = "ui-storage"
	KeyApp       = "app-storage"
)

// AllKeys lists every key the application persists.
var AllKeys = []string{KeyAuth, KeyPortfolio, KeyUI, KeyApp}

var validKeys = func() map[string]bool {
	m := make(map[string]bool, len(AllKeys))
	for _, k := range AllKeys {
		m[k] = true
	}
	return m
}()

func validateKey(key string) error {
	if !validKeys[key] {
		return fmt.Errorf("invalid storage key: %s", key)
	}
	return nil
}

// Entry describes a stored document without decoding it.
type Entry struct {
	Key       string    `json:"key"`
	Codec     string    `json:"codec"`
	SizeBytes int       `json:"size_bytes"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository reads and writes documents in the storage table.
// New documents are written with the configured codec; existing rows are decoded with
// the codec they were written with.
type Repository struct {
	db    *sql.DB
	codec Codec
	log   zerolog.Logger
}

// NewRepository creates a storage repository writing with codec.
func NewRepository(db *sql.DB, codec Codec, log zerolog.Logger) *Repository {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Repository{
		db:    db,
		codec: codec,
		log:   log.With().Str("repository", "storage").Logger(),
	}
}

// Load decodes the document stored under key into v.
// Returns false (and leaves v untouched) if nothing is stored.
func (r *Repository) Load(key string, v interface{}) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	var data []byte
	var codecName string
	err := r.db.QueryRow("SELECT data, codec FROM storage WHERE key = ?", key).Scan(&data, &codecName)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}

	codec, err := CodecByName(codecName)
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if err := codec.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}

	return true, nil
}

// Save replaces the document stored under key with v.
func (r *Repository) Save(key string, v interface{}) error {
	if err := validateKey(key); err != nil {
		return err
	}

	data, err := r.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	done := utils.MeasureDBQuery("save "+key, r.log)
	_, err = r.db.Exec(`
		INSERT INTO storage (key, data, codec, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			codec = excluded.codec,
			updated_at = excluded.updated_at
	`, key, data, r.codec.Name(), time.Now().Unix())
	done()
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}

	r.log.Debug().Str("key", key).Int("bytes", len(data)).Msg("Saved document")
	return nil
}

// Delete removes the document stored under key. Deleting a missing key is not an error.
func (r *Repository) Delete(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if _, err := r.db.Exec("DELETE FROM storage WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Entries lists stored documents ordered by key.
func (r *Repository) Entries() ([]Entry, error) {
	rows, err := r.db.Query("SELECT key, codec, length(data), updated_at FROM storage ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list storage entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var updatedAt int64
		if err := rows.Scan(&e.Key, &e.Codec, &e.SizeBytes, &updatedAt); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan storage row")
			continue
		}
		e.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating storage entries: %w", err)
	}
	return entries, nil
}
