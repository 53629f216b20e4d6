package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/web0101/protodir/internal/domain/model"
	"github.com/web0101/protodir/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.MirrorCache = (*MirrorCacheRepo)(nil)

// MirrorCacheRepo is the SQLite implementation of the MirrorCache port. It
// holds exactly one snapshot: the last site list successfully read from the
// public mirror.
type MirrorCacheRepo struct {
	db *DB
}

// NewMirrorCacheRepo creates a MirrorCacheRepo backed by the given DB.
func NewMirrorCacheRepo(db *DB) *MirrorCacheRepo {
	return &MirrorCacheRepo{db: db}
}

// Put replaces the cached snapshot with the given site list.
func (r *MirrorCacheRepo) Put(ctx context.Context, sites []model.Site, fetchedAt time.Time) error {
	if sites == nil {
		sites = []model.Site{}
	}
	payload, err := json.Marshal(sites)
	if err != nil {
		return fmt.Errorf("serialize mirror snapshot: %w", err)
	}

	const query = `
		INSERT INTO mirror_cache (id, payload, fetched_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`

	_, err = r.db.Writer.ExecContext(ctx, query, string(payload), fetchedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("store mirror snapshot: %w", err)
	}

	return nil
}

// Get returns the cached snapshot and when it was fetched. Returns
// driven.ErrCacheEmpty when no snapshot has been stored yet.
func (r *MirrorCacheRepo) Get(ctx context.Context) ([]model.Site, time.Time, error) {
	const query = `SELECT payload, fetched_at FROM mirror_cache WHERE id = 1`

	var payload, fetchedAtRaw string
	err := r.db.Reader.QueryRowContext(ctx, query).Scan(&payload, &fetchedAtRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, driven.ErrCacheEmpty
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("read mirror snapshot: %w", err)
	}

	var sites []model.Site
	if err := json.Unmarshal([]byte(payload), &sites); err != nil {
		return nil, time.Time{}, fmt.Errorf("parse mirror snapshot: %w", err)
	}
	if sites == nil {
		sites = []model.Site{}
	}

	fetchedAt, err := time.Parse(time.RFC3339, fetchedAtRaw)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("parse fetched_at: %w", err)
	}

	return sites, fetchedAt, nil
}
