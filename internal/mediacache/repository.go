// Package mediacache remembers which media thumbnails have already been
// uploaded to the homeserver, so re-posted links do not re-upload the same
// bytes.
package mediacache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Thumbnail is one cached upload: the mxc URI the homeserver assigned plus
// the dimensions of the uploaded rendition.
type Thumbnail struct {
	URI    string
	Width  int
	Height int
}

// Repository stores uploaded thumbnails in a local SQLite file, keyed by
// source URL and requested bounding-box size.
type Repository struct {
	db *sql.DB
}

const schema = `
	CREATE TABLE IF NOT EXISTS thumbnails (
		source_url TEXT NOT NULL,
		size       INTEGER NOT NULL,
		uri        TEXT NOT NULL,
		width      INTEGER NOT NULL,
		height     INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (source_url, size)
	)`

// NewRepository opens the SQLite file at path, creating it and the schema on
// first use. The caller should call Close when the repository is no longer
// needed.
func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Get looks up a cached upload. Returns nil without error on a miss.
func (r *Repository) Get(ctx context.Context, sourceURL string, size int) (*Thumbnail, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT uri, width, height
		FROM thumbnails
		WHERE source_url = ? AND size = ?`,
		sourceURL, size,
	)

	var thumb Thumbnail
	err := row.Scan(&thumb.URI, &thumb.Width, &thumb.Height)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query thumbnail: %w", err)
	}
	return &thumb, nil
}

// Put records an upload, replacing any previous entry for the same source
// and size.
func (r *Repository) Put(ctx context.Context, sourceURL string, size int, thumb *Thumbnail) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO thumbnails (source_url, size, uri, width, height, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_url, size) DO UPDATE SET
			uri = excluded.uri,
			width = excluded.width,
			height = excluded.height,
			created_at = excluded.created_at`,
		sourceURL, size, thumb.URI, thumb.Width, thumb.Height, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store thumbnail: %w", err)
	}
	return nil
}
