package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/debemdeboas/folio/internal/db"
	"github.com/debemdeboas/folio/internal/util"
)

type SQLiteSlot struct { // implements Slot
	db db.DB
}

func NewSQLiteSlot(db db.DB) *SQLiteSlot {
	return &SQLiteSlot{db: db}
}

func (s *SQLiteSlot) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(ctx, `SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("error reading slot %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteSlot) Put(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	res, err := s.db.Exec(ctx,
		`INSERT INTO slots (key, value, content_hash, modified_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, content_hash = excluded.content_hash, modified_at = excluded.modified_at`,
		key, value, util.ContentHash(value), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("error writing slot %s: %w", key, err)
	}

	storageLogger.Debug().Str("key", key).Interface("result", res).Msg("SQLite slot written")
	return nil
}

func (s *SQLiteSlot) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM slots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("error deleting slot %s: %w", key, err)
	}
	return nil
}
