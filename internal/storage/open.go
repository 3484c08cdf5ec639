package storage

import (
	"context"
	"fmt"

	"github.com/debemdeboas/folio/internal/config"
	"github.com/debemdeboas/folio/internal/db"
	"github.com/debemdeboas/folio/internal/util/compression"
)

// Open builds the slot selected by cfg.Store. The returned close func releases
// whatever connection the backend holds and is never nil.
func Open(ctx context.Context, cfg *config.Config) (Slot, func() error, error) {
	noop := func() error { return nil }

	var (
		slot    Slot
		closeFn = noop
	)

	switch cfg.Store.Backend {
	case config.BackendMemory:
		slot = NewMemorySlot()
	case config.BackendFile:
		fs, err := NewFileSlot(cfg.File.Dir)
		if err != nil {
			return nil, noop, err
		}
		slot = fs
	case config.BackendSQLite:
		sqlite := db.NewSQLite(cfg.SQLite.Path)
		if err := sqlite.InitDB(); err != nil {
			sqlite.Close()
			return nil, noop, fmt.Errorf("%s: %w", config.ErrInitializeDatabase, err)
		}
		slot = NewSQLiteSlot(sqlite)
		closeFn = sqlite.Close
	case config.BackendS3:
		s3Slot, err := NewS3Slot(ctx, S3Options{
			Bucket:          cfg.S3.Bucket,
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			AccessKeyID:     cfg.S3.AccessKeyID,
			AccessKeySecret: cfg.S3.AccessKeySecret,
		})
		if err != nil {
			return nil, noop, err
		}
		slot = s3Slot
	case config.BackendRedis:
		redisSlot := NewRedisSlot(cfg.Redis.Addr, cfg.Redis.DB)
		slot = redisSlot
		closeFn = redisSlot.Close
	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	compressor, err := compression.ByName(cfg.Store.Compression)
	if err != nil {
		closeFn()
		return nil, noop, err
	}
	if compressor != nil {
		slot = NewCompressedSlot(slot, compressor)
	}

	storageLogger.Info().
		Str("backend", cfg.Store.Backend).
		Str("compression", cfg.Store.Compression).
		Msg("Storage slot opened")

	return slot, closeFn, nil
}
