// Package storage provides the key-value backends that hold the persisted post collection.
//
// Every backend overwrites a key atomically: a reader sees either the previous
// value or the new one, never a partial write.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

var (
	ErrEmpty   = errors.New("slot is empty")
	ErrCorrupt = errors.New("slot value is corrupt")
)

type Slot interface {
	// Get returns ErrEmpty when nothing was stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var storageLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	storageLogger = l
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("invalid slot key: empty")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid slot key: %q", key)
	}
	return nil
}
