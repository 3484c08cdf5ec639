package storage

import (
	"context"

	"github.com/debemdeboas/folio/internal/cache"
)

type MemorySlot struct { // implements Slot
	values *cache.Cache[string, []byte]
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{
		values: cache.NewCache[string, []byte](),
	}
}

func (m *MemorySlot) Get(_ context.Context, key string) ([]byte, error) {
	if value, ok := m.values.Get(key); ok {
		return append([]byte(nil), value...), nil
	}
	return nil, ErrEmpty
}

func (m *MemorySlot) Put(_ context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	m.values.Set(key, append([]byte(nil), value...))
	return nil
}

func (m *MemorySlot) Delete(_ context.Context, key string) error {
	m.values.Delete(key)
	return nil
}
