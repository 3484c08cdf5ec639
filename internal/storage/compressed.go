package storage

import (
	"context"
	"fmt"

	"github.com/debemdeboas/folio/internal/util/compression"
)

// CompressedSlot compresses values on their way into the wrapped slot.
type CompressedSlot struct { // implements Slot
	Slot
	compressor compression.Compressor
}

func NewCompressedSlot(inner Slot, compressor compression.Compressor) *CompressedSlot {
	return &CompressedSlot{Slot: inner, compressor: compressor}
}

func (c *CompressedSlot) Get(ctx context.Context, key string) ([]byte, error) {
	compressed, err := c.Slot.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	data, err := c.compressor.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: error decompressing slot %s with %s: %w", ErrCorrupt, key, c.compressor.Name(), err)
	}
	return data, nil
}

func (c *CompressedSlot) Put(ctx context.Context, key string, value []byte) error {
	compressed, err := c.compressor.Compress(value)
	if err != nil {
		return fmt.Errorf("error compressing slot %s with %s: %w", key, c.compressor.Name(), err)
	}
	return c.Slot.Put(ctx, key, compressed)
}
