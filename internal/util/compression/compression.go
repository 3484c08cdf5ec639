// Package compression provides byte compressors used to shrink persisted payloads.
package compression

import "fmt"

type Compressor interface {
	// Name is the configured compression name.
	Name() string
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// ByName maps a configured compression name to its compressor. "none" yields nil.
func ByName(name string) (Compressor, error) {
	switch name {
	case "", "none":
		return nil, nil
	case GzipCompressor{}.Name():
		return GzipCompressor{}, nil
	case ZstdCompressor{}.Name():
		return ZstdCompressor{}, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", name)
	}
}
