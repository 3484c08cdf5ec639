// Package media turns uploaded image and video files into data URLs that can be
// stored directly in a post's image field.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

var (
	ErrDecodeFailed = errors.New("media could not be decoded")

	ErrEmpty       = errors.New("media is empty")
	ErrTooLarge    = errors.New("media is too large")
	ErrUnsupported = errors.New("media type is not supported")
)

const DefaultMaxBytes int64 = 10 << 20

type Result struct {
	DataURL string
	Err     error
}

type Decoder struct {
	// MaxBytes bounds the raw size of accepted media. Zero means DefaultMaxBytes.
	MaxBytes int64
}

// Limit is the effective size cap in bytes.
func (d Decoder) Limit() int64 {
	if d.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return d.MaxBytes
}

// Encode reads all of r and returns it as "data:<mime>;base64,<payload>". The
// declared content type is trusted when it names an image or video, otherwise
// the type is sniffed from the bytes.
func (d Decoder) Encode(r io.Reader, declaredType string) (string, error) {
	limit := d.Limit()

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: %w", ErrDecodeFailed, ErrEmpty)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("%w: %w (limit %d bytes)", ErrDecodeFailed, ErrTooLarge, limit)
	}

	mediaType := mediaTypeOf(declaredType)
	if !accepted(mediaType) {
		mediaType = mediaTypeOf(http.DetectContentType(data))
	}
	if !accepted(mediaType) {
		return "", fmt.Errorf("%w: %w: %s", ErrDecodeFailed, ErrUnsupported, mediaType)
	}

	var b bytes.Buffer
	b.Grow(len("data:;base64,") + len(mediaType) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(mediaType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String(), nil
}

// DecodeAsync runs Encode on its own goroutine. The returned channel receives
// exactly one Result, or ctx's error if ctx ends first.
func (d Decoder) DecodeAsync(ctx context.Context, r io.Reader, declaredType string) <-chan Result {
	out := make(chan Result, 1)

	go func() {
		done := make(chan Result, 1)
		go func() {
			dataURL, err := d.Encode(r, declaredType)
			done <- Result{DataURL: dataURL, Err: err}
		}()

		select {
		case res := <-done:
			out <- res
		case <-ctx.Done():
			out <- Result{Err: fmt.Errorf("%w: %w", ErrDecodeFailed, ctx.Err())}
		}
	}()

	return out
}

func mediaTypeOf(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mediaType
}

func accepted(mediaType string) bool {
	return strings.HasPrefix(mediaType, "image/") || strings.HasPrefix(mediaType, "video/")
}

// IsDataURL reports whether s is an embedded payload rather than a remote locator.
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}
