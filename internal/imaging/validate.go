// Package imaging decodes, validates, and standardizes candidate images.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"

	// raster decoders registered for image.DecodeConfig / image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Validation failure sentinels. Callers treat all of them as "skip this
// candidate", never as batch-fatal.
var (
	ErrNotAnImage = errors.New("content is not an image")
	ErrTooSmall   = errors.New("image below minimum size")
	ErrBadDecode  = errors.New("image could not be decoded")
)

// Limits carries the per-profile validation floors.
type Limits struct {
	MinBytes  int
	MinWidth  int
	MinHeight int
}

// Dimensions holds decoded pixel bounds.
type Dimensions struct {
	Width  int
	Height int
}

// Validate checks content type, byte floor, and decodes pixel dimensions.
// Pixel floors are scored as penalties rather than rejected here, so a page
// whose only imagery is small can still fall through to the selector.
func Validate(data []byte, contentType string, limits Limits) (Dimensions, error) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/") {
		return Dimensions{}, fmt.Errorf("%w: content-type %q", ErrNotAnImage, contentType)
	}
	if len(data) < limits.MinBytes {
		return Dimensions{}, fmt.Errorf("%w: %d bytes", ErrTooSmall, len(data))
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Dimensions{}, fmt.Errorf("%w: %v", ErrBadDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Dimensions{}, fmt.Errorf("%w: %dx%d", ErrBadDecode, cfg.Width, cfg.Height)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}
