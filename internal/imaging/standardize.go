package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	"github.com/nfnt/resize"
)

// Standardize decodes raw image bytes, fit-resizes them preserving aspect
// ratio, centers the result on a white canvas of the given size, and
// re-encodes as optimized JPEG. The output is deterministic for a given
// input, which keeps repeated extraction runs idempotent.
func Standardize(data []byte, canvasWidth, canvasHeight, quality int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("empty image bounds %v", bounds)
	}

	fitW, fitH := fit(bounds.Dx(), bounds.Dy(), canvasWidth, canvasHeight)
	scaled := resize.Resize(uint(fitW), uint(fitH), src, resize.Lanczos3)

	canvas := image.NewRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	offset := image.Pt((canvasWidth-fitW)/2, (canvasHeight-fitH)/2)
	draw.Draw(canvas, scaled.Bounds().Add(offset), scaled, image.Point{}, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// fit scales (w, h) down (or up) so it fits inside (maxW, maxH) while
// preserving aspect ratio. Both results are at least 1.
func fit(w, h, maxW, maxH int) (int, int) {
	scaleW := float64(maxW) / float64(w)
	scaleH := float64(maxH) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	outW := int(float64(w) * scale)
	outH := int(float64(h) * scale)
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}
	return outW, outH
}
