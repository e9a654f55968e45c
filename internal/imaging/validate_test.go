package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateDecodesDimensions(t *testing.T) {
	t.Parallel()

	data := encodePNG(t, 320, 240)
	dims, err := Validate(data, "image/png", Limits{MinBytes: 100})
	require.NoError(t, err)
	require.Equal(t, 320, dims.Width)
	require.Equal(t, 240, dims.Height)
}

func TestValidateRejectsNonImageContentType(t *testing.T) {
	t.Parallel()

	data := encodePNG(t, 100, 100)
	_, err := Validate(data, "text/html", Limits{MinBytes: 10})
	require.ErrorIs(t, err, ErrNotAnImage)
}

func TestValidateRejectsTinyPayload(t *testing.T) {
	t.Parallel()

	_, err := Validate([]byte{0x89, 0x50}, "image/png", Limits{MinBytes: 1024})
	require.ErrorIs(t, err, ErrTooSmall)
}

func TestValidateRejectsCorruptBytes(t *testing.T) {
	t.Parallel()

	garbage := bytes.Repeat([]byte{0xde, 0xad}, 2048)
	_, err := Validate(garbage, "image/jpeg", Limits{MinBytes: 100})
	require.ErrorIs(t, err, ErrBadDecode)
}

func TestStandardizeProducesCanvasSizedJPEG(t *testing.T) {
	t.Parallel()

	out, err := Standardize(encodePNG(t, 1200, 800), 400, 300, 85)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 400, decoded.Bounds().Dx())
	require.Equal(t, 300, decoded.Bounds().Dy())
}

func TestStandardizeLetterboxesPortraitInput(t *testing.T) {
	t.Parallel()

	out, err := Standardize(encodePNG(t, 300, 600), 400, 300, 85)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	bounds := decoded.Bounds()
	require.Equal(t, 400, bounds.Dx())
	require.Equal(t, 300, bounds.Dy())

	// portrait content is centered, so the left edge stays white padding
	r, g, b, _ := decoded.At(2, 150).RGBA()
	require.Greater(t, r>>8, uint32(240))
	require.Greater(t, g>>8, uint32(240))
	require.Greater(t, b>>8, uint32(240))
}

func TestStandardizeIsDeterministic(t *testing.T) {
	t.Parallel()

	src := encodePNG(t, 640, 480)
	a, err := Standardize(src, 400, 300, 85)
	require.NoError(t, err)
	b, err := Standardize(src, 400, 300, 85)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestStandardizeRejectsGarbageInput(t *testing.T) {
	t.Parallel()

	_, err := Standardize([]byte("not an image"), 400, 300, 85)
	require.Error(t, err)
}

func TestFitBounds(t *testing.T) {
	t.Parallel()

	w, h := fit(1200, 800, 400, 300)
	require.Equal(t, 400, w)
	require.Equal(t, 266, h)

	w, h = fit(1, 1000, 400, 300)
	require.Equal(t, 1, w)
	require.Equal(t, 300, h)
}
