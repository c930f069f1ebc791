package imageio

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"vision-search/internal/domain/entity"
)

func solid(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	return img
}

func TestIsImageFile(t *testing.T) {
	for _, name := range []string{"a.jpg", "b.JPEG", "c.png", "d.Tiff", "e.bmp", "f.gif"} {
		require.True(t, IsImageFile(name), name)
	}
	for _, name := range []string{"metadata.json", "notes.txt", "noext", "g.webp"} {
		require.False(t, IsImageFile(name), name)
	}
}

func TestLoader_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.png")
	require.NoError(t, Save(path, solid(8, 6)))

	img, err := NewLoader().Load(path)
	require.NoError(t, err)
	require.Equal(t, 8, img.Bounds().Dx())
	require.Equal(t, 6, img.Bounds().Dy())
}

func TestLoader_OrientationIsOptIn(t *testing.T) {
	require.Empty(t, NewLoader().decodeOptions())
	require.Empty(t, NewLoader(WithAutoOrientation(false)).decodeOptions())
	require.Len(t, NewLoader(WithAutoOrientation(true)).decodeOptions(), 1)

	path := filepath.Join(t.TempDir(), "img.png")
	require.NoError(t, Save(path, solid(8, 6)))
	img, err := NewLoader(WithAutoOrientation(true)).Load(path)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 8, 6), img.Bounds())
}

func TestLoader_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	_, err := NewLoader().Load(path)
	require.ErrorIs(t, err, entity.ErrImageLoad)
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "missing.png"))
	require.ErrorIs(t, err, entity.ErrImageLoad)
}

func TestLoader_Decode(t *testing.T) {
	data, err := EncodePNG(solid(4, 4))
	require.NoError(t, err)

	img, err := NewLoader().Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 4, img.Bounds().Dx())

	_, err = NewLoader().Decode(bytes.NewReader([]byte("garbage")))
	require.ErrorIs(t, err, entity.ErrImageLoad)
}

func TestFit(t *testing.T) {
	small := solid(10, 5)
	require.Same(t, small, Fit(small, 20))

	fitted := Fit(solid(40, 20), 10)
	require.Equal(t, 10, fitted.Bounds().Dx())
	require.Equal(t, 5, fitted.Bounds().Dy())
}
