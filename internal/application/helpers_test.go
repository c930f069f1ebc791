package app

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"vision-search/internal/domain/entity"
	"vision-search/internal/infrastructure/imageio"
)

type detectorFunc func(ctx context.Context, img image.Image) ([]entity.Detection, error)

func (f detectorFunc) Detect(ctx context.Context, img image.Image) ([]entity.Detection, error) {
	return f(ctx, img)
}

// personPerTenPixels находит по одному person на каждые 10 пикселей ширины
func personPerTenPixels(_ context.Context, img image.Image) ([]entity.Detection, error) {
	n := img.Bounds().Dx() / 10
	dets := make([]entity.Detection, 0, n)
	for i := 0; i < n; i++ {
		dets = append(dets, entity.Detection{
			Class:      "person",
			BBox:       entity.NewBoundingBox(float64(i), 0, float64(i+1), 5),
			Confidence: 0.8,
		})
	}
	return dets, nil
}

func writeImage(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 40, G: 40, B: 40, A: 255})
		}
	}
	require.NoError(t, imageio.Save(path, img))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func storeOf(records ...entity.ImageMetadata) *entity.MetadataStore {
	return entity.NewMetadataStore(records)
}

func withClasses(path string, classes ...string) entity.ImageMetadata {
	dets := make([]entity.Detection, 0, len(classes))
	for i, c := range classes {
		dets = append(dets, entity.Detection{
			Class:      c,
			BBox:       entity.NewBoundingBox(float64(i), float64(i), float64(i+10), float64(i+10)),
			Confidence: 0.9,
		})
	}
	return entity.NewImageMetadata(path, dets)
}

func recordPaths(s *entity.MetadataStore) []string {
	out := make([]string, 0, s.Len())
	for _, r := range s.Records() {
		out = append(out, r.ImagePath())
	}
	return out
}
