package app

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"vision-search/internal/domain/entity"
	"vision-search/internal/infrastructure/imageio"
)

func newInference(t *testing.T, det detectorFunc, opts InferenceOptions) *InferenceService {
	t.Helper()
	return NewInferenceService(det, imageio.NewLoader(), zaptest.NewLogger(t).Sugar(), opts)
}

// fiveImages создаёт img1..img5 шириной 10..50, img3 повреждён
func fiveImages(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for i, w := range []int{10, 20, 30, 40, 50} {
		path := filepath.Join(dir, "img"+string(rune('1'+i))+".png")
		if i == 2 {
			writeFile(t, path, "definitely not a png")
			continue
		}
		writeImage(t, path, w, 8)
	}
	return dir
}

func TestProcessDirectory_SkipsCorruptImage(t *testing.T) {
	dir := fiveImages(t)
	svc := newInference(t, personPerTenPixels, InferenceOptions{})

	report, err := svc.ProcessDirectory(context.Background(), dir)
	require.NoError(t, err)

	require.Equal(t, []string{
		filepath.Join(dir, "img1.png"),
		filepath.Join(dir, "img2.png"),
		filepath.Join(dir, "img4.png"),
		filepath.Join(dir, "img5.png"),
	}, recordPaths(report.Store))
	require.Equal(t, 4, report.Succeeded())
	require.Equal(t, 5, report.Total())

	require.Len(t, report.Failures, 1)
	require.Equal(t, filepath.Join(dir, "img3.png"), report.Failures[0].Path)
	require.ErrorIs(t, report.Failures[0].Err, entity.ErrImageLoad)
	require.ErrorIs(t, report.Err(), entity.ErrImageLoad)

	counts := []int{}
	for _, r := range report.Store.Records() {
		counts = append(counts, r.Count("person"))
	}
	require.Equal(t, []int{1, 2, 4, 5}, counts)
}

func TestProcessDirectory_ParallelKeepsEnumerationOrder(t *testing.T) {
	dir := fiveImages(t)
	slowFirst := func(ctx context.Context, img image.Image) ([]entity.Detection, error) {
		time.Sleep(time.Duration(60-img.Bounds().Dx()) * time.Millisecond)
		return personPerTenPixels(ctx, img)
	}
	svc := newInference(t, slowFirst, InferenceOptions{Workers: 4})

	report, err := svc.ProcessDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "img1.png"),
		filepath.Join(dir, "img2.png"),
		filepath.Join(dir, "img4.png"),
		filepath.Join(dir, "img5.png"),
	}, recordPaths(report.Store))
	require.Len(t, report.Failures, 1)
}

func TestProcessDirectory_DetectionFailureIsIsolated(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "a.png"), 10, 5)
	writeImage(t, filepath.Join(dir, "b.png"), 20, 5)
	writeImage(t, filepath.Join(dir, "c.png"), 30, 5)

	failOnB := func(ctx context.Context, img image.Image) ([]entity.Detection, error) {
		if img.Bounds().Dx() == 20 {
			return nil, errors.New("model exploded")
		}
		return personPerTenPixels(ctx, img)
	}
	report, err := newInference(t, failOnB, InferenceOptions{Workers: 2}).ProcessDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "c.png")}, recordPaths(report.Store))
	require.Len(t, report.Failures, 1)
	require.ErrorIs(t, report.Failures[0].Err, entity.ErrDetection)
}

func TestProcessDirectory_IgnoresNonImagesAndSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "a.png"), 10, 5)
	writeFile(t, filepath.Join(dir, "notes.txt"), "hello")
	writeFile(t, filepath.Join(dir, "metadata.json"), "[]")
	writeImage(t, filepath.Join(dir, "sub", "b.png"), 20, 5)

	report, err := newInference(t, personPerTenPixels, InferenceOptions{}).ProcessDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "a.png")}, recordPaths(report.Store))
	require.Empty(t, report.Failures)
	require.NoError(t, report.Err())
}

func TestProcessDirectory_Recursive(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "a.png"), 10, 5)
	writeImage(t, filepath.Join(dir, "sub", "b.png"), 20, 5)

	report, err := newInference(t, personPerTenPixels, InferenceOptions{Recursive: true}).ProcessDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "sub", "b.png"),
	}, recordPaths(report.Store))
}

func TestProcessDirectory_Errors(t *testing.T) {
	svc := newInference(t, personPerTenPixels, InferenceOptions{})
	_, err := svc.ProcessDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	noDetector := NewInferenceService(nil, imageio.NewLoader(), nil, InferenceOptions{})
	_, err = noDetector.ProcessDirectory(context.Background(), t.TempDir())
	require.ErrorIs(t, err, ErrNoDetector)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.ProcessDirectory(ctx, fiveImages(t))
	require.ErrorIs(t, err, context.Canceled)
}

func TestProcessDirectory_EmptyDirectory(t *testing.T) {
	report, err := newInference(t, personPerTenPixels, InferenceOptions{}).ProcessDirectory(context.Background(), t.TempDir())
	require.NoError(t, err)
	require.Zero(t, report.Total())
}

func TestProcessSingle(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	writeImage(t, good, 30, 5)
	empty := filepath.Join(dir, "empty.png")
	writeImage(t, empty, 5, 5)
	bad := filepath.Join(dir, "bad.jpg")
	writeFile(t, bad, "garbage")

	svc := newInference(t, personPerTenPixels, InferenceOptions{})
	ctx := context.Background()

	md, err := svc.ProcessSingle(ctx, good)
	require.NoError(t, err)
	require.Equal(t, good, md.ImagePath())
	require.Equal(t, map[string]int{"person": 3}, md.ClassCounts())

	md, err = svc.ProcessSingle(ctx, empty)
	require.NoError(t, err)
	require.Empty(t, md.Detections())

	_, err = svc.ProcessSingle(ctx, bad)
	require.ErrorIs(t, err, entity.ErrImageLoad)

	failing := newInference(t, func(context.Context, image.Image) ([]entity.Detection, error) {
		return nil, errors.New("cuda out of memory")
	}, InferenceOptions{})
	_, err = failing.ProcessSingle(ctx, good)
	require.ErrorIs(t, err, entity.ErrDetection)
	require.ErrorContains(t, err, "cuda out of memory")
}

func TestBatchReport_ErrCombinesFailures(t *testing.T) {
	report := &BatchReport{
		Store: entity.NewMetadataStore(nil),
		Failures: []ImageFailure{
			{Path: "a.png", Err: entity.ErrImageLoad},
			{Path: "b.png", Err: entity.ErrDetection},
		},
	}
	err := report.Err()
	require.ErrorIs(t, err, entity.ErrImageLoad)
	require.ErrorIs(t, err, entity.ErrDetection)
	require.ErrorContains(t, err, "a.png")
}
