package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"vision-search/internal/domain/entity"
	"vision-search/internal/infrastructure/storage"
)

func TestParseThresholds(t *testing.T) {
	got, err := parseThresholds([]string{"person=2", "car=None", " traffic light = 1"})
	require.NoError(t, err)
	require.Equal(t, map[string]int{"person": 2, "traffic light": 1}, got)

	for _, bad := range []string{"person", "=2", "person=0", "person=many"} {
		_, err := parseThresholds([]string{bad})
		require.ErrorIs(t, err, entity.ErrInvalidQuery, bad)
	}
}

func writeMetadata(t *testing.T) string {
	t.Helper()

	dets := func(classes ...string) []entity.Detection {
		out := make([]entity.Detection, 0, len(classes))
		for _, c := range classes {
			out = append(out, entity.Detection{Class: c, BBox: entity.NewBoundingBox(0, 0, 10, 10), Confidence: 0.9})
		}
		return out
	}
	store := entity.NewMetadataStore([]entity.ImageMetadata{
		entity.NewImageMetadata("a.jpg", dets("person", "person", "car")),
		entity.NewImageMetadata("b.jpg", dets("car")),
		entity.NewImageMetadata("c.jpg", dets("person")),
	})

	path := filepath.Join(t.TempDir(), "metadata.json")
	require.NoError(t, storage.NewJSONMetadataRepository().Save(context.Background(), path, store))
	return path
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	app := &cli.App{
		Name:      "vision-search",
		Writer:    &out,
		ErrWriter: &out,
		Commands:  []*cli.Command{classesCommand(), searchCommand()},
	}
	err := app.RunContext(context.Background(), append([]string{"vision-search"}, args...))
	return out.String(), err
}

func TestClassesCommand(t *testing.T) {
	out, err := runApp(t, "classes", writeMetadata(t))
	require.NoError(t, err)
	require.Equal(t, "car: 1\nperson: 1, 2\n", out)
}

func TestSearchCommand(t *testing.T) {
	path := writeMetadata(t)

	out, err := runApp(t, "search", "--class", "person", "--class", "car", "--mode", "all", path)
	require.NoError(t, err)
	require.Equal(t, "a.jpg\n", out)

	out, err = runApp(t, "search", "--class", "person", "--max", "person=1", path)
	require.NoError(t, err)
	require.Equal(t, "c.jpg\n", out)
}

func TestSearchCommand_WarnsOnUnobservedLimit(t *testing.T) {
	out, err := runApp(t, "search", "--class", "person", "--max", "person=3", writeMetadata(t))
	require.NoError(t, err)
	require.Contains(t, out, "warning:")
	require.Contains(t, out, "a.jpg\nc.jpg\n")
}

func TestSearchCommand_Export(t *testing.T) {
	path := writeMetadata(t)
	export := filepath.Join(t.TempDir(), "results.json")

	_, err := runApp(t, "search", "--class", "car", "--export", export, path)
	require.NoError(t, err)

	exported, err := storage.NewJSONMetadataRepository().Load(context.Background(), export)
	require.NoError(t, err)
	require.Equal(t, 2, exported.Len())
	require.Equal(t, "a.jpg", exported.Records()[0].ImagePath())
}

func TestSearchCommand_RenderSkipsMissingImages(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "rendered")

	out, err := runApp(t, "search", "--class", "car", "--render-dir", dir, writeMetadata(t))
	require.NoError(t, err)
	require.Contains(t, out, "render skipped")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestSearchCommand_Errors(t *testing.T) {
	path := writeMetadata(t)

	_, err := runApp(t, "search", "--class", "dog", path)
	require.ErrorIs(t, err, entity.ErrInvalidQuery)

	_, err = runApp(t, "search", "--class", "car", "--mode", "xor", path)
	require.ErrorIs(t, err, entity.ErrInvalidQuery)

	_, err = runApp(t, "search", "--class", "car")
	require.Error(t, err)
}
