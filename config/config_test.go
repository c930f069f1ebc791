package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"MODEL_PATH", "WORKERS", "RECURSIVE", "AUTO_ORIENT", "CONFIDENCE_THRESHOLD", "METADATA_FILE", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "yolo11m.onnx", cfg.ModelPath)
	require.Equal(t, 1, cfg.Workers)
	require.False(t, cfg.Recursive)
	require.False(t, cfg.AutoOrient)
	require.InDelta(t, 0.25, cfg.ConfidenceThreshold, 1e-9)
	require.Equal(t, "metadata.json", cfg.MetadataFile)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "#FF4B4B", cfg.EmphasisColor)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("WORKERS", "4")
	t.Setenv("RECURSIVE", "true")
	t.Setenv("AUTO_ORIENT", "1")
	t.Setenv("MODEL_PATH", "/models/yolo.onnx")
	t.Setenv("MAX_RESULT_PHOTOS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Workers)
	require.True(t, cfg.Recursive)
	require.True(t, cfg.AutoOrient)
	require.Equal(t, "/models/yolo.onnx", cfg.ModelPath)
	require.Equal(t, 3, cfg.MaxResultPhotos)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"WORKERS":              "many",
		"RECURSIVE":            "sometimes",
		"CONFIDENCE_THRESHOLD": "1.5",
		"INPUT_SIZE":           "8",
		"FONT_SIZE":            "big",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}
