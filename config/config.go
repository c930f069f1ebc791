package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string

	ModelPath           string
	ClassNamesPath      string
	ConfidenceThreshold float64
	NMSThreshold        float64
	InputSize           int

	Workers      int
	Recursive    bool
	MetadataFile string
	AutoOrient   bool

	FontSize      float64
	EmphasisColor string
	DefaultColor  string

	MaxPhotoSide    int
	MaxResultPhotos int

	LogLevel       string
	LogDevelopment bool
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		ModelPath:      getString("MODEL_PATH", "yolo11m.onnx"),
		ClassNamesPath: os.Getenv("CLASS_NAMES_PATH"),
		MetadataFile:   getString("METADATA_FILE", "metadata.json"),
		EmphasisColor:  getString("EMPHASIS_COLOR", "#FF4B4B"),
		DefaultColor:   getString("DEFAULT_COLOR", "#15FF00"),
		LogLevel:       getString("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.ConfidenceThreshold, err = getFloat("CONFIDENCE_THRESHOLD", 0.25); err != nil {
		return nil, err
	}
	if cfg.NMSThreshold, err = getFloat("NMS_THRESHOLD", 0.45); err != nil {
		return nil, err
	}
	if cfg.InputSize, err = getInt("INPUT_SIZE", 640); err != nil {
		return nil, err
	}
	if cfg.Workers, err = getInt("WORKERS", 1); err != nil {
		return nil, err
	}
	if cfg.Recursive, err = getBool("RECURSIVE", false); err != nil {
		return nil, err
	}
	if cfg.AutoOrient, err = getBool("AUTO_ORIENT", false); err != nil {
		return nil, err
	}
	if cfg.FontSize, err = getFloat("FONT_SIZE", 12); err != nil {
		return nil, err
	}
	if cfg.MaxPhotoSide, err = getInt("MAX_PHOTO_SIDE", 1280); err != nil {
		return nil, err
	}
	if cfg.MaxResultPhotos, err = getInt("MAX_RESULT_PHOTOS", 10); err != nil {
		return nil, err
	}
	if cfg.LogDevelopment, err = getBool("LOG_DEVELOPMENT", false); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("CONFIDENCE_THRESHOLD must be within [0, 1], got %v", c.ConfidenceThreshold)
	}
	if c.NMSThreshold < 0 || c.NMSThreshold > 1 {
		return fmt.Errorf("NMS_THRESHOLD must be within [0, 1], got %v", c.NMSThreshold)
	}
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be positive, got %d", c.Workers)
	}
	if c.InputSize < 32 {
		return fmt.Errorf("INPUT_SIZE is too small: %d", c.InputSize)
	}
	return nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
