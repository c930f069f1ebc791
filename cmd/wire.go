package main

import (
	"go.uber.org/zap"

	"vision-search/config"
	app "vision-search/internal/application"
	"vision-search/internal/container"
	"vision-search/internal/domain/port"
	"vision-search/internal/infrastructure/imageio"
	"vision-search/internal/infrastructure/render"
	"vision-search/internal/infrastructure/storage"
	"vision-search/internal/infrastructure/vision"
	"vision-search/internal/logging"
)

type detectorMode int

const (
	withoutDetector detectorMode = iota
	requireDetector
	optionalDetector // бот: поиск по метаданным работает и без модели
)

type runtime struct {
	cfg      *config.Config
	logger   *zap.SugaredLogger
	services *container.Container
	detector *vision.YOLODetector
}

// bootstrap собирает зависимости по конфигурации из окружения.
// override применяет флаги командной строки поверх окружения.
func bootstrap(mode detectorMode, override func(*config.Config)) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return nil, err
	}

	renderer, err := render.NewAnnotator(render.Options{
		EmphasisColor: cfg.EmphasisColor,
		NormalColor:   cfg.DefaultColor,
		FontSize:      cfg.FontSize,
	})
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, logger: logger}

	// Явный nil интерфейса: типизированный nil сломал бы проверку в InferenceService
	var detector port.ObjectDetector
	if mode != withoutDetector {
		rt.detector, err = newDetector(cfg)
		switch {
		case err == nil:
			detector = rt.detector
		case mode == optionalDetector:
			logger.Warnw("detector disabled", "model", cfg.ModelPath, "error", err)
		default:
			return nil, err
		}
	}

	rt.services = container.New(container.Deps{
		UserRepo:     storage.NewMemoryUserRepository(),
		MetadataRepo: storage.NewJSONMetadataRepository(),
		Detector:     detector,
		Loader:       imageio.NewLoader(imageio.WithAutoOrientation(cfg.AutoOrient)),
		Renderer:     renderer,
		Logger:       logger,
		Inference:    app.InferenceOptions{Workers: cfg.Workers, Recursive: cfg.Recursive},
		MetadataFile: cfg.MetadataFile,
	})
	return rt, nil
}

func newDetector(cfg *config.Config) (*vision.YOLODetector, error) {
	var names []string
	if cfg.ClassNamesPath != "" {
		var err error
		if names, err = vision.LoadClassNames(cfg.ClassNamesPath); err != nil {
			return nil, err
		}
	}

	return vision.NewYOLODetector(vision.DetectorConfig{
		ModelPath:           cfg.ModelPath,
		ClassNames:          names,
		ConfidenceThreshold: float32(cfg.ConfidenceThreshold),
		NMSThreshold:        float32(cfg.NMSThreshold),
		InputSize:           cfg.InputSize,
	})
}

func (rt *runtime) Close() {
	if rt.detector != nil {
		_ = rt.detector.Close()
	}
	_ = rt.logger.Sync()
}
