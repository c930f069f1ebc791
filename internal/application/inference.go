package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vision-search/internal/domain/entity"
	"vision-search/internal/domain/port"
)

// ErrNoDetector распознавание запрошено без загруженной модели
var ErrNoDetector = errors.New("detector is not configured")

// InferenceOptions настройки обхода каталога
type InferenceOptions struct {
	Workers   int  // число параллельных обработчиков, минимум 1
	Recursive bool // обходить подкаталоги
}

// InferenceService превращает изображения в метаданные с детекциями
type InferenceService struct {
	detector port.ObjectDetector
	loader   port.ImageLoader
	logger   *zap.SugaredLogger
	opts     InferenceOptions
}

// ImageFailure ошибка обработки одного изображения
type ImageFailure struct {
	Path string
	Err  error
}

func (f ImageFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

func (f ImageFailure) Unwrap() error { return f.Err }

// ImageResult итог обработки одного изображения: либо Metadata, либо Err
type ImageResult struct {
	Path     string
	Metadata entity.ImageMetadata
	Err      error
}

// BatchReport итог обработки каталога
type BatchReport struct {
	Store    *entity.MetadataStore
	Failures []ImageFailure
}

// Succeeded возвращает число успешно обработанных изображений
func (r *BatchReport) Succeeded() int { return r.Store.Len() }

// Total возвращает число найденных изображений
func (r *BatchReport) Total() int { return r.Store.Len() + len(r.Failures) }

// Err объединяет ошибки всех пропущенных изображений; nil, если их нет
func (r *BatchReport) Err() error {
	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, f)
	}
	return err
}

// NewInferenceService создаёт сервис распознавания
func NewInferenceService(detector port.ObjectDetector, loader port.ImageLoader, logger *zap.SugaredLogger, opts InferenceOptions) *InferenceService {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &InferenceService{
		detector: detector,
		loader:   loader,
		logger:   logger,
		opts:     opts,
	}
}

// ProcessSingle загружает изображение и распознаёт объекты на нём.
// Ошибки загрузки и распознавания возвращаются вызывающему.
func (s *InferenceService) ProcessSingle(ctx context.Context, path string) (entity.ImageMetadata, error) {
	if s.detector == nil {
		return entity.ImageMetadata{}, ErrNoDetector
	}

	img, err := s.loader.Load(path)
	if err != nil {
		return entity.ImageMetadata{}, err
	}
	return s.ProcessImage(ctx, path, img)
}

// ProcessImage распознаёт объекты на уже декодированном изображении
func (s *InferenceService) ProcessImage(ctx context.Context, path string, img image.Image) (entity.ImageMetadata, error) {
	if s.detector == nil {
		return entity.ImageMetadata{}, ErrNoDetector
	}

	dets, err := s.detector.Detect(ctx, img)
	if err != nil {
		if errors.Is(err, entity.ErrDetection) {
			return entity.ImageMetadata{}, fmt.Errorf("%s: %w", path, err)
		}
		return entity.ImageMetadata{}, fmt.Errorf("%w: %s: %w", entity.ErrDetection, path, err)
	}
	return entity.NewImageMetadata(path, dets), nil
}

// ProcessDirectory обрабатывает все изображения каталога.
// Ошибка отдельного изображения не прерывает обработку: изображение
// пропускается и попадает в Failures. Порядок записей совпадает с порядком обхода.
func (s *InferenceService) ProcessDirectory(ctx context.Context, dir string) (*BatchReport, error) {
	if s.detector == nil {
		return nil, ErrNoDetector
	}

	paths, err := s.ListImages(dir)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("processing directory", "dir", dir, "images", len(paths), "workers", s.opts.Workers)

	results := make([]ImageResult, len(paths))
	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			md, err := s.ProcessSingle(ctx, path)
			results[i] = ImageResult{Path: path, Metadata: md, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := partition(results)
	for _, f := range report.Failures {
		s.logger.Warnw("skipping image", "path", f.Path, "error", f.Err)
	}
	s.logger.Infow("directory processed", "dir", dir, "succeeded", report.Succeeded(), "skipped", len(report.Failures))
	return report, nil
}

func partition(results []ImageResult) *BatchReport {
	records := make([]entity.ImageMetadata, 0, len(results))
	var failures []ImageFailure
	for _, r := range results {
		if r.Err != nil {
			failures = append(failures, ImageFailure{Path: r.Path, Err: r.Err})
			continue
		}
		records = append(records, r.Metadata)
	}
	return &BatchReport{Store: entity.NewMetadataStore(records), Failures: failures}
}

// ListImages перечисляет изображения каталога в лексическом порядке.
// Без Recursive подкаталоги не просматриваются.
func (s *InferenceService) ListImages(dir string) ([]string, error) {
	if !s.opts.Recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read directory: %w", err)
		}
		var paths []string
		for _, e := range entries {
			if e.IsDir() || !s.loader.Supports(e.Name()) {
				continue
			}
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
		return paths, nil
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && s.loader.Supports(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}
