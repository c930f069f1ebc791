package app

import (
	"fmt"
	"image"

	"go.uber.org/zap"

	"vision-search/internal/domain/entity"
	"vision-search/internal/domain/port"
)

// RenderResult итог отрисовки одной записи: либо Image, либо Err
type RenderResult struct {
	Record entity.ImageMetadata
	Image  image.Image
	Err    error
}

// AnnotationService подгружает изображения и рисует на них детекции
type AnnotationService struct {
	loader   port.ImageLoader
	renderer port.AnnotationRenderer
	logger   *zap.SugaredLogger
}

// NewAnnotationService создаёт сервис отрисовки
func NewAnnotationService(loader port.ImageLoader, renderer port.AnnotationRenderer, logger *zap.SugaredLogger) *AnnotationService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &AnnotationService{loader: loader, renderer: renderer, logger: logger}
}

// Render перечитывает изображение записи и рисует детекции
func (s *AnnotationService) Render(record entity.ImageMetadata, opts entity.RenderOptions) (image.Image, error) {
	img, err := s.loader.Load(record.ImagePath())
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", record.Name(), err)
	}
	return s.RenderImage(img, record, opts), nil
}

// RenderImage рисует детекции на уже загруженном изображении
func (s *AnnotationService) RenderImage(img image.Image, record entity.ImageMetadata, opts entity.RenderOptions) image.Image {
	return s.renderer.Render(img, record, opts)
}

// RenderAll рисует все записи. Ошибка одной записи не прерывает остальные.
func (s *AnnotationService) RenderAll(store *entity.MetadataStore, opts entity.RenderOptions) []RenderResult {
	records := store.Records()
	results := make([]RenderResult, 0, len(records))
	for _, r := range records {
		img, err := s.Render(r, opts)
		if err != nil {
			s.logger.Warnw("render failed", "path", r.ImagePath(), "error", err)
		}
		results = append(results, RenderResult{Record: r, Image: img, Err: err})
	}
	return results
}
