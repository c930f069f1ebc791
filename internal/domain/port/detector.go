package port

import (
	"context"
	"image"

	"vision-search/internal/domain/entity"
)

// ObjectDetector интерфейс детектора объектов
type ObjectDetector interface {
	// Detect находит объекты на изображении. Ошибка модели возвращается
	// как entity.ErrDetection, а не как пустой список.
	Detect(ctx context.Context, img image.Image) ([]entity.Detection, error)
}
