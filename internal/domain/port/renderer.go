package port

import (
	"image"

	"vision-search/internal/domain/entity"
)

// AnnotationRenderer рисует детекции поверх изображения
type AnnotationRenderer interface {
	Render(img image.Image, record entity.ImageMetadata, opts entity.RenderOptions) image.Image
}
