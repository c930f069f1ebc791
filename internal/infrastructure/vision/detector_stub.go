//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"fmt"
	"image"

	"vision-search/internal/domain/entity"
	"vision-search/internal/domain/port"
)

// YOLODetector заглушка для сборки без OpenCV.
type YOLODetector struct{}

// NewYOLODetector возвращает ошибку, если сборка без тега gocv.
func NewYOLODetector(DetectorConfig) (*YOLODetector, error) {
	return nil, fmt.Errorf("%w: gocv build tag is not enabled", entity.ErrDetection)
}

// Detect возвращает ошибку, если сборка без тега gocv.
func (d *YOLODetector) Detect(context.Context, image.Image) ([]entity.Detection, error) {
	return nil, fmt.Errorf("%w: gocv build tag is not enabled", entity.ErrDetection)
}

// Close ничего не делает.
func (d *YOLODetector) Close() error {
	return nil
}

// Проверка реализации интерфейса
var _ port.ObjectDetector = (*YOLODetector)(nil)
