package entity

import (
	"encoding/json"
	"fmt"
	"image"
	"math"
)

// BoundingBox прямоугольник [x1, y1, x2, y2] в пикселях изображения
type BoundingBox [4]float64

// NewBoundingBox собирает рамку из координат углов
func NewBoundingBox(x1, y1, x2, y2 float64) BoundingBox {
	return BoundingBox{x1, y1, x2, y2}
}

func (b BoundingBox) X1() float64 { return b[0] }
func (b BoundingBox) Y1() float64 { return b[1] }
func (b BoundingBox) X2() float64 { return b[2] }
func (b BoundingBox) Y2() float64 { return b[3] }

// Width возвращает ширину рамки
func (b BoundingBox) Width() float64 { return b[2] - b[0] }

// Height возвращает высоту рамки
func (b BoundingBox) Height() float64 { return b[3] - b[1] }

// Rect округляет рамку до целочисленного прямоугольника
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(
		int(math.Round(b[0])), int(math.Round(b[1])),
		int(math.Round(b[2])), int(math.Round(b[3])),
	)
}

// UnmarshalJSON требует ровно четыре числа; null не превращается в 0.
func (b *BoundingBox) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("bbox: %w", err)
	}
	if len(raw) != 4 {
		return fmt.Errorf("bbox: expected 4 values, got %d", len(raw))
	}
	for i, v := range raw {
		if v == nil {
			return fmt.Errorf("bbox: value %d is null", i)
		}
		b[i] = *v
	}
	return nil
}

// Detection один найденный объект на изображении
type Detection struct {
	Class      string      `json:"class"`      // название класса
	BBox       BoundingBox `json:"bbox"`       // рамка объекта
	Confidence float64     `json:"confidence"` // уверенность модели, [0, 1]
}

// Label возвращает подпись вида "person 0.87"
func (d Detection) Label() string {
	return fmt.Sprintf("%s %.2f", d.Class, d.Confidence)
}
