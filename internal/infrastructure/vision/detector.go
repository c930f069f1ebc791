//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"vision-search/internal/domain/entity"
	"vision-search/internal/domain/port"
)

// YOLODetector запускает YOLO-модель в формате ONNX через модуль DNN OpenCV.
type YOLODetector struct {
	mu      sync.Mutex // gocv.Net не допускает параллельных вызовов Forward
	net     gocv.Net
	classes []string
	conf    float32
	nms     float32
	size    int
}

// NewYOLODetector загружает модель. Ошибка загрузки фатальна для любой обработки.
func NewYOLODetector(cfg DetectorConfig) (*YOLODetector, error) {
	cfg = cfg.withDefaults()

	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("%w: model file %s: %w", entity.ErrDetection, cfg.ModelPath, err)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("%w: failed to load network %s", entity.ErrDetection, cfg.ModelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &YOLODetector{
		net:     net,
		classes: cfg.ClassNames,
		conf:    cfg.ConfidenceThreshold,
		nms:     cfg.NMSThreshold,
		size:    cfg.InputSize,
	}, nil
}

// Detect находит объекты на изображении.
func (d *YOLODetector) Detect(ctx context.Context, img image.Image) ([]entity.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// ImageToMatRGB отдаёт данные в порядке BGR, как принято в OpenCV
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("%w: convert image: %w", entity.ErrDetection, err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("%w: empty image", entity.ErrDetection)
	}

	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(d.size, d.size), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.mu.Lock()
	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	d.mu.Unlock()
	defer output.Close()

	dets, err := d.decode(output, mat.Cols(), mat.Rows())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrDetection, err)
	}
	return dets, nil
}

// decode разбирает выход формы [1, 4+classes, anchors]: cx, cy, w, h и оценки классов.
func (d *YOLODetector) decode(output gocv.Mat, width, height int) ([]entity.Detection, error) {
	dims := output.Size()
	if len(dims) != 3 || dims[1] <= 4 {
		return nil, fmt.Errorf("unexpected output shape %v", dims)
	}
	attrs, anchors := dims[1], dims[2]

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, err
	}
	if len(data) < attrs*anchors {
		return nil, errors.New("output tensor is truncated")
	}

	sx := float64(width) / float64(d.size)
	sy := float64(height) / float64(d.size)

	var (
		rects   []image.Rectangle
		boxes   []entity.BoundingBox
		scores  []float32
		classes []int
	)
	for i := 0; i < anchors; i++ {
		best, bestScore := -1, float32(0)
		for c := 0; c < attrs-4; c++ {
			if s := data[(4+c)*anchors+i]; s > bestScore {
				best, bestScore = c, s
			}
		}
		if best < 0 || bestScore < d.conf {
			continue
		}

		cx, cy := float64(data[i]), float64(data[anchors+i])
		bw, bh := float64(data[2*anchors+i]), float64(data[3*anchors+i])
		box := entity.NewBoundingBox(
			clamp((cx-bw/2)*sx, 0, float64(width)),
			clamp((cy-bh/2)*sy, 0, float64(height)),
			clamp((cx+bw/2)*sx, 0, float64(width)),
			clamp((cy+bh/2)*sy, 0, float64(height)),
		)

		rects = append(rects, box.Rect())
		boxes = append(boxes, box)
		scores = append(scores, bestScore)
		classes = append(classes, best)
	}
	if len(rects) == 0 {
		return []entity.Detection{}, nil
	}

	keep := gocv.NMSBoxes(rects, scores, d.conf, d.nms)
	dets := make([]entity.Detection, 0, len(keep))
	for _, idx := range keep {
		dets = append(dets, entity.Detection{
			Class:      className(d.classes, classes[idx]),
			BBox:       roundBox(boxes[idx]),
			Confidence: float64(scores[idx]),
		})
	}
	return dets, nil
}

// Close освобождает сеть
func (d *YOLODetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

func roundBox(b entity.BoundingBox) entity.BoundingBox {
	for i := range b {
		b[i] = math.Round(b[i]*100) / 100
	}
	return b
}

// Проверка реализации интерфейса
var _ port.ObjectDetector = (*YOLODetector)(nil)
