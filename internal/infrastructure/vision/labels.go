package vision

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

const (
	DefaultConfidenceThreshold = 0.25
	DefaultNMSThreshold        = 0.45
	DefaultInputSize           = 640
)

// DetectorConfig параметры YOLO-детектора
type DetectorConfig struct {
	ModelPath           string
	ClassNames          []string // пустой список: классы COCO
	ConfidenceThreshold float32
	NMSThreshold        float32
	InputSize           int
}

func (c DetectorConfig) withDefaults() DetectorConfig {
	if len(c.ClassNames) == 0 {
		c.ClassNames = CocoClassNames
	}
	if c.ConfidenceThreshold <= 0 {
		c.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if c.NMSThreshold <= 0 {
		c.NMSThreshold = DefaultNMSThreshold
	}
	if c.InputSize <= 0 {
		c.InputSize = DefaultInputSize
	}
	return c
}

// CocoClassNames классы датасета COCO в порядке индексов модели
var CocoClassNames = []string{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat",
	"dog", "horse", "sheep", "cow", "elephant", "bear", "zebra", "giraffe", "backpack",
	"umbrella", "handbag", "tie", "suitcase", "frisbee", "skis", "snowboard", "sports ball",
	"kite", "baseball bat", "baseball glove", "skateboard", "surfboard", "tennis racket",
	"bottle", "wine glass", "cup", "fork", "knife", "spoon", "bowl", "banana", "apple",
	"sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza", "donut", "cake", "chair",
	"couch", "potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink",
	"refrigerator", "book", "clock", "vase", "scissors", "teddy bear", "hair drier",
	"toothbrush",
}

// LoadClassNames читает имена классов, по одному в строке; пустые строки пропускаются
func LoadClassNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open class names: %w", err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			names = append(names, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read class names: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("class names file %s is empty", path)
	}
	return names, nil
}

func className(names []string, id int) string {
	if id >= 0 && id < len(names) {
		return names[id]
	}
	return fmt.Sprintf("class_%d", id)
}
