package entity

import (
	"encoding/json"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
)

// ImageMetadata запись об одном обработанном изображении.
// class_counts всегда выводится из detections и не меняется отдельно.
type ImageMetadata struct {
	imagePath   string
	detections  []Detection
	classCounts map[string]int
}

// NewImageMetadata создаёт запись и подсчитывает классы
func NewImageMetadata(imagePath string, detections []Detection) ImageMetadata {
	dets := slices.Clone(detections)
	if dets == nil {
		dets = []Detection{}
	}
	return ImageMetadata{
		imagePath:   imagePath,
		detections:  dets,
		classCounts: CountClasses(dets),
	}
}

// CountClasses считает количество детекций каждого класса
func CountClasses(detections []Detection) map[string]int {
	counts := make(map[string]int)
	for _, d := range detections {
		counts[d.Class]++
	}
	return counts
}

// ImagePath возвращает путь к изображению
func (m ImageMetadata) ImagePath() string { return m.imagePath }

// Name возвращает имя файла без каталога
func (m ImageMetadata) Name() string { return filepath.Base(m.imagePath) }

// Detections возвращает копию списка детекций
func (m ImageMetadata) Detections() []Detection { return slices.Clone(m.detections) }

// ClassCounts возвращает копию счётчиков по классам
func (m ImageMetadata) ClassCounts() map[string]int { return maps.Clone(m.classCounts) }

// Count возвращает число детекций класса (0, если класса нет)
func (m ImageMetadata) Count(class string) int { return m.classCounts[class] }

// Classes возвращает классы записи в алфавитном порядке
func (m ImageMetadata) Classes() []string {
	return sortedKeys(m.classCounts)
}

type metadataJSON struct {
	ImagePath   string         `json:"image_path"`
	Detections  []Detection    `json:"detections"`
	ClassCounts map[string]int `json:"class_counts"`
}

func (m ImageMetadata) MarshalJSON() ([]byte, error) {
	dets := m.detections
	if dets == nil {
		dets = []Detection{}
	}
	counts := m.classCounts
	if counts == nil {
		counts = map[string]int{}
	}
	return json.Marshal(metadataJSON{
		ImagePath:   m.imagePath,
		Detections:  dets,
		ClassCounts: counts,
	})
}

// UnmarshalJSON пересчитывает class_counts и отклоняет документ,
// если сохранённые счётчики с ним не совпадают.
func (m *ImageMetadata) UnmarshalJSON(data []byte) error {
	var raw metadataJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ImagePath == "" {
		return fmt.Errorf("%w: empty image_path", ErrInconsistentMetadata)
	}

	rebuilt := NewImageMetadata(raw.ImagePath, raw.Detections)
	if raw.ClassCounts != nil && !maps.Equal(raw.ClassCounts, rebuilt.classCounts) {
		return fmt.Errorf("%w: %s: class_counts %v do not match detections %v",
			ErrInconsistentMetadata, raw.ImagePath, raw.ClassCounts, rebuilt.classCounts)
	}

	*m = rebuilt
	return nil
}
