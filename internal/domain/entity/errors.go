package entity

import "errors"

var (
	// ErrImageLoad изображение не удалось открыть или декодировать
	ErrImageLoad = errors.New("image load failure")

	// ErrDetection модель не смогла обработать изображение или не загрузилась
	ErrDetection = errors.New("detection failure")

	// ErrInvalidQuery пустой выбор классов или некорректный порог
	ErrInvalidQuery = errors.New("invalid query")

	// ErrInconsistentMetadata сохранённые class_counts не совпадают с detections
	ErrInconsistentMetadata = errors.New("inconsistent metadata")
)
