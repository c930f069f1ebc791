package port

import (
	"image"
	"io"
)

// ImageLoader открывает и декодирует изображения
type ImageLoader interface {
	// Load читает изображение с диска, ошибки оборачиваются в entity.ErrImageLoad
	Load(path string) (image.Image, error)

	// Decode декодирует изображение из потока
	Decode(r io.Reader) (image.Image, error)

	// Supports сообщает, умеет ли загрузчик читать файл с таким именем
	Supports(name string) bool
}
