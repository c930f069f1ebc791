package imageio

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"vision-search/internal/domain/entity"
	"vision-search/internal/domain/port"
)

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".bmp":  {},
	".tif":  {},
	".tiff": {},
}

// IsImageFile проверяет расширение файла без учёта регистра
func IsImageFile(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Loader загружает изображения через imaging.
//
// EXIF-ориентация по умолчанию не применяется: рамки в метаданных заданы
// в системе координат пикселей файла, и повёрнутое изображение разошлось бы
// с уже сохранёнными детекциями. Поворот включается WithAutoOrientation
// и должен совпадать при распознавании и при отрисовке.
type Loader struct {
	autoOrient bool
}

// Option настройка загрузчика
type Option func(*Loader)

// WithAutoOrientation поворачивает изображения по EXIF-тегу Orientation
func WithAutoOrientation(on bool) Option {
	return func(l *Loader) { l.autoOrient = on }
}

// NewLoader создаёт загрузчик изображений
func NewLoader(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) decodeOptions() []imaging.DecodeOption {
	if !l.autoOrient {
		return nil
	}
	return []imaging.DecodeOption{imaging.AutoOrientation(true)}
}

// Load открывает файл и декодирует изображение
func (l *Loader) Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, l.decodeOptions()...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", entity.ErrImageLoad, path, err)
	}
	return img, nil
}

// Decode декодирует изображение из потока
func (l *Loader) Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, l.decodeOptions()...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrImageLoad, err)
	}
	return img, nil
}

// Supports проверяет расширение файла
func (l *Loader) Supports(name string) bool {
	return IsImageFile(name)
}

// EncodePNG кодирует изображение в PNG
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Save сохраняет изображение, формат определяется по расширению
func Save(path string, img image.Image) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("save image %s: %w", path, err)
	}
	return nil
}

// Fit уменьшает изображение так, чтобы большая сторона не превышала maxSide.
// Меньшие изображения возвращаются как есть.
func Fit(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	if maxSide <= 0 || (b.Dx() <= maxSide && b.Dy() <= maxSide) {
		return img
	}
	return imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
}

// Проверка реализации интерфейса
var _ port.ImageLoader = (*Loader)(nil)
