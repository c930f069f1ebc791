package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font/gofont/goregular"

	"vision-search/internal/domain/entity"
	"vision-search/internal/domain/port"
)

const (
	DefaultEmphasisColor = "#FF4B4B"
	DefaultNormalColor   = "#15FF00"
	DefaultFontSize      = 12

	emphasisWidth = 3
	normalWidth   = 1
	labelPadX     = 4
	labelPadY     = 2
)

var regular *truetype.Font

func init() {
	var err error
	regular, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Style цвет и толщина рамки
type Style struct {
	Color color.Color
	Width float64
}

// Options настройки рендера
type Options struct {
	EmphasisColor string
	NormalColor   string
	FontSize      float64
}

// Annotator рисует рамки и подписи детекций
type Annotator struct {
	emphasized Style
	normal     Style
	fontSize   float64
}

// NewAnnotator создаёт рендер; пустые поля заменяются значениями по умолчанию
func NewAnnotator(opts Options) (*Annotator, error) {
	if opts.EmphasisColor == "" {
		opts.EmphasisColor = DefaultEmphasisColor
	}
	if opts.NormalColor == "" {
		opts.NormalColor = DefaultNormalColor
	}
	if opts.FontSize <= 0 {
		opts.FontSize = DefaultFontSize
	}

	emphasis, err := colorful.Hex(opts.EmphasisColor)
	if err != nil {
		return nil, fmt.Errorf("emphasis color %q: %w", opts.EmphasisColor, err)
	}
	normal, err := colorful.Hex(opts.NormalColor)
	if err != nil {
		return nil, fmt.Errorf("normal color %q: %w", opts.NormalColor, err)
	}

	return &Annotator{
		emphasized: Style{Color: emphasis, Width: emphasisWidth},
		normal:     Style{Color: normal, Width: normalWidth},
		fontSize:   opts.FontSize,
	}, nil
}

// Render возвращает копию изображения с нарисованными детекциями.
// Исходное изображение не изменяется.
func (a *Annotator) Render(img image.Image, record entity.ImageMetadata, opts entity.RenderOptions) image.Image {
	dc := gg.NewContextForImage(img)
	if !opts.ShowBoxes {
		return dc.Image()
	}

	// face не потокобезопасен, поэтому создаётся на каждый вызов
	dc.SetFontFace(truetype.NewFace(regular, &truetype.Options{Size: a.fontSize}))

	for _, d := range record.Detections() {
		switch opts.Action(d) {
		case entity.ActionOmit:
			continue
		case entity.ActionDrawEmphasized:
			a.drawDetection(dc, d, a.emphasized)
		default:
			a.drawDetection(dc, d, a.normal)
		}
	}
	return dc.Image()
}

func (a *Annotator) drawDetection(dc *gg.Context, d entity.Detection, style Style) {
	b := d.BBox
	dc.SetColor(style.Color)
	dc.SetLineWidth(style.Width)
	dc.DrawRectangle(b.X1(), b.Y1(), b.Width(), b.Height())
	dc.Stroke()

	label := d.Label()
	tw, th := dc.MeasureString(label)
	w, h := tw+2*labelPadX, th+2*labelPadY
	x, y := LabelOrigin(b, w, h, float64(dc.Width()), float64(dc.Height()))

	dc.SetColor(style.Color)
	dc.DrawRectangle(x, y, w, h)
	dc.Fill()

	dc.SetColor(color.White)
	dc.DrawStringAnchored(label, x+labelPadX, y+h/2, 0, 0.5)
}

// LabelOrigin возвращает левый верхний угол подписи размера w×h.
// Подпись ставится над рамкой, а если сверху нет места, то внутрь рамки;
// затем сдвигается так, чтобы не выходить за изображение.
func LabelOrigin(b entity.BoundingBox, w, h, imgW, imgH float64) (x, y float64) {
	x, y = b.X1(), b.Y1()-h
	if y < 0 {
		y = b.Y1()
	}
	return clamp(x, 0, imgW-w), clamp(y, 0, imgH-h)
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Проверка реализации интерфейса
var _ port.AnnotationRenderer = (*Annotator)(nil)
