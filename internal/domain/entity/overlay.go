package entity

import (
	"fmt"
	"strings"
)

// DrawAction что делать с одной детекцией при отрисовке
type DrawAction int

const (
	ActionOmit           DrawAction = iota // не рисовать вовсе
	ActionDrawDefault                      // обычный стиль
	ActionDrawEmphasized                   // выделенный стиль
)

func (a DrawAction) String() string {
	switch a {
	case ActionOmit:
		return "omit"
	case ActionDrawDefault:
		return "default"
	case ActionDrawEmphasized:
		return "emphasized"
	default:
		return fmt.Sprintf("DrawAction(%d)", int(a))
	}
}

// drawTable индексируется как [isSelected][highlightOnly]
var drawTable = [2][2]DrawAction{
	{ActionDrawDefault, ActionOmit},
	{ActionDrawEmphasized, ActionDrawEmphasized},
}

// DecideDraw выбирает действие по принадлежности класса к выбранным
// и флагу "показывать только выбранные"
func DecideDraw(isSelected, highlightOnly bool) DrawAction {
	return drawTable[b2i(isSelected)][b2i(highlightOnly)]
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// RenderOptions параметры отображения найденных объектов
type RenderOptions struct {
	ShowBoxes             bool
	HighlightOnlySelected bool
	SelectedClasses       []string
}

// IsSelected сообщает, входит ли класс в выбранные
func (o RenderOptions) IsSelected(class string) bool {
	for _, c := range o.SelectedClasses {
		if c == class {
			return true
		}
	}
	return false
}

// Action возвращает действие для детекции с учётом ShowBoxes
func (o RenderOptions) Action(d Detection) DrawAction {
	if !o.ShowBoxes {
		return ActionOmit
	}
	return DecideDraw(o.IsSelected(d.Class), o.HighlightOnlySelected)
}

// SingleImageOptions выделяет все детекции записи (просмотр одного изображения)
func SingleImageOptions(r ImageMetadata) RenderOptions {
	return RenderOptions{
		ShowBoxes:       true,
		SelectedClasses: r.Classes(),
	}
}

// Caption подпись карточки: имя файла и счётчики классов.
// Если selected не пуст, показываются только выбранные классы.
func Caption(r ImageMetadata, selected []string) string {
	var items []string
	for _, class := range r.Classes() {
		if len(selected) > 0 && !(RenderOptions{SelectedClasses: selected}).IsSelected(class) {
			continue
		}
		items = append(items, fmt.Sprintf("%s: %d", class, r.Count(class)))
	}

	summary := strings.Join(items, ", ")
	if summary == "" {
		summary = "No detections"
		if len(selected) > 0 {
			summary = "No matches"
		}
	}
	return r.Name() + "\n" + summary
}
