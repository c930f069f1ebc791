package entity

import (
	"maps"
	"slices"
)

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingPhoto UserState = "awaiting_photo" // Ожидание фото для распознавания
	StateProcessing    UserState = "processing"     // Обработка изображения
)

// User пользователь бота и его текущий выбор для поиска.
// Выбор живёт здесь, а не в глобальном состоянии.
type User struct {
	ID     int64     // Telegram User ID
	ChatID int64     // Telegram Chat ID
	State  UserState // Текущее состояние пользователя

	Mode          SearchMode
	Selected      []string
	Thresholds    map[string]int
	ShowBoxes     bool
	HighlightOnly bool
	Results       *MetadataStore // результат последнего поиска
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:            userID,
		ChatID:        chatID,
		State:         StateMainMenu,
		Mode:          ModeAny,
		Thresholds:    make(map[string]int),
		ShowBoxes:     true,
		HighlightOnly: true,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// Query собирает запрос из текущего выбора
func (u *User) Query() (SearchQuery, error) {
	return NewSearchQuery(u.Mode, u.Selected, maps.Clone(u.Thresholds))
}

// RenderOptions собирает параметры отображения из текущего выбора
func (u *User) RenderOptions() RenderOptions {
	return RenderOptions{
		ShowBoxes:             u.ShowBoxes,
		HighlightOnlySelected: u.HighlightOnly,
		SelectedClasses:       u.Selected,
	}
}

// ResetSearch сбрасывает выбор классов и результаты
func (u *User) ResetSearch() {
	u.Selected = nil
	u.Thresholds = make(map[string]int)
	u.Results = nil
}

// Clone возвращает независимую копию: хранилище отдаёт копии,
// изменения попадают в него только через Save
func (u *User) Clone() *User {
	c := *u
	c.Selected = slices.Clone(u.Selected)
	c.Thresholds = maps.Clone(u.Thresholds)
	return &c
}
