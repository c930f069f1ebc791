package port

import (
	"context"

	"vision-search/internal/domain/entity"
)

// UserRepository хранит сессии пользователей бота.
// Сессия определяется парой пользователь и чат.
type UserRepository interface {
	// Get возвращает копию сессии, создаёт новую если не найдена
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save сохраняет сессию
	Save(ctx context.Context, user *entity.User) error

	// ResetSearches сбрасывает выбор классов и результаты во всех сессиях.
	// Вызывается после замены метаданных: старый выбор может ссылаться на исчезнувшие классы.
	ResetSearches(ctx context.Context) error
}
