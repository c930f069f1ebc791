package storage

import (
	"context"
	"sync"

	"vision-search/internal/domain/entity"
	"vision-search/internal/domain/port"
)

type sessionKey struct {
	userID, chatID int64
}

// MemoryUserRepository in-memory хранилище сессий
type MemoryUserRepository struct {
	mu       sync.Mutex
	sessions map[sessionKey]*entity.User
}

// NewMemoryUserRepository создаёт новое in-memory хранилище
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		sessions: make(map[sessionKey]*entity.User),
	}
}

// Get возвращает копию сессии, создаёт новую если не найдена
func (r *MemoryUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	key := sessionKey{userID: userID, chatID: chatID}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.sessions[key]
	if !exists {
		user = entity.NewUser(userID, chatID)
		r.sessions[key] = user
	}
	return user.Clone(), nil
}

// Save сохраняет копию сессии
func (r *MemoryUserRepository) Save(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	r.sessions[sessionKey{userID: user.ID, chatID: user.ChatID}] = user.Clone()
	r.mu.Unlock()

	return nil
}

// ResetSearches сбрасывает поиск во всех сессиях
func (r *MemoryUserRepository) ResetSearches(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.sessions {
		user.ResetSearch()
	}
	return nil
}

// Проверка реализации интерфейса
var _ port.UserRepository = (*MemoryUserRepository)(nil)
