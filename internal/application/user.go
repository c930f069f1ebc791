package app

import (
	"context"

	"vision-search/internal/domain/entity"
	"vision-search/internal/domain/port"
)

// UserService хранит выбор пользователя для поиска и отображения
type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) update(ctx context.Context, userID, chatID int64, fn func(*entity.User) error) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	if err := fn(user); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	return s.update(ctx, userID, chatID, func(u *entity.User) error {
		u.SetState(state)
		return nil
	})
}

func (s *UserService) BeginDetect(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingPhoto)
}

func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}

// SetMode меняет режим поиска (any/or, all/and)
func (s *UserService) SetMode(ctx context.Context, userID, chatID int64, raw string) (*entity.User, error) {
	mode, err := entity.ParseMode(raw)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, userID, chatID, func(u *entity.User) error {
		u.Mode = mode
		return nil
	})
}

// SelectClasses заменяет выбранные классы; классы проверяются по индексу.
// Ограничения для невыбранных классов сбрасываются.
func (s *UserService) SelectClasses(ctx context.Context, userID, chatID int64, classes []string, index entity.ClassIndex) (*entity.User, error) {
	q, err := entity.NewSearchQuery(entity.ModeAny, classes, nil)
	if err != nil {
		return nil, err
	}
	if err := q.Validate(index); err != nil {
		return nil, err
	}
	return s.update(ctx, userID, chatID, func(u *entity.User) error {
		u.Selected = q.Classes
		for class := range u.Thresholds {
			if !(entity.RenderOptions{SelectedClasses: q.Classes}).IsSelected(class) {
				delete(u.Thresholds, class)
			}
		}
		return nil
	})
}

// SetThreshold задаёт максимальное количество для класса; "None" снимает ограничение.
// Допустимы только количества, встречавшиеся в индексе.
func (s *UserService) SetThreshold(ctx context.Context, userID, chatID int64, class, raw string, index entity.ClassIndex) (*entity.User, error) {
	limit, bounded, err := entity.ParseThreshold(raw)
	if err != nil {
		return nil, err
	}
	if bounded {
		if err := entity.CheckThreshold(index, class, limit); err != nil {
			return nil, err
		}
	}
	return s.update(ctx, userID, chatID, func(u *entity.User) error {
		if u.Thresholds == nil {
			u.Thresholds = make(map[string]int)
		}
		if bounded {
			u.Thresholds[class] = limit
		} else {
			delete(u.Thresholds, class)
		}
		return nil
	})
}

// SetDisplay меняет параметры отображения результатов
func (s *UserService) SetDisplay(ctx context.Context, userID, chatID int64, showBoxes, highlightOnly bool) (*entity.User, error) {
	return s.update(ctx, userID, chatID, func(u *entity.User) error {
		u.ShowBoxes = showBoxes
		u.HighlightOnly = highlightOnly
		return nil
	})
}

// SaveResults запоминает результат последнего поиска
func (s *UserService) SaveResults(ctx context.Context, userID, chatID int64, results *entity.MetadataStore) (*entity.User, error) {
	return s.update(ctx, userID, chatID, func(u *entity.User) error {
		u.Results = results
		return nil
	})
}

// ResetSearches сбрасывает выбор во всех сессиях после замены метаданных
func (s *UserService) ResetSearches(ctx context.Context) error {
	return s.repo.ResetSearches(ctx)
}
