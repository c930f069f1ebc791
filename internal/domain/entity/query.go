package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// SearchMode способ объединения условий по классам
type SearchMode string

const (
	ModeAny SearchMode = "any" // хотя бы один выбранный класс (OR)
	ModeAll SearchMode = "all" // все выбранные классы на одном изображении (AND)
)

// ParseMode разбирает режим поиска: any/or или all/and
func ParseMode(s string) (SearchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "any", "or", "":
		return ModeAny, nil
	case "all", "and":
		return ModeAll, nil
	default:
		return "", fmt.Errorf("%w: unknown search mode %q", ErrInvalidQuery, s)
	}
}

// ParseThreshold разбирает максимальное количество для класса.
// Пустая строка и "None" означают отсутствие ограничения.
func ParseThreshold(s string) (limit int, bounded bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return 0, false, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, fmt.Errorf("%w: threshold %q is not a number", ErrInvalidQuery, s)
	}
	if n < 1 {
		return 0, false, fmt.Errorf("%w: threshold must be positive, got %d", ErrInvalidQuery, n)
	}
	return n, true, nil
}

// SearchQuery параметры одного поиска
type SearchQuery struct {
	Mode       SearchMode
	Classes    []string       // выбранные классы, без повторов
	Thresholds map[string]int // максимум по классу; нет ключа, нет ограничения
}

// NewSearchQuery проверяет и нормализует параметры поиска
func NewSearchQuery(mode SearchMode, classes []string, thresholds map[string]int) (SearchQuery, error) {
	if mode != ModeAny && mode != ModeAll {
		return SearchQuery{}, fmt.Errorf("%w: unknown search mode %q", ErrInvalidQuery, mode)
	}

	selected := lo.Uniq(lo.Compact(classes))
	if len(selected) == 0 {
		return SearchQuery{}, fmt.Errorf("%w: no classes selected", ErrInvalidQuery)
	}

	limits := make(map[string]int)
	for class, limit := range thresholds {
		if !lo.Contains(selected, class) {
			continue
		}
		if limit < 1 {
			return SearchQuery{}, fmt.Errorf("%w: threshold for %q must be positive, got %d", ErrInvalidQuery, class, limit)
		}
		limits[class] = limit
	}

	return SearchQuery{Mode: mode, Classes: selected, Thresholds: limits}, nil
}

// Validate проверяет, что все выбранные классы есть в индексе
func (q SearchQuery) Validate(index ClassIndex) error {
	for _, class := range q.Classes {
		if !index.Has(class) {
			return fmt.Errorf("%w: unknown class %q", ErrInvalidQuery, class)
		}
	}
	return nil
}

// CheckThreshold проверяет, что ограничение выбрано из встречавшихся
// количеств класса: другие значения не отличаются от соседних по результату.
func CheckThreshold(index ClassIndex, class string, limit int) error {
	if !index.Has(class) {
		return fmt.Errorf("%w: unknown class %q", ErrInvalidQuery, class)
	}
	if !index.HasCount(class, limit) {
		return fmt.Errorf("%w: %q never occurs %d times, choose one of %v",
			ErrInvalidQuery, class, limit, index.CountOptions(class))
	}
	return nil
}

// Threshold возвращает ограничение для класса
func (q SearchQuery) Threshold(class string) (int, bool) {
	limit, ok := q.Thresholds[class]
	return limit, ok
}

// ClassMatches условие для одного класса: класс присутствует и
// не превышает ограничение. Ограничение только сужает выбор сверху.
func ClassMatches(count, limit int, bounded bool) bool {
	if count < 1 {
		return false
	}
	return !bounded || count <= limit
}

// Matches проверяет запись целиком
func (q SearchQuery) Matches(r ImageMetadata) bool {
	if len(q.Classes) == 0 {
		return false
	}
	for _, class := range q.Classes {
		limit, bounded := q.Threshold(class)
		ok := ClassMatches(r.Count(class), limit, bounded)
		if q.Mode == ModeAll && !ok {
			return false
		}
		if q.Mode != ModeAll && ok {
			return true
		}
	}
	return q.Mode == ModeAll
}

// Search возвращает записи, подходящие под запрос, в исходном порядке
func Search(store *MetadataStore, q SearchQuery) *MetadataStore {
	return store.Filter(q.Matches)
}
