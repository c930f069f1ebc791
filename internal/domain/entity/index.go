package entity

import (
	"maps"
	"slices"

	"github.com/samber/lo"
)

// ClassIndex производный индекс по хранилищу: все классы и
// наблюдавшиеся ненулевые количества каждого класса.
// Не сохраняется, всегда пересобирается из MetadataStore.
type ClassIndex struct {
	options map[string][]int
}

// BuildIndex строит индекс за один проход по хранилищу
func BuildIndex(store *MetadataStore) ClassIndex {
	seen := make(map[string]map[int]struct{})
	for _, r := range store.Records() {
		for class, count := range r.classCounts {
			if count < 1 {
				continue
			}
			if seen[class] == nil {
				seen[class] = make(map[int]struct{})
			}
			seen[class][count] = struct{}{}
		}
	}

	options := make(map[string][]int, len(seen))
	for class, counts := range seen {
		options[class] = sortedKeys(counts)
	}
	return ClassIndex{options: options}
}

// UniqueClasses возвращает все классы в алфавитном порядке
func (x ClassIndex) UniqueClasses() []string {
	return sortedKeys(x.options)
}

// Has сообщает, встречался ли класс
func (x ClassIndex) Has(class string) bool {
	_, ok := x.options[class]
	return ok
}

// CountOptions возвращает возрастающие различные количества класса
func (x ClassIndex) CountOptions(class string) []int {
	return slices.Clone(x.options[class])
}

// HasCount сообщает, встречалось ли у класса ровно count объектов
func (x ClassIndex) HasCount(class string, count int) bool {
	_, found := slices.BinarySearch(x.options[class], count)
	return found
}

// Len возвращает число классов
func (x ClassIndex) Len() int { return len(x.options) }

// IsSubsetOf проверяет, что каждая пара класс/количество есть в other
func (x ClassIndex) IsSubsetOf(other ClassIndex) bool {
	for class, counts := range x.options {
		if !lo.Every(other.options[class], counts) {
			return false
		}
	}
	return true
}

// Equal сравнивает два индекса
func (x ClassIndex) Equal(other ClassIndex) bool {
	return maps.EqualFunc(x.options, other.options, slices.Equal[[]int])
}
