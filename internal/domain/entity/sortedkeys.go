package entity

import (
	"cmp"
	"slices"
)

// sortedKeys возвращает ключи map в отсортированном порядке
// (эквивалент slices.Sorted(maps.Keys(m)) для go1.21: nil для пустой map)
func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	var keys []K
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
