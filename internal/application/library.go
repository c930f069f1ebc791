package app

import (
	"sync/atomic"

	"vision-search/internal/domain/entity"
)

// Snapshot неизменяемая пара хранилище + индекс
type Snapshot struct {
	Store  *entity.MetadataStore
	Index  entity.ClassIndex
	Source string // каталог или файл, откуда получены метаданные
}

// Library текущий набор метаданных. Замена выполняется атомарно,
// поиск всегда видит согласованный снимок.
type Library struct {
	current atomic.Pointer[Snapshot]
}

// NewLibrary создаёт пустую библиотеку
func NewLibrary() *Library {
	return &Library{}
}

// Replace строит индекс и подменяет текущий снимок
func (l *Library) Replace(store *entity.MetadataStore, source string) *Snapshot {
	snap := &Snapshot{
		Store:  store,
		Index:  entity.BuildIndex(store),
		Source: source,
	}
	l.current.Store(snap)
	return snap
}

// Current возвращает текущий снимок или false, если метаданные не загружены
func (l *Library) Current() (*Snapshot, bool) {
	snap := l.current.Load()
	return snap, snap != nil
}
