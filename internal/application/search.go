package app

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"vision-search/internal/domain/entity"
)

// ErrNoMetadata поиск до загрузки метаданных
var ErrNoMetadata = errors.New("no metadata loaded")

// SearchService выполняет поиск по текущему снимку библиотеки
type SearchService struct {
	library *Library
	logger  *zap.SugaredLogger
}

// NewSearchService создаёт сервис поиска
func NewSearchService(library *Library, logger *zap.SugaredLogger) *SearchService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SearchService{library: library, logger: logger}
}

// Index возвращает индекс классов текущего снимка
func (s *SearchService) Index() (entity.ClassIndex, error) {
	snap, ok := s.library.Current()
	if !ok {
		return entity.ClassIndex{}, ErrNoMetadata
	}
	return snap.Index, nil
}

// Search возвращает подходящие записи в исходном порядке
func (s *SearchService) Search(q entity.SearchQuery) (*entity.MetadataStore, error) {
	snap, ok := s.library.Current()
	if !ok {
		return nil, ErrNoMetadata
	}

	results, err := Search(snap, q)
	if err != nil {
		s.logger.Debugw("search rejected", "classes", q.Classes, "error", err)
		return nil, err
	}
	s.logger.Infow("search finished",
		"source", snap.Source,
		"mode", q.Mode,
		"classes", q.Classes,
		"matched", results.Len(),
		"total", snap.Store.Len(),
	)
	return results, nil
}

// Search проверяет запрос и выполняет его на снимке.
// Пустой выбор классов до поиска не доходит.
func Search(snap *Snapshot, q entity.SearchQuery) (*entity.MetadataStore, error) {
	if len(q.Classes) == 0 {
		return nil, fmt.Errorf("%w: no classes selected", entity.ErrInvalidQuery)
	}
	if err := q.Validate(snap.Index); err != nil {
		return nil, err
	}
	return entity.Search(snap.Store, q), nil
}
