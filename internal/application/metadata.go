package app

import (
	"context"
	"path/filepath"

	"vision-search/internal/domain/entity"
	"vision-search/internal/domain/port"
)

// DefaultMetadataFile имя документа в каталоге с изображениями
const DefaultMetadataFile = "metadata.json"

// MetadataService сохраняет и загружает документы с метаданными
type MetadataService struct {
	repo     port.MetadataRepository
	fileName string
}

// NewMetadataService создаёт сервис метаданных
func NewMetadataService(repo port.MetadataRepository, fileName string) *MetadataService {
	if fileName == "" {
		fileName = DefaultMetadataFile
	}
	return &MetadataService{repo: repo, fileName: fileName}
}

// PathFor возвращает путь документа для каталога
func (s *MetadataService) PathFor(dir string) string {
	return filepath.Join(dir, s.fileName)
}

// SaveForDirectory сохраняет результат обработки рядом с изображениями
func (s *MetadataService) SaveForDirectory(ctx context.Context, dir string, store *entity.MetadataStore) (string, error) {
	path := s.PathFor(dir)
	if err := s.repo.Save(ctx, path, store); err != nil {
		return "", err
	}
	return path, nil
}

// Load читает документ
func (s *MetadataService) Load(ctx context.Context, path string) (*entity.MetadataStore, error) {
	return s.repo.Load(ctx, path)
}

// Export сохраняет результаты поиска в том же формате
func (s *MetadataService) Export(ctx context.Context, path string, results *entity.MetadataStore) error {
	return s.repo.Save(ctx, path, results)
}
