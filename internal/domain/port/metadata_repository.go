package port

import (
	"context"

	"vision-search/internal/domain/entity"
)

// MetadataRepository хранилище документа с метаданными
type MetadataRepository interface {
	// Load читает документ по пути
	Load(ctx context.Context, path string) (*entity.MetadataStore, error)

	// Save записывает документ по пути
	Save(ctx context.Context, path string, store *entity.MetadataStore) error
}
