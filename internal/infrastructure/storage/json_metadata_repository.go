package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"vision-search/internal/domain/entity"
	"vision-search/internal/domain/port"
)

const documentMode os.FileMode = 0o644

// JSONMetadataRepository хранит метаданные в JSON-документе на диске
type JSONMetadataRepository struct{}

// NewJSONMetadataRepository создаёт файловое хранилище метаданных
func NewJSONMetadataRepository() *JSONMetadataRepository {
	return &JSONMetadataRepository{}
}

// Load читает документ и восстанавливает хранилище
func (r *JSONMetadataRepository) Load(_ context.Context, path string) (*entity.MetadataStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var store entity.MetadataStore
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", path, err)
	}
	return &store, nil
}

// Save записывает документ с отступом в два пробела.
// Запись идёт во временный файл с последующим переименованием;
// итоговый файл получает обычные права documentMode.
func (r *JSONMetadataRepository) Save(_ context.Context, path string, store *entity.MetadataStore) error {
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".metadata-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(documentMode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod metadata: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close metadata: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename metadata: %w", err)
	}
	return nil
}

// Проверка реализации интерфейса
var _ port.MetadataRepository = (*JSONMetadataRepository)(nil)
