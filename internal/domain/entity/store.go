package entity

import (
	"encoding/json"
	"slices"
)

// MetadataStore упорядоченный неизменяемый набор записей.
// Порядок совпадает с порядком обхода каталога или исходного документа.
type MetadataStore struct {
	records []ImageMetadata
}

// NewMetadataStore копирует записи в новое хранилище
func NewMetadataStore(records []ImageMetadata) *MetadataStore {
	return &MetadataStore{records: slices.Clone(records)}
}

// Len возвращает число записей
func (s *MetadataStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Records возвращает копию записей
func (s *MetadataStore) Records() []ImageMetadata {
	if s == nil {
		return nil
	}
	return slices.Clone(s.records)
}

// Filter возвращает подпоследовательность записей, удовлетворяющих keep
func (s *MetadataStore) Filter(keep func(ImageMetadata) bool) *MetadataStore {
	out := make([]ImageMetadata, 0)
	for _, r := range s.Records() {
		if keep(r) {
			out = append(out, r)
		}
	}
	return &MetadataStore{records: out}
}

func (s *MetadataStore) MarshalJSON() ([]byte, error) {
	records := s.Records()
	if records == nil {
		records = []ImageMetadata{}
	}
	return json.Marshal(records)
}

func (s *MetadataStore) UnmarshalJSON(data []byte) error {
	var records []ImageMetadata
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	s.records = records
	return nil
}
