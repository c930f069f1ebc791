package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetadataStore_IsolatedFromInput(t *testing.T) {
	records := []ImageMetadata{record("a", "cat"), record("b", "dog")}
	store := NewMetadataStore(records)
	records[0] = record("z")

	require.Equal(t, 2, store.Len())
	require.Equal(t, "a", store.Records()[0].ImagePath())
}

func TestMetadataStore_NilIsEmpty(t *testing.T) {
	var store *MetadataStore
	require.Zero(t, store.Len())
	require.Nil(t, store.Records())
}

func TestMetadataStore_JSONRoundTripRebuildsSameIndex(t *testing.T) {
	store := NewMetadataStore([]ImageMetadata{
		record("/img/1.jpg", "person", "person"),
		record("/img/2.jpg", "car"),
		record("/img/3.jpg", "person", "car"),
	})

	data, err := json.MarshalIndent(store, "", "  ")
	require.NoError(t, err)

	var back MetadataStore
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, paths(store), paths(&back))
	require.True(t, BuildIndex(store).Equal(BuildIndex(&back)))
}

func TestMetadataStore_ExportedResultsAreSubsetConsistent(t *testing.T) {
	store := scenarioStore()
	q, err := NewSearchQuery(ModeAny, []string{"car"}, nil)
	require.NoError(t, err)

	data, err := json.Marshal(Search(store, q))
	require.NoError(t, err)

	var reloaded MetadataStore
	require.NoError(t, json.Unmarshal(data, &reloaded))
	require.Equal(t, []string{"2.jpg", "3.jpg"}, paths(&reloaded))
	require.True(t, BuildIndex(&reloaded).IsSubsetOf(BuildIndex(store)))
}

func TestMetadataStore_EmptyMarshalsAsArray(t *testing.T) {
	data, err := json.Marshal(NewMetadataStore(nil))
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(data))
}
