package entity

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildIndex(t *testing.T) {
	store := NewMetadataStore([]ImageMetadata{
		record("1.jpg", "person", "person", "person"),
		record("2.jpg", "car"),
		record("3.jpg", "person", "car"),
		record("4.jpg", "person", "person", "person"),
		record("5.jpg"),
	})

	index := BuildIndex(store)
	require.Equal(t, []string{"car", "person"}, index.UniqueClasses())
	require.Equal(t, []int{1, 3}, index.CountOptions("person"))
	require.Equal(t, []int{1}, index.CountOptions("car"))
	require.Empty(t, index.CountOptions("dog"))
	require.False(t, index.Has("dog"))
}

func TestBuildIndex_EmptyStore(t *testing.T) {
	index := BuildIndex(NewMetadataStore(nil))
	require.Zero(t, index.Len())
	require.Empty(t, index.UniqueClasses())
}

func TestBuildIndex_OptionsStrictlyIncreasingAndObserved(t *testing.T) {
	store := NewMetadataStore([]ImageMetadata{
		record("a", "cat", "cat", "cat", "cat"),
		record("b", "cat"),
		record("c", "cat", "cat"),
		record("d", "cat", "cat"),
		record("e", "dog", "cat"),
	})
	index := BuildIndex(store)

	for _, class := range index.UniqueClasses() {
		opts := index.CountOptions(class)
		require.NotEmpty(t, opts, class)
		for i, n := range opts {
			require.GreaterOrEqual(t, n, 1)
			if i > 0 {
				require.Greater(t, n, opts[i-1])
			}
			observed := slices.ContainsFunc(store.Records(), func(r ImageMetadata) bool {
				return r.Count(class) == n
			})
			require.True(t, observed, "%s=%d", class, n)
		}
	}
}

func TestBuildIndex_Idempotent(t *testing.T) {
	store := NewMetadataStore([]ImageMetadata{record("a", "cat"), record("b", "dog", "dog")})
	require.True(t, BuildIndex(store).Equal(BuildIndex(store)))
}

func TestClassIndex_IsSubsetOf(t *testing.T) {
	full := BuildIndex(NewMetadataStore([]ImageMetadata{
		record("a", "cat"),
		record("b", "cat", "cat"),
		record("c", "dog"),
	}))
	part := BuildIndex(NewMetadataStore([]ImageMetadata{record("b", "cat", "cat")}))
	other := BuildIndex(NewMetadataStore([]ImageMetadata{record("x", "cat", "cat", "cat")}))

	require.True(t, part.IsSubsetOf(full))
	require.False(t, full.IsSubsetOf(part))
	require.False(t, other.IsSubsetOf(full))
}

func TestClassIndex_HasCount(t *testing.T) {
	index := BuildIndex(NewMetadataStore([]ImageMetadata{
		record("a", "person"),
		record("b", "person", "person", "person"),
	}))

	require.True(t, index.HasCount("person", 1))
	require.True(t, index.HasCount("person", 3))
	require.False(t, index.HasCount("person", 2))
	require.False(t, index.HasCount("dog", 1))
}
