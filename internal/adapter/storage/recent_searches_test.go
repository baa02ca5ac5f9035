package storage_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/niksmo/storefront/internal/adapter/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRecentSearches(t *testing.T) {
	t.Run("MostRecentFirst", func(t *testing.T) {
		s := storage.NewMemoryRecentSearches(3)
		ctx := t.Context()

		for _, q := range []string{"abaya", "velvet", "scarf", "abaya", "bag"} {
			require.NoError(t, s.AddRecentSearch(ctx, "k", q))
		}

		list, err := s.ReadRecentSearches(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []string{"bag", "abaya", "scarf"}, list)
	})

	t.Run("KeysAreIndependent", func(t *testing.T) {
		s := storage.NewMemoryRecentSearches(3)
		ctx := t.Context()

		require.NoError(t, s.AddRecentSearch(ctx, "a", "velvet"))

		list, err := s.ReadRecentSearches(ctx, "b")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("ReadReturnsCopy", func(t *testing.T) {
		s := storage.NewMemoryRecentSearches(3)
		ctx := t.Context()
		require.NoError(t, s.AddRecentSearch(ctx, "k", "velvet"))

		list, err := s.ReadRecentSearches(ctx, "k")
		require.NoError(t, err)
		list[0] = "changed"

		list, err = s.ReadRecentSearches(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []string{"velvet"}, list)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		s := storage.NewMemoryRecentSearches(3)
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		err := s.AddRecentSearch(ctx, "k", "velvet")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Concurrent", func(t *testing.T) {
		s := storage.NewMemoryRecentSearches(5)
		ctx := t.Context()

		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = s.AddRecentSearch(ctx, "k", fmt.Sprint(i))
			}()
		}
		wg.Wait()

		list, err := s.ReadRecentSearches(ctx, "k")
		require.NoError(t, err)
		assert.Len(t, list, 5)
	})
}
