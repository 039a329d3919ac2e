package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ProductStore {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewProductStore(db)
}

func TestProductStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Insert_AssignsIncreasingIDs", func(t *testing.T) {
		s := newTestStore(t)

		a, err := s.Insert(ctx, "Widget", "Acme", "1.0", 100)
		require.NoError(t, err)
		b, err := s.Insert(ctx, "Gadget", "Acme", "1.0", 250)
		require.NoError(t, err)

		require.NotZero(t, a.ID)
		require.Greater(t, b.ID, a.ID)
	})

	t.Run("Insert_DuplicateNameVersionConflicts", func(t *testing.T) {
		s := newTestStore(t)

		_, err := s.Insert(ctx, "Widget", "Acme", "1.0", 100)
		require.NoError(t, err)
		_, err = s.Insert(ctx, "Widget", "Someone else", "1.0", 999)
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("Insert_SameNameOtherVersionSucceeds", func(t *testing.T) {
		s := newTestStore(t)

		_, err := s.Insert(ctx, "Widget", "Acme", "1.0", 100)
		require.NoError(t, err)
		_, err = s.Insert(ctx, "Widget", "Acme", "2.0", 120)
		require.NoError(t, err)

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
	})

	t.Run("Insert_UniquenessIsCaseSensitive", func(t *testing.T) {
		s := newTestStore(t)

		_, err := s.Insert(ctx, "Widget", "Acme", "1.0", 100)
		require.NoError(t, err)
		_, err = s.Insert(ctx, "widget", "Acme", "1.0", 100)
		require.NoError(t, err)
	})

	t.Run("List_EmptyTableReturnsEmptySlice", func(t *testing.T) {
		s := newTestStore(t)

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.NotNil(t, list)
		require.Empty(t, list)
	})

	t.Run("List_KeepsInsertionOrder", func(t *testing.T) {
		s := newTestStore(t)

		for _, name := range []string{"c", "a", "b"} {
			_, err := s.Insert(ctx, name, "o", "1", 1)
			require.NoError(t, err)
		}
		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Equal(t, "c", list[0].Name)
		require.Equal(t, "a", list[1].Name)
		require.Equal(t, "b", list[2].Name)
	})

	t.Run("DeleteByName_RemovesEveryCaseInsensitiveMatch", func(t *testing.T) {
		s := newTestStore(t)

		_, err := s.Insert(ctx, "Widget", "A", "1.0", 100)
		require.NoError(t, err)
		_, err = s.Insert(ctx, "widget", "B", "2.0", 200)
		require.NoError(t, err)
		_, err = s.Insert(ctx, "Gadget", "C", "1.0", 300)
		require.NoError(t, err)

		n, err := s.DeleteByName(ctx, "WIDGET")
		require.NoError(t, err)
		require.EqualValues(t, 2, n)

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, "Gadget", list[0].Name)
	})

	t.Run("DeleteByName_NoMatchReturnsZero", func(t *testing.T) {
		s := newTestStore(t)

		n, err := s.DeleteByName(ctx, "missing")
		require.NoError(t, err)
		require.Zero(t, n)
	})

	t.Run("DeleteByName_DoesNotMatchPrefixes", func(t *testing.T) {
		s := newTestStore(t)

		_, err := s.Insert(ctx, "Widget Pro", "A", "1.0", 100)
		require.NoError(t, err)

		n, err := s.DeleteByName(ctx, "widget")
		require.NoError(t, err)
		require.Zero(t, n)
	})

	t.Run("Insert_ConcurrentDuplicatesExactlyOneWins", func(t *testing.T) {
		s := newTestStore(t)

		const workers = 16
		var wg sync.WaitGroup
		errs := make([]error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				_, errs[idx] = s.Insert(ctx, "Race", "o", "1.0", 10)
			}(i)
		}
		wg.Wait()

		ok := 0
		for _, err := range errs {
			if err == nil {
				ok++
				continue
			}
			require.ErrorIs(t, err, ErrConflict)
		}
		require.Equal(t, 1, ok)
	})

	t.Run("ClosedDatabaseSurfacesStorageError", func(t *testing.T) {
		s := newTestStore(t)
		sqlDB, err := s.db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		_, err = s.List(ctx)
		require.ErrorIs(t, err, ErrStorage)
		_, err = s.Insert(ctx, "x", "y", "z", 1)
		require.ErrorIs(t, err, ErrStorage)
		_, err = s.DeleteByName(ctx, "x")
		require.ErrorIs(t, err, ErrStorage)
	})
}
