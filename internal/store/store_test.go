package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeUnderTest runs the same contract tests against every Store
// implementation.
func storeUnderTest(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing key", func(t *testing.T) {
		_, err := s.Get(ctx, "absent")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "k1", []byte("v1")))
		value, err := s.Get(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), value)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "k2", []byte("first")))
		require.NoError(t, s.Set(ctx, "k2", []byte("second")))
		value, err := s.Get(ctx, "k2")
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), value)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "k3", []byte("v3")))
		require.NoError(t, s.Delete(ctx, "k3"))
		_, err := s.Get(ctx, "k3")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete absent key", func(t *testing.T) {
		assert.NoError(t, s.Delete(ctx, "never-existed"))
	})
}

func TestMemoryStoreContract(t *testing.T) {
	storeUnderTest(t, NewMemoryStore())
}

func TestBadgerStoreContract(t *testing.T) {
	s, err := OpenBadgerInMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	storeUnderTest(t, s)
}

func TestBadgerStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cfg := BadgerConfig{Path: dir}
	s, err := OpenBadger(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "durable", []byte("survives")))
	require.NoError(t, s.Close())

	s, err = OpenBadger(cfg)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, s.Close())
	}()

	value, err := s.Get(ctx, "durable")
	require.NoError(t, err)
	assert.Equal(t, []byte("survives"), value)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	original := []byte("immutable")
	require.NoError(t, s.Set(ctx, "k", original))
	original[0] = 'X'

	value, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("immutable"), value)

	value[0] = 'Y'
	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("immutable"), again)
}

func TestMemoryStoreHonorsContextCancellation(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Set(ctx, "k", nil), context.Canceled)
	assert.ErrorIs(t, s.Delete(ctx, "k"), context.Canceled)
}

func TestGetJSON(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	t.Run("absent key fails open", func(t *testing.T) {
		out := map[string]int{"seed": 1}
		ok, err := GetJSON(ctx, s, "absent", &out)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, map[string]int{"seed": 1}, out, "out is untouched on a miss")
	})

	t.Run("corrupt value fails open", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "corrupt", []byte("{broken")))
		var out map[string]int
		ok, err := GetJSON(ctx, s, "corrupt", &out)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, SetJSON(ctx, s, "value", map[string]int{"a": 1}))
		var out map[string]int
		ok, err := GetJSON(ctx, s, "value", &out)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, map[string]int{"a": 1}, out)
	})
}

func TestAppendJSONList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, AppendJSONList(ctx, s, "list", "one"))
	require.NoError(t, AppendJSONList(ctx, s, "list", "two"))

	list, err := ReadJSONList[string](ctx, s, "list")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, list)
}

func TestAppendJSONListRecoversFromCorruptValue(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "list", []byte("not a json array")))
	require.NoError(t, AppendJSONList(ctx, s, "list", "fresh"))

	list, err := ReadJSONList[string](ctx, s, "list")
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, list, "a corrupt list restarts empty")
}

func TestReadJSONListMissingKey(t *testing.T) {
	list, err := ReadJSONList[int](context.Background(), NewMemoryStore(), "absent")
	require.NoError(t, err)
	assert.Empty(t, list)
}
