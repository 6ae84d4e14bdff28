package streamcache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/routeblend/routeblend/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "streams.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func samplePoints() []types.RawPoint {
	d := 42.5
	return []types.RawPoint{
		{Lat: 52.37, Lon: 9.73},
		{Lat: 52.38, Lon: 9.74, Distance: &d},
	}
}

func TestStorePutGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a1", samplePoints()))

	points, ok, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, points, 2)
	require.Equal(t, 52.37, points[0].Lat)
	require.NotNil(t, points[1].Distance)
	require.Equal(t, 42.5, *points[1].Distance)
}

func TestStoreMiss(t *testing.T) {
	store := openTestStore(t)

	_, ok, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStoreReplace(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a1", samplePoints()))
	require.NoError(t, store.Put(ctx, "a1", samplePoints()[:1]))

	points, ok, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, points, 1)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestStoreClear(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a1", samplePoints()))
	require.NoError(t, store.Clear(ctx))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

// countingSource counts upstream fetches behind the cache.
type countingSource struct {
	calls int
	err   error
}

func (c *countingSource) GetStream(ctx context.Context, activityID string) ([]types.RawPoint, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return samplePoints(), nil
}

func TestCachingSource(t *testing.T) {
	store := openTestStore(t)
	upstream := &countingSource{}
	src := NewCachingSource(store, upstream)
	ctx := context.Background()

	points, err := src.GetStream(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Equal(t, 1, upstream.calls)

	// Second read is served from the cache.
	points, err = src.GetStream(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Equal(t, 1, upstream.calls)
}

func TestCachingSourcePropagatesErrors(t *testing.T) {
	store := openTestStore(t)
	wantErr := errors.New("upstream down")
	src := NewCachingSource(store, &countingSource{err: wantErr})

	_, err := src.GetStream(context.Background(), "a1")
	require.ErrorIs(t, err, wantErr)
}
