package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "db", "samples.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestInsertBake(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	bake, err := st.InsertBake(ctx, Bake{
		CreatedAt: created,
		Source:    "walk.yaml",
		Clip:      "walk",
		From:      0,
		To:        1,
		Step:      0.5,
	}, []Sample{
		{Curve: "py", Time: 0, Value: 5},
		{Curve: "px", Time: 0.5, Value: 5},
		{Curve: "px", Time: 0, Value: 0},
		{Curve: "px", Time: 1, Value: 10},
	})
	require.NoError(t, err)
	assert.NotZero(t, bake.ID)
	assert.Equal(t, 4, bake.Samples)

	all, err := st.Samples(ctx, bake.ID)
	require.NoError(t, err)
	assert.Equal(t, []Sample{
		{Curve: "px", Time: 0, Value: 0},
		{Curve: "px", Time: 0.5, Value: 5},
		{Curve: "px", Time: 1, Value: 10},
		{Curve: "py", Time: 0, Value: 5},
	}, all)

	py, err := st.Samples(ctx, bake.ID, "py")
	require.NoError(t, err)
	assert.Equal(t, []Sample{{Curve: "py", Time: 0, Value: 5}}, py)

	none, err := st.Samples(ctx, bake.ID+1)
	require.NoError(t, err)
	assert.Empty(t, none)

	bakes, err := st.ListBakes(ctx)
	require.NoError(t, err)
	require.Len(t, bakes, 1)
	assert.Equal(t, bake.ID, bakes[0].ID)
	assert.True(t, created.Equal(bakes[0].CreatedAt))
	assert.Equal(t, "walk.yaml", bakes[0].Source)
	assert.Equal(t, "walk", bakes[0].Clip)
	assert.Equal(t, 0.5, bakes[0].Step)
	assert.Equal(t, 4, bakes[0].Samples)
}

func TestInsertBakeDuplicateSampleRollsBack(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)

	_, err := st.InsertBake(ctx, Bake{Source: "a"}, []Sample{
		{Curve: "c", Time: 1, Value: 1},
		{Curve: "c", Time: 1, Value: 2},
	})
	require.Error(t, err)

	bakes, err := st.ListBakes(ctx)
	require.NoError(t, err)
	assert.Empty(t, bakes)
}

func TestListBakesNewestFirst(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)

	first, err := st.InsertBake(ctx, Bake{Source: "a"}, nil)
	require.NoError(t, err)
	second, err := st.InsertBake(ctx, Bake{Source: "b"}, nil)
	require.NoError(t, err)

	bakes, err := st.ListBakes(ctx)
	require.NoError(t, err)
	require.Len(t, bakes, 2)
	assert.Equal(t, second.ID, bakes[0].ID)
	assert.Equal(t, first.ID, bakes[1].ID)
	assert.Zero(t, bakes[0].Samples)
}
