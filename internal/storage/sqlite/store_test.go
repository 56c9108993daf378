package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simon-McIntosh/nucleai/internal/metadata"
	"github.com/Simon-McIntosh/nucleai/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func sampleSummary(uuid, alias, datetime string) model.SimulationSummary {
	deuterium := 0.5
	return model.SimulationSummary{
		UUID:        uuid,
		Alias:       alias,
		Machine:     "ITER",
		Code:        model.CodeInfo{Name: "JINTRAC", Version: strPtr("v220922")},
		Description: "baseline scenario",
		Status:      model.StatusPassed,
		AuthorEmail: strPtr("jane.doe@iter.org"),
		Metadata: &metadata.Simulation{
			Datetime:    strPtr(datetime),
			Composition: &metadata.Composition{Deuterium: &deuterium},
		},
	}
}

func TestStore_UpsertAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sim := sampleSummary("sim-1", "iter/2/105027", "2024-03-01T12:00:00Z")
	require.NoError(t, s.UpsertSimulations(ctx, []model.SimulationSummary{sim}))

	got, err := s.Get(ctx, "sim-1")
	require.NoError(t, err)
	assert.Equal(t, sim.Alias, got.Alias)
	assert.Equal(t, sim.Machine, got.Machine)
	assert.Equal(t, sim.Code, got.Code)
	assert.Equal(t, sim.Status, got.Status)
	require.NotNil(t, got.AuthorEmail)
	assert.Equal(t, "jane.doe@iter.org", *got.AuthorEmail)
	require.NotNil(t, got.Metadata)
	require.NotNil(t, got.Metadata.Composition)
	assert.Equal(t, 0.5, *got.Metadata.Composition.Deuterium)
}

func TestStore_UpsertOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sim := sampleSummary("sim-1", "iter/2/105027", "2024-03-01T12:00:00Z")
	require.NoError(t, s.UpsertSimulations(ctx, []model.SimulationSummary{sim}))

	sim.Status = model.StatusFailed
	sim.Description = "rerun with updated boundary"
	require.NoError(t, s.UpsertSimulations(ctx, []model.SimulationSummary{sim}))

	got, err := s.Get(ctx, "sim-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, got.Status)
	assert.Equal(t, "rerun with updated boundary", got.Description)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_GetMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestStore_ListOrderAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertSimulations(ctx, []model.SimulationSummary{
		sampleSummary("sim-1", "a", "2024-01-01T00:00:00Z"),
		sampleSummary("sim-2", "b", "2024-03-01T00:00:00Z"),
		sampleSummary("sim-3", "c", "2024-02-01T00:00:00Z"),
	}))

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "sim-2", all[0].UUID, "most recent first")
	assert.Equal(t, "sim-3", all[1].UUID)
	assert.Equal(t, "sim-1", all[2].UUID)

	top, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "sim-2", top[0].UUID)
}

func TestStore_EmptyUpsertIsNoOp(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertSimulations(context.Background(), nil))
	count, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_NilMetadata(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sim := sampleSummary("sim-1", "a", "")
	sim.Metadata = nil
	sim.AuthorEmail = nil
	sim.Code.Version = nil
	require.NoError(t, s.UpsertSimulations(ctx, []model.SimulationSummary{sim}))

	got, err := s.Get(ctx, "sim-1")
	require.NoError(t, err)
	assert.Nil(t, got.Metadata)
	assert.Nil(t, got.AuthorEmail)
	assert.Nil(t, got.Code.Version)
}
