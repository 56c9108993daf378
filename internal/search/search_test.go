package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simon-McIntosh/nucleai/internal/errs"
	"github.com/Simon-McIntosh/nucleai/internal/model"
	"github.com/Simon-McIntosh/nucleai/internal/searchindex"
)

// --- Fakes ---

type fakeProvider struct {
	embedded []string
}

func (f *fakeProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	f.embedded = append(f.embedded, text)
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeIndex struct {
	upserts  map[string]map[string]interface{}
	hits     []searchindex.Hit
	lastTopK int
}

func (f *fakeIndex) Upsert(ctx context.Context, id string, vec []float32, payload map[string]interface{}) error {
	if f.upserts == nil {
		f.upserts = map[string]map[string]interface{}{}
	}
	f.upserts[id] = payload
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, vec []float32, topK int) ([]searchindex.Hit, error) {
	f.lastTopK = topK
	return f.hits, nil
}

func (f *fakeIndex) Delete(ctx context.Context, id string) error { return nil }

func (f *fakeIndex) Count(ctx context.Context) (int, error) { return len(f.upserts), nil }

func sampleSummary() *model.SimulationSummary {
	version := "v220922"
	return &model.SimulationSummary{
		UUID:        "sim-1",
		Alias:       "iter/2/105027",
		Machine:     "ITER",
		Code:        model.CodeInfo{Name: "JINTRAC", Version: &version},
		Description: "baseline scenario",
		Status:      model.StatusPassed,
		IDSTypes:    []string{"core_profiles", "equilibrium"},
	}
}

func TestIndexSimulation(t *testing.T) {
	provider := &fakeProvider{}
	index := &fakeIndex{}
	s := New(provider, index)

	require.NoError(t, s.IndexSimulation(context.Background(), sampleSummary()))

	require.Len(t, provider.embedded, 1)
	assert.Contains(t, provider.embedded[0], "machine: ITER")
	assert.Contains(t, provider.embedded[0], "ids: core_profiles, equilibrium")

	payload, ok := index.upserts[indexID("sim-1")]
	require.True(t, ok, "non-UUID identifiers map to a deterministic v5 UUID")
	assert.Equal(t, "sim-1", payload["uuid"])
	assert.Equal(t, "iter/2/105027", payload["alias"])
	assert.Equal(t, "JINTRAC", payload["codeName"])
	assert.Equal(t, "passed", payload["status"])
}

func TestIndexSimulation_RequiresUUID(t *testing.T) {
	s := New(&fakeProvider{}, &fakeIndex{})
	err := s.IndexSimulation(context.Background(), &model.SimulationSummary{Alias: "x"})
	require.Error(t, err)
	kind, _ := errs.KindOf(err)
	assert.Equal(t, errs.KindValidation, kind)
}

func TestSemantic(t *testing.T) {
	index := &fakeIndex{hits: []searchindex.Hit{
		{UUID: "sim-1", Alias: "a", Machine: "ITER", Document: "doc", Similarity: 0.9},
		{UUID: "sim-2", Alias: "b", Machine: "ITER", Document: "doc2", Similarity: 0.5},
	}}
	s := New(&fakeProvider{}, index)

	results, err := s.Semantic(context.Background(), "high density baseline", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "sim-1", results[0].ID)
	assert.Equal(t, 0.9, results[0].Similarity)
	assert.Equal(t, "a", results[0].Metadata["alias"])
	assert.Equal(t, 5, index.lastTopK)
}

func TestSemantic_DefaultLimit(t *testing.T) {
	index := &fakeIndex{}
	s := New(&fakeProvider{}, index)
	_, err := s.Semantic(context.Background(), "query", 0)
	require.NoError(t, err)
	assert.Equal(t, defaultLimit, index.lastTopK)
}

func TestSemantic_EmptyQuery(t *testing.T) {
	s := New(&fakeProvider{}, &fakeIndex{})
	_, err := s.Semantic(context.Background(), "   ", 5)
	require.Error(t, err)
	kind, _ := errs.KindOf(err)
	assert.Equal(t, errs.KindValidation, kind)
}

func TestIndexID(t *testing.T) {
	assert.Equal(t, "f81d4fae-7dec-11d0-a765-00a0c91e6bf6",
		indexID("F81D4FAE-7DEC-11D0-A765-00A0C91E6BF6"))
	assert.Equal(t, indexID("sim-1"), indexID("sim-1"), "derivation is deterministic")
	assert.NotEqual(t, indexID("sim-1"), indexID("sim-2"))
}

func TestDocument(t *testing.T) {
	doc := Document(sampleSummary())
	assert.Contains(t, doc, "alias: iter/2/105027")
	assert.Contains(t, doc, "code: JINTRAC")
	assert.Contains(t, doc, "code version: v220922")
	assert.Contains(t, doc, "description: baseline scenario")

	// Empty fields are omitted entirely.
	doc = Document(&model.SimulationSummary{UUID: "x", Alias: "y", Status: model.StatusPending})
	assert.NotContains(t, doc, "machine:")
	assert.NotContains(t, doc, "description:")
	assert.Contains(t, doc, "status: pending")
}
