package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simon-McIntosh/nucleai/internal/config"
	"github.com/Simon-McIntosh/nucleai/internal/errs"
)

func newProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := config.NewForTesting()
	cfg.EmbedBaseURL = srv.URL
	return New(cfg)
}

func TestEmbed(t *testing.T) {
	var gotReq embedRequest
	var gotAuth string
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []any{map[string]any{"embedding": []float64{0.25, -0.5}}},
		})
	})

	vec, err := p.Embed(context.Background(), "baseline scenario")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, -0.5}, vec)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "baseline scenario", gotReq.Input)
	assert.Equal(t, "openai/text-embedding-3-small", gotReq.Model)
	assert.Equal(t, 1536, gotReq.Dimensions)
}

func TestEmbed_EmptyText(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("empty text must not reach the API")
	})
	_, err := p.Embed(context.Background(), "  \n")
	require.Error(t, err)
	kind, _ := errs.KindOf(err)
	assert.Equal(t, errs.KindValidation, kind)
}

func TestEmbed_AuthFailure(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := p.Embed(context.Background(), "text")
	require.Error(t, err)
	kind, _ := errs.KindOf(err)
	assert.Equal(t, errs.KindAuth, kind)
}

func TestEmbed_APIError(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "model not found"},
		})
	})
	_, err := p.Embed(context.Background(), "text")
	require.Error(t, err)
	kind, _ := errs.KindOf(err)
	assert.Equal(t, errs.KindData, kind)
	assert.Contains(t, err.Error(), "model not found")
}

func TestEmbed_EmptyVector(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	})
	_, err := p.Embed(context.Background(), "text")
	require.Error(t, err)
	kind, _ := errs.KindOf(err)
	assert.Equal(t, errs.KindData, kind)
}
