// Package search ties the embedding provider and the vector index together
// into a semantic search facade over simulation records.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Simon-McIntosh/nucleai/internal/embeddings"
	"github.com/Simon-McIntosh/nucleai/internal/errs"
	"github.com/Simon-McIntosh/nucleai/internal/model"
	"github.com/Simon-McIntosh/nucleai/internal/searchindex"
)

const defaultLimit = 10

// Searcher performs embedding-backed search over indexed simulations.
type Searcher struct {
	provider embeddings.Provider
	index    searchindex.Index
}

// New builds a Searcher from a provider and an index.
func New(provider embeddings.Provider, index searchindex.Index) *Searcher {
	return &Searcher{provider: provider, index: index}
}

// IndexSimulation embeds a textual rendering of the summary and upserts it
// into the vector index keyed by the simulation UUID.
func (s *Searcher) IndexSimulation(ctx context.Context, sum *model.SimulationSummary) error {
	if sum == nil || sum.UUID == "" {
		return errs.Validationf(
			"index only records that carry a uuid",
			"cannot index a simulation without a uuid")
	}

	doc := Document(sum)
	vec, err := s.provider.Embed(ctx, doc)
	if err != nil {
		return err
	}

	payload := map[string]interface{}{
		"uuid":        sum.UUID,
		"alias":       sum.Alias,
		"machine":     sum.Machine,
		"description": sum.Description,
		"status":      string(sum.Status),
		"document":    doc,
	}
	if sum.Code.Name != "" {
		payload["codeName"] = sum.Code.Name
	}

	if err := s.index.Upsert(ctx, indexID(sum.UUID), vec, payload); err != nil {
		return errs.Wrap(errs.KindData, err,
			"failed to upsert simulation into the search index",
			"check that the index backend is reachable and bootstrapped")
	}
	log.Debug().Str("uuid", sum.UUID).Str("alias", sum.Alias).Msg("simulation indexed")
	return nil
}

// Semantic embeds the query and returns the nearest indexed simulations.
// limit <= 0 falls back to a default of 10.
func (s *Searcher) Semantic(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errs.Validationf(
			"provide a non-empty search query",
			"search query is empty")
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	vec, err := s.provider.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := s.index.Search(ctx, vec, limit)
	if err != nil {
		return nil, errs.Wrap(errs.KindData, err,
			"vector search failed",
			"check that the index backend is reachable and bootstrapped")
	}

	out := make([]model.SearchResult, 0, len(hits))
	for _, h := range hits {
		out = append(out, model.SearchResult{
			ID:         h.UUID,
			Content:    h.Document,
			Similarity: h.Similarity,
			Metadata: map[string]any{
				"alias":       h.Alias,
				"machine":     h.Machine,
				"code_name":   h.CodeName,
				"description": h.Description,
				"status":      h.Status,
			},
		})
	}
	return out, nil
}

// indexID derives the vector index object id for a simulation. The backend
// requires ids to be valid UUIDs; SimDB identifiers usually are, but aliases
// and legacy hex forms get a deterministic v5 UUID instead.
func indexID(simUUID string) string {
	if parsed, err := uuid.Parse(simUUID); err == nil {
		return parsed.String()
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(simUUID)).String()
}

// Document renders a summary as the text that gets embedded. Field labels are
// included so the embedding model sees which value plays which role.
func Document(sum *model.SimulationSummary) string {
	var b strings.Builder
	write := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "%s: %s\n", label, value)
	}
	write("alias", sum.Alias)
	write("machine", sum.Machine)
	write("code", sum.Code.Name)
	if sum.Code.Version != nil {
		write("code version", *sum.Code.Version)
	}
	write("status", string(sum.Status))
	write("description", sum.Description)
	if len(sum.IDSTypes) > 0 {
		write("ids", strings.Join(sum.IDSTypes, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}
