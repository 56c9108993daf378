// Package searchindex abstracts the vector index used for semantic search
// over simulation records.
package searchindex

import "context"

// Hit is a single result from a vector search.
type Hit struct {
	UUID        string  `json:"uuid"`
	Alias       string  `json:"alias"`
	Machine     string  `json:"machine"`
	CodeName    string  `json:"code_name"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Document    string  `json:"document"`
	Similarity  float64 `json:"similarity"`
}

// Index is the abstraction over the vector search backend.
type Index interface {
	// Upsert stores or replaces the object identified by id together with
	// its embedding vector and payload.
	Upsert(ctx context.Context, id string, vec []float32, payload map[string]interface{}) error

	// Search returns up to topK hits nearest to vec, best first.
	Search(ctx context.Context, vec []float32, topK int) ([]Hit, error)

	// Delete removes the object identified by id. Deleting a missing id is
	// not an error.
	Delete(ctx context.Context, id string) error

	// Count reports the number of indexed objects.
	Count(ctx context.Context) (int, error)
}
