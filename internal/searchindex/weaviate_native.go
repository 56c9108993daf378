package searchindex

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	weaviate "github.com/weaviate/weaviate-go-client/v5/weaviate"
	gql "github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
)

// weavNative is a native implementation of Index using the Weaviate Go client.
type weavNative struct {
	client    *weaviate.Client
	className string
	baseURL   string // host:port without scheme
}

// NewWeaviateNativeIndex constructs an Index backed by Weaviate at baseURL.
// baseURL should be host:port (without scheme), e.g., "localhost:8080".
func NewWeaviateNativeIndex(baseURL, className string) (Index, error) {
	cfg := weaviate.Config{Scheme: "http", Host: baseURL}
	cl, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &weavNative{client: cl, className: className, baseURL: baseURL}, nil
}

func (w *weavNative) Upsert(ctx context.Context, id string, vec []float32, payload map[string]interface{}) error {
	if w == nil || w.client == nil {
		return nil
	}
	// Delete-then-create with a fixed ID gives upsert semantics; the delete
	// is a no-op when the object does not exist yet.
	_ = w.client.Data().Deleter().WithClassName(w.className).WithID(id).Do(ctx)
	_, err := w.client.Data().Creator().WithClassName(w.className).WithID(id).WithProperties(payload).WithVector(vec).Do(ctx)
	return err
}

func (w *weavNative) Search(ctx context.Context, vec []float32, topK int) ([]Hit, error) {
	log.Debug().Int("topK", topK).Int("vectorLength", len(vec)).Msg("weaviate search starting")

	safeString := func(v interface{}) string {
		s, _ := v.(string)
		return s
	}

	nv := w.client.GraphQL().NearVectorArgBuilder().WithVector(vec)

	req := w.client.GraphQL().Get().
		WithClassName(w.className).
		WithNearVector(nv).
		WithLimit(topK).
		WithFields(
			gql.Field{Name: "uuid"},
			gql.Field{Name: "alias"},
			gql.Field{Name: "machine"},
			gql.Field{Name: "codeName"},
			gql.Field{Name: "description"},
			gql.Field{Name: "status"},
			gql.Field{Name: "document"},
			gql.Field{Name: "_additional", Fields: []gql.Field{{Name: "distance"}}},
		)

	resp, err := req.Do(ctx)
	if err != nil {
		log.Error().Err(err).Msg("weaviate graphql query failed")
		return nil, err
	}
	if len(resp.Errors) > 0 {
		log.Error().Interface("errors", resp.Errors).Msg("weaviate graphql errors")
		return nil, fmt.Errorf("weaviate graphql: %s", formatGraphQLErrors(resp.Errors))
	}

	getData, ok := resp.Data["Get"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	val := getData[w.className]
	if val == nil {
		return []Hit{}, nil
	}
	raw, ok := val.([]interface{})
	if !ok {
		return nil, nil
	}

	out := make([]Hit, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		var distance float64
		if add, ok := m["_additional"].(map[string]interface{}); ok {
			switch v := add["distance"].(type) {
			case float64:
				distance = v
			case string:
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					distance = f
				}
			}
		}
		hit := Hit{
			UUID:        safeString(m["uuid"]),
			Alias:       safeString(m["alias"]),
			Machine:     safeString(m["machine"]),
			CodeName:    safeString(m["codeName"]),
			Description: safeString(m["description"]),
			Status:      safeString(m["status"]),
			Document:    safeString(m["document"]),
			Similarity:  1.0 / (1.0 + distance),
		}
		out = append(out, hit)
	}
	log.Debug().Int("resultCount", len(out)).Msg("weaviate search completed")
	return out, nil
}

func (w *weavNative) Delete(ctx context.Context, id string) error {
	if w == nil || w.client == nil || id == "" {
		return nil
	}
	_ = w.client.Data().Deleter().WithClassName(w.className).WithID(id).Do(ctx)
	return nil
}

func (w *weavNative) Count(ctx context.Context) (int, error) {
	req := w.client.GraphQL().Aggregate().
		WithClassName(w.className).
		WithFields(gql.Field{Name: "meta", Fields: []gql.Field{{Name: "count"}}})
	resp, err := req.Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(resp.Errors) > 0 {
		return 0, fmt.Errorf("weaviate graphql: %s", formatGraphQLErrors(resp.Errors))
	}
	agg, ok := resp.Data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	arr, ok := agg[w.className].([]interface{})
	if !ok || len(arr) == 0 {
		return 0, nil
	}
	item, ok := arr[0].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	meta, ok := item["meta"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	count, _ := meta["count"].(float64)
	return int(count), nil
}

// formatGraphQLErrors returns compact string with messages extracted for logging.
func formatGraphQLErrors(errs interface{}) string {
	if b, err := json.Marshal(errs); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", errs)
}
