package searchindex

import (
	"context"
	"fmt"
	"time"

	weaviate "github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

// BootstrapWeaviate ensures the simulation class exists. Vectorization is
// disabled because embeddings are computed client-side before upsert.
func BootstrapWeaviate(ctx context.Context, baseURL, className string) error {
	cfg := weaviate.Config{Scheme: "http", Host: baseURL}
	cl, err := weaviate.NewClient(cfg)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	cls := &models.Class{
		Class:      className,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "uuid", DataType: []string{"uuid"}},
			{Name: "alias", DataType: []string{"text"}},
			{Name: "machine", DataType: []string{"text"}},
			{Name: "codeName", DataType: []string{"text"}},
			{Name: "description", DataType: []string{"text"}},
			{Name: "status", DataType: []string{"text"}},
			{Name: "document", DataType: []string{"text"}},
		},
	}

	if err := ensureClass(cctx, cl, cls); err != nil {
		return fmt.Errorf("bootstrap %s: %w", className, err)
	}
	return nil
}

func ensureClass(ctx context.Context, cl *weaviate.Client, desired *models.Class) error {
	ex, err := cl.Schema().ClassGetter().WithClassName(desired.Class).Do(ctx)
	if err == nil && ex != nil {
		return nil
	}
	if err := cl.Schema().ClassCreator().WithClass(desired).Do(ctx); err != nil {
		return fmt.Errorf("create class %s: %w", desired.Class, err)
	}
	return nil
}
