package vector

import (
	"context"
	"strings"

	"github.com/weaviate/weaviate/entities/models"
)

// SchemaClient is the slice of Weaviate schema operations needed here.
type SchemaClient interface {
	ClassExists(ctx context.Context, className string) (bool, error)
	CreateClass(ctx context.Context, class *models.Class) error
	GetClass(ctx context.Context, className string) (*models.Class, error)
	AddProperty(ctx context.Context, className string, property *models.Property) error
}

// ClassName converts a collection name like "casper_docs" into a valid
// Weaviate class name ("CasperDocs").
func ClassName(collection string) string {
	parts := strings.Split(collection, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "")
}

// EnsureSchema creates the chunk class if missing, and adds any properties
// missing from an existing class. Idempotent; safe to run at every startup.
func EnsureSchema(ctx context.Context, client SchemaClient, className string) error {
	exists, err := client.ClassExists(ctx, className)
	if err != nil {
		return err
	}

	properties := []*models.Property{
		{Name: "content", DataType: []string{"text"}},
		{Name: "chunkId", DataType: []string{"string"}}, // deterministic id, exact match
		{Name: "title", DataType: []string{"text"}},
		{Name: "url", DataType: []string{"string"}},
		{Name: "chunkIndex", DataType: []string{"int"}},
		{Name: "totalChunks", DataType: []string{"int"}},
		{Name: "source", DataType: []string{"string"}},
		{Name: "type", DataType: []string{"string"}},
	}

	if !exists {
		class := &models.Class{
			Class:       className,
			Description: "A chunk of Casper documentation or example code",
			Vectorizer:  "none",
			Properties:  properties,
		}
		return client.CreateClass(ctx, class)
	}

	class, err := client.GetClass(ctx, className)
	if err != nil {
		return err
	}

	existing := make(map[string]bool)
	for _, p := range class.Properties {
		existing[p.Name] = true
	}

	for _, p := range properties {
		if !existing[p.Name] {
			if err := client.AddProperty(ctx, className, p); err != nil {
				return err
			}
		}
	}

	return nil
}
