// internal/providers/provider.go
package providers

import (
	"context"

	"metasearch-engine/internal/models"
)

// Provider is a single upstream search source. Implementations assign
// 1-based ranks in the order the upstream returned its results and leave
// Score nil when the upstream exposes no numeric relevance.
type Provider interface {
	ID() string
	Search(ctx context.Context, query string, limit int) ([]models.SourceResult, error)
}
