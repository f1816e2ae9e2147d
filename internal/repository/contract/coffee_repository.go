package contract

import (
	"context"

	"what-coffee-be/internal/entity"

	"github.com/google/uuid"
)

// ScoredCoffee wraps a catalog item with its similarity against a query vector
type ScoredCoffee struct {
	Coffee     *entity.Coffee
	Similarity float64 // cosine similarity, 1.0 = identical direction
}

// CoffeeRepository is the catalog index. Read paths are safe for concurrent
// use; writes happen only through ingestion/seeding, never during a chat turn.
type CoffeeRepository interface {
	Create(ctx context.Context, coffee *entity.Coffee) error
	CreateBulk(ctx context.Context, coffees []*entity.Coffee) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Coffee, error)
	Count(ctx context.Context) (int64, error)

	// NearestNeighbors returns up to k available items ordered by cosine
	// similarity descending, ties broken by catalog insertion order.
	NearestNeighbors(ctx context.Context, vec []float32, k int) ([]*ScoredCoffee, error)

	// FilterBy returns available items matching any of the brew methods
	// (all items when empty) and the curated flag when set.
	FilterBy(ctx context.Context, brewMethods []string, curated *bool) ([]*entity.Coffee, error)
}
