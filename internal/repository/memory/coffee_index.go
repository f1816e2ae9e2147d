package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"what-coffee-be/internal/entity"
	"what-coffee-be/internal/repository/contract"

	"github.com/google/uuid"
)

// CoffeeIndex is an in-memory catalog index with brute-force cosine search.
// It backs tests and database-less development runs; ordering semantics
// match the Postgres implementation (similarity desc, insertion order ties).
type CoffeeIndex struct {
	mu      sync.RWMutex
	coffees []*entity.Coffee
	nextPos int64
}

var _ contract.CoffeeRepository = &CoffeeIndex{}

func NewCoffeeIndex() *CoffeeIndex {
	return &CoffeeIndex{nextPos: 1}
}

func (x *CoffeeIndex) Create(ctx context.Context, coffee *entity.Coffee) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if coffee.Id == uuid.Nil {
		coffee.Id = uuid.New()
	}
	coffee.Position = x.nextPos
	x.nextPos++
	c := *coffee
	x.coffees = append(x.coffees, &c)
	return nil
}

func (x *CoffeeIndex) CreateBulk(ctx context.Context, coffees []*entity.Coffee) error {
	for _, c := range coffees {
		if err := x.Create(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (x *CoffeeIndex) FindByID(ctx context.Context, id uuid.UUID) (*entity.Coffee, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	for _, c := range x.coffees {
		if c.Id == id {
			return c, nil
		}
	}
	return nil, nil
}

func (x *CoffeeIndex) Count(ctx context.Context) (int64, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	var n int64
	for _, c := range x.coffees {
		if c.IsAvailable {
			n++
		}
	}
	return n, nil
}

func (x *CoffeeIndex) NearestNeighbors(ctx context.Context, vec []float32, k int) ([]*contract.ScoredCoffee, error) {
	if k <= 0 {
		k = 5
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	scored := make([]*contract.ScoredCoffee, 0, len(x.coffees))
	for _, c := range x.coffees {
		if !c.IsAvailable {
			continue
		}
		scored = append(scored, &contract.ScoredCoffee{
			Coffee:     c,
			Similarity: cosineSimilarity(vec, c.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].Coffee.Position < scored[j].Coffee.Position
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func (x *CoffeeIndex) FilterBy(ctx context.Context, brewMethods []string, curated *bool) ([]*entity.Coffee, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var out []*entity.Coffee
	for _, c := range x.coffees {
		if !c.IsAvailable {
			continue
		}
		if curated != nil && c.Curated != *curated {
			continue
		}
		if len(brewMethods) > 0 && !anyOverlap(c.BrewMethods, brewMethods) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func anyOverlap(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
