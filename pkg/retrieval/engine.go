package retrieval

import (
	"context"
	"log"
	"sort"
	"strings"

	"what-coffee-be/internal/entity"
	"what-coffee-be/internal/repository/contract"
	"what-coffee-be/pkg/embedding"
	"what-coffee-be/pkg/store"
)

// Scoring weights. Semantic fit dominates over metadata match.
const (
	poolMultiplier = 4

	weightSimilarity  = 0.7
	weightFilterMatch = 0.3

	brewMethodWeight = 1.0
	brewMethodCap    = 2.0
	curatedWeight    = 1.5
	affiliateWeight  = 0.5
)

// Engine ranks catalog items against a session profile. Retrieval is a pure
// function of (catalog snapshot, profile, topN): repeated calls over the
// same inputs return the identical ordered sequence.
type Engine struct {
	catalog  contract.CoffeeRepository
	embedder embedding.EmbeddingProvider
	logger   *log.Logger
}

// NewEngine creates a retrieval engine over the given catalog index
func NewEngine(catalog contract.CoffeeRepository, embedder embedding.EmbeddingProvider, logger *log.Logger) *Engine {
	return &Engine{
		catalog:  catalog,
		embedder: embedder,
		logger:   logger,
	}
}

// Retrieve returns up to topN ranked candidates for the profile.
// An empty catalog yields an empty, non-error result.
func (e *Engine) Retrieve(ctx context.Context, profile store.Profile, topN int) ([]entity.RankedCandidate, error) {
	if topN <= 0 {
		return nil, nil
	}

	// An empty flavor description is a valid, if untargeted, query
	emb, err := e.embedder.Generate(ctx, profile.FlavorDescription, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}

	pool, err := e.catalog.NearestNeighbors(ctx, emb.Embedding.Values, topN*poolMultiplier)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return []entity.RankedCandidate{}, nil
	}

	candidates := make([]entity.RankedCandidate, len(pool))
	for i, scored := range pool {
		filterScore := filterMatchScore(profile, scored.Coffee)
		candidates[i] = entity.RankedCandidate{
			Coffee:           scored.Coffee,
			SimilarityScore:  scored.Similarity,
			FilterMatchScore: filterScore,
			CombinedScore:    weightSimilarity*scored.Similarity + weightFilterMatch*filterScore,
		}
	}

	// Name tie-break keeps the ordering byte-identical across runs
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].CombinedScore != candidates[j].CombinedScore {
			return candidates[i].CombinedScore > candidates[j].CombinedScore
		}
		return candidates[i].Coffee.Name < candidates[j].Coffee.Name
	})

	if len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates, nil
}

// filterMatchScore weighs how many of the profile's soft constraints the
// item satisfies. Unmonetizable items rank lower but are never excluded.
func filterMatchScore(profile store.Profile, coffee *entity.Coffee) float64 {
	score := 0.0

	overlap := 0.0
	for _, want := range profile.BrewMethods {
		for _, have := range coffee.BrewMethods {
			if strings.EqualFold(have, want) {
				overlap += brewMethodWeight
				break
			}
		}
	}
	if overlap > brewMethodCap {
		overlap = brewMethodCap
	}
	score += overlap

	if coffee.Curated {
		score += curatedWeight
	}
	if coffee.AffiliateURL != "" {
		score += affiliateWeight
	}
	return score
}
