package entity

import (
	"time"

	"github.com/google/uuid"
)

// Coffee is a recommendable catalog item. The catalog is read-only during
// request processing; writes happen only through ingestion/seeding.
type Coffee struct {
	Id           uuid.UUID
	Name         string
	Roaster      string
	Handle       string
	SourceURL    string
	AffiliateURL string
	ImageURL     string

	Description string
	RoastLevel  string
	Process     string
	Origin      string
	FlavorNotes []string
	BrewMethods []string
	Tags        []string

	PriceMin    float64
	Curated     bool
	IsAvailable bool

	// Embedding over name, flavor notes and description. Fixed dimension
	// across the corpus.
	Embedding []float32

	// Position reflects catalog insertion order and breaks similarity ties.
	Position  int64
	CreatedAt time.Time
}

// RankedCandidate is an ephemeral, per-request scoring of a catalog item.
type RankedCandidate struct {
	Coffee *Coffee

	// SimilarityScore is cosine similarity against the query vector, in [-1, 1].
	SimilarityScore float64

	// FilterMatchScore is the weighted count of satisfied profile constraints.
	FilterMatchScore float64

	// CombinedScore orders the final candidate list.
	CombinedScore float64
}
