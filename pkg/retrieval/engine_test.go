package retrieval

import (
	"context"
	"errors"
	"io"
	"log"
	"reflect"
	"testing"

	"what-coffee-be/internal/entity"
	"what-coffee-be/internal/repository/memory"
	"what-coffee-be/pkg/embedding"
	"what-coffee-be/pkg/store"
)

// fakeEmbedder returns a fixed query vector regardless of input.
type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: f.vector},
	}, nil
}

func newTestEngine(t *testing.T, coffees []*entity.Coffee, queryVec []float32) *Engine {
	t.Helper()
	index := memory.NewCoffeeIndex()
	if err := index.CreateBulk(context.Background(), coffees); err != nil {
		t.Fatalf("seed index: %v", err)
	}
	return NewEngine(index, &fakeEmbedder{vector: queryVec}, log.New(io.Discard, "", 0))
}

func TestRetrieveEmptyCatalog(t *testing.T) {
	e := newTestEngine(t, nil, []float32{1, 0, 0})

	got, err := e.Retrieve(context.Background(), store.NewProfile(), 3)
	if err != nil {
		t.Fatalf("Retrieve on empty catalog errored: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Retrieve on empty catalog = %v, want empty non-nil slice", got)
	}
}

func TestRetrieveRespectsTopN(t *testing.T) {
	coffees := []*entity.Coffee{
		{Name: "A", IsAvailable: true, Embedding: []float32{1, 0, 0}},
		{Name: "B", IsAvailable: true, Embedding: []float32{0.9, 0.1, 0}},
		{Name: "C", IsAvailable: true, Embedding: []float32{0.8, 0.2, 0}},
		{Name: "D", IsAvailable: true, Embedding: []float32{0, 1, 0}},
	}
	e := newTestEngine(t, coffees, []float32{1, 0, 0})

	got, err := e.Retrieve(context.Background(), store.NewProfile(), 2)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Coffee.Name != "A" || got[1].Coffee.Name != "B" {
		t.Errorf("order = [%s %s], want [A B]", got[0].Coffee.Name, got[1].Coffee.Name)
	}

	if got, err := e.Retrieve(context.Background(), store.NewProfile(), 0); err != nil || got != nil {
		t.Errorf("Retrieve with topN=0 = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestRetrieveFilterBoosts(t *testing.T) {
	// Similar but unmonetized vs slightly less similar, curated, matching gear.
	coffees := []*entity.Coffee{
		{
			Name:        "Plain Close Match",
			IsAvailable: true,
			BrewMethods: []string{"v60"},
			Embedding:   []float32{1, 0, 0},
		},
		{
			Name:         "Curated Espresso",
			IsAvailable:  true,
			Curated:      true,
			AffiliateURL: "https://example.com/aff",
			BrewMethods:  []string{"espresso", "moka pot"},
			Embedding:    []float32{0.95, 0.3, 0},
		},
	}
	profile := store.Profile{
		ExperienceLevel:   store.ExperienceCasual,
		BrewMethods:       []string{"espresso"},
		FlavorDescription: "chocolate",
	}
	e := newTestEngine(t, coffees, []float32{1, 0, 0})

	got, err := e.Retrieve(context.Background(), profile, 2)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Coffee.Name != "Curated Espresso" {
		t.Errorf("top candidate = %q, want the curated espresso match", got[0].Coffee.Name)
	}
	if got[0].FilterMatchScore <= got[1].FilterMatchScore {
		t.Errorf("FilterMatchScore %f should exceed %f", got[0].FilterMatchScore, got[1].FilterMatchScore)
	}
}

func TestRetrieveDeterministic(t *testing.T) {
	coffees := []*entity.Coffee{
		{Name: "B", IsAvailable: true, Embedding: []float32{1, 0, 0}},
		{Name: "A", IsAvailable: true, Embedding: []float32{1, 0, 0}},
		{Name: "C", IsAvailable: true, Embedding: []float32{0.5, 0.5, 0}},
	}
	profile := store.Profile{ExperienceLevel: store.ExperienceUnknown, FlavorDescription: "berries"}
	e := newTestEngine(t, coffees, []float32{1, 0, 0})

	first, err := e.Retrieve(context.Background(), profile, 3)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	// Identical scores resolve by name.
	if first[0].Coffee.Name != "A" || first[1].Coffee.Name != "B" {
		t.Errorf("tie order = [%s %s], want [A B]", first[0].Coffee.Name, first[1].Coffee.Name)
	}

	for i := 0; i < 5; i++ {
		again, err := e.Retrieve(context.Background(), profile, 3)
		if err != nil {
			t.Fatalf("Retrieve: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d diverged from the first result", i)
		}
	}
}

func TestRetrieveEmptyFlavorDescription(t *testing.T) {
	coffees := []*entity.Coffee{
		{Name: "A", IsAvailable: true, Embedding: []float32{1, 0, 0}},
	}
	e := newTestEngine(t, coffees, []float32{0.2, 0.2, 0.2})

	got, err := e.Retrieve(context.Background(), store.NewProfile(), 3)
	if err != nil {
		t.Fatalf("Retrieve with empty flavor description errored: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
}

func TestRetrieveEmbedderFailure(t *testing.T) {
	index := memory.NewCoffeeIndex()
	e := NewEngine(index, &fakeEmbedder{err: errors.New("boom")}, log.New(io.Discard, "", 0))

	if _, err := e.Retrieve(context.Background(), store.NewProfile(), 3); err == nil {
		t.Error("expected embedder failure to surface")
	}
}

func TestFilterMatchScoreCaps(t *testing.T) {
	profile := store.Profile{BrewMethods: []string{"espresso", "moka pot", "v60"}}
	coffee := &entity.Coffee{BrewMethods: []string{"espresso", "moka pot", "v60"}}

	if got := filterMatchScore(profile, coffee); got != brewMethodCap {
		t.Errorf("filterMatchScore = %f, want capped at %f", got, brewMethodCap)
	}
}
