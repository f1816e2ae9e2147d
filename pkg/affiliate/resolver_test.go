package affiliate

import (
	"context"
	"io"
	"log"
	"testing"

	"what-coffee-be/internal/entity"
	"what-coffee-be/internal/repository/memory"

	"github.com/google/uuid"
)

func newTestResolver(t *testing.T) (*Resolver, *entity.Coffee, *entity.Coffee) {
	t.Helper()
	index := memory.NewCoffeeIndex()

	withAffiliate := &entity.Coffee{
		Name:         "Attikan Estate",
		IsAvailable:  true,
		SourceURL:    "https://roaster.example.com/attikan",
		AffiliateURL: "https://aff.example.com/attikan",
	}
	withoutAffiliate := &entity.Coffee{
		Name:        "Monsoon Malabar",
		IsAvailable: true,
		SourceURL:   "https://roaster.example.com/malabar",
	}
	ctx := context.Background()
	if err := index.Create(ctx, withAffiliate); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := index.Create(ctx, withoutAffiliate); err != nil {
		t.Fatalf("seed: %v", err)
	}

	return NewResolver(index, nil, log.New(io.Discard, "", 0)), withAffiliate, withoutAffiliate
}

func TestResolve(t *testing.T) {
	r, withAffiliate, withoutAffiliate := newTestResolver(t)
	ctx := context.Background()

	url, ok := r.Resolve(ctx, withAffiliate.Id)
	if !ok || url != withAffiliate.AffiliateURL {
		t.Errorf("Resolve = (%q, %v), want the affiliate URL", url, ok)
	}

	url, ok = r.Resolve(ctx, withoutAffiliate.Id)
	if !ok || url != withoutAffiliate.SourceURL {
		t.Errorf("Resolve = (%q, %v), want the source URL fallback", url, ok)
	}

	if url, ok := r.Resolve(ctx, uuid.New()); ok || url != "" {
		t.Errorf("Resolve of unknown item = (%q, %v), want (\"\", false)", url, ok)
	}
}

func TestResolveUsesLocalCache(t *testing.T) {
	r, withAffiliate, _ := newTestResolver(t)
	ctx := context.Background()

	first, _ := r.Resolve(ctx, withAffiliate.Id)

	// A catalog swap does not affect already-resolved links within the TTL.
	r.catalog = memory.NewCoffeeIndex()
	cached, ok := r.Resolve(ctx, withAffiliate.Id)
	if !ok || cached != first {
		t.Errorf("cached Resolve = (%q, %v), want (%q, true)", cached, ok, first)
	}
}
