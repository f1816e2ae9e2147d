package service

import (
	"context"
	"io"
	"log"
	"testing"

	"what-coffee-be/internal/entity"
	"what-coffee-be/internal/repository/memory"
	"what-coffee-be/pkg/affiliate"
	"what-coffee-be/pkg/retrieval"

	"github.com/stretchr/testify/assert"
)

func newTestCatalogService(t *testing.T) ICatalogService {
	t.Helper()
	plain := log.New(io.Discard, "", 0)

	index := memory.NewCoffeeIndex()
	err := index.CreateBulk(context.Background(), []*entity.Coffee{
		{
			Name:         "Attikan Estate",
			Roaster:      "Blue Tokai",
			IsAvailable:  true,
			Curated:      true,
			AffiliateURL: "https://aff.example.com/attikan",
			SourceURL:    "https://bluetokai.com/attikan",
			Embedding:    []float32{1, 0, 0},
		},
		{
			Name:        "Monsoon Malabar",
			Roaster:     "Corridor Seven",
			IsAvailable: true,
			SourceURL:   "https://corridorseven.coffee/malabar",
			Embedding:   []float32{0, 1, 0},
		},
	})
	assert.NoError(t, err)

	engine := retrieval.NewEngine(index, constantEmbedder{}, plain)
	resolver := affiliate.NewResolver(index, nil, plain)
	return NewCatalogService(index, engine, resolver, nil)
}

func TestCatalogSearch(t *testing.T) {
	svc := newTestCatalogService(t)

	resp, err := svc.Search(context.Background(), "nutty and chocolatey", 5)
	assert.NoError(t, err)
	assert.Equal(t, "nutty and chocolatey", resp.Query)
	assert.Len(t, resp.Items, 2)

	top := resp.Items[0]
	assert.Equal(t, "Attikan Estate", top.Name)
	assert.Equal(t, "https://aff.example.com/attikan", top.URL)
	assert.Greater(t, top.CombinedScore, resp.Items[1].CombinedScore)

	// Items without an affiliate link fall back to the source URL.
	assert.Equal(t, "https://corridorseven.coffee/malabar", resp.Items[1].URL)
}

func TestCatalogSearchClampsLimit(t *testing.T) {
	svc := newTestCatalogService(t)

	for _, limit := range []int{-1, 0, 21, 1000} {
		resp, err := svc.Search(context.Background(), "anything", limit)
		assert.NoError(t, err)
		assert.LessOrEqual(t, len(resp.Items), 5, "limit %d should clamp to the default", limit)
	}
}

func TestCatalogStatus(t *testing.T) {
	svc := newTestCatalogService(t)

	status, err := svc.Status(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "What Coffee API is running", status.Status)
	assert.EqualValues(t, 2, status.CatalogSize)
	assert.NotNil(t, status.UsageCounts)
}
