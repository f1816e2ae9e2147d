package service

import (
	"context"

	"what-coffee-be/internal/dto"
	"what-coffee-be/internal/repository/contract"
	"what-coffee-be/pkg/affiliate"
	"what-coffee-be/pkg/retrieval"
	"what-coffee-be/pkg/store"
)

// ICatalogService exposes the retrieval engine without a conversation
type ICatalogService interface {
	// Search ranks the catalog against an ad-hoc flavor description.
	Search(ctx context.Context, query string, limit int) (*dto.CatalogSearchResponse, error)

	// Status reports catalog size and usage counters for the health endpoint.
	Status(ctx context.Context) (*dto.StatusResponse, error)
}

type catalogService struct {
	catalog    contract.CoffeeRepository
	engine     *retrieval.Engine
	affiliates *affiliate.Resolver
	consumer   IConsumerService
}

func NewCatalogService(
	catalog contract.CoffeeRepository,
	engine *retrieval.Engine,
	affiliates *affiliate.Resolver,
	consumer IConsumerService,
) ICatalogService {
	return &catalogService{
		catalog:    catalog,
		engine:     engine,
		affiliates: affiliates,
		consumer:   consumer,
	}
}

func (s *catalogService) Search(ctx context.Context, query string, limit int) (*dto.CatalogSearchResponse, error) {
	if limit <= 0 || limit > 20 {
		limit = 5
	}

	prof := store.NewProfile()
	prof.FlavorDescription = query

	candidates, err := s.engine.Retrieve(ctx, prof, limit)
	if err != nil {
		return nil, err
	}

	items := make([]dto.CatalogSearchItem, len(candidates))
	for i, c := range candidates {
		url, _ := s.affiliates.Resolve(ctx, c.Coffee.Id)
		items[i] = dto.CatalogSearchItem{
			Id:               c.Coffee.Id.String(),
			Name:             c.Coffee.Name,
			Roaster:          c.Coffee.Roaster,
			Origin:           c.Coffee.Origin,
			Process:          c.Coffee.Process,
			RoastLevel:       c.Coffee.RoastLevel,
			FlavorNotes:      c.Coffee.FlavorNotes,
			BrewMethods:      c.Coffee.BrewMethods,
			PriceMin:         c.Coffee.PriceMin,
			Curated:          c.Coffee.Curated,
			URL:              url,
			SimilarityScore:  c.SimilarityScore,
			FilterMatchScore: c.FilterMatchScore,
			CombinedScore:    c.CombinedScore,
		}
	}

	return &dto.CatalogSearchResponse{Query: query, Items: items}, nil
}

func (s *catalogService) Status(ctx context.Context) (*dto.StatusResponse, error) {
	count, err := s.catalog.Count(ctx)
	if err != nil {
		return nil, err
	}

	usage := map[string]int64{}
	if s.consumer != nil {
		usage = s.consumer.Counts()
	}

	return &dto.StatusResponse{
		Status:      "What Coffee API is running",
		CatalogSize: count,
		UsageCounts: usage,
	}, nil
}
