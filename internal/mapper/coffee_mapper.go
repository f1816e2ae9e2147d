package mapper

import (
	"encoding/json"

	"what-coffee-be/internal/entity"
	"what-coffee-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type CoffeeMapper struct{}

func NewCoffeeMapper() *CoffeeMapper {
	return &CoffeeMapper{}
}

func (m *CoffeeMapper) ToEntity(c *model.Coffee) *entity.Coffee {
	return &entity.Coffee{
		Id:           c.Id,
		Name:         c.Name,
		Roaster:      c.Roaster,
		Handle:       c.Handle,
		SourceURL:    c.SourceURL,
		AffiliateURL: c.AffiliateURL,
		ImageURL:     c.ImageURL,
		Description:  c.Description,
		RoastLevel:   c.RoastLevel,
		Process:      c.Process,
		Origin:       c.Origin,
		FlavorNotes:  jsonToStrings(c.FlavorNotes),
		BrewMethods:  jsonToStrings(c.BrewMethods),
		Tags:         jsonToStrings(c.Tags),
		PriceMin:     c.PriceMin,
		Curated:      c.Curated,
		IsAvailable:  c.IsAvailable,
		Embedding:    c.Embedding.Slice(),
		Position:     c.Position,
		CreatedAt:    c.CreatedAt,
	}
}

func (m *CoffeeMapper) ToModel(c *entity.Coffee) *model.Coffee {
	return &model.Coffee{
		Id:           c.Id,
		Name:         c.Name,
		Roaster:      c.Roaster,
		Handle:       c.Handle,
		SourceURL:    c.SourceURL,
		AffiliateURL: c.AffiliateURL,
		ImageURL:     c.ImageURL,
		Description:  c.Description,
		RoastLevel:   c.RoastLevel,
		Process:      c.Process,
		Origin:       c.Origin,
		FlavorNotes:  stringsToJSON(c.FlavorNotes),
		BrewMethods:  stringsToJSON(c.BrewMethods),
		Tags:         stringsToJSON(c.Tags),
		PriceMin:     c.PriceMin,
		Curated:      c.Curated,
		IsAvailable:  c.IsAvailable,
		Embedding:    pgvector.NewVector(c.Embedding),
		Position:     c.Position,
		CreatedAt:    c.CreatedAt,
	}
}

func jsonToStrings(j datatypes.JSON) []string {
	if len(j) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(j, &out); err != nil {
		return nil
	}
	return out
}

func stringsToJSON(s []string) datatypes.JSON {
	if s == nil {
		s = []string{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(b)
}
