package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"what-coffee-be/internal/config"
	"what-coffee-be/internal/entity"
	"what-coffee-be/internal/repository/implementation"
	"what-coffee-be/pkg/database"
	"what-coffee-be/pkg/embedding"

	"github.com/fatih/color"
)

// seedCoffee mirrors the ingestion pipeline's export format.
type seedCoffee struct {
	Name         string   `json:"name"`
	Roaster      string   `json:"roaster"`
	Handle       string   `json:"handle"`
	SourceURL    string   `json:"source_url"`
	AffiliateURL string   `json:"affiliate_url"`
	ImageURL     string   `json:"image_url"`
	Description  string   `json:"description"`
	RoastLevel   string   `json:"roast_level"`
	Process      string   `json:"process"`
	Origin       string   `json:"origin"`
	FlavorNotes  []string `json:"flavor_notes"`
	BrewMethods  []string `json:"brew_methods"`
	Tags         []string `json:"tags"`
	PriceMin     float64  `json:"price_min"`
	Curated      bool     `json:"curated"`
}

func main() {
	fixturePath := flag.String("file", "data/coffees.json", "path to the catalog fixture")
	flag.Parse()

	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("DB_CONNECTION_STRING is required for seeding")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Unable to migrate database: %v", err)
	}

	raw, err := os.ReadFile(*fixturePath)
	if err != nil {
		log.Fatalf("Unable to read fixture %s: %v", *fixturePath, err)
	}
	var seeds []seedCoffee
	if err := json.Unmarshal(raw, &seeds); err != nil {
		log.Fatalf("Unable to parse fixture: %v", err)
	}

	var embedder embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embedder = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	} else {
		embedder = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}

	repo := implementation.NewCoffeeRepository(db)
	ctx := context.Background()

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	inserted := 0
	for _, s := range seeds {
		doc := embeddingDocument(s)
		emb, err := embedder.Generate(ctx, doc, embedding.TaskRetrievalDocument)
		if err != nil {
			red.Printf("✗ %s | %s: embedding failed: %v\n", s.Roaster, s.Name, err)
			continue
		}

		coffee := &entity.Coffee{
			Name:         s.Name,
			Roaster:      s.Roaster,
			Handle:       s.Handle,
			SourceURL:    s.SourceURL,
			AffiliateURL: s.AffiliateURL,
			ImageURL:     s.ImageURL,
			Description:  s.Description,
			RoastLevel:   s.RoastLevel,
			Process:      s.Process,
			Origin:       s.Origin,
			FlavorNotes:  s.FlavorNotes,
			BrewMethods:  s.BrewMethods,
			Tags:         s.Tags,
			PriceMin:     s.PriceMin,
			Curated:      s.Curated,
			IsAvailable:  true,
			Embedding:    emb.Embedding.Values,
		}
		if err := repo.Create(ctx, coffee); err != nil {
			red.Printf("✗ %s | %s: insert failed: %v\n", s.Roaster, s.Name, err)
			continue
		}

		green.Printf("✓ %s | %s\n", s.Roaster, s.Name)
		inserted++
	}

	fmt.Printf("Seeded %d/%d coffees\n", inserted, len(seeds))
}

func embeddingDocument(s seedCoffee) string {
	parts := []string{s.Name}
	if len(s.FlavorNotes) > 0 {
		parts = append(parts, strings.Join(s.FlavorNotes, ", "))
	}
	if s.Description != "" {
		parts = append(parts, s.Description)
	}
	return strings.Join(parts, ". ")
}
