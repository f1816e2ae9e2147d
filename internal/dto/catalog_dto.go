package dto

type CatalogSearchItem struct {
	Id               string   `json:"id"`
	Name             string   `json:"name"`
	Roaster          string   `json:"roaster"`
	Origin           string   `json:"origin"`
	Process          string   `json:"process"`
	RoastLevel       string   `json:"roast_level"`
	FlavorNotes      []string `json:"flavor_notes"`
	BrewMethods      []string `json:"brew_methods"`
	PriceMin         float64  `json:"price_min"`
	Curated          bool     `json:"curated"`
	URL              string   `json:"url"`
	SimilarityScore  float64  `json:"similarity_score"`
	FilterMatchScore float64  `json:"filter_match_score"`
	CombinedScore    float64  `json:"combined_score"`
}

type CatalogSearchResponse struct {
	Query string              `json:"query"`
	Items []CatalogSearchItem `json:"items"`
}

type StatusResponse struct {
	Status      string           `json:"status"`
	CatalogSize int64            `json:"catalog_size"`
	UsageCounts map[string]int64 `json:"usage_counts"`
}
