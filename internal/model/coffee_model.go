package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Coffee struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string    `gorm:"not null"`
	Roaster      string    `gorm:"not null;index"`
	Handle       string
	SourceURL    string `gorm:"uniqueIndex"`
	AffiliateURL string `gorm:"default:''"`
	ImageURL     string `gorm:"default:''"`

	Description string `gorm:"type:text;default:''"`
	RoastLevel  string `gorm:"default:'unknown'"`
	Process     string `gorm:"default:'unknown'"`
	Origin      string `gorm:"default:'India'"`

	// Stored as JSON string arrays, e.g. ["chocolate","caramel"]
	FlavorNotes datatypes.JSON
	BrewMethods datatypes.JSON
	Tags        datatypes.JSON

	PriceMin    float64 `gorm:"default:0"`
	Curated     bool    `gorm:"default:false;index"`
	IsAvailable bool    `gorm:"default:true;index"`

	Embedding pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 dimension

	// Monotonic insertion order, used as the deterministic tie-breaker
	Position  int64     `gorm:"autoIncrement;uniqueIndex"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Coffee) TableName() string {
	return "coffees"
}
