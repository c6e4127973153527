package domain

import (
	"time"
)

// CREATE TABLE public.products (
//     id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     name            TEXT NOT NULL,
//     category_id     BIGINT,
//     brand_id        BIGINT,
//     price           NUMERIC,
//     is_active       BOOLEAN DEFAULT TRUE,
//     average_rating  NUMERIC DEFAULT 0,
//     review_count    INT DEFAULT 0,
//     view_count      INT DEFAULT 0,
//     created_at      TIMESTAMPTZ DEFAULT NOW()
// );

type Product struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string    `gorm:"column:name;type:text" json:"name"`
	CategoryID    uint64    `gorm:"column:category_id;default:0" json:"category_id"`
	BrandID       uint64    `gorm:"column:brand_id;default:0" json:"brand_id"`
	Price         float64   `gorm:"column:price;type:numeric" json:"price"`
	IsActive      bool      `gorm:"column:is_active;default:true" json:"is_active"`
	AverageRating float64   `gorm:"column:average_rating;type:numeric;default:0" json:"average_rating"`
	ReviewCount   int       `gorm:"column:review_count;default:0" json:"review_count"`
	ViewCount     int       `gorm:"column:view_count;default:0" json:"view_count"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Product) TableName() string {
	return "products"
}

// Catalog orderings understood by ProductFilter.OrderBy.
const (
	OrderByPopularity = "popularity"
	OrderByTrending   = "trending"
	OrderByOverall    = "overall"
	OrderByRating     = "rating"
	OrderByNewest     = "newest"
)

// ProductFilter narrows catalog queries issued by the candidate generators.
// Only active products are ever returned.
type ProductFilter struct {
	// hard restriction, 0 means any category
	CategoryID uint64

	// affinity sets; with MatchAny a product qualifies by category OR brand
	CategoryIDs []uint64
	BrandIDs    []uint64
	MatchAny    bool

	MinPrice   *float64
	MaxPrice   *float64
	ExcludeIDs []uint64

	OnlyScored   bool
	OnlyTrending bool

	OrderBy string
	Limit   int
}

// ScoredProduct is a product joined with its aggregated score row, if any.
type ScoredProduct struct {
	Product
	HasScore        bool    `gorm:"column:has_score" json:"-"`
	PopularityScore float64 `gorm:"column:popularity_score" json:"popularity_score"`
	TrendingScore   float64 `gorm:"column:trending_score" json:"trending_score"`
	OverallScore    float64 `gorm:"column:overall_score" json:"overall_score"`
}
