package domain

import "time"

// ProductScore is recomputed from the whole behavior history of a product and
// overwritten in place. Every *_score field is kept within [0,1].
type ProductScore struct {
	ProductID       uint64    `gorm:"column:product_id;primaryKey" json:"product_id"`
	TotalViews      int64     `gorm:"column:total_views" json:"total_views"`
	UniqueViews     int64     `gorm:"column:unique_views" json:"unique_views"`
	AvgViewDuration float64   `gorm:"column:avg_view_duration" json:"avg_view_duration"`
	TotalLikes      int64     `gorm:"column:total_likes" json:"total_likes"`
	TotalUnlikes    int64     `gorm:"column:total_unlikes" json:"total_unlikes"`
	LikeRatio       float64   `gorm:"column:like_ratio" json:"like_ratio"`
	TotalCartAdds   int64     `gorm:"column:total_cart_adds" json:"total_cart_adds"`
	TotalPurchases  int64     `gorm:"column:total_purchases" json:"total_purchases"`
	ConversionRate  float64   `gorm:"column:conversion_rate" json:"conversion_rate"`
	AvgRating       float64   `gorm:"column:avg_rating" json:"avg_rating"`
	TotalReviews    int64     `gorm:"column:total_reviews" json:"total_reviews"`
	AvgSentiment    float64   `gorm:"column:avg_sentiment" json:"avg_sentiment"`
	PopularityScore float64   `gorm:"column:popularity_score;index" json:"popularity_score"`
	QualityScore    float64   `gorm:"column:quality_score" json:"quality_score"`
	TrendingScore   float64   `gorm:"column:trending_score;index" json:"trending_score"`
	OverallScore    float64   `gorm:"column:overall_score;index" json:"overall_score"`
	LastUpdated     time.Time `gorm:"column:last_updated" json:"last_updated"`
}

func (ProductScore) TableName() string {
	return "product_interaction_scores"
}

// BatchReport summarises one batch pass over many products or users.
type BatchReport struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}
