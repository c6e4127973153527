package domain

import (
	"time"

	"gorm.io/datatypes"
)

// CREATE TABLE public.user_behaviors (
//     id               BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     user_id          BIGINT NULL,
//     session_id       TEXT NULL,
//     product_id       BIGINT NOT NULL,
//     behavior_type    TEXT NOT NULL,
//     duration_seconds INT NULL,
//     rating           SMALLINT NULL,
//     review_sentiment NUMERIC NULL,
//     search_query     TEXT,
//     context          JSONB,
//     created_at       TIMESTAMPTZ DEFAULT NOW()
// );
// CREATE INDEX ON user_behaviors (product_id, created_at);
// CREATE INDEX ON user_behaviors (user_id, created_at);
// CREATE INDEX ON user_behaviors (session_id, created_at);

const (
	BehaviorView           = "view"
	BehaviorLike           = "like"
	BehaviorUnlike         = "unlike"
	BehaviorCartAdd        = "cart_add"
	BehaviorCartRemove     = "cart_remove"
	BehaviorPurchase       = "purchase"
	BehaviorReviewPositive = "review_positive"
	BehaviorReviewNegative = "review_negative"
	BehaviorWishlistAdd    = "wishlist_add"
	BehaviorWishlistRemove = "wishlist_remove"
	BehaviorShare          = "share"
	BehaviorCompare        = "compare"
	BehaviorSearch         = "search"
)

// BehaviorTypes lists every accepted behavior_type.
var BehaviorTypes = []string{
	BehaviorView,
	BehaviorLike,
	BehaviorUnlike,
	BehaviorCartAdd,
	BehaviorCartRemove,
	BehaviorPurchase,
	BehaviorReviewPositive,
	BehaviorReviewNegative,
	BehaviorWishlistAdd,
	BehaviorWishlistRemove,
	BehaviorShare,
	BehaviorCompare,
	BehaviorSearch,
}

func IsBehaviorType(t string) bool {
	for _, bt := range BehaviorTypes {
		if bt == t {
			return true
		}
	}
	return false
}

// IsReviewBehavior reports whether t carries a rating/sentiment.
func IsReviewBehavior(t string) bool {
	return t == BehaviorReviewPositive || t == BehaviorReviewNegative
}

type BehaviorEvent struct {
	ID              uint64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          *uint             `gorm:"column:user_id;index" json:"user_id,omitempty"`
	SessionID       string            `gorm:"column:session_id;type:text;index" json:"session_id,omitempty"`
	ProductID       uint64            `gorm:"column:product_id;not null;index" json:"product_id"`
	BehaviorType    string            `gorm:"column:behavior_type;type:text;not null" json:"behavior_type"`
	DurationSeconds *int              `gorm:"column:duration_seconds" json:"duration_seconds,omitempty"`
	Rating          *int              `gorm:"column:rating" json:"rating,omitempty"`
	ReviewSentiment *float64          `gorm:"column:review_sentiment;type:numeric" json:"review_sentiment,omitempty"`
	SearchQuery     string            `gorm:"column:search_query;type:text" json:"search_query,omitempty"`
	Context         datatypes.JSONMap `gorm:"column:context;type:jsonb" json:"context,omitempty"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (BehaviorEvent) TableName() string {
	return "user_behaviors"
}

// ProductBehaviorStats are the full-history aggregates of one product's behavior log.
type ProductBehaviorStats struct {
	ProductID       uint64
	TotalViews      int64
	UniqueViews     int64
	AvgViewDuration float64
	TotalLikes      int64
	TotalUnlikes    int64
	TotalCartAdds   int64
	TotalPurchases  int64
	TotalReviews    int64
	AvgRating       *float64
	AvgSentiment    *float64
}
