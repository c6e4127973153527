package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Algorithm tags attached to every candidate.
const (
	AlgorithmCollaborative     = "collaborative"
	AlgorithmContentBased      = "content_based"
	AlgorithmBehavioral        = "behavioral"
	AlgorithmTrending          = "trending"
	AlgorithmPopularity        = "popularity_based"
	AlgorithmHybrid            = "hybrid"
	AlgorithmContentSimilarity = "content_similarity"
	AlgorithmSessionBased      = "session_based"
	AlgorithmAIScored          = "ai_scored"
	AlgorithmRatingBased       = "rating_based"
	AlgorithmNewest            = "newest_products"
)

// Fallback tiers reported with a recommendation response.
const (
	TierPersonalized = "personalized"
	TierSession      = "session"
	TierGeneral      = "general"
	TierFallback     = "fallback"
	TierEmpty        = "empty"
)

// Recommendation types recorded on tracking sessions.
const (
	RecTypeGeneral      = "general"
	RecTypePersonalized = "personalized"
	RecTypeSimilar      = "similar"
	RecTypeTrending     = "trending"
	RecTypeSession      = "session"
)

// Recommendation is the tagged candidate record flowing from generators to the ranker.
type Recommendation struct {
	ProductID uint64  `json:"product_id"`
	Score     float64 `json:"score"`
	Algorithm string  `json:"algorithm"`
}

type RecommendationSession struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID             *uint     `gorm:"column:user_id;index" json:"user_id,omitempty"`
	SessionKey         string    `gorm:"column:session_id;type:text;index" json:"session_id,omitempty"`
	RecommendationType string    `gorm:"column:recommendation_type;type:text" json:"recommendation_type"`
	FallbackTier       string    `gorm:"column:fallback_tier;type:text" json:"fallback_tier"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (RecommendationSession) TableName() string {
	return "recommendation_sessions"
}

// Viewer is the authenticated caller reading a recommendation session.
type Viewer struct {
	UserID uint
	Admin  bool
}

// CanView reports whether v may read s. Admins read any session, everyone else
// only sessions recorded under their own user id.
func (v Viewer) CanView(s RecommendationSession) bool {
	if v.Admin {
		return true
	}
	return s.UserID != nil && v.UserID != 0 && *s.UserID == v.UserID
}

type RecommendationResult struct {
	ID             uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID      uuid.UUID  `gorm:"column:session_id;type:uuid;uniqueIndex:idx_rec_result_session_product" json:"session_id"`
	ProductID      uint64     `gorm:"column:product_id;uniqueIndex:idx_rec_result_session_product" json:"product_id"`
	Score          float64    `gorm:"column:score" json:"score"`
	Position       int        `gorm:"column:position" json:"position"`
	AlgorithmUsed  string     `gorm:"column:algorithm_used;type:text" json:"algorithm_used"`
	WasClicked     bool       `gorm:"column:was_clicked;default:false" json:"was_clicked"`
	ClickedAt      *time.Time `gorm:"column:clicked_at" json:"clicked_at,omitempty"`
	WasAddedToCart bool       `gorm:"column:was_added_to_cart;default:false" json:"was_added_to_cart"`
	CartAddedAt    *time.Time `gorm:"column:cart_added_at" json:"cart_added_at,omitempty"`
	WasPurchased   bool       `gorm:"column:was_purchased;default:false" json:"was_purchased"`
	PurchasedAt    *time.Time `gorm:"column:purchased_at" json:"purchased_at,omitempty"`
	WasFavorited   bool       `gorm:"column:was_favorited;default:false" json:"was_favorited"`
	FavoritedAt    *time.Time `gorm:"column:favorited_at" json:"favorited_at,omitempty"`
	WasCompared    bool       `gorm:"column:was_compared;default:false" json:"was_compared"`
	ComparedAt     *time.Time `gorm:"column:compared_at" json:"compared_at,omitempty"`
}

func (RecommendationResult) TableName() string {
	return "recommendation_results"
}

// Feedback actions accepted by the tracker.
const (
	FeedbackClick    = "click"
	FeedbackCartAdd  = "cart_add"
	FeedbackPurchase = "purchase"
	FeedbackFavorite = "favorite"
	FeedbackCompare  = "compare"
)

// SessionPerformance summarises the outcomes of one recommendation session.
type SessionPerformance struct {
	SessionID    uuid.UUID `json:"session_id"`
	Shown        int       `json:"shown"`
	Clicks       int       `json:"clicks"`
	CartAdds     int       `json:"cart_adds"`
	Purchases    int       `json:"purchases"`
	Favorites    int       `json:"favorites"`
	Compares     int       `json:"compares"`
	ClickRate    float64   `json:"click_rate"`
	CartRate     float64   `json:"cart_rate"`
	PurchaseRate float64   `json:"purchase_rate"`
}

// CachedRecommendations is the cacheable part of a recommendation response.
type CachedRecommendations struct {
	Items          []Recommendation `json:"items"`
	FallbackTier   string           `json:"fallback_tier"`
	AlgorithmsUsed []string         `json:"algorithms_used"`
}

// SessionInput describes one served recommendation list to be tracked.
type SessionInput struct {
	UserID             *uint
	SessionKey         string
	RecommendationType string
	FallbackTier       string
	Items              []Recommendation
}

// CacheScope names the cache partition of a caller. Recording a behavior for
// the same user or session invalidates it.
func CacheScope(userID *uint, sessionKey string) string {
	switch {
	case userID != nil:
		return "user:" + strconv.FormatUint(uint64(*userID), 10)
	case sessionKey != "":
		return "session:" + sessionKey
	default:
		return "anonymous"
	}
}
