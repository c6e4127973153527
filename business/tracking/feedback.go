package tracking

import (
	"time"

	"bestinclick/domain"

	"github.com/google/uuid"
)

var actions = []string{
	domain.FeedbackClick,
	domain.FeedbackCartAdd,
	domain.FeedbackPurchase,
	domain.FeedbackFavorite,
	domain.FeedbackCompare,
}

func IsAction(action string) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

// ApplyFeedback sets the outcome flag for action. The first timestamp wins;
// it reports whether the result changed.
func ApplyFeedback(r *domain.RecommendationResult, action string, at time.Time) bool {
	var flag *bool
	var stamp **time.Time

	switch action {
	case domain.FeedbackClick:
		flag, stamp = &r.WasClicked, &r.ClickedAt
	case domain.FeedbackCartAdd:
		flag, stamp = &r.WasAddedToCart, &r.CartAddedAt
	case domain.FeedbackPurchase:
		flag, stamp = &r.WasPurchased, &r.PurchasedAt
	case domain.FeedbackFavorite:
		flag, stamp = &r.WasFavorited, &r.FavoritedAt
	case domain.FeedbackCompare:
		flag, stamp = &r.WasCompared, &r.ComparedAt
	default:
		return false
	}

	if *flag {
		return false
	}
	*flag = true
	*stamp = &at
	return true
}

func Summarize(sessionID uuid.UUID, results []domain.RecommendationResult) domain.SessionPerformance {
	p := domain.SessionPerformance{SessionID: sessionID, Shown: len(results)}
	for _, r := range results {
		if r.WasClicked {
			p.Clicks++
		}
		if r.WasAddedToCart {
			p.CartAdds++
		}
		if r.WasPurchased {
			p.Purchases++
		}
		if r.WasFavorited {
			p.Favorites++
		}
		if r.WasCompared {
			p.Compares++
		}
	}

	if p.Shown > 0 {
		p.ClickRate = float64(p.Clicks) / float64(p.Shown)
		p.CartRate = float64(p.CartAdds) / float64(p.Shown)
		p.PurchaseRate = float64(p.Purchases) / float64(p.Shown)
	}

	return p
}
