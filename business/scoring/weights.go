package scoring

import "bestinclick/domain"

// BehaviorWeights maps a behavior_type to its signed signal strength.
// Unknown types weigh 0.
type BehaviorWeights map[string]float64

func (w BehaviorWeights) Weight(behaviorType string) float64 {
	return w[behaviorType]
}

// AnalyzerWeights is the table used when aggregating product trending scores.
func AnalyzerWeights() BehaviorWeights {
	return BehaviorWeights{
		domain.BehaviorView:           1.0,
		domain.BehaviorLike:           3.0,
		domain.BehaviorUnlike:         -2.0,
		domain.BehaviorCartAdd:        4.0,
		domain.BehaviorCartRemove:     -1.0,
		domain.BehaviorPurchase:       10.0,
		domain.BehaviorReviewPositive: 5.0,
		domain.BehaviorReviewNegative: -3.0,
		domain.BehaviorWishlistAdd:    2.0,
		domain.BehaviorWishlistRemove: -1.0,
		domain.BehaviorShare:          3.0,
		domain.BehaviorCompare:        1.5,
		domain.BehaviorSearch:         0.5,
	}
}

// EngineWeights is the table used when building user interaction vectors for
// collaborative filtering. It rewards explicit preference more than AnalyzerWeights.
func EngineWeights() BehaviorWeights {
	return BehaviorWeights{
		domain.BehaviorView:           1.0,
		domain.BehaviorLike:           5.0,
		domain.BehaviorUnlike:         -3.0,
		domain.BehaviorCartAdd:        4.0,
		domain.BehaviorCartRemove:     -1.0,
		domain.BehaviorPurchase:       10.0,
		domain.BehaviorReviewPositive: 6.0,
		domain.BehaviorReviewNegative: -4.0,
		domain.BehaviorWishlistAdd:    3.0,
		domain.BehaviorWishlistRemove: -1.0,
		domain.BehaviorShare:          2.0,
		domain.BehaviorCompare:        1.5,
		domain.BehaviorSearch:         0.5,
	}
}
