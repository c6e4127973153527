package similarity

import (
	"math"
	"sort"

	"bestinclick/business/scoring"
	"bestinclick/domain"
)

// Vector is a user's weighted interaction profile keyed by product id.
type Vector map[uint64]float64

// BuildVector sums the behavior weight of every event per product.
func BuildVector(events []domain.BehaviorEvent, weights scoring.BehaviorWeights) Vector {
	v := make(Vector)
	for _, ev := range events {
		w := weights.Weight(ev.BehaviorType)
		if w == 0 {
			continue
		}
		v[ev.ProductID] += w
	}
	return v
}

// Cosine compares two vectors over the products both users touched. Fewer than
// minCommon shared products yields 0. The result is clamped to [0,1].
func Cosine(a, b Vector, minCommon int) (float64, int) {
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	shared := make([]uint64, 0, len(small))
	for pid := range small {
		if _, ok := large[pid]; ok {
			shared = append(shared, pid)
		}
	}
	common := len(shared)
	if common < minCommon {
		return 0, common
	}

	// fixed summation order keeps Cosine(a,b) == Cosine(b,a) bit for bit
	sort.Slice(shared, func(i, j int) bool { return shared[i] < shared[j] })

	var dot, normA, normB float64
	for _, pid := range shared {
		wa, wb := a[pid], b[pid]
		dot += wa * wb
		normA += wa * wa
		normB += wb * wb
	}

	if normA == 0 || normB == 0 {
		return 0, common
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(score) || score < 0 {
		return 0, common
	}
	if score > 1 {
		score = 1
	}

	return score, common
}
