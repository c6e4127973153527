package recommend

import (
	"math"
	"sort"
	"strings"

	"bestinclick/domain"
)

// CandidateList is the output of one generator.
type CandidateList struct {
	Source string
	Items  []domain.Recommendation
}

// RankedItem keeps the per-generator breakdown behind a final score.
type RankedItem struct {
	ProductID uint64
	Score     float64
	Scores    map[string]float64
	Tags      []string
	order     int
	// sources in list order; fixes the summation order of the blend
	sources []string
}

// Recommendation collapses the item into the tagged record served to callers.
// Items surfaced by several generators carry their first two tags.
func (r RankedItem) Recommendation() domain.Recommendation {
	tag := ""
	switch {
	case len(r.Tags) == 1:
		tag = r.Tags[0]
	case len(r.Tags) > 1:
		tag = strings.Join(r.Tags[:2], ", ")
	}
	return domain.Recommendation{ProductID: r.ProductID, Score: r.Score, Algorithm: tag}
}

// Merge unions the lists by product, computes the weighted blend with the
// agreement boost, clamps to 1 and sorts by score with first-seen order on ties.
func Merge(lists []CandidateList, weights BlendWeights, boost float64) []RankedItem {
	byProduct := make(map[uint64]*RankedItem)
	var ordered []*RankedItem

	for _, list := range lists {
		for _, c := range list.Items {
			item, ok := byProduct[c.ProductID]
			if !ok {
				item = &RankedItem{
					ProductID: c.ProductID,
					Scores:    make(map[string]float64),
					order:     len(ordered),
				}
				byProduct[c.ProductID] = item
				ordered = append(ordered, item)
			}
			if _, dup := item.Scores[list.Source]; dup {
				continue
			}
			item.Scores[list.Source] = c.Score
			item.sources = append(item.sources, list.Source)
			item.Tags = append(item.Tags, c.Algorithm)
		}
	}

	out := make([]RankedItem, 0, len(ordered))
	for _, item := range ordered {
		var score float64
		for _, source := range item.sources {
			score += weights[source] * item.Scores[source]
		}
		if k := len(item.Scores); k > 1 {
			score *= 1 + boost*float64(k-1)
		}
		item.Score = math.Min(score, 1)
		out = append(out, *item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].order < out[j].order
	})

	return out
}

// Rank merges the candidate lists and truncates to limit.
func Rank(lists []CandidateList, weights BlendWeights, boost float64, limit int) []domain.Recommendation {
	merged := Merge(lists, weights, boost)

	out := make([]domain.Recommendation, 0, len(merged))
	for _, item := range merged {
		out = append(out, item.Recommendation())
	}

	return truncate(out, limit)
}

// TopUp appends fallback items not already present until limit is reached.
// Appended scores are capped at the last ranked score so the list stays sorted.
func TopUp(ranked, fallback []domain.Recommendation, limit int) []domain.Recommendation {
	if len(ranked) >= limit {
		return truncate(ranked, limit)
	}

	seen := make(map[uint64]struct{}, len(ranked))
	for _, r := range ranked {
		seen[r.ProductID] = struct{}{}
	}

	out := append([]domain.Recommendation(nil), ranked...)
	ceiling := math.Inf(1)
	if len(out) > 0 {
		ceiling = out[len(out)-1].Score
	}

	for _, f := range fallback {
		if len(out) >= limit {
			break
		}
		if _, ok := seen[f.ProductID]; ok {
			continue
		}
		seen[f.ProductID] = struct{}{}
		f.Score = math.Min(f.Score, ceiling)
		ceiling = f.Score
		out = append(out, f)
	}

	return out
}

func productIDs(items []domain.Recommendation) []uint64 {
	ids := make([]uint64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	return ids
}
