package scoring

import (
	"math"
	"time"

	"bestinclick/domain"
)

// ComputeProductScore derives a full ProductScore from the product's lifetime
// aggregates and its events inside the trending window.
func ComputeProductScore(stats domain.ProductBehaviorStats, recent []domain.BehaviorEvent, now time.Time, cfg Config) domain.ProductScore {
	score := domain.ProductScore{
		ProductID:       stats.ProductID,
		TotalViews:      stats.TotalViews,
		UniqueViews:     stats.UniqueViews,
		AvgViewDuration: stats.AvgViewDuration,
		TotalLikes:      stats.TotalLikes,
		TotalUnlikes:    stats.TotalUnlikes,
		TotalCartAdds:   stats.TotalCartAdds,
		TotalPurchases:  stats.TotalPurchases,
		TotalReviews:    stats.TotalReviews,
		LastUpdated:     now,
	}

	if reactions := stats.TotalLikes + stats.TotalUnlikes; reactions > 0 {
		score.LikeRatio = float64(stats.TotalLikes) / float64(reactions)
	}
	if stats.TotalViews > 0 {
		score.ConversionRate = float64(stats.TotalPurchases) / float64(stats.TotalViews)
	}
	if stats.AvgRating != nil {
		score.AvgRating = *stats.AvgRating
	}
	if stats.AvgSentiment != nil {
		score.AvgSentiment = *stats.AvgSentiment
	}

	score.PopularityScore = PopularityScore(score, cfg)
	score.QualityScore = QualityScore(score, stats.AvgRating != nil, stats.AvgSentiment != nil, cfg)
	score.TrendingScore = TrendingScore(recent, now, cfg)
	score.OverallScore = OverallScore(score.PopularityScore, score.QualityScore, score.TrendingScore)

	return score
}

func PopularityScore(s domain.ProductScore, cfg Config) float64 {
	views := math.Min(float64(s.TotalViews)/cfg.ViewsSaturation, 1)
	unique := math.Min(float64(s.UniqueViews)/cfg.UniqueViewsSaturation, 1)
	carts := math.Min(float64(s.TotalCartAdds)/cfg.CartAddsSaturation, 1)

	return clamp01(0.3*views + 0.3*unique + 0.2*s.LikeRatio + 0.2*carts)
}

// QualityScore falls back to a neutral 0.5 for the rating and sentiment terms
// when the product has no rated or sentiment-tagged reviews.
func QualityScore(s domain.ProductScore, hasRating, hasSentiment bool, cfg Config) float64 {
	rating := 0.5
	if hasRating && s.AvgRating > 0 {
		rating = s.AvgRating / 5
	}

	sentiment := 0.5
	if hasSentiment {
		sentiment = (s.AvgSentiment + 1) / 2
	}

	conversion := math.Min(s.ConversionRate*10, 1)
	reviews := math.Min(float64(s.TotalReviews)/cfg.ReviewsSaturation, 1)

	return clamp01(0.4*rating + 0.3*sentiment + 0.2*conversion + 0.1*reviews)
}

// TrendingScore sums weight × decay over events inside the window, normalised to [0,1].
func TrendingScore(events []domain.BehaviorEvent, now time.Time, cfg Config) float64 {
	cutoff := now.Add(-cfg.TrendingWindow)

	var total float64
	for _, ev := range events {
		if ev.CreatedAt.Before(cutoff) || ev.CreatedAt.After(now) {
			continue
		}
		total += cfg.TrendingWeights.Weight(ev.BehaviorType) * TimeDecay(now.Sub(ev.CreatedAt), cfg)
	}

	return clamp01(total / cfg.TrendingNormalizer)
}

// TimeDecay is linear over the trending window and floored at TrendingMinDecay.
func TimeDecay(age time.Duration, cfg Config) float64 {
	if age < 0 {
		age = 0
	}
	daysAgo := age.Hours() / 24
	windowDays := cfg.TrendingWindow.Hours() / 24

	return math.Max(cfg.TrendingMinDecay, 1-daysAgo/windowDays)
}

func OverallScore(popularity, quality, trending float64) float64 {
	return clamp01(0.35*popularity + 0.35*quality + 0.30*trending)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
