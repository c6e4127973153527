package scoring

import "time"

type Config struct {
	// Weights used for trending_score.
	TrendingWeights BehaviorWeights

	TrendingWindow     time.Duration
	TrendingMinDecay   float64
	TrendingNormalizer float64

	// saturation points of the popularity sub-terms
	ViewsSaturation       float64
	UniqueViewsSaturation float64
	CartAddsSaturation    float64

	// saturation point of the review count in quality_score
	ReviewsSaturation float64
}

const (
	defaultTrendingWindow        = 7 * 24 * time.Hour
	defaultTrendingMinDecay      = 0.1
	defaultTrendingNormalizer    = 100.0
	defaultViewsSaturation       = 1000.0
	defaultUniqueViewsSaturation = 500.0
	defaultCartAddsSaturation    = 100.0
	defaultReviewsSaturation     = 50.0
)

func DefaultConfig() Config {
	return Config{
		TrendingWeights:       AnalyzerWeights(),
		TrendingWindow:        defaultTrendingWindow,
		TrendingMinDecay:      defaultTrendingMinDecay,
		TrendingNormalizer:    defaultTrendingNormalizer,
		ViewsSaturation:       defaultViewsSaturation,
		UniqueViewsSaturation: defaultUniqueViewsSaturation,
		CartAddsSaturation:    defaultCartAddsSaturation,
		ReviewsSaturation:     defaultReviewsSaturation,
	}
}
