package recommend

import (
	"time"

	"bestinclick/business/scoring"
	"bestinclick/domain"
)

// Generator names, also the keys of BlendWeights.
const (
	SourceCollaborative = "collaborative"
	SourceContentBased  = "content_based"
	SourceBehavioral    = "behavioral"
	SourceTrending      = "trending"
	SourcePopularity    = "popularity"
)

// BlendWeights maps a generator name to its share of the hybrid score.
type BlendWeights map[string]float64

func DefaultBlendWeights() BlendWeights {
	return BlendWeights{
		SourceCollaborative: 0.30,
		SourceContentBased:  0.25,
		SourcePopularity:    0.20,
		SourceTrending:      0.15,
		SourceBehavioral:    0.10,
	}
}

type Config struct {
	Blend          BlendWeights
	AgreementBoost float64

	// interactive request budget; on expiry only popularity is served
	Timeout  time.Duration
	CacheTTL time.Duration

	CollaborativeMinSimilarity float64
	CollaborativeTopUsers      int
	CollaborativeWindow        time.Duration
	CollaborativeSaturation    float64

	ContentWindow       time.Duration
	ContentWeights      scoring.BehaviorWeights
	ContentTopN         int
	ContentSingleBand   float64
	ContentAffinityNorm float64

	BehavioralWindow time.Duration
	BehavioralScore  float64

	PopularityScore float64

	SessionWindow    time.Duration
	SessionPriceBand float64

	SimilarPriceBand float64
}

const (
	defaultAgreementBoost             = 0.1
	defaultTimeout                    = 2 * time.Second
	defaultCacheTTL                   = 5 * time.Minute
	defaultCollaborativeMinSimilarity = 0.3
	defaultCollaborativeTopUsers      = 20
	defaultCollaborativeWindow        = 60 * 24 * time.Hour
	defaultCollaborativeSaturation    = 10.0
	defaultContentWindow              = 30 * 24 * time.Hour
	defaultContentTopN                = 3
	defaultContentSingleBand          = 0.3
	defaultContentAffinityNorm        = 10.0
	defaultBehavioralWindow           = 7 * 24 * time.Hour
	defaultBehavioralScore            = 0.6
	defaultPopularityScore            = 0.5
	defaultSessionWindow              = 24 * time.Hour
	defaultSessionPriceBand           = 0.5
	defaultSimilarPriceBand           = 0.3
)

func DefaultConfig() Config {
	return Config{
		Blend:          DefaultBlendWeights(),
		AgreementBoost: defaultAgreementBoost,
		Timeout:        defaultTimeout,
		CacheTTL:       defaultCacheTTL,

		CollaborativeMinSimilarity: defaultCollaborativeMinSimilarity,
		CollaborativeTopUsers:      defaultCollaborativeTopUsers,
		CollaborativeWindow:        defaultCollaborativeWindow,
		CollaborativeSaturation:    defaultCollaborativeSaturation,

		ContentWindow: defaultContentWindow,
		ContentWeights: scoring.BehaviorWeights{
			domain.BehaviorLike:     3,
			domain.BehaviorPurchase: 5,
			domain.BehaviorView:     1,
		},
		ContentTopN:         defaultContentTopN,
		ContentSingleBand:   defaultContentSingleBand,
		ContentAffinityNorm: defaultContentAffinityNorm,

		BehavioralWindow: defaultBehavioralWindow,
		BehavioralScore:  defaultBehavioralScore,

		PopularityScore: defaultPopularityScore,

		SessionWindow:    defaultSessionWindow,
		SessionPriceBand: defaultSessionPriceBand,

		SimilarPriceBand: defaultSimilarPriceBand,
	}
}
