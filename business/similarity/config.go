package similarity

import (
	"time"

	"bestinclick/business/scoring"
)

type Config struct {
	Weights scoring.BehaviorWeights

	// trailing window of events forming a user vector
	Window time.Duration

	MinCommonProducts int
	StoreThreshold    float64
	MaxUsers          int
	UpsertBatchSize   int
}

const (
	defaultWindow            = 60 * 24 * time.Hour
	defaultMinCommonProducts = 2
	defaultStoreThreshold    = 0.1
	defaultMaxUsers          = 1000
	defaultUpsertBatchSize   = 500
)

func DefaultConfig() Config {
	return Config{
		Weights:           scoring.EngineWeights(),
		Window:            defaultWindow,
		MinCommonProducts: defaultMinCommonProducts,
		StoreThreshold:    defaultStoreThreshold,
		MaxUsers:          defaultMaxUsers,
		UpsertBatchSize:   defaultUpsertBatchSize,
	}
}
