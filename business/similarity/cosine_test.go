package similarity

import (
	"math"
	"testing"

	"bestinclick/business/scoring"
	"bestinclick/domain"
)

func purchases(ids ...uint64) []domain.BehaviorEvent {
	var out []domain.BehaviorEvent
	for _, id := range ids {
		out = append(out, domain.BehaviorEvent{ProductID: id, BehaviorType: domain.BehaviorPurchase})
	}
	return out
}

func TestCosineIdenticalPurchases(t *testing.T) {
	w := scoring.EngineWeights()
	a := BuildVector(purchases(1, 2, 3, 4, 5), w)
	b := BuildVector(purchases(1, 2, 3, 4, 5), w)

	score, common := Cosine(a, b, 2)
	if common != 5 {
		t.Fatalf("common = %d, want 5", common)
	}
	if math.Abs(score-1.0) > 1e-9 {
		t.Fatalf("score = %v, want ~1.0", score)
	}
}

func TestCosineRequiresTwoCommonProducts(t *testing.T) {
	a := Vector{1: 5, 2: 3}
	b := Vector{1: 5, 9: 3}

	score, common := Cosine(a, b, 2)
	if common != 1 {
		t.Fatalf("common = %d, want 1", common)
	}
	if score != 0 {
		t.Fatalf("score = %v, want 0 with a single shared product", score)
	}

	if score, _ := Cosine(Vector{}, Vector{}, 2); score != 0 {
		t.Fatalf("empty vectors should score 0, got %v", score)
	}
}

func TestCosineClampsNegative(t *testing.T) {
	a := Vector{1: 10, 2: 10}
	b := Vector{1: -3, 2: -3}

	if score, _ := Cosine(a, b, 2); score != 0 {
		t.Fatalf("score = %v, want clamp to 0", score)
	}
}

func TestCosineSymmetricAndBounded(t *testing.T) {
	vectors := []Vector{
		{1: 1, 2: 5, 3: 10, 4: -1},
		{1: 4, 2: 1, 3: 1},
		{2: 10, 3: 3, 4: 4, 5: 6, 6: 1},
		{1: -2, 3: 5, 5: 1.5, 7: 0.5},
	}

	for i := range vectors {
		for j := range vectors {
			ab, _ := Cosine(vectors[i], vectors[j], 2)
			ba, _ := Cosine(vectors[j], vectors[i], 2)
			if ab != ba {
				t.Errorf("Cosine(%d,%d)=%v != Cosine(%d,%d)=%v", i, j, ab, j, i, ba)
			}
			if ab < 0 || ab > 1 {
				t.Errorf("Cosine(%d,%d)=%v out of [0,1]", i, j, ab)
			}
		}
	}
}

func TestCosineIgnoresNonSharedProducts(t *testing.T) {
	a := Vector{1: 2, 2: 4, 50: 100}
	b := Vector{1: 1, 2: 2, 60: 100}

	score, _ := Cosine(a, b, 2)
	if math.Abs(score-1) > 1e-9 {
		t.Fatalf("score = %v, want ~1 over the shared products only", score)
	}
}

func TestBuildVectorSumsWeights(t *testing.T) {
	events := []domain.BehaviorEvent{
		{ProductID: 1, BehaviorType: domain.BehaviorView},
		{ProductID: 1, BehaviorType: domain.BehaviorLike},
		{ProductID: 2, BehaviorType: domain.BehaviorUnlike},
		{ProductID: 3, BehaviorType: "bogus"},
	}

	v := BuildVector(events, scoring.EngineWeights())
	if v[1] != 6 {
		t.Errorf("v[1] = %v, want 6", v[1])
	}
	if v[2] != -3 {
		t.Errorf("v[2] = %v, want -3", v[2])
	}
	if _, ok := v[3]; ok {
		t.Error("zero-weight behavior should not create an entry")
	}
}
