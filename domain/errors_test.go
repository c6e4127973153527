package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestErrorClassification(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name        string
		err         error
		validation  bool
		notFound    bool
		computation bool
	}{
		{"validation", NewValidationError("product_id", "is required"), true, false, false},
		{"wrapped validation", fmt.Errorf("ingest: %w", NewValidationError("", "bad")), true, false, false},
		{"not found", NewNotFoundError("product", 7), false, true, false},
		{"computation", NewComputationError("product_score", 3, base), false, false, true},
		{"plain", base, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidation(tt.err); got != tt.validation {
				t.Errorf("IsValidation = %v, want %v", got, tt.validation)
			}
			if got := IsNotFound(tt.err); got != tt.notFound {
				t.Errorf("IsNotFound = %v, want %v", got, tt.notFound)
			}
			if got := IsComputation(tt.err); got != tt.computation {
				t.Errorf("IsComputation = %v, want %v", got, tt.computation)
			}
		})
	}
}

func TestComputationErrorUnwraps(t *testing.T) {
	base := errors.New("db down")
	err := NewComputationError("product_score", 1, base)
	if !errors.Is(err, base) {
		t.Fatal("expected ComputationError to unwrap to the cause")
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := NewNotFoundError("recommendation result", "abc/5")
	if err.Error() != "recommendation result abc/5 not found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestNewUserSimilarityOrdersPair(t *testing.T) {
	now := time.Now()
	a := NewUserSimilarity(9, 2, 0.5, 3, now)
	b := NewUserSimilarity(2, 9, 0.5, 3, now)
	if a != b {
		t.Fatalf("pair not canonical: %+v vs %+v", a, b)
	}
	if a.User1ID != 2 || a.User2ID != 9 {
		t.Fatalf("unexpected ordering %+v", a)
	}
	if a.Other(2) != 9 || a.Other(9) != 2 {
		t.Fatal("Other returned the wrong side")
	}
}

func TestIsBehaviorType(t *testing.T) {
	if !IsBehaviorType("purchase") {
		t.Error("purchase should be valid")
	}
	if IsBehaviorType("checkout") {
		t.Error("checkout should be rejected")
	}
	if !IsReviewBehavior(BehaviorReviewNegative) || IsReviewBehavior(BehaviorLike) {
		t.Error("IsReviewBehavior misclassified")
	}
}
