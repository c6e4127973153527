package domain

import "time"

// UserSimilarity stores an unordered user pair with User1ID < User2ID.
type UserSimilarity struct {
	User1ID         uint      `gorm:"column:user1_id;primaryKey" json:"user1_id"`
	User2ID         uint      `gorm:"column:user2_id;primaryKey" json:"user2_id"`
	SimilarityScore float64   `gorm:"column:similarity_score;index" json:"similarity_score"`
	CommonProducts  int       `gorm:"column:common_products" json:"common_products"`
	LastCalculated  time.Time `gorm:"column:last_calculated" json:"last_calculated"`
}

func (UserSimilarity) TableName() string {
	return "user_similarities"
}

// NewUserSimilarity orders the pair so that (a,b) and (b,a) map to the same row.
func NewUserSimilarity(a, b uint, score float64, common int, at time.Time) UserSimilarity {
	if a > b {
		a, b = b, a
	}
	return UserSimilarity{
		User1ID:         a,
		User2ID:         b,
		SimilarityScore: score,
		CommonProducts:  common,
		LastCalculated:  at,
	}
}

// UserPair identifies a similarity row; User1ID < User2ID.
type UserPair struct {
	User1ID uint
	User2ID uint
}

func NewUserPair(a, b uint) UserPair {
	if a > b {
		a, b = b, a
	}
	return UserPair{User1ID: a, User2ID: b}
}

// Other returns the user on the opposite side of the pair from userID.
func (s UserSimilarity) Other(userID uint) uint {
	if s.User1ID == userID {
		return s.User2ID
	}
	return s.User1ID
}
