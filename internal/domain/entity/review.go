package entity

import (
	"time"

	"nearbasket/pkg/utils"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 500
)

// StoreReview is unique per (StoreID, CustomerID). CustomerName is a snapshot
// taken when the review was written.
type StoreReview struct {
	ID           string    `json:"id"`
	StoreID      string    `json:"store_id"`
	CustomerID   string    `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RelativeTime renders the review age, e.g. "3 days ago".
func (r *StoreReview) RelativeTime(now time.Time) string {
	return utils.RelativeTime(r.CreatedAt, now)
}

// AverageRating is the mean of the ratings rounded to one decimal place, or
// zero when there are no reviews.
func AverageRating(reviews []*StoreReview) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return utils.RoundTo(float64(sum)/float64(len(reviews)), 1)
}
