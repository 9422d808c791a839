package repository

import (
	"context"

	"nearbasket/internal/domain/entity"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

// ReviewRepository writes reviews to the backend first. Every write
// recomputes the store's rating.
type ReviewRepository interface {
	// AddReview updates the customer's existing review of the store in place
	// when there is one.
	AddReview(ctx context.Context, review *entity.StoreReview) (*entity.StoreReview, error)
	UpdateReview(ctx context.Context, review *entity.StoreReview) (*entity.StoreReview, error)
	DeleteReview(ctx context.Context, storeID, reviewID string) error
	// GetCustomerReview returns nil when the customer has not reviewed the store.
	GetCustomerReview(ctx context.Context, storeID, customerID string) (*entity.StoreReview, error)
	FetchStoreReviews(ctx context.Context, storeID string) ([]*entity.StoreReview, error)
	ObserveStoreReviews(storeID string) *observable.Stream[result.Result[[]*entity.StoreReview]]
	RecomputeStoreRating(ctx context.Context, storeID string) (float64, error)
}
