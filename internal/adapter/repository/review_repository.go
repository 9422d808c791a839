package repository

import (
	"context"

	"nearbasket/internal/domain/entity"
	"nearbasket/internal/domain/repository"
	"nearbasket/internal/infrastructure/cache"
	"nearbasket/internal/infrastructure/remote"
	"nearbasket/pkg/errors"
	"nearbasket/pkg/logger"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

type reviewRepository struct {
	gateway *remote.Gateway
	cache   *cache.DB
}

func NewReviewRepository(gateway *remote.Gateway, cache *cache.DB) repository.ReviewRepository {
	return &reviewRepository{
		gateway: gateway,
		cache:   cache,
	}
}

func (r *reviewRepository) AddReview(ctx context.Context, review *entity.StoreReview) (*entity.StoreReview, error) {
	existing, err := r.gateway.FetchCustomerReview(ctx, review.StoreID, review.CustomerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		review.ID = existing.ID
		return r.UpdateReview(ctx, review)
	}

	dto := remote.NewReviewDTO(review)
	if err := r.gateway.InsertReview(ctx, dto); err != nil {
		if !errors.Is(err, errors.CodeConflict) {
			return nil, err
		}
		// Lost a race with another device of the same customer.
		existing, fetchErr := r.gateway.FetchCustomerReview(ctx, review.StoreID, review.CustomerID)
		if fetchErr != nil || existing == nil {
			return nil, err
		}
		review.ID = existing.ID
		return r.UpdateReview(ctx, review)
	}

	return r.mirror(ctx, dto.ToEntity())
}

func (r *reviewRepository) UpdateReview(ctx context.Context, review *entity.StoreReview) (*entity.StoreReview, error) {
	dto := remote.NewReviewDTO(review)
	if err := r.gateway.UpdateReview(ctx, dto); err != nil {
		return nil, err
	}
	return r.mirror(ctx, dto.ToEntity())
}

// mirror caches a review the backend accepted and refreshes the store rating.
// A failed recomputation does not fail the review.
func (r *reviewRepository) mirror(ctx context.Context, saved *entity.StoreReview) (*entity.StoreReview, error) {
	if err := r.cache.UpsertReview(ctx, saved); err != nil {
		return nil, err
	}
	if _, err := r.RecomputeStoreRating(ctx, saved.StoreID); err != nil {
		logger.LogSyncError("store", "recompute rating of "+saved.StoreID, err)
	}
	return saved, nil
}

func (r *reviewRepository) DeleteReview(ctx context.Context, storeID, reviewID string) error {
	if err := r.gateway.DeleteReview(ctx, reviewID); err != nil {
		return err
	}
	if err := r.cache.DeleteReview(ctx, reviewID); err != nil {
		return err
	}
	if _, err := r.RecomputeStoreRating(ctx, storeID); err != nil {
		logger.LogSyncError("store", "recompute rating of "+storeID, err)
	}
	return nil
}

func (r *reviewRepository) GetCustomerReview(ctx context.Context, storeID, customerID string) (*entity.StoreReview, error) {
	dto, err := r.gateway.FetchCustomerReview(ctx, storeID, customerID)
	if err == nil {
		if dto == nil {
			return nil, nil
		}
		review := dto.ToEntity()
		if err := r.cache.UpsertReview(ctx, review); err != nil {
			return nil, err
		}
		return review, nil
	}

	cached, cacheErr := r.cache.GetCustomerReview(ctx, storeID, customerID)
	if cacheErr != nil {
		return nil, err
	}
	return cached, nil
}

func (r *reviewRepository) FetchStoreReviews(ctx context.Context, storeID string) ([]*entity.StoreReview, error) {
	dtos, err := r.gateway.FetchStoreReviews(ctx, storeID)
	if err == nil {
		reviews := reviewEntities(dtos)
		if err := r.cache.ReplaceReviews(ctx, storeID, reviews); err != nil {
			return nil, err
		}
		return reviews, nil
	}

	cached, cacheErr := r.cache.GetStoreReviews(ctx, storeID)
	if cacheErr != nil || len(cached) == 0 {
		return nil, err
	}
	logger.Warn("serving %d cached reviews of store %s: %v", len(cached), storeID, err)
	return cached, nil
}

func (r *reviewRepository) ObserveStoreReviews(storeID string) *observable.Stream[result.Result[[]*entity.StoreReview]] {
	return r.cache.WatchStoreReviews(storeID)
}

// RecomputeStoreRating sets the store's rating to the mean of its reviews,
// rounded to one decimal. It reads then writes without a lock: when two
// recomputations overlap, the last write wins even if it read older reviews.
func (r *reviewRepository) RecomputeStoreRating(ctx context.Context, storeID string) (float64, error) {
	dtos, err := r.gateway.FetchStoreReviews(ctx, storeID)
	if err != nil {
		return 0, err
	}
	rating := entity.AverageRating(reviewEntities(dtos))

	if err := r.gateway.UpdateStoreRating(ctx, storeID, rating); err != nil {
		return 0, err
	}
	if err := r.cache.UpdateStoreRating(ctx, storeID, rating); err != nil && !errors.Is(err, errors.CodeNotFound) {
		return 0, err
	}
	return rating, nil
}

func reviewEntities(dtos []remote.ReviewDTO) []*entity.StoreReview {
	reviews := make([]*entity.StoreReview, 0, len(dtos))
	for i := range dtos {
		reviews = append(reviews, dtos[i].ToEntity())
	}
	return reviews
}
