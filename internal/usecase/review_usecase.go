package usecase

import (
	"context"
	"strings"

	"nearbasket/internal/domain/entity"
	"nearbasket/internal/domain/repository"
	"nearbasket/pkg/errors"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

type ReviewUseCase struct {
	reviewRepo repository.ReviewRepository
	authRepo   repository.AuthRepository
	validate   *Validator
}

func NewReviewUseCase(reviewRepo repository.ReviewRepository, authRepo repository.AuthRepository, validate *Validator) *ReviewUseCase {
	return &ReviewUseCase{
		reviewRepo: reviewRepo,
		authRepo:   authRepo,
		validate:   validate,
	}
}

type ReviewInput struct {
	StoreID string `label:"Store" validate:"required"`
	Rating  int    `label:"Rating" validate:"min=1,max=5"`
	Comment string `label:"Comment" validate:"max=500"`
}

// SubmitReview creates the customer's review of a store, or replaces it when
// one exists. The customer's current name is stored with the review.
func (uc *ReviewUseCase) SubmitReview(ctx context.Context, input ReviewInput) result.Result[*entity.StoreReview] {
	input.Comment = strings.TrimSpace(input.Comment)
	if err := uc.validate.Struct(input); err != nil {
		return result.Failure[*entity.StoreReview](err)
	}

	customer, err := uc.authRepo.CurrentCustomer(ctx)
	if err != nil {
		return result.Failure[*entity.StoreReview](err)
	}
	name := customer.Name
	if name == "" {
		name = "Customer"
	}

	review, err := uc.reviewRepo.AddReview(ctx, &entity.StoreReview{
		StoreID:      input.StoreID,
		CustomerID:   customer.ID,
		CustomerName: name,
		Rating:       input.Rating,
		Comment:      input.Comment,
	})
	return result.From(review, err)
}

// DeleteMyReview removes the customer's review of the store.
func (uc *ReviewUseCase) DeleteMyReview(ctx context.Context, storeID string) result.Result[bool] {
	customerID, err := uc.authRepo.CurrentCustomerID(ctx)
	if err != nil {
		return result.Failure[bool](err)
	}
	review, err := uc.reviewRepo.GetCustomerReview(ctx, storeID, customerID)
	if err != nil {
		return result.Failure[bool](err)
	}
	if review == nil {
		return result.Failure[bool](errors.NotFound("Review", nil))
	}
	if err := uc.reviewRepo.DeleteReview(ctx, storeID, review.ID); err != nil {
		return result.Failure[bool](err)
	}
	return result.Success(true)
}

// MyReview returns the customer's review of the store; the data is nil when
// there is none.
func (uc *ReviewUseCase) MyReview(ctx context.Context, storeID string) result.Result[*entity.StoreReview] {
	customerID, err := uc.authRepo.CurrentCustomerID(ctx)
	if err != nil {
		return result.Failure[*entity.StoreReview](err)
	}
	review, err := uc.reviewRepo.GetCustomerReview(ctx, storeID, customerID)
	return result.From(review, err)
}

func (uc *ReviewUseCase) StoreReviews(ctx context.Context, storeID string) result.Result[[]*entity.StoreReview] {
	reviews, err := uc.reviewRepo.FetchStoreReviews(ctx, storeID)
	return result.From(reviews, err)
}

func (uc *ReviewUseCase) ObserveStoreReviews(storeID string) *observable.Stream[result.Result[[]*entity.StoreReview]] {
	return uc.reviewRepo.ObserveStoreReviews(storeID)
}
