package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nearbasket/internal/domain/entity"
	"nearbasket/pkg/errors"
)

func TestInvalidRatingNeverReachesRepository(t *testing.T) {
	reviews := new(mockReviewRepo)
	auth := new(mockAuthRepo)
	uc := NewReviewUseCase(reviews, auth, NewValidator())

	for _, rating := range []int{0, 6, -1} {
		r := uc.SubmitReview(context.Background(), ReviewInput{StoreID: "s1", Rating: rating})
		assert.True(t, r.IsError())
		assert.True(t, errors.Is(r.Err(), errors.CodeValidation))
	}

	reviews.AssertNotCalled(t, "AddReview", mock.Anything, mock.Anything)
	auth.AssertNotCalled(t, "CurrentCustomer", mock.Anything)
}

func TestSubmitReviewSnapshotsCustomerName(t *testing.T) {
	reviews := new(mockReviewRepo)
	auth := new(mockAuthRepo)
	uc := NewReviewUseCase(reviews, auth, NewValidator())

	auth.On("CurrentCustomer", mock.Anything).Return(&entity.Customer{ID: "c1", Name: "Asha Rao"}, nil)
	reviews.On("AddReview", mock.Anything, mock.MatchedBy(func(r *entity.StoreReview) bool {
		return r.StoreID == "s1" && r.CustomerID == "c1" && r.CustomerName == "Asha Rao" &&
			r.Rating == 4 && r.Comment == "Quick delivery"
	})).Return(&entity.StoreReview{ID: "r1", StoreID: "s1", CustomerID: "c1", Rating: 4}, nil).Once()

	r := uc.SubmitReview(context.Background(), ReviewInput{StoreID: "s1", Rating: 4, Comment: "  Quick delivery "})
	require.True(t, r.IsSuccess(), r.Message())
	assert.Equal(t, "r1", r.Data().ID)
	reviews.AssertExpectations(t)
}

func TestDeleteMyReviewWithoutReview(t *testing.T) {
	reviews := new(mockReviewRepo)
	auth := new(mockAuthRepo)
	uc := NewReviewUseCase(reviews, auth, NewValidator())

	auth.On("CurrentCustomerID", mock.Anything).Return("c1", nil)
	reviews.On("GetCustomerReview", mock.Anything, "s1", "c1").Return(nil, nil)

	r := uc.DeleteMyReview(context.Background(), "s1")
	assert.True(t, errors.Is(r.Err(), errors.CodeNotFound))
	reviews.AssertNotCalled(t, "DeleteReview", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteMyReview(t *testing.T) {
	reviews := new(mockReviewRepo)
	auth := new(mockAuthRepo)
	uc := NewReviewUseCase(reviews, auth, NewValidator())

	auth.On("CurrentCustomerID", mock.Anything).Return("c1", nil)
	reviews.On("GetCustomerReview", mock.Anything, "s1", "c1").Return(&entity.StoreReview{ID: "r1", StoreID: "s1"}, nil)
	reviews.On("DeleteReview", mock.Anything, "s1", "r1").Return(nil).Once()

	r := uc.DeleteMyReview(context.Background(), "s1")
	assert.True(t, r.IsSuccess())
	reviews.AssertExpectations(t)
}
