package repository

import (
	"context"
	"io"

	"nearbasket/internal/domain/entity"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

type AuthRepository interface {
	SendOTP(ctx context.Context, phone string) error
	// VerifyOTP signs the customer in, creating the customer on first sign-in.
	VerifyOTP(ctx context.Context, phone, code string) (*entity.Customer, error)
	CurrentCustomerID(ctx context.Context) (string, error)
	CurrentCustomer(ctx context.Context) (*entity.Customer, error)
	ObserveCustomer(customerID string) *observable.Stream[result.Result[*entity.Customer]]
	UpdateProfile(ctx context.Context, customer *entity.Customer) (*entity.Customer, error)
	UploadProfileImage(ctx context.Context, customerID string, data io.Reader, contentType string) (*entity.Customer, error)
	IsSignedIn(ctx context.Context) bool
	SignOut(ctx context.Context) error
}
