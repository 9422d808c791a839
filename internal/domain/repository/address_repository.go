package repository

import (
	"context"

	"nearbasket/internal/domain/entity"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

type AddressRepository interface {
	FetchAddresses(ctx context.Context, customerID string) ([]*entity.Address, error)
	// AddAddress makes the address the default when requested or when it is
	// the customer's first.
	AddAddress(ctx context.Context, address *entity.Address) (*entity.Address, error)
	UpdateAddress(ctx context.Context, address *entity.Address) (*entity.Address, error)
	DeleteAddress(ctx context.Context, id string) error
	GetAddress(ctx context.Context, id string) (*entity.Address, error)
	SetDefaultAddress(ctx context.Context, customerID, addressID string) error
	GetDefaultAddress(ctx context.Context, customerID string) (*entity.Address, error)
	ObserveAddresses(customerID string) *observable.Stream[result.Result[[]*entity.Address]]
}
