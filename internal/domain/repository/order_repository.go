package repository

import (
	"context"

	"nearbasket/internal/domain/entity"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

type OrderRepository interface {
	// PlaceOrder creates the order remotely and mirrors it locally. The cart
	// is left as it is.
	PlaceOrder(ctx context.Context, order *entity.Order) (*entity.Order, error)
	FetchOrders(ctx context.Context, customerID string) ([]*entity.Order, error)
	GetOrder(ctx context.Context, id string) (*entity.Order, error)
	CancelOrder(ctx context.Context, id string) (*entity.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	ObserveOrders(customerID string) *observable.Stream[result.Result[[]*entity.Order]]
}
