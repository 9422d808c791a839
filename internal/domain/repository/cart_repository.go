package repository

import (
	"context"

	"nearbasket/internal/domain/entity"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

// CartRepository keeps the cart on the device only. A cart holds products of
// a single store; adding from another store empties it first.
type CartRepository interface {
	AddToCart(ctx context.Context, customerID string, product *entity.Product, quantity int) (*entity.CartItem, error)
	// UpdateQuantity removes the product when quantity is zero or less.
	UpdateQuantity(ctx context.Context, customerID, productID string, quantity int) error
	RemoveFromCart(ctx context.Context, customerID, productID string) error
	ClearCart(ctx context.Context, customerID string) error
	GetCart(ctx context.Context, customerID string) (*entity.Cart, error)
	ObserveCart(customerID string) *observable.Stream[result.Result[*entity.Cart]]
}
