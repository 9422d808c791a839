package repository

import (
	"context"

	"nearbasket/internal/domain/entity"
	"nearbasket/internal/domain/repository"
	"nearbasket/internal/infrastructure/cache"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

// cartRepository has no remote side: the cart lives in the cache only.
type cartRepository struct {
	cache *cache.DB
}

func NewCartRepository(cache *cache.DB) repository.CartRepository {
	return &cartRepository{cache: cache}
}

func (r *cartRepository) AddToCart(ctx context.Context, customerID string, product *entity.Product, quantity int) (*entity.CartItem, error) {
	return r.cache.AddToCart(ctx, &entity.CartItem{
		CustomerID:  customerID,
		StoreID:     product.StoreID,
		ProductID:   product.ID,
		ProductName: product.Name,
		ImageURL:    product.ImageURL,
		Quantity:    quantity,
		Price:       product.Price,
	})
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, customerID, productID string, quantity int) error {
	return r.cache.UpdateCartQuantity(ctx, customerID, productID, quantity)
}

func (r *cartRepository) RemoveFromCart(ctx context.Context, customerID, productID string) error {
	return r.cache.RemoveFromCart(ctx, customerID, productID)
}

func (r *cartRepository) ClearCart(ctx context.Context, customerID string) error {
	return r.cache.ClearCart(ctx, customerID)
}

func (r *cartRepository) GetCart(ctx context.Context, customerID string) (*entity.Cart, error) {
	return r.cache.GetCart(ctx, customerID)
}

func (r *cartRepository) ObserveCart(customerID string) *observable.Stream[result.Result[*entity.Cart]] {
	return r.cache.WatchCart(customerID)
}
