package repository

import (
	"context"

	"nearbasket/internal/domain/entity"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

// StoreRepository refreshes stores from the backend and serves them from the
// cache. Fetches fall back to cached data when the backend is unreachable.
type StoreRepository interface {
	FetchNearbyStores(ctx context.Context, lat, lng, radiusKm float64) ([]*entity.Store, error)
	SearchStores(ctx context.Context, query string) ([]*entity.Store, error)
	GetStore(ctx context.Context, id string) (*entity.Store, error)
	ObserveStores() *observable.Stream[result.Result[[]*entity.Store]]
	ObserveStore(id string) *observable.Stream[result.Result[*entity.Store]]
}

type ProductRepository interface {
	FetchProducts(ctx context.Context, storeID string) ([]*entity.Product, error)
	GetProduct(ctx context.Context, id string) (*entity.Product, error)
	// SearchProducts matches cached products by name or category.
	SearchProducts(ctx context.Context, storeID, query string) ([]*entity.Product, error)
	ObserveProducts(storeID string) *observable.Stream[result.Result[[]*entity.Product]]
}
