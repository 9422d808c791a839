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

type productRepository struct {
	gateway *remote.Gateway
	cache   *cache.DB
}

func NewProductRepository(gateway *remote.Gateway, cache *cache.DB) repository.ProductRepository {
	return &productRepository{
		gateway: gateway,
		cache:   cache,
	}
}

// FetchProducts replaces the store's cached catalogue with the backend's.
func (r *productRepository) FetchProducts(ctx context.Context, storeID string) ([]*entity.Product, error) {
	dtos, err := r.gateway.FetchProducts(ctx, storeID)
	if err == nil {
		products := make([]*entity.Product, 0, len(dtos))
		for i := range dtos {
			products = append(products, dtos[i].ToEntity())
		}
		if err := r.cache.ReplaceProducts(ctx, storeID, products); err != nil {
			return nil, err
		}
		return products, nil
	}

	cached, cacheErr := r.cache.GetProducts(ctx, storeID)
	if cacheErr != nil || len(cached) == 0 {
		return nil, err
	}
	logger.Warn("serving %d cached products of store %s: %v", len(cached), storeID, err)
	return cached, nil
}

func (r *productRepository) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	dto, err := r.gateway.GetProduct(ctx, id)
	if err == nil {
		product := dto.ToEntity()
		if err := r.cache.UpsertProducts(ctx, []*entity.Product{product}); err != nil {
			return nil, err
		}
		return product, nil
	}
	if errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}

	cached, cacheErr := r.cache.GetProduct(ctx, id)
	if cacheErr != nil {
		return nil, err
	}
	return cached, nil
}

func (r *productRepository) SearchProducts(ctx context.Context, storeID, query string) ([]*entity.Product, error) {
	return r.cache.SearchProducts(ctx, storeID, query)
}

func (r *productRepository) ObserveProducts(storeID string) *observable.Stream[result.Result[[]*entity.Product]] {
	return r.cache.WatchProducts(storeID)
}
