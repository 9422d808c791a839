package repository

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/singleflight"

	"nearbasket/internal/domain/entity"
	"nearbasket/internal/domain/repository"
	"nearbasket/internal/infrastructure/cache"
	"nearbasket/internal/infrastructure/remote"
	"nearbasket/pkg/errors"
	"nearbasket/pkg/logger"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
	"nearbasket/pkg/utils"
)

type storeRepository struct {
	gateway *remote.Gateway
	cache   *cache.DB
	refresh singleflight.Group
}

func NewStoreRepository(gateway *remote.Gateway, cache *cache.DB) repository.StoreRepository {
	return &storeRepository{
		gateway: gateway,
		cache:   cache,
	}
}

// refreshStores downloads the active stores and mirrors them. Concurrent
// callers share one download, which runs detached from any single caller's
// cancellation; the table drivers bound it with the remote timeout. A failed
// mirror is logged and the downloaded stores are still returned.
func (r *storeRepository) refreshStores(ctx context.Context) ([]*entity.Store, error) {
	shared := context.WithoutCancel(ctx)
	ch := r.refresh.DoChan("stores", func() (interface{}, error) {
		dtos, err := r.gateway.FetchStores(shared)
		if err != nil {
			return nil, err
		}
		stores := storeEntities(dtos)
		r.mirror(shared, stores)
		return stores, nil
	})

	select {
	case <-ctx.Done():
		return nil, errors.Timeout("Loading stores was cancelled", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]*entity.Store), nil
	}
}

func (r *storeRepository) mirror(ctx context.Context, stores []*entity.Store) {
	if err := r.cache.UpsertStores(ctx, stores); err != nil {
		logger.LogSyncError("stores", "mirror", err)
	}
}

// FetchNearbyStores returns the active stores within radiusKm of the given
// point, nearest first. When the backend fails, the same filter runs over
// the cached stores.
func (r *storeRepository) FetchNearbyStores(ctx context.Context, lat, lng, radiusKm float64) ([]*entity.Store, error) {
	stores, err := r.refreshStores(ctx)
	if err == nil {
		return nearby(stores, lat, lng, radiusKm), nil
	}
	if !canFallBack(err) {
		return nil, err
	}

	cached, cacheErr := r.cache.GetStores(ctx)
	if cacheErr != nil {
		logger.LogSyncError("stores", "read cache", cacheErr)
		return nil, err
	}
	stale := nearby(cached, lat, lng, radiusKm)
	if len(stale) == 0 {
		return nil, err
	}
	logger.Warn("serving %d cached stores: %v", len(stale), err)
	return stale, nil
}

func (r *storeRepository) SearchStores(ctx context.Context, query string) ([]*entity.Store, error) {
	query = strings.TrimSpace(query)

	dtos, err := r.gateway.SearchStores(ctx, query)
	if err == nil {
		stores := storeEntities(dtos)
		r.mirror(ctx, stores)
		return stores, nil
	}
	if !canFallBack(err) {
		return nil, err
	}

	cached, cacheErr := r.cache.SearchStores(ctx, query)
	if cacheErr != nil {
		logger.LogSyncError("stores", "read cache", cacheErr)
		return nil, err
	}
	if len(cached) == 0 {
		return nil, err
	}
	logger.Warn("serving cached search results for %q: %v", query, err)
	return cached, nil
}

func (r *storeRepository) GetStore(ctx context.Context, id string) (*entity.Store, error) {
	dto, err := r.gateway.GetStore(ctx, id)
	if err == nil {
		store := dto.ToEntity()
		r.mirror(ctx, []*entity.Store{store})
		return store, nil
	}
	if errors.Is(err, errors.CodeNotFound) || !canFallBack(err) {
		return nil, err
	}

	cached, cacheErr := r.cache.GetStore(ctx, id)
	if cacheErr != nil {
		return nil, err
	}
	return cached, nil
}

func (r *storeRepository) ObserveStores() *observable.Stream[result.Result[[]*entity.Store]] {
	return r.cache.WatchStores()
}

func (r *storeRepository) ObserveStore(id string) *observable.Stream[result.Result[*entity.Store]] {
	return r.cache.WatchStore(id)
}

// nearby keeps the stores within radiusKm and sorts them by distance. The
// input is not modified.
func nearby(stores []*entity.Store, lat, lng, radiusKm float64) []*entity.Store {
	out := make([]*entity.Store, 0, len(stores))
	for _, s := range stores {
		d := utils.HaversineKm(lat, lng, s.Latitude, s.Longitude)
		if d > radiusKm {
			continue
		}
		store := *s
		store.DistanceKm = d
		out = append(out, &store)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out
}

func storeEntities(dtos []remote.StoreDTO) []*entity.Store {
	stores := make([]*entity.Store, 0, len(dtos))
	for i := range dtos {
		stores = append(stores, dtos[i].ToEntity())
	}
	return stores
}

// canFallBack reports whether a failed refresh may be answered from the
// cache. Local storage failures may not: the cache is what failed.
func canFallBack(err error) bool {
	return !errors.Is(err, errors.CodeLocalStorage)
}
