package usecase

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"nearbasket/internal/domain/entity"
	"nearbasket/internal/domain/repository"
	"nearbasket/internal/infrastructure/ratelimit"
	"nearbasket/internal/infrastructure/realtime"
	"nearbasket/internal/infrastructure/remote"
	"nearbasket/pkg/errors"
	"nearbasket/pkg/logger"
)

// Throttle decides whether subject may perform action now.
type Throttle interface {
	Allow(subject, action string) (bool, time.Duration)
}

// LastLocation is where nearby stores are refreshed in the background.
type LastLocation interface {
	LastKnownLocation(ctx context.Context) (entity.Coordinate, bool, error)
}

// SyncUseCase keeps the cache warm: a periodic refresh plus targeted
// refreshes driven by the realtime change feed.
type SyncUseCase struct {
	storeRepo   repository.StoreRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	addressRepo repository.AddressRepository
	reviewRepo  repository.ReviewRepository
	authRepo    repository.AuthRepository
	location    LastLocation
	throttle    Throttle
	radiusKm    float64
	interval    time.Duration
}

func NewSyncUseCase(
	storeRepo repository.StoreRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	addressRepo repository.AddressRepository,
	reviewRepo repository.ReviewRepository,
	authRepo repository.AuthRepository,
	location LastLocation,
	throttle Throttle,
	radiusKm float64,
	interval time.Duration,
) *SyncUseCase {
	return &SyncUseCase{
		storeRepo:   storeRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		addressRepo: addressRepo,
		reviewRepo:  reviewRepo,
		authRepo:    authRepo,
		location:    location,
		throttle:    throttle,
		radiusKm:    radiusKm,
		interval:    interval,
	}
}

// RefreshOnce refreshes the stores around the last known location and, when
// signed in, the customer's orders and addresses. The refreshes run
// concurrently and do not cancel each other; the first error is returned.
func (uc *SyncUseCase) RefreshOnce(ctx context.Context) error {
	var g errgroup.Group

	if c, ok, err := uc.location.LastKnownLocation(ctx); err != nil {
		logger.Warn("background refresh: no location: %v", err)
	} else if ok {
		g.Go(func() error {
			_, err := uc.storeRepo.FetchNearbyStores(ctx, c.Latitude, c.Longitude, uc.radiusKm)
			return err
		})
	}

	if customerID, err := uc.authRepo.CurrentCustomerID(ctx); err == nil {
		g.Go(func() error {
			_, err := uc.orderRepo.FetchOrders(ctx, customerID)
			return err
		})
		g.Go(func() error {
			_, err := uc.addressRepo.FetchAddresses(ctx, customerID)
			return err
		})
	}

	return g.Wait()
}

// StartRefreshJob refreshes immediately and then every interval until ctx
// is done.
func (uc *SyncUseCase) StartRefreshJob(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(uc.interval)
		defer ticker.Stop()

		for {
			if err := uc.RefreshOnce(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("background refresh failed: %v", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// HandleChange refreshes whatever a realtime change made stale. Orders
// refreshes are throttled per customer since one checkout emits several
// changes.
func (uc *SyncUseCase) HandleChange(ctx context.Context, c realtime.Change) error {
	switch c.Table {
	case remote.TableOrders, remote.TableOrderItems:
		customerID, err := uc.authRepo.CurrentCustomerID(ctx)
		if err != nil {
			return nil
		}
		if ok, wait := uc.throttle.Allow(customerID, ratelimit.ActionRefreshOrders); !ok {
			logger.Debug("orders refresh throttled for %s", wait)
			return nil
		}
		_, err = uc.orderRepo.FetchOrders(ctx, customerID)
		return err

	case remote.TableStores:
		id := c.ID()
		if id == "" {
			return nil
		}
		_, err := uc.storeRepo.GetStore(ctx, id)
		if errors.Is(err, errors.CodeNotFound) {
			return nil
		}
		return err

	case remote.TableProducts:
		if storeID := c.StoreID(); storeID != "" {
			_, err := uc.productRepo.FetchProducts(ctx, storeID)
			return err
		}

	case remote.TableReviews:
		if storeID := c.StoreID(); storeID != "" {
			_, err := uc.reviewRepo.FetchStoreReviews(ctx, storeID)
			return err
		}

	case remote.TableAddresses:
		customerID, err := uc.authRepo.CurrentCustomerID(ctx)
		if err != nil {
			return nil
		}
		_, err = uc.addressRepo.FetchAddresses(ctx, customerID)
		return err
	}
	return nil
}

// Tables lists the tables whose changes HandleChange acts on.
func (uc *SyncUseCase) Tables() []string {
	return []string{
		remote.TableStores,
		remote.TableProducts,
		remote.TableOrders,
		remote.TableAddresses,
		remote.TableReviews,
	}
}
