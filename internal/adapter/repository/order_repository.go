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

type orderRepository struct {
	gateway *remote.Gateway
	cache   *cache.DB
}

func NewOrderRepository(gateway *remote.Gateway, cache *cache.DB) repository.OrderRepository {
	return &orderRepository{
		gateway: gateway,
		cache:   cache,
	}
}

// PlaceOrder creates the order and its items remotely, then caches both in
// one local transaction. A failed local mirror is logged only: the order
// exists and the next FetchOrders caches it.
func (r *orderRepository) PlaceOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	dto := remote.NewOrderDTO(order)
	items, err := r.gateway.CreateOrder(ctx, dto, remote.NewOrderItemDTOs(order.Items))
	if err != nil {
		return nil, err
	}

	placed := dto.ToEntity(items)
	if err := r.cache.SaveOrder(ctx, placed); err != nil {
		logger.LogSyncError("order", "cache "+placed.ID, err)
	}
	return placed, nil
}

// FetchOrders replaces the customer's cached orders. Statuses applied
// locally and not yet confirmed are overwritten by the backend's.
func (r *orderRepository) FetchOrders(ctx context.Context, customerID string) ([]*entity.Order, error) {
	dtos, items, err := r.gateway.FetchOrders(ctx, customerID)
	if err == nil {
		orders := make([]*entity.Order, 0, len(dtos))
		for i := range dtos {
			orders = append(orders, dtos[i].ToEntity(items))
		}
		if err := r.cache.ReplaceOrders(ctx, customerID, orders); err != nil {
			return nil, err
		}
		return orders, nil
	}

	cached, cacheErr := r.cache.GetOrders(ctx, customerID)
	if cacheErr != nil || len(cached) == 0 {
		return nil, err
	}
	logger.Warn("serving %d cached orders: %v", len(cached), err)
	return cached, nil
}

func (r *orderRepository) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	dto, items, err := r.gateway.GetOrder(ctx, id)
	if err == nil {
		order := dto.ToEntity(items)
		if err := r.cache.SaveOrder(ctx, order); err != nil {
			return nil, err
		}
		return order, nil
	}
	if errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}

	cached, cacheErr := r.cache.GetOrder(ctx, id)
	if cacheErr != nil {
		return nil, err
	}
	return cached, nil
}

// CancelOrder marks the cached order cancelled and pending before asking the
// backend. The backend's answer clears the pending flag; a failure restores
// the previous status.
func (r *orderRepository) CancelOrder(ctx context.Context, id string) (*entity.Order, error) {
	order, err := r.cache.GetOrder(ctx, id)
	if errors.Is(err, errors.CodeNotFound) {
		if order, err = r.GetOrder(ctx, id); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if !order.CanCancel() {
		return nil, errors.BadRequest("Only pending orders can be cancelled", nil)
	}
	previous := order.Status

	if err := r.cache.UpdateOrderStatus(ctx, id, entity.OrderStatusCancelled, true); err != nil {
		return nil, err
	}

	updated, err := r.gateway.UpdateOrderStatus(ctx, id, entity.OrderStatusCancelled)
	if err != nil {
		if rbErr := r.cache.UpdateOrderStatus(ctx, id, previous, false); rbErr != nil {
			logger.LogSyncError("order", "restore status of "+id, rbErr)
		}
		return nil, err
	}

	if err := r.cache.UpdateOrderStatus(ctx, id, updated.Status, false); err != nil {
		logger.LogSyncError("order", "confirm status of "+id, err)
	}
	order.Status = updated.Status
	order.UpdatedAt = updated.UpdatedAt
	order.PendingSync = false
	return order, nil
}

// DeleteOrder removes the order and its items remotely, then locally.
func (r *orderRepository) DeleteOrder(ctx context.Context, id string) error {
	if err := r.gateway.DeleteOrder(ctx, id); err != nil {
		return err
	}
	return r.cache.DeleteOrder(ctx, id)
}

func (r *orderRepository) ObserveOrders(customerID string) *observable.Stream[result.Result[[]*entity.Order]] {
	return r.cache.WatchOrders(customerID)
}
