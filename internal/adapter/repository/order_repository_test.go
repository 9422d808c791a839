package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nearbasket/internal/domain/entity"
	"nearbasket/pkg/errors"
)

func newOrder(customerID, storeID string) *entity.Order {
	return &entity.Order{
		CustomerID:  customerID,
		StoreID:     storeID,
		TotalAmount: 130,
		Status:      entity.OrderStatusPending,
		Items: []*entity.OrderItem{
			{ProductID: "p1", ProductName: "Basmati Rice", Quantity: 1, UnitPrice: 120},
			{ProductID: "p2", ProductName: "Coriander", Quantity: 2, UnitPrice: 5},
		},
	}
}

func TestPlaceOrderCachesOrderAndLeavesCart(t *testing.T) {
	h := newHarness(t)
	orders := NewOrderRepository(h.gateway, h.cache)
	carts := NewCartRepository(h.cache)
	ctx := context.Background()

	_, err := carts.AddToCart(ctx, "c1", product("p1", "s1", 120), 1)
	require.NoError(t, err)

	placed, err := orders.PlaceOrder(ctx, newOrder("c1", "s1"))
	require.NoError(t, err)
	require.NotEmpty(t, placed.ID)
	assert.Len(t, placed.Items, 2)

	cached, err := h.cache.GetOrder(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, cached.Status)
	assert.Equal(t, 130.0, cached.ItemsTotal())

	cart, err := carts.GetCart(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestDeleteOrderRemovesItemsEverywhere(t *testing.T) {
	h := newHarness(t)
	orders := NewOrderRepository(h.gateway, h.cache)
	ctx := context.Background()

	placed, err := orders.PlaceOrder(ctx, newOrder("c1", "s1"))
	require.NoError(t, err)

	require.NoError(t, orders.DeleteOrder(ctx, placed.ID))

	n, err := h.cache.OrderItemCount(ctx, placed.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, _, err = h.gateway.GetOrder(ctx, placed.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestCancelOrderConfirmedByBackend(t *testing.T) {
	h := newHarness(t)
	orders := NewOrderRepository(h.gateway, h.cache)
	ctx := context.Background()

	placed, err := orders.PlaceOrder(ctx, newOrder("c1", "s1"))
	require.NoError(t, err)

	cancelled, err := orders.CancelOrder(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, cancelled.Status)
	assert.False(t, cancelled.PendingSync)

	cached, err := h.cache.GetOrder(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, cached.Status)
	assert.False(t, cached.PendingSync)
}

func TestCancelOrderRestoresStatusWhenBackendFails(t *testing.T) {
	h := newHarness(t)
	orders := NewOrderRepository(h.gateway, h.cache)
	ctx := context.Background()

	placed, err := orders.PlaceOrder(ctx, newOrder("c1", "s1"))
	require.NoError(t, err)

	h.goOffline()
	_, err = orders.CancelOrder(ctx, placed.ID)
	assert.True(t, errors.IsRemote(err))

	cached, err := h.cache.GetOrder(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, cached.Status)
	assert.False(t, cached.PendingSync)
}

func TestOnlyPendingOrdersCanBeCancelled(t *testing.T) {
	h := newHarness(t)
	orders := NewOrderRepository(h.gateway, h.cache)
	ctx := context.Background()

	placed, err := orders.PlaceOrder(ctx, newOrder("c1", "s1"))
	require.NoError(t, err)
	_, err = h.gateway.UpdateOrderStatus(ctx, placed.ID, entity.OrderStatusProcessing)
	require.NoError(t, err)

	fetched, err := orders.FetchOrders(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, fetched, 1)
	assert.Equal(t, entity.OrderStatusProcessing, fetched[0].Status)

	_, err = orders.CancelOrder(ctx, placed.ID)
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}

func TestFetchOrdersServesCacheWhenOffline(t *testing.T) {
	h := newHarness(t)
	orders := NewOrderRepository(h.gateway, h.cache)
	ctx := context.Background()

	_, err := orders.PlaceOrder(ctx, newOrder("c1", "s1"))
	require.NoError(t, err)

	h.goOffline()
	cached, err := orders.FetchOrders(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	_, err = orders.FetchOrders(ctx, "someone-else")
	assert.True(t, errors.IsRemote(err))
}
