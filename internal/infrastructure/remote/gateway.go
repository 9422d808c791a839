package remote

import (
	"context"
	"time"

	"github.com/google/uuid"

	"nearbasket/internal/domain/entity"
	"nearbasket/pkg/errors"
	"nearbasket/pkg/logger"
	"nearbasket/pkg/utils"
)

// Gateway exposes typed per-table operations on top of a TableClient.
type Gateway struct {
	tables   TableClient
	now      func() time.Time
	pageSize int
}

func NewGateway(tables TableClient) *Gateway {
	return &Gateway{tables: tables, now: time.Now, pageSize: utils.MaxPageSize}
}

// selectAll reads every row matching q, one page at a time. Hosted backends
// cap the rows of a single response, so whole catalogues are paged.
func selectAll[T any](ctx context.Context, g *Gateway, table string, q Query) ([]T, error) {
	var all []T
	for p := utils.NewPaginationParams(1, g.pageSize); ; p = p.Next() {
		var page []T
		if err := g.tables.Select(ctx, table, q.Page(p), &page); err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < p.PageSize {
			return all, nil
		}
	}
}

// Stores

// FetchStores returns every store with an active subscription. Distance
// filtering happens on the device.
func (g *Gateway) FetchStores(ctx context.Context) ([]StoreDTO, error) {
	q := Where(Eq("subscription_status", entity.SubscriptionActive)).Order("name", false)
	return selectAll[StoreDTO](ctx, g, TableStores, q)
}

func (g *Gateway) SearchStores(ctx context.Context, query string) ([]StoreDTO, error) {
	var stores []StoreDTO
	q := Where(
		Eq("subscription_status", entity.SubscriptionActive),
		ILike("name", "%"+query+"%"),
	).Order("name", false)
	if err := g.tables.Select(ctx, TableStores, q, &stores); err != nil {
		return nil, err
	}
	return stores, nil
}

func (g *Gateway) GetStore(ctx context.Context, id string) (*StoreDTO, error) {
	var stores []StoreDTO
	if err := g.tables.Select(ctx, TableStores, Where(Eq("id", id)), &stores); err != nil {
		return nil, err
	}
	if len(stores) == 0 {
		return nil, errors.NotFound("Store", nil)
	}
	return &stores[0], nil
}

func (g *Gateway) UpdateStoreRating(ctx context.Context, storeID string, rating float64) error {
	patch := map[string]interface{}{"rating": rating, "updated_at": g.now().UTC()}
	return g.tables.Update(ctx, TableStores, Where(Eq("id", storeID)), patch, nil)
}

// Products

func (g *Gateway) FetchProducts(ctx context.Context, storeID string) ([]ProductDTO, error) {
	q := Where(Eq("store_id", storeID)).Order("name", false)
	return selectAll[ProductDTO](ctx, g, TableProducts, q)
}

func (g *Gateway) GetProduct(ctx context.Context, id string) (*ProductDTO, error) {
	var products []ProductDTO
	if err := g.tables.Select(ctx, TableProducts, Where(Eq("id", id)), &products); err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, errors.NotFound("Product", nil)
	}
	return &products[0], nil
}

// Customers

func (g *Gateway) GetCustomer(ctx context.Context, id string) (*CustomerDTO, error) {
	return g.findCustomer(ctx, Eq("id", id))
}

func (g *Gateway) GetCustomerByPhone(ctx context.Context, phone string) (*CustomerDTO, error) {
	return g.findCustomer(ctx, Eq("phone", phone))
}

func (g *Gateway) findCustomer(ctx context.Context, f Filter) (*CustomerDTO, error) {
	var customers []CustomerDTO
	if err := g.tables.Select(ctx, TableCustomers, Where(f).Order("created_at", false), &customers); err != nil {
		return nil, err
	}
	if len(customers) == 0 {
		return nil, errors.NotFound("Customer", nil)
	}
	return &customers[0], nil
}

func (g *Gateway) CreateCustomer(ctx context.Context, customer *CustomerDTO) error {
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	now := g.now().UTC()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	return g.tables.Insert(ctx, TableCustomers, customer)
}

func (g *Gateway) UpdateCustomer(ctx context.Context, customer *CustomerDTO) error {
	customer.UpdatedAt = g.now().UTC()
	return g.tables.Upsert(ctx, TableCustomers, customer, "id")
}

// Orders

// CreateOrder inserts the order and then its items. The backend offers no
// multi-table transaction here, so a failed items insert deletes the order
// again before the error is returned.
func (g *Gateway) CreateOrder(ctx context.Context, order *OrderDTO, items []OrderItemDTO) ([]OrderItemDTO, error) {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := g.now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	if err := g.tables.Insert(ctx, TableOrders, order); err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return items, nil
	}
	for i := range items {
		items[i].OrderID = order.ID
		if items[i].ID == "" {
			items[i].ID = uuid.New().String()
		}
	}
	if err := g.tables.Insert(ctx, TableOrderItems, &items); err != nil {
		if delErr := g.tables.Delete(ctx, TableOrders, Where(Eq("id", order.ID))); delErr != nil {
			logger.LogSyncError("order", "rollback "+order.ID, delErr)
		}
		return nil, err
	}
	return items, nil
}

func (g *Gateway) FetchOrders(ctx context.Context, customerID string) ([]OrderDTO, []OrderItemDTO, error) {
	var orders []OrderDTO
	q := Where(Eq("customer_id", customerID)).Order("created_at", true)
	if err := g.tables.Select(ctx, TableOrders, q, &orders); err != nil {
		return nil, nil, err
	}
	if len(orders) == 0 {
		return orders, nil, nil
	}

	ids := make([]string, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	items, err := g.fetchOrderItems(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return orders, items, nil
}

func (g *Gateway) GetOrder(ctx context.Context, id string) (*OrderDTO, []OrderItemDTO, error) {
	var orders []OrderDTO
	if err := g.tables.Select(ctx, TableOrders, Where(Eq("id", id)), &orders); err != nil {
		return nil, nil, err
	}
	if len(orders) == 0 {
		return nil, nil, errors.NotFound("Order", nil)
	}
	items, err := g.fetchOrderItems(ctx, []string{id})
	if err != nil {
		return nil, nil, err
	}
	return &orders[0], items, nil
}

func (g *Gateway) fetchOrderItems(ctx context.Context, orderIDs []string) ([]OrderItemDTO, error) {
	var items []OrderItemDTO
	if err := g.tables.Select(ctx, TableOrderItems, Where(In("order_id", orderIDs)), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (g *Gateway) UpdateOrderStatus(ctx context.Context, id, status string) (*OrderDTO, error) {
	var updated []OrderDTO
	patch := map[string]interface{}{"status": status, "updated_at": g.now().UTC()}
	if err := g.tables.Update(ctx, TableOrders, Where(Eq("id", id)), patch, &updated); err != nil {
		return nil, err
	}
	if len(updated) == 0 {
		return nil, errors.NotFound("Order", nil)
	}
	return &updated[0], nil
}

func (g *Gateway) DeleteOrder(ctx context.Context, id string) error {
	if err := g.tables.Delete(ctx, TableOrderItems, Where(Eq("order_id", id))); err != nil {
		return err
	}
	return g.tables.Delete(ctx, TableOrders, Where(Eq("id", id)))
}

// Addresses

func (g *Gateway) FetchAddresses(ctx context.Context, customerID string) ([]AddressDTO, error) {
	var addresses []AddressDTO
	q := Where(Eq("customer_id", customerID)).Order("created_at", false)
	if err := g.tables.Select(ctx, TableAddresses, q, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (g *Gateway) InsertAddress(ctx context.Context, address *AddressDTO) error {
	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	now := g.now().UTC()
	address.CreatedAt = now
	address.UpdatedAt = now
	return g.tables.Insert(ctx, TableAddresses, address)
}

func (g *Gateway) UpdateAddress(ctx context.Context, address *AddressDTO) error {
	address.UpdatedAt = g.now().UTC()
	return g.tables.Upsert(ctx, TableAddresses, address, "id")
}

func (g *Gateway) DeleteAddress(ctx context.Context, id string) error {
	return g.tables.Delete(ctx, TableAddresses, Where(Eq("id", id)))
}

// ClearDefaultAddress unsets the default flag on every address of the customer.
func (g *Gateway) ClearDefaultAddress(ctx context.Context, customerID string) error {
	patch := map[string]interface{}{"is_default": false, "updated_at": g.now().UTC()}
	q := Where(Eq("customer_id", customerID), Eq("is_default", true))
	return g.tables.Update(ctx, TableAddresses, q, patch, nil)
}

func (g *Gateway) MarkDefaultAddress(ctx context.Context, id string) error {
	patch := map[string]interface{}{"is_default": true, "updated_at": g.now().UTC()}
	return g.tables.Update(ctx, TableAddresses, Where(Eq("id", id)), patch, nil)
}

// Reviews

func (g *Gateway) FetchStoreReviews(ctx context.Context, storeID string) ([]ReviewDTO, error) {
	var reviews []ReviewDTO
	q := Where(Eq("store_id", storeID)).Order("created_at", true)
	if err := g.tables.Select(ctx, TableReviews, q, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// FetchCustomerReview returns the customer's review of the store, or nil.
func (g *Gateway) FetchCustomerReview(ctx context.Context, storeID, customerID string) (*ReviewDTO, error) {
	var reviews []ReviewDTO
	q := Where(Eq("store_id", storeID), Eq("customer_id", customerID)).Order("created_at", true)
	q.Limit = 1
	if err := g.tables.Select(ctx, TableReviews, q, &reviews); err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, nil
	}
	return &reviews[0], nil
}

func (g *Gateway) InsertReview(ctx context.Context, review *ReviewDTO) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	now := g.now().UTC()
	review.CreatedAt = now
	review.UpdatedAt = now
	return g.tables.Insert(ctx, TableReviews, review)
}

func (g *Gateway) UpdateReview(ctx context.Context, review *ReviewDTO) error {
	var updated []ReviewDTO
	patch := map[string]interface{}{
		"rating":        review.Rating,
		"comment":       review.Comment,
		"customer_name": review.CustomerName,
		"updated_at":    g.now().UTC(),
	}
	if err := g.tables.Update(ctx, TableReviews, Where(Eq("id", review.ID)), patch, &updated); err != nil {
		return err
	}
	if len(updated) == 0 {
		return errors.NotFound("Review", nil)
	}
	*review = updated[0]
	return nil
}

func (g *Gateway) DeleteReview(ctx context.Context, id string) error {
	return g.tables.Delete(ctx, TableReviews, Where(Eq("id", id)))
}
