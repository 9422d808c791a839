package remote

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"nearbasket/internal/domain/entity"
	"nearbasket/pkg/errors"
)

func newSQLTables(t *testing.T) *SQLTables {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "remote.db")), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, MigrateSQL(db))
	return NewSQLTables(db)
}

// failingInserts fails every insert into one table.
type failingInserts struct {
	TableClient
	table string
}

func (f failingInserts) Insert(ctx context.Context, table string, rows interface{}) error {
	if table == f.table {
		return errors.Remote("insert failed", 500, nil)
	}
	return f.TableClient.Insert(ctx, table, rows)
}

func seedStores(t *testing.T, tables TableClient, stores ...StoreDTO) {
	t.Helper()
	require.NoError(t, tables.Insert(context.Background(), TableStores, &stores))
}

func TestSearchStoresIsCaseInsensitiveAndActiveOnly(t *testing.T) {
	tables := newSQLTables(t)
	gw := NewGateway(tables)
	seedStores(t, tables,
		StoreDTO{ID: "s1", Name: "Fresh Mart", SubscriptionStatus: entity.SubscriptionActive},
		StoreDTO{ID: "s2", Name: "FRESHLY Baked", SubscriptionStatus: entity.SubscriptionActive},
		StoreDTO{ID: "s3", Name: "Fresh Closed", SubscriptionStatus: entity.SubscriptionExpired},
		StoreDTO{ID: "s4", Name: "Corner Shop", SubscriptionStatus: entity.SubscriptionActive},
	)

	stores, err := gw.SearchStores(context.Background(), "fresh")
	require.NoError(t, err)

	ids := make([]string, 0, len(stores))
	for _, s := range stores {
		ids = append(ids, s.ID)
	}
	// Ordering is the backend's column order, which is byte order in SQLite.
	assert.ElementsMatch(t, []string{"s1", "s2"}, ids)
}

func TestGetStoreNotFound(t *testing.T) {
	gw := NewGateway(newSQLTables(t))

	_, err := gw.GetStore(context.Background(), "missing")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestCreateOrderAndFetchWithItems(t *testing.T) {
	gw := NewGateway(newSQLTables(t))
	ctx := context.Background()

	order := &OrderDTO{CustomerID: "c1", StoreID: "s1", TotalAmount: 130, Status: entity.OrderStatusPending}
	items := []OrderItemDTO{
		{ProductID: "p1", ProductName: "Milk", Quantity: 2, UnitPrice: 30},
		{ProductID: "p2", ProductName: "Bread", Quantity: 1, UnitPrice: 40},
	}
	stored, err := gw.CreateOrder(ctx, order, items)
	require.NoError(t, err)
	require.NotEmpty(t, order.ID)
	require.Len(t, stored, 2)
	assert.Equal(t, order.ID, stored[0].OrderID)

	orders, fetchedItems, err := gw.FetchOrders(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, orders, 1)

	got := orders[0].ToEntity(fetchedItems)
	assert.Len(t, got.Items, 2)
	assert.Equal(t, 100.0, got.ItemsTotal())
}

func TestCreateOrderDeletesOrderWhenItemsFail(t *testing.T) {
	tables := newSQLTables(t)
	gw := NewGateway(failingInserts{TableClient: tables, table: TableOrderItems})
	ctx := context.Background()

	order := &OrderDTO{CustomerID: "c1", StoreID: "s1", Status: entity.OrderStatusPending}
	_, err := gw.CreateOrder(ctx, order, []OrderItemDTO{{ProductID: "p1", Quantity: 1, UnitPrice: 10}})
	require.Error(t, err)

	var orders []OrderDTO
	require.NoError(t, tables.Select(ctx, TableOrders, Query{}, &orders))
	assert.Empty(t, orders)
}

func TestDeleteOrderRemovesItems(t *testing.T) {
	tables := newSQLTables(t)
	gw := NewGateway(tables)
	ctx := context.Background()

	order := &OrderDTO{CustomerID: "c1", StoreID: "s1", Status: entity.OrderStatusPending}
	_, err := gw.CreateOrder(ctx, order, []OrderItemDTO{{ProductID: "p1", Quantity: 1, UnitPrice: 10}})
	require.NoError(t, err)

	require.NoError(t, gw.DeleteOrder(ctx, order.ID))

	var items []OrderItemDTO
	require.NoError(t, tables.Select(ctx, TableOrderItems, Query{}, &items))
	assert.Empty(t, items)
	_, _, err = gw.GetOrder(ctx, order.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestUpdateOrderStatusReturnsRow(t *testing.T) {
	gw := NewGateway(newSQLTables(t))
	ctx := context.Background()

	order := &OrderDTO{CustomerID: "c1", StoreID: "s1", Status: entity.OrderStatusPending}
	_, err := gw.CreateOrder(ctx, order, nil)
	require.NoError(t, err)

	updated, err := gw.UpdateOrderStatus(ctx, order.ID, entity.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, updated.Status)

	_, err = gw.UpdateOrderStatus(ctx, "missing", entity.OrderStatusCancelled)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestDefaultAddressSwitch(t *testing.T) {
	tables := newSQLTables(t)
	gw := NewGateway(tables)
	ctx := context.Background()

	home := &AddressDTO{CustomerID: "c1", AddressType: entity.AddressTypeHome, IsDefault: true}
	work := &AddressDTO{CustomerID: "c1", AddressType: entity.AddressTypeWork}
	require.NoError(t, gw.InsertAddress(ctx, home))
	require.NoError(t, gw.InsertAddress(ctx, work))

	require.NoError(t, gw.ClearDefaultAddress(ctx, "c1"))
	require.NoError(t, gw.MarkDefaultAddress(ctx, work.ID))

	addresses, err := gw.FetchAddresses(ctx, "c1")
	require.NoError(t, err)
	defaults := 0
	for _, a := range addresses {
		if a.IsDefault {
			defaults++
			assert.Equal(t, work.ID, a.ID)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestReviewUniquePerStoreAndCustomer(t *testing.T) {
	gw := NewGateway(newSQLTables(t))
	ctx := context.Background()

	first := &ReviewDTO{StoreID: "s1", CustomerID: "c1", CustomerName: "Asha", Rating: 5}
	require.NoError(t, gw.InsertReview(ctx, first))

	dup := &ReviewDTO{StoreID: "s1", CustomerID: "c1", CustomerName: "Asha", Rating: 2}
	err := gw.InsertReview(ctx, dup)
	assert.True(t, errors.Is(err, errors.CodeConflict), "got %v", err)

	existing, err := gw.FetchCustomerReview(ctx, "s1", "c1")
	require.NoError(t, err)
	require.NotNil(t, existing)

	existing.Rating = 3
	existing.Comment = "Changed my mind"
	require.NoError(t, gw.UpdateReview(ctx, existing))
	assert.Equal(t, 3, existing.Rating)
	assert.Equal(t, first.ID, existing.ID)

	none, err := gw.FetchCustomerReview(ctx, "s1", "c2")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestUpdateStoreRating(t *testing.T) {
	tables := newSQLTables(t)
	gw := NewGateway(tables)
	ctx := context.Background()
	seedStores(t, tables, StoreDTO{ID: "s1", Name: "Fresh Mart", SubscriptionStatus: entity.SubscriptionActive})

	require.NoError(t, gw.UpdateStoreRating(ctx, "s1", 4.5))

	store, err := gw.GetStore(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 4.5, store.Rating)
}

func TestCustomerByPhoneAndUpsert(t *testing.T) {
	gw := NewGateway(newSQLTables(t))
	ctx := context.Background()

	_, err := gw.GetCustomerByPhone(ctx, "+919876543210")
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	customer := &CustomerDTO{Phone: "+919876543210"}
	require.NoError(t, gw.CreateCustomer(ctx, customer))

	customer.Name = "Asha"
	require.NoError(t, gw.UpdateCustomer(ctx, customer))

	got, err := gw.GetCustomerByPhone(ctx, "+919876543210")
	require.NoError(t, err)
	assert.Equal(t, customer.ID, got.ID)
	assert.Equal(t, "Asha", got.Name)
}

func TestSQLTablesRefusesUnfilteredWrites(t *testing.T) {
	tables := newSQLTables(t)
	ctx := context.Background()

	err := tables.Update(ctx, TableStores, Query{}, map[string]interface{}{"rating": 0}, nil)
	assert.True(t, errors.Is(err, errors.CodeInternal))
	assert.True(t, errors.Is(tables.Delete(ctx, TableStores, Query{}), errors.CodeInternal))
}

func TestSQLTablesPaging(t *testing.T) {
	tables := newSQLTables(t)
	seedStores(t, tables,
		StoreDTO{ID: "s1", Name: "A", SubscriptionStatus: entity.SubscriptionActive},
		StoreDTO{ID: "s2", Name: "B", SubscriptionStatus: entity.SubscriptionActive},
		StoreDTO{ID: "s3", Name: "C", SubscriptionStatus: entity.SubscriptionActive},
	)

	var page []StoreDTO
	q := Where(Eq("subscription_status", entity.SubscriptionActive)).Order("name", true)
	q.Limit = 2
	q.Offset = 1
	require.NoError(t, tables.Select(context.Background(), TableStores, q, &page))

	require.Len(t, page, 2)
	assert.Equal(t, "B", page[0].Name)
	assert.Equal(t, "A", page[1].Name)
}

func TestFetchStoresPagesThroughEveryRow(t *testing.T) {
	tables := newSQLTables(t)
	gw := NewGateway(tables)
	gw.pageSize = 2
	seedStores(t, tables,
		StoreDTO{ID: "s1", Name: "A", SubscriptionStatus: entity.SubscriptionActive},
		StoreDTO{ID: "s2", Name: "B", SubscriptionStatus: entity.SubscriptionActive},
		StoreDTO{ID: "s3", Name: "C", SubscriptionStatus: entity.SubscriptionActive},
		StoreDTO{ID: "s4", Name: "D", SubscriptionStatus: entity.SubscriptionActive},
		StoreDTO{ID: "s5", Name: "E", SubscriptionStatus: entity.SubscriptionActive},
	)

	stores, err := gw.FetchStores(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(stores))
	for _, s := range stores {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, names)
}

type slowTables struct {
	TableClient
}

func (s slowTables) Select(ctx context.Context, table string, q Query, out interface{}) error {
	<-ctx.Done()
	return TransportError(ctx.Err())
}

func TestWithTimeoutBoundsCalls(t *testing.T) {
	g := NewGateway(WithTimeout(slowTables{}, 20*time.Millisecond))

	_, err := g.FetchStores(context.Background())
	assert.True(t, errors.Is(err, errors.CodeTimeout))
}
