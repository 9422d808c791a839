package cache

import (
	"context"

	"gorm.io/gorm"

	"nearbasket/internal/domain/entity"
	"nearbasket/pkg/errors"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

var orderTables = []string{tableOrders, tableOrderItems}

// ReplaceOrders swaps the customer's cached orders and their items for a
// fresh remote listing. Locally pending statuses are overwritten.
func (d *DB) ReplaceOrders(ctx context.Context, customerID string, orders []*entity.Order) error {
	orderRows := make([]orderRow, 0, len(orders))
	var itemRows []orderItemRow
	for _, o := range orders {
		row := newOrderRow(o)
		row.CustomerID = customerID
		row.PendingSync = false
		orderRows = append(orderRows, row)
		itemRows = append(itemRows, newOrderItemRows(o)...)
	}

	return d.Write(ctx, orderTables, func(tx *gorm.DB) error {
		stale := tx.Model(&orderRow{}).Select("id").Where("customer_id = ?", customerID)
		if err := tx.Where("order_id IN (?)", stale).Delete(&orderItemRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", customerID).Delete(&orderRow{}).Error; err != nil {
			return err
		}
		if err := upsert(tx, orderRows); err != nil {
			return err
		}
		return upsert(tx, itemRows)
	})
}

// SaveOrder stores one order together with its items.
func (d *DB) SaveOrder(ctx context.Context, order *entity.Order) error {
	row := newOrderRow(order)
	items := newOrderItemRows(order)
	return d.Write(ctx, orderTables, func(tx *gorm.DB) error {
		if err := upsert(tx, []orderRow{row}); err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&orderItemRow{}).Error; err != nil {
			return err
		}
		return upsert(tx, items)
	})
}

func (d *DB) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	db := d.Read(ctx)
	var row orderRow
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound("Order", err)
	}
	var items []orderItemRow
	if err := db.Where("order_id = ?", id).Find(&items).Error; err != nil {
		return nil, localError(err)
	}
	return row.entity(items), nil
}

func (d *DB) GetOrders(ctx context.Context, customerID string) ([]*entity.Order, error) {
	return listOrders(d.Read(ctx), customerID)
}

func listOrders(db *gorm.DB, customerID string) ([]*entity.Order, error) {
	var rows []orderRow
	if err := db.Where("customer_id = ?", customerID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, localError(err)
	}
	if len(rows) == 0 {
		return []*entity.Order{}, nil
	}

	ids := make([]string, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	var items []orderItemRow
	if err := db.Where("order_id IN ?", ids).Find(&items).Error; err != nil {
		return nil, localError(err)
	}

	orders := make([]*entity.Order, 0, len(rows))
	for i := range rows {
		orders = append(orders, rows[i].entity(items))
	}
	return orders, nil
}

// UpdateOrderStatus changes the cached status only. pending marks a status
// the backend has not confirmed yet.
func (d *DB) UpdateOrderStatus(ctx context.Context, id, status string, pending bool) error {
	return d.Write(ctx, []string{tableOrders}, func(tx *gorm.DB) error {
		res := tx.Model(&orderRow{}).Where("id = ?", id).
			Updates(map[string]interface{}{"status": status, "pending_sync": pending})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.NotFound("Order", nil)
		}
		return nil
	})
}

// DeleteOrder removes the order and its items together.
func (d *DB) DeleteOrder(ctx context.Context, id string) error {
	return d.Write(ctx, orderTables, func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&orderItemRow{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&orderRow{}).Error
	})
}

func (d *DB) OrderItemCount(ctx context.Context, orderID string) (int64, error) {
	var n int64
	if err := d.Read(ctx).Model(&orderItemRow{}).Where("order_id = ?", orderID).Count(&n).Error; err != nil {
		return 0, localError(err)
	}
	return n, nil
}

func (d *DB) WatchOrders(customerID string) *observable.Stream[result.Result[[]*entity.Order]] {
	return Watch(d, orderTables, func(ctx context.Context, db *gorm.DB) ([]*entity.Order, error) {
		return listOrders(db, customerID)
	})
}
