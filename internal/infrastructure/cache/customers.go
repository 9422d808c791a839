package cache

import (
	"context"

	"gorm.io/gorm"

	"nearbasket/internal/domain/entity"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

func (d *DB) UpsertCustomer(ctx context.Context, customer *entity.Customer) error {
	row := newCustomerRow(customer)
	return d.Write(ctx, []string{tableCustomers}, func(tx *gorm.DB) error {
		return upsert(tx, []customerRow{row})
	})
}

func (d *DB) GetCustomer(ctx context.Context, id string) (*entity.Customer, error) {
	return getCustomer(d.Read(ctx), id)
}

func getCustomer(db *gorm.DB, id string) (*entity.Customer, error) {
	var row customerRow
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound("Customer", err)
	}
	return row.entity(), nil
}

func (d *DB) WatchCustomer(id string) *observable.Stream[result.Result[*entity.Customer]] {
	return Watch(d, []string{tableCustomers}, func(ctx context.Context, db *gorm.DB) (*entity.Customer, error) {
		return getCustomer(db, id)
	})
}

// ClearCustomerData drops everything cached for the customer: profile, cart,
// orders with their items and addresses. Stores, products and reviews are
// shared and stay.
func (d *DB) ClearCustomerData(ctx context.Context, customerID string) error {
	tables := []string{tableCustomers, tableCart, tableOrders, tableOrderItems, tableAddresses}
	return d.Write(ctx, tables, func(tx *gorm.DB) error {
		orders := tx.Model(&orderRow{}).Select("id").Where("customer_id = ?", customerID)
		if err := tx.Where("order_id IN (?)", orders).Delete(&orderItemRow{}).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{&orderRow{}, &cartItemRow{}, &addressRow{}} {
			if err := tx.Where("customer_id = ?", customerID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", customerID).Delete(&customerRow{}).Error
	})
}
