package cache

import (
	"context"

	"gorm.io/gorm"

	"nearbasket/internal/domain/entity"
	"nearbasket/pkg/errors"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

// ReplaceAddresses swaps the customer's cached addresses in one transaction,
// so readers see either the old set or the new one.
func (d *DB) ReplaceAddresses(ctx context.Context, customerID string, addresses []*entity.Address) error {
	rows := make([]addressRow, 0, len(addresses))
	for _, a := range addresses {
		row := newAddressRow(a)
		row.CustomerID = customerID
		rows = append(rows, row)
	}
	return d.Write(ctx, []string{tableAddresses}, func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", customerID).Delete(&addressRow{}).Error; err != nil {
			return err
		}
		return upsert(tx, rows)
	})
}

// UpsertAddress stores one address. A default address clears the flag on the
// customer's other addresses in the same transaction.
func (d *DB) UpsertAddress(ctx context.Context, address *entity.Address) error {
	row := newAddressRow(address)
	return d.Write(ctx, []string{tableAddresses}, func(tx *gorm.DB) error {
		if row.IsDefault {
			if err := clearDefault(tx, row.CustomerID); err != nil {
				return err
			}
		}
		return upsert(tx, []addressRow{row})
	})
}

// DeleteAddress removes one address. When successorID is set it inherits the
// default flag in the same transaction, so deleting the default never leaves
// the customer without one.
func (d *DB) DeleteAddress(ctx context.Context, id, successorID string) error {
	return d.Write(ctx, []string{tableAddresses}, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Delete(&addressRow{}).Error; err != nil {
			return err
		}
		if successorID == "" {
			return nil
		}
		res := tx.Model(&addressRow{}).Where("id = ?", successorID).Update("is_default", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.NotFound("Address", nil)
		}
		return nil
	})
}

// SetDefaultAddress clears the customer's default and marks addressID in one
// transaction. No reader observes zero or two defaults.
func (d *DB) SetDefaultAddress(ctx context.Context, customerID, addressID string) error {
	return d.Write(ctx, []string{tableAddresses}, func(tx *gorm.DB) error {
		if err := clearDefault(tx, customerID); err != nil {
			return err
		}
		res := tx.Model(&addressRow{}).
			Where("id = ? AND customer_id = ?", addressID, customerID).
			Update("is_default", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.NotFound("Address", nil)
		}
		return nil
	})
}

func clearDefault(tx *gorm.DB, customerID string) error {
	return tx.Model(&addressRow{}).
		Where("customer_id = ? AND is_default = ?", customerID, true).
		Update("is_default", false).Error
}

func (d *DB) GetAddress(ctx context.Context, id string) (*entity.Address, error) {
	var row addressRow
	if err := d.Read(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound("Address", err)
	}
	return row.entity(), nil
}

// GetAddresses lists the customer's addresses, default first.
func (d *DB) GetAddresses(ctx context.Context, customerID string) ([]*entity.Address, error) {
	return listAddresses(d.Read(ctx), customerID)
}

func (d *DB) GetDefaultAddress(ctx context.Context, customerID string) (*entity.Address, error) {
	var row addressRow
	err := d.Read(ctx).Where("customer_id = ? AND is_default = ?", customerID, true).First(&row).Error
	if err != nil {
		return nil, notFound("Default address", err)
	}
	return row.entity(), nil
}

func listAddresses(db *gorm.DB, customerID string) ([]*entity.Address, error) {
	var rows []addressRow
	err := db.Where("customer_id = ?", customerID).
		Order("is_default DESC").Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, localError(err)
	}
	addresses := make([]*entity.Address, 0, len(rows))
	for i := range rows {
		addresses = append(addresses, rows[i].entity())
	}
	return addresses, nil
}

func (d *DB) WatchAddresses(customerID string) *observable.Stream[result.Result[[]*entity.Address]] {
	return Watch(d, []string{tableAddresses}, func(ctx context.Context, db *gorm.DB) ([]*entity.Address, error) {
		return listAddresses(db, customerID)
	})
}
