package cache

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"nearbasket/internal/domain/entity"
	"nearbasket/pkg/errors"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

// AddToCart adds item.Quantity of a product to the customer's cart. Items
// from any other store are removed first, in the same transaction, so a cart
// never spans two stores. An existing line for the product is incremented, up
// to entity.MaxCartQuantity, and keeps its original price.
func (d *DB) AddToCart(ctx context.Context, item *entity.CartItem) (*entity.CartItem, error) {
	var saved cartItemRow
	err := d.Write(ctx, []string{tableCart}, func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ? AND store_id <> ?", item.CustomerID, item.StoreID).
			Delete(&cartItemRow{}).Error; err != nil {
			return err
		}

		err := tx.Where("customer_id = ? AND product_id = ?", item.CustomerID, item.ProductID).First(&saved).Error
		switch {
		case err == nil:
			saved.Quantity = min(saved.Quantity+item.Quantity, entity.MaxCartQuantity)
			return tx.Model(&saved).Update("quantity", saved.Quantity).Error
		case stderrors.Is(err, gorm.ErrRecordNotFound):
			saved = cartItemRow{
				CustomerID:  item.CustomerID,
				StoreID:     item.StoreID,
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				ImageURL:    item.ImageURL,
				Quantity:    item.Quantity,
				Price:       item.Price,
			}
			return tx.Create(&saved).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return saved.entity(), nil
}

// UpdateCartQuantity sets the quantity of a cart line. A quantity of zero or
// less removes the line; anything above entity.MaxCartQuantity is capped.
func (d *DB) UpdateCartQuantity(ctx context.Context, customerID, productID string, quantity int) error {
	if quantity <= 0 {
		return d.RemoveFromCart(ctx, customerID, productID)
	}
	quantity = min(quantity, entity.MaxCartQuantity)
	return d.Write(ctx, []string{tableCart}, func(tx *gorm.DB) error {
		res := tx.Model(&cartItemRow{}).
			Where("customer_id = ? AND product_id = ?", customerID, productID).
			Update("quantity", quantity)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.NotFound("Cart item", nil)
		}
		return nil
	})
}

func (d *DB) RemoveFromCart(ctx context.Context, customerID, productID string) error {
	return d.Write(ctx, []string{tableCart}, func(tx *gorm.DB) error {
		return tx.Where("customer_id = ? AND product_id = ?", customerID, productID).Delete(&cartItemRow{}).Error
	})
}

func (d *DB) ClearCart(ctx context.Context, customerID string) error {
	return d.Write(ctx, []string{tableCart}, func(tx *gorm.DB) error {
		return tx.Where("customer_id = ?", customerID).Delete(&cartItemRow{}).Error
	})
}

func (d *DB) GetCart(ctx context.Context, customerID string) (*entity.Cart, error) {
	return loadCart(d.Read(ctx), customerID)
}

func loadCart(db *gorm.DB, customerID string) (*entity.Cart, error) {
	var rows []cartItemRow
	if err := db.Where("customer_id = ?", customerID).Order("id").Find(&rows).Error; err != nil {
		return nil, localError(err)
	}
	items := make([]*entity.CartItem, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].entity())
	}
	return entity.NewCart(customerID, items), nil
}

func (d *DB) WatchCart(customerID string) *observable.Stream[result.Result[*entity.Cart]] {
	return Watch(d, []string{tableCart}, func(ctx context.Context, db *gorm.DB) (*entity.Cart, error) {
		return loadCart(db, customerID)
	})
}
