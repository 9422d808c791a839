package cache

import (
	"context"

	"gorm.io/gorm"

	"nearbasket/internal/domain/entity"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

// ReplaceProducts swaps the cached catalogue of one store in a single
// transaction.
func (d *DB) ReplaceProducts(ctx context.Context, storeID string, products []*entity.Product) error {
	rows := make([]productRow, 0, len(products))
	for _, p := range products {
		row := newProductRow(p)
		row.StoreID = storeID
		rows = append(rows, row)
	}
	return d.Write(ctx, []string{tableProducts}, func(tx *gorm.DB) error {
		if err := tx.Where("store_id = ?", storeID).Delete(&productRow{}).Error; err != nil {
			return err
		}
		return upsert(tx, rows)
	})
}

func (d *DB) UpsertProducts(ctx context.Context, products []*entity.Product) error {
	rows := make([]productRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, newProductRow(p))
	}
	return d.Write(ctx, []string{tableProducts}, func(tx *gorm.DB) error {
		return upsert(tx, rows)
	})
}

func (d *DB) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	var row productRow
	if err := d.Read(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound("Product", err)
	}
	return row.entity(), nil
}

func (d *DB) GetProducts(ctx context.Context, storeID string) ([]*entity.Product, error) {
	return listProducts(d.Read(ctx), storeID, "")
}

// SearchProducts matches a store's cached products by name or category.
func (d *DB) SearchProducts(ctx context.Context, storeID, query string) ([]*entity.Product, error) {
	return listProducts(d.Read(ctx), storeID, query)
}

func listProducts(db *gorm.DB, storeID, query string) ([]*entity.Product, error) {
	tx := db.Where("store_id = ?", storeID)
	if query != "" {
		pattern := "%" + query + "%"
		tx = tx.Where("(LOWER(name) LIKE LOWER(?) OR LOWER(category) LIKE LOWER(?))", pattern, pattern)
	}

	var rows []productRow
	if err := tx.Order("name").Find(&rows).Error; err != nil {
		return nil, localError(err)
	}
	products := make([]*entity.Product, 0, len(rows))
	for i := range rows {
		products = append(products, rows[i].entity())
	}
	return products, nil
}

func (d *DB) WatchProducts(storeID string) *observable.Stream[result.Result[[]*entity.Product]] {
	return Watch(d, []string{tableProducts}, func(ctx context.Context, db *gorm.DB) ([]*entity.Product, error) {
		return listProducts(db, storeID, "")
	})
}
