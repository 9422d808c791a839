package cache

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nearbasket/internal/domain/entity"
	"nearbasket/pkg/errors"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

const upsertBatchSize = 100

// upsert inserts rows, replacing any row with the same primary key.
func upsert[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).CreateInBatches(&rows, upsertBatchSize).Error
}

func notFound(resource string, err error) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFound(resource, err)
	}
	return localError(err)
}

func (d *DB) UpsertStores(ctx context.Context, stores []*entity.Store) error {
	rows := make([]storeRow, 0, len(stores))
	for _, s := range stores {
		rows = append(rows, newStoreRow(s))
	}
	return d.Write(ctx, []string{tableStores}, func(tx *gorm.DB) error {
		return upsert(tx, rows)
	})
}

func (d *DB) GetStore(ctx context.Context, id string) (*entity.Store, error) {
	return getStore(d.Read(ctx), id)
}

func getStore(db *gorm.DB, id string) (*entity.Store, error) {
	var row storeRow
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound("Store", err)
	}
	return row.entity(), nil
}

// GetStores returns every cached store with an active subscription, by name.
func (d *DB) GetStores(ctx context.Context) ([]*entity.Store, error) {
	return listStores(d.Read(ctx), "")
}

// SearchStores matches cached active stores by name, ignoring case.
func (d *DB) SearchStores(ctx context.Context, query string) ([]*entity.Store, error) {
	return listStores(d.Read(ctx), query)
}

func listStores(db *gorm.DB, query string) ([]*entity.Store, error) {
	tx := db.Where("subscription_status = ?", entity.SubscriptionActive)
	if query != "" {
		tx = tx.Where("LOWER(name) LIKE LOWER(?)", "%"+query+"%")
	}

	var rows []storeRow
	if err := tx.Order("name").Find(&rows).Error; err != nil {
		return nil, localError(err)
	}
	stores := make([]*entity.Store, 0, len(rows))
	for i := range rows {
		stores = append(stores, rows[i].entity())
	}
	return stores, nil
}

func (d *DB) UpdateStoreRating(ctx context.Context, storeID string, rating float64) error {
	return d.Write(ctx, []string{tableStores}, func(tx *gorm.DB) error {
		res := tx.Model(&storeRow{}).Where("id = ?", storeID).Update("rating", rating)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.NotFound("Store", nil)
		}
		return nil
	})
}

// DeleteStore removes the store and its products together.
func (d *DB) DeleteStore(ctx context.Context, id string) error {
	return d.Write(ctx, []string{tableStores, tableProducts}, func(tx *gorm.DB) error {
		if err := tx.Where("store_id = ?", id).Delete(&productRow{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&storeRow{}).Error
	})
}

func (d *DB) WatchStores() *observable.Stream[result.Result[[]*entity.Store]] {
	return Watch(d, []string{tableStores}, func(ctx context.Context, db *gorm.DB) ([]*entity.Store, error) {
		return listStores(db, "")
	})
}

func (d *DB) WatchStore(id string) *observable.Stream[result.Result[*entity.Store]] {
	return Watch(d, []string{tableStores}, func(ctx context.Context, db *gorm.DB) (*entity.Store, error) {
		return getStore(db, id)
	})
}
