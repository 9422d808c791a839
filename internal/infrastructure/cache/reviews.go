package cache

import (
	"context"

	"gorm.io/gorm"

	"nearbasket/internal/domain/entity"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

// ReplaceReviews swaps the cached reviews of one store.
func (d *DB) ReplaceReviews(ctx context.Context, storeID string, reviews []*entity.StoreReview) error {
	rows := make([]reviewRow, 0, len(reviews))
	for _, r := range reviews {
		row := newReviewRow(r)
		row.StoreID = storeID
		rows = append(rows, row)
	}
	return d.Write(ctx, []string{tableReviews}, func(tx *gorm.DB) error {
		if err := tx.Where("store_id = ?", storeID).Delete(&reviewRow{}).Error; err != nil {
			return err
		}
		return upsert(tx, rows)
	})
}

// UpsertReview stores a review, dropping any other cached review by the same
// customer for the same store.
func (d *DB) UpsertReview(ctx context.Context, review *entity.StoreReview) error {
	row := newReviewRow(review)
	return d.Write(ctx, []string{tableReviews}, func(tx *gorm.DB) error {
		err := tx.Where("store_id = ? AND customer_id = ? AND id <> ?", row.StoreID, row.CustomerID, row.ID).
			Delete(&reviewRow{}).Error
		if err != nil {
			return err
		}
		return upsert(tx, []reviewRow{row})
	})
}

func (d *DB) DeleteReview(ctx context.Context, id string) error {
	return d.Write(ctx, []string{tableReviews}, func(tx *gorm.DB) error {
		return tx.Where("id = ?", id).Delete(&reviewRow{}).Error
	})
}

func (d *DB) GetReview(ctx context.Context, id string) (*entity.StoreReview, error) {
	var row reviewRow
	if err := d.Read(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound("Review", err)
	}
	return row.entity(), nil
}

func (d *DB) GetCustomerReview(ctx context.Context, storeID, customerID string) (*entity.StoreReview, error) {
	var row reviewRow
	err := d.Read(ctx).Where("store_id = ? AND customer_id = ?", storeID, customerID).First(&row).Error
	if err != nil {
		return nil, notFound("Review", err)
	}
	return row.entity(), nil
}

// GetStoreReviews lists a store's cached reviews, newest first.
func (d *DB) GetStoreReviews(ctx context.Context, storeID string) ([]*entity.StoreReview, error) {
	return listReviews(d.Read(ctx), storeID)
}

func listReviews(db *gorm.DB, storeID string) ([]*entity.StoreReview, error) {
	var rows []reviewRow
	if err := db.Where("store_id = ?", storeID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, localError(err)
	}
	reviews := make([]*entity.StoreReview, 0, len(rows))
	for i := range rows {
		reviews = append(reviews, rows[i].entity())
	}
	return reviews, nil
}

func (d *DB) WatchStoreReviews(storeID string) *observable.Stream[result.Result[[]*entity.StoreReview]] {
	return Watch(d, []string{tableReviews}, func(ctx context.Context, db *gorm.DB) ([]*entity.StoreReview, error) {
		return listReviews(db, storeID)
	})
}
