// Package cache is the on-device store: a SQLite database holding a
// replaceable projection of the backend tables plus the local-only cart.
// Every committed write notifies the watchers of the tables it touched.
package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"nearbasket/pkg/errors"
	"nearbasket/pkg/logger"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

const (
	tableCustomers  = "customers"
	tableStores     = "stores"
	tableProducts   = "products"
	tableCart       = "cart_items"
	tableOrders     = "orders"
	tableOrderItems = "order_items"
	tableAddresses  = "addresses"
	tableReviews    = "store_reviews"
)

type DB struct {
	db *gorm.DB

	mu      sync.Mutex
	changes map[string]*observable.Subject[uint64]
	version atomic.Uint64
}

// Open opens (creating if needed) the cache database at path and migrates
// the schema. SQLite allows one writer, so the pool is a single connection;
// code running inside Write must only use the tx it is handed.
func Open(path string, debug bool) (*DB, error) {
	level := gormlogger.Silent
	if debug {
		level = gormlogger.Warn
	}

	dsn := fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	d := &DB{db: db, changes: make(map[string]*observable.Subject[uint64])}
	if err := d.AutoMigrate(
		&customerRow{},
		&storeRow{},
		&productRow{},
		&cartItemRow{},
		&orderRow{},
		&orderItemRow{},
		&addressRow{},
		&reviewRow{},
	); err != nil {
		sqlDB.Close()
		return nil, err
	}

	logger.Debug("cache opened at %s", path)
	return d, nil
}

// AutoMigrate creates or updates tables for the given row models. Packages
// that keep their own tables in the cache database migrate through here.
func (d *DB) AutoMigrate(models ...interface{}) error {
	if err := d.db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate cache schema: %w", err)
	}
	return nil
}

func (d *DB) Close() error {
	d.mu.Lock()
	for table, subject := range d.changes {
		subject.Close()
		delete(d.changes, table)
	}
	d.mu.Unlock()

	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Read returns a handle for one-shot queries.
func (d *DB) Read(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx)
}

// Write runs fn in a transaction and, once it has committed, notifies the
// watchers of tables. A failed fn rolls back and notifies nobody.
func (d *DB) Write(ctx context.Context, tables []string, fn func(tx *gorm.DB) error) error {
	if err := d.db.WithContext(ctx).Transaction(fn); err != nil {
		if _, ok := errors.As(err); ok {
			return err
		}
		return errors.LocalStorage("Failed to save data on this device", err)
	}
	d.notify(tables...)
	return nil
}

func (d *DB) notify(tables ...string) {
	v := d.version.Add(1)
	for _, table := range tables {
		d.subject(table).Publish(v)
	}
}

func (d *DB) subject(table string) *observable.Subject[uint64] {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.changes[table]
	if !ok {
		s = observable.NewSubject[uint64]()
		d.changes[table] = s
	}
	return s
}

// ListenerCount reports how many watchers are registered on table.
func (d *DB) ListenerCount(table string) int {
	return d.subject(table).SubscriberCount()
}

// Watch builds a stream that runs query once per activation and again after
// every committed write to one of tables. It starts in the loading state.
// Cancelling the last subscription stops the query loop and unregisters the
// table listeners.
func Watch[T any](d *DB, tables []string, query func(ctx context.Context, db *gorm.DB) (T, error)) *observable.Stream[result.Result[T]] {
	return observable.NewStream(result.Loading[T](), func(emit func(result.Result[T])) func() {
		ctx, cancel := context.WithCancel(context.Background())
		dirty := make(chan struct{}, 1)

		subs := make([]*observable.Subscription[uint64], 0, len(tables))
		for _, table := range tables {
			sub := d.subject(table).Subscribe()
			subs = append(subs, sub)
			go func() {
				for range sub.C() {
					select {
					case dirty <- struct{}{}:
					default:
					}
				}
			}()
		}

		go func() {
			for {
				v, err := query(ctx, d.db.WithContext(ctx))
				if ctx.Err() != nil {
					return
				}
				if err != nil {
					logger.Error("cache watch on %v failed: %v", tables, err)
					emit(result.Failure[T](localError(err)))
				} else {
					emit(result.Success(v))
				}

				select {
				case <-ctx.Done():
					return
				case <-dirty:
				}
			}
		}()

		return func() {
			cancel()
			for _, sub := range subs {
				sub.Cancel()
			}
		}
	})
}

func localError(err error) error {
	if _, ok := errors.As(err); ok {
		return err
	}
	return errors.LocalStorage("Failed to read data saved on this device", err)
}
