package remote

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"nearbasket/pkg/errors"
)

// SQLTables serves the table contract straight from a relational database.
// It backs the postgres remote driver and the repository tests.
type SQLTables struct {
	db *gorm.DB
}

func NewSQLTables(db *gorm.DB) *SQLTables {
	return &SQLTables{db: db}
}

// OpenPostgres connects to a directly reachable Postgres holding the
// marketplace tables.
func OpenPostgres(dsn string, debug bool) (*gorm.DB, error) {
	level := gormlogger.Silent
	if debug {
		level = gormlogger.Info
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// MigrateSQL creates the marketplace tables. Meant for development databases;
// production schemas are owned by the backend.
func MigrateSQL(db *gorm.DB) error {
	migrations := []struct {
		table string
		model interface{}
	}{
		{TableCustomers, &CustomerDTO{}},
		{TableStores, &StoreDTO{}},
		{TableProducts, &ProductDTO{}},
		{TableOrders, &OrderDTO{}},
		{TableOrderItems, &OrderItemDTO{}},
		{TableAddresses, &AddressDTO{}},
		{TableReviews, &ReviewDTO{}},
	}

	for _, m := range migrations {
		if err := db.Table(m.table).AutoMigrate(m.model); err != nil {
			return fmt.Errorf("migrate %s: %w", m.table, err)
		}
	}
	return nil
}

func (t *SQLTables) Select(ctx context.Context, table string, q Query, out interface{}) error {
	tx, err := t.scoped(ctx, table, q)
	if err != nil {
		return errors.Internal("Invalid query", err)
	}
	if q.OrderBy != "" {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: q.OrderBy}, Desc: q.Desc})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	if err := tx.Find(out).Error; err != nil {
		return sqlError("Failed to load "+table, err)
	}
	return nil
}

func (t *SQLTables) Insert(ctx context.Context, table string, rows interface{}) error {
	if err := t.db.WithContext(ctx).Table(table).Create(rows).Error; err != nil {
		return sqlError("Failed to save "+table, err)
	}
	return nil
}

func (t *SQLTables) Upsert(ctx context.Context, table string, rows interface{}, onConflict string) error {
	if onConflict == "" {
		onConflict = "id"
	}
	err := t.db.WithContext(ctx).Table(table).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: onConflict}}, UpdateAll: true}).
		Create(rows).Error
	if err != nil {
		return sqlError("Failed to save "+table, err)
	}
	return nil
}

func (t *SQLTables) Update(ctx context.Context, table string, q Query, patch map[string]interface{}, out interface{}) error {
	if len(q.Filters) == 0 {
		return errors.Internal("Refusing to update every row", fmt.Errorf("update %s without filters", table))
	}
	tx, err := t.scoped(ctx, table, q)
	if err != nil {
		return errors.Internal("Invalid query", err)
	}
	if err := tx.Updates(patch).Error; err != nil {
		return sqlError("Failed to update "+table, err)
	}
	if out == nil {
		return nil
	}
	// Re-read with the same filters; callers only patch columns they do not
	// filter on.
	return t.Select(ctx, table, q, out)
}

func (t *SQLTables) Delete(ctx context.Context, table string, q Query) error {
	if len(q.Filters) == 0 {
		return errors.Internal("Refusing to delete every row", fmt.Errorf("delete %s without filters", table))
	}
	where, args, err := whereClause(q)
	if err != nil {
		return errors.Internal("Invalid query", err)
	}
	if err := t.db.WithContext(ctx).Exec("DELETE FROM "+table+" WHERE "+where, args...).Error; err != nil {
		return sqlError("Failed to delete "+table, err)
	}
	return nil
}

func (t *SQLTables) scoped(ctx context.Context, table string, q Query) (*gorm.DB, error) {
	tx := t.db.WithContext(ctx).Table(table)
	where, args, err := whereClause(q)
	if err != nil {
		return nil, err
	}
	if where != "" {
		tx = tx.Where(where, args...)
	}
	return tx, nil
}

func whereClause(q Query) (string, []interface{}, error) {
	if err := q.validate(); err != nil {
		return "", nil, err
	}

	parts := make([]string, 0, len(q.Filters))
	args := make([]interface{}, 0, len(q.Filters))
	for _, f := range q.Filters {
		switch f.Op {
		case OpEq:
			parts = append(parts, f.Column+" = ?")
		case OpNeq:
			parts = append(parts, f.Column+" <> ?")
		case OpGte:
			parts = append(parts, f.Column+" >= ?")
		case OpLte:
			parts = append(parts, f.Column+" <= ?")
		case OpILike:
			parts = append(parts, "LOWER("+f.Column+") LIKE LOWER(?)")
		case OpIn:
			parts = append(parts, f.Column+" IN ?")
		}
		args = append(args, f.Value)
	}
	return strings.Join(parts, " AND "), args, nil
}

func sqlError(message string, err error) error {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Timeout("The server took too long to respond", err)
	case stderrors.Is(err, gorm.ErrDuplicatedKey):
		appErr := errors.Conflict("This item already exists")
		appErr.Err = err
		return appErr
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		return errors.NotFound("Resource", err)
	}
	return errors.Remote(message, 0, err)
}
