// Package remote is the gateway to the hosted backend: table reads and writes,
// phone OTP auth and transfer-object mapping. It never retries; callers decide
// what a failure means.
package remote

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"nearbasket/pkg/utils"
)

type Op string

const (
	OpEq    Op = "eq"
	OpNeq   Op = "neq"
	OpILike Op = "ilike"
	OpGte   Op = "gte"
	OpLte   Op = "lte"
	OpIn    Op = "in"
)

type Filter struct {
	Column string
	Op     Op
	Value  interface{}
}

func Eq(column string, value interface{}) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

// ILike matches column case-insensitively against a pattern using % as the
// wildcard.
func ILike(column, pattern string) Filter {
	return Filter{Column: column, Op: OpILike, Value: pattern}
}

func In(column string, values []string) Filter {
	return Filter{Column: column, Op: OpIn, Value: values}
}

// Query selects rows of one table. Filters are AND-ed.
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
	Offset  int
}

func Where(filters ...Filter) Query {
	return Query{Filters: filters}
}

func (q Query) Order(column string, desc bool) Query {
	q.OrderBy = column
	q.Desc = desc
	return q
}

func (q Query) Page(p utils.PaginationParams) Query {
	q.Limit = p.PageSize
	q.Offset = p.Offset
	return q
}

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func (q Query) validate() error {
	for _, f := range q.Filters {
		if !identifierPattern.MatchString(f.Column) {
			return fmt.Errorf("invalid column name %q", f.Column)
		}
		switch f.Op {
		case OpEq, OpNeq, OpILike, OpGte, OpLte:
		case OpIn:
			if _, ok := f.Value.([]string); !ok {
				return fmt.Errorf("filter %s: in expects []string", f.Column)
			}
		default:
			return fmt.Errorf("unsupported filter operator %q", f.Op)
		}
	}
	if q.OrderBy != "" && !identifierPattern.MatchString(q.OrderBy) {
		return fmt.Errorf("invalid order column %q", q.OrderBy)
	}
	return nil
}

// TableClient is the table-oriented contract every backend driver implements.
//
// rows passed to Insert and Upsert are pointers to a transfer object or to a
// slice of them; on success they hold the stored representation. Update and
// Delete refuse queries without filters.
type TableClient interface {
	Select(ctx context.Context, table string, q Query, out interface{}) error
	Insert(ctx context.Context, table string, rows interface{}) error
	Upsert(ctx context.Context, table string, rows interface{}, onConflict string) error
	Update(ctx context.Context, table string, q Query, patch map[string]interface{}, out interface{}) error
	Delete(ctx context.Context, table string, q Query) error
}

// TokenSource supplies the bearer token for authenticated requests. An empty
// token means "anonymous".
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// WithTimeout bounds every call of tables by d. Drivers without a transport
// timeout of their own (SQL, Firestore) are wrapped with it.
func WithTimeout(tables TableClient, d time.Duration) TableClient {
	return &timeoutTables{next: tables, timeout: d}
}

type timeoutTables struct {
	next    TableClient
	timeout time.Duration
}

func (t *timeoutTables) Select(ctx context.Context, table string, q Query, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Select(ctx, table, q, out)
}

func (t *timeoutTables) Insert(ctx context.Context, table string, rows interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Insert(ctx, table, rows)
}

func (t *timeoutTables) Upsert(ctx context.Context, table string, rows interface{}, onConflict string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Upsert(ctx, table, rows, onConflict)
}

func (t *timeoutTables) Update(ctx context.Context, table string, q Query, patch map[string]interface{}, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Update(ctx, table, q, patch, out)
}

func (t *timeoutTables) Delete(ctx context.Context, table string, q Query) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Delete(ctx, table, q)
}
