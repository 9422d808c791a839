package firebase

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"nearbasket/internal/infrastructure/remote"
	"nearbasket/pkg/errors"
)

// Firestore caps the number of values of an "in" filter.
const maxInValues = 30

// FirestoreTables serves the table contract from Firestore: one collection
// per table, one document per row keyed by the row id. Equality, range and
// small "in" filters run on the server; ilike, large "in" filters, ordering
// and paging run on the matched documents.
type FirestoreTables struct {
	client *firestore.Client
}

func NewFirestoreTables(client *firestore.Client) *FirestoreTables {
	return &FirestoreTables{client: client}
}

func (t *FirestoreTables) Select(ctx context.Context, table string, q remote.Query, out interface{}) error {
	docs, err := t.match(ctx, table, q)
	if err != nil {
		return err
	}

	rows := make([]map[string]interface{}, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, rowData(doc))
	}
	rows = orderAndPage(rows, q)

	return decodeRows(rows, out)
}

func (t *FirestoreTables) Insert(ctx context.Context, table string, rows interface{}) error {
	docs, err := encodeRows(rows)
	if err != nil {
		return err
	}

	coll := t.client.Collection(table)
	err = t.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, doc := range docs {
			if err := tx.Create(coll.Doc(doc["id"].(string)), doc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return firestoreError("Failed to save "+table, err)
	}
	return writeBack(docs, rows)
}

// Upsert replaces whole documents; rows conflict on their id only.
func (t *FirestoreTables) Upsert(ctx context.Context, table string, rows interface{}, onConflict string) error {
	if onConflict != "" && onConflict != "id" {
		return errors.Internal("Unsupported upsert", fmt.Errorf("firestore upserts conflict on id, not %q", onConflict))
	}
	docs, err := encodeRows(rows)
	if err != nil {
		return err
	}

	coll := t.client.Collection(table)
	err = t.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, doc := range docs {
			if err := tx.Set(coll.Doc(doc["id"].(string)), doc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return firestoreError("Failed to save "+table, err)
	}
	return writeBack(docs, rows)
}

func (t *FirestoreTables) Update(ctx context.Context, table string, q remote.Query, patch map[string]interface{}, out interface{}) error {
	if len(q.Filters) == 0 {
		return errors.Internal("Refusing to update every row", fmt.Errorf("update %s without filters", table))
	}
	docs, err := t.match(ctx, table, q)
	if err != nil {
		return err
	}

	if len(docs) > 0 {
		err = t.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
			for _, doc := range docs {
				if err := tx.Set(doc.Ref, patch, firestore.MergeAll); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return firestoreError("Failed to update "+table, err)
		}
	}

	if out == nil {
		return nil
	}
	return t.Select(ctx, table, q, out)
}

func (t *FirestoreTables) Delete(ctx context.Context, table string, q remote.Query) error {
	if len(q.Filters) == 0 {
		return errors.Internal("Refusing to delete every row", fmt.Errorf("delete %s without filters", table))
	}
	docs, err := t.match(ctx, table, q)
	if err != nil || len(docs) == 0 {
		return err
	}

	err = t.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, doc := range docs {
			if err := tx.Delete(doc.Ref); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return firestoreError("Failed to delete "+table, err)
	}
	return nil
}

// match returns the documents of table satisfying every filter of q.
func (t *FirestoreTables) match(ctx context.Context, table string, q remote.Query) ([]*firestore.DocumentSnapshot, error) {
	query := t.client.Collection(table).Query
	server, local := splitFilters(q.Filters)
	for _, f := range server {
		query = query.Where(f.Column, firestoreOp(f.Op), f.Value)
	}

	var docs []*firestore.DocumentSnapshot
	iter := query.Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, firestoreError("Failed to load "+table, err)
		}
		if matchesAll(rowData(doc), local) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func splitFilters(filters []remote.Filter) (server, local []remote.Filter) {
	for _, f := range filters {
		switch f.Op {
		case remote.OpILike:
			local = append(local, f)
		case remote.OpIn:
			if values, _ := f.Value.([]string); len(values) == 0 || len(values) > maxInValues {
				local = append(local, f)
				continue
			}
			server = append(server, f)
		default:
			server = append(server, f)
		}
	}
	return server, local
}

func firestoreOp(op remote.Op) string {
	switch op {
	case remote.OpNeq:
		return "!="
	case remote.OpGte:
		return ">="
	case remote.OpLte:
		return "<="
	case remote.OpIn:
		return "in"
	}
	return "=="
}

func matchesAll(row map[string]interface{}, filters []remote.Filter) bool {
	for _, f := range filters {
		if !matches(row[f.Column], f) {
			return false
		}
	}
	return true
}

func matches(value interface{}, f remote.Filter) bool {
	switch f.Op {
	case remote.OpILike:
		s, ok := value.(string)
		return ok && likePattern(fmt.Sprint(f.Value)).MatchString(s)
	case remote.OpIn:
		s := fmt.Sprint(value)
		for _, v := range f.Value.([]string) {
			if v == s {
				return true
			}
		}
		return false
	case remote.OpEq:
		return compare(value, f.Value) == 0
	case remote.OpNeq:
		return compare(value, f.Value) != 0
	case remote.OpGte:
		return compare(value, f.Value) >= 0
	case remote.OpLte:
		return compare(value, f.Value) <= 0
	}
	return false
}

// likePattern turns a SQL LIKE pattern using % into a case-insensitive
// regular expression.
func likePattern(pattern string) *regexp.Regexp {
	parts := strings.Split(pattern, "%")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile("(?is)^" + strings.Join(parts, ".*") + "$")
}

// compare orders two document values. Numbers compare numerically, strings
// that are both timestamps compare chronologically, nil sorts first.
func compare(a, b interface{}) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		}
		return 1
	}

	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	if ta, ok := toTime(a); ok {
		if tb, ok := toTime(b); ok {
			return ta.Compare(tb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			}
			return 1
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

func toTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		return parsed, err == nil
	}
	return time.Time{}, false
}

func orderAndPage(rows []map[string]interface{}, q remote.Query) []map[string]interface{} {
	if q.OrderBy != "" {
		sort.SliceStable(rows, func(i, j int) bool {
			c := compare(rows[i][q.OrderBy], rows[j][q.OrderBy])
			if q.Desc {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Offset > 0 {
		if q.Offset >= len(rows) {
			return rows[:0]
		}
		rows = rows[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(rows) {
		rows = rows[:q.Limit]
	}
	return rows
}

func rowData(doc *firestore.DocumentSnapshot) map[string]interface{} {
	data := doc.Data()
	if _, ok := data["id"]; !ok {
		data["id"] = doc.Ref.ID
	}
	return data
}

// encodeRows converts a transfer object, or a slice of them, into documents
// keyed by their json tags. Rows without an id get a fresh one.
func encodeRows(rows interface{}) ([]map[string]interface{}, error) {
	raw, err := json.Marshal(rows)
	if err != nil {
		return nil, errors.Internal("Failed to encode rows", err)
	}

	var docs []map[string]interface{}
	if reflect.Indirect(reflect.ValueOf(rows)).Kind() == reflect.Slice {
		err = json.Unmarshal(raw, &docs)
	} else {
		var doc map[string]interface{}
		err = json.Unmarshal(raw, &doc)
		docs = append(docs, doc)
	}
	if err != nil {
		return nil, errors.Internal("Failed to encode rows", err)
	}

	for _, doc := range docs {
		if id, _ := doc["id"].(string); id == "" {
			doc["id"] = uuid.New().String()
		}
	}
	return docs, nil
}

func writeBack(docs []map[string]interface{}, rows interface{}) error {
	if reflect.Indirect(reflect.ValueOf(rows)).Kind() == reflect.Slice {
		return decodeRows(docs, rows)
	}
	if len(docs) == 0 {
		return nil
	}
	raw, err := json.Marshal(docs[0])
	if err != nil {
		return errors.Decode("Unexpected response from the server", err)
	}
	if err := json.Unmarshal(raw, rows); err != nil {
		return errors.Decode("Unexpected response from the server", err)
	}
	return nil
}

func decodeRows(rows []map[string]interface{}, out interface{}) error {
	raw, err := json.Marshal(rows)
	if err != nil {
		return errors.Decode("Unexpected response from the server", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Decode("Unexpected response from the server", err)
	}
	return nil
}

func firestoreError(message string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Timeout("The server took too long to respond", err)
	}

	switch status.Code(err) {
	case codes.NotFound:
		return errors.NotFound("Resource", err)
	case codes.AlreadyExists:
		appErr := errors.Conflict("This item already exists")
		appErr.Err = err
		return appErr
	case codes.DeadlineExceeded:
		return errors.Timeout("The server took too long to respond", err)
	case codes.PermissionDenied:
		return errors.Forbidden("You are not allowed to do that", err)
	case codes.Unauthenticated:
		return errors.Unauthorized("Your session has expired, please sign in again", err)
	case codes.InvalidArgument, codes.FailedPrecondition:
		return errors.BadRequest(message, err)
	case codes.ResourceExhausted:
		appErr := errors.TooManyRequests("Too many requests", 0)
		appErr.Err = err
		return appErr
	}
	return errors.Remote(message, 0, err)
}
