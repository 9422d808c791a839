// Package preferences is the key-value settings store. Values live in the
// cache database so they share its durability and change notifications.
package preferences

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nearbasket/internal/domain/entity"
	"nearbasket/internal/infrastructure/cache"
	"nearbasket/pkg/errors"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

const (
	KeyCurrentCustomerID = "current_customer_id"
	KeyLastLatitude      = "last_latitude"
	KeyLastLongitude     = "last_longitude"
	KeySelectedAddressID = "selected_address_id"
	KeyRecentSearches    = "recent_address_searches"

	MaxRecentSearches = 5

	table = "preferences"
)

type preferenceRow struct {
	Name      string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

func (preferenceRow) TableName() string { return table }

type Store struct {
	db *cache.DB
}

func New(db *cache.DB) (*Store, error) {
	if err := db.AutoMigrate(&preferenceRow{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) get(ctx context.Context, db *gorm.DB, key string) (string, bool, error) {
	var row preferenceRow
	err := db.WithContext(ctx).Where("name = ?", key).First(&row).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.LocalStorage("Failed to read settings", err)
	}
	return row.Value, true, nil
}

func put(tx *gorm.DB, key, value string) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&preferenceRow{Name: key, Value: value, UpdatedAt: time.Now().UTC()}).Error
}

func (s *Store) set(ctx context.Context, key, value string) error {
	return s.db.Write(ctx, []string{table}, func(tx *gorm.DB) error {
		return put(tx, key, value)
	})
}

func (s *Store) GetString(ctx context.Context, key, def string) (string, error) {
	v, ok, err := s.get(ctx, s.db.Read(ctx), key)
	if err != nil || !ok {
		return def, err
	}
	return v, nil
}

func (s *Store) SetString(ctx context.Context, key, value string) error {
	return s.set(ctx, key, value)
}

func (s *Store) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	v, ok, err := s.get(ctx, s.db.Read(ctx), key)
	if err != nil || !ok {
		return def, err
	}
	return parseBool(v, def), nil
}

func (s *Store) SetBool(ctx context.Context, key string, value bool) error {
	return s.set(ctx, key, strconv.FormatBool(value))
}

func (s *Store) GetFloat(ctx context.Context, key string, def float64) (float64, error) {
	v, ok, err := s.get(ctx, s.db.Read(ctx), key)
	if err != nil || !ok {
		return def, err
	}
	return parseFloat(v, def), nil
}

func (s *Store) SetFloat(ctx context.Context, key string, value float64) error {
	return s.set(ctx, key, strconv.FormatFloat(value, 'f', -1, 64))
}

func (s *Store) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.Write(ctx, []string{table}, func(tx *gorm.DB) error {
		return tx.Where("name IN ?", keys).Delete(&preferenceRow{}).Error
	})
}

func parseBool(v string, def bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func parseFloat(v string, def float64) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func observe[T any](s *Store, key string, def T, parse func(string) T) *observable.Stream[result.Result[T]] {
	return cache.Watch(s.db, []string{table}, func(ctx context.Context, db *gorm.DB) (T, error) {
		v, ok, err := s.get(ctx, db, key)
		if err != nil || !ok {
			return def, err
		}
		return parse(v), nil
	})
}

// ObserveString streams the value of key, or def while it is unset.
func (s *Store) ObserveString(key, def string) *observable.Stream[result.Result[string]] {
	return observe(s, key, def, func(v string) string { return v })
}

func (s *Store) ObserveBool(key string, def bool) *observable.Stream[result.Result[bool]] {
	return observe(s, key, def, func(v string) bool { return parseBool(v, def) })
}

func (s *Store) ObserveFloat(key string, def float64) *observable.Stream[result.Result[float64]] {
	return observe(s, key, def, func(v string) float64 { return parseFloat(v, def) })
}

// Recent searches

func decodeSearches(v string) []string {
	var terms []string
	if v == "" || json.Unmarshal([]byte(v), &terms) != nil {
		return []string{}
	}
	return terms
}

// pushSearch puts term first, drops case-insensitive duplicates of it and
// trims the list to MaxRecentSearches.
func pushSearch(terms []string, term string) []string {
	out := make([]string, 0, MaxRecentSearches)
	out = append(out, term)
	for _, t := range terms {
		if len(out) == MaxRecentSearches {
			break
		}
		if strings.EqualFold(t, term) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (s *Store) RecentSearches(ctx context.Context) ([]string, error) {
	v, _, err := s.get(ctx, s.db.Read(ctx), KeyRecentSearches)
	if err != nil {
		return nil, err
	}
	return decodeSearches(v), nil
}

// AddRecentSearch records term and returns the updated list. Blank terms are
// ignored.
func (s *Store) AddRecentSearch(ctx context.Context, term string) ([]string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.RecentSearches(ctx)
	}

	var updated []string
	err := s.db.Write(ctx, []string{table}, func(tx *gorm.DB) error {
		v, _, err := s.get(ctx, tx, KeyRecentSearches)
		if err != nil {
			return err
		}
		updated = pushSearch(decodeSearches(v), term)
		data, err := json.Marshal(updated)
		if err != nil {
			return err
		}
		return put(tx, KeyRecentSearches, string(data))
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) ClearRecentSearches(ctx context.Context) error {
	return s.Remove(ctx, KeyRecentSearches)
}

func (s *Store) ObserveRecentSearches() *observable.Stream[result.Result[[]string]] {
	return observe(s, KeyRecentSearches, []string{}, decodeSearches)
}

// Session-scoped helpers

func (s *Store) CurrentCustomerID(ctx context.Context) (string, error) {
	return s.GetString(ctx, KeyCurrentCustomerID, "")
}

func (s *Store) SetCurrentCustomerID(ctx context.Context, id string) error {
	return s.SetString(ctx, KeyCurrentCustomerID, id)
}

func (s *Store) SelectedAddressID(ctx context.Context) (string, error) {
	return s.GetString(ctx, KeySelectedAddressID, "")
}

func (s *Store) SetSelectedAddressID(ctx context.Context, id string) error {
	return s.SetString(ctx, KeySelectedAddressID, id)
}

// LastKnownLocation returns the last persisted location fix, if any.
func (s *Store) LastKnownLocation(ctx context.Context) (entity.Coordinate, bool, error) {
	lat, okLat, err := s.get(ctx, s.db.Read(ctx), KeyLastLatitude)
	if err != nil {
		return entity.Coordinate{}, false, err
	}
	lng, okLng, err := s.get(ctx, s.db.Read(ctx), KeyLastLongitude)
	if err != nil {
		return entity.Coordinate{}, false, err
	}
	if !okLat || !okLng {
		return entity.Coordinate{}, false, nil
	}
	return entity.Coordinate{Latitude: parseFloat(lat, 0), Longitude: parseFloat(lng, 0)}, true, nil
}

// SetLastKnownLocation stores both coordinates in one write.
func (s *Store) SetLastKnownLocation(ctx context.Context, c entity.Coordinate) error {
	return s.db.Write(ctx, []string{table}, func(tx *gorm.DB) error {
		if err := put(tx, KeyLastLatitude, strconv.FormatFloat(c.Latitude, 'f', -1, 64)); err != nil {
			return err
		}
		return put(tx, KeyLastLongitude, strconv.FormatFloat(c.Longitude, 'f', -1, 64))
	})
}

// ClearSession removes every customer-scoped key. The last known location is
// a device fact and survives sign-out.
func (s *Store) ClearSession(ctx context.Context) error {
	return s.Remove(ctx, KeyCurrentCustomerID, KeySelectedAddressID, KeyRecentSearches)
}
