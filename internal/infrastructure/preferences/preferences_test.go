package preferences

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nearbasket/internal/domain/entity"
	"nearbasket/internal/infrastructure/cache"
	"nearbasket/pkg/result"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := New(db)
	require.NoError(t, err)
	return store
}

func TestTypedValuesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v, err := s.GetString(ctx, "theme", "light")
	require.NoError(t, err)
	assert.Equal(t, "light", v)

	require.NoError(t, s.SetString(ctx, "theme", "dark"))
	require.NoError(t, s.SetBool(ctx, "onboarded", true))
	require.NoError(t, s.SetFloat(ctx, "radius", 7.5))

	v, err = s.GetString(ctx, "theme", "light")
	require.NoError(t, err)
	assert.Equal(t, "dark", v)

	b, err := s.GetBool(ctx, "onboarded", false)
	require.NoError(t, err)
	assert.True(t, b)

	f, err := s.GetFloat(ctx, "radius", 10)
	require.NoError(t, err)
	assert.Equal(t, 7.5, f)

	require.NoError(t, s.Remove(ctx, "radius"))
	f, err = s.GetFloat(ctx, "radius", 10)
	require.NoError(t, err)
	assert.Equal(t, 10.0, f)
}

func TestRecentSearchesCapAndDedupe(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, term := range []string{"MG Road", "Indiranagar", "Koramangala", "HSR Layout", "Whitefield", "Jayanagar"} {
		_, err := s.AddRecentSearch(ctx, term)
		require.NoError(t, err)
	}

	terms, err := s.RecentSearches(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jayanagar", "Whitefield", "HSR Layout", "Koramangala", "Indiranagar"}, terms)

	terms, err = s.AddRecentSearch(ctx, "koramangala")
	require.NoError(t, err)
	assert.Equal(t, []string{"koramangala", "Jayanagar", "Whitefield", "HSR Layout", "Indiranagar"}, terms)

	terms, err = s.AddRecentSearch(ctx, "   ")
	require.NoError(t, err)
	assert.Len(t, terms, MaxRecentSearches)
}

func TestPushSearch(t *testing.T) {
	assert.Equal(t, []string{"a"}, pushSearch(nil, "a"))
	assert.Equal(t, []string{"B", "a"}, pushSearch([]string{"b", "a"}, "B"))
}

func TestLastKnownLocation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.LastKnownLocation(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetLastKnownLocation(ctx, entity.Coordinate{Latitude: 12.9716, Longitude: 77.5946}))

	c, ok, err := s.LastKnownLocation(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 12.9716, c.Latitude)
	assert.Equal(t, 77.5946, c.Longitude)
}

func TestClearSessionKeepsLocation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetCurrentCustomerID(ctx, "c1"))
	require.NoError(t, s.SetSelectedAddressID(ctx, "a1"))
	_, err := s.AddRecentSearch(ctx, "MG Road")
	require.NoError(t, err)
	require.NoError(t, s.SetLastKnownLocation(ctx, entity.Coordinate{Latitude: 1, Longitude: 2}))

	require.NoError(t, s.ClearSession(ctx))

	id, err := s.CurrentCustomerID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)
	addr, err := s.SelectedAddressID(ctx)
	require.NoError(t, err)
	assert.Empty(t, addr)
	terms, err := s.RecentSearches(ctx)
	require.NoError(t, err)
	assert.Empty(t, terms)
	_, ok, err := s.LastKnownLocation(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestObserveEmitsDefaultThenUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sub := s.ObserveBool("notifications", true).Subscribe()
	defer sub.Cancel()

	wait := func(want bool) {
		t.Helper()
		timeout := time.After(2 * time.Second)
		for {
			select {
			case r := <-sub.C():
				if r.State() == result.StateSuccess && r.Data() == want {
					return
				}
			case <-timeout:
				t.Fatalf("never observed %v", want)
			}
		}
	}

	wait(true)
	require.NoError(t, s.SetBool(ctx, "notifications", false))
	wait(false)
}
