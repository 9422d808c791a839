package service

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nearbasket/internal/domain/entity"
	"nearbasket/pkg/errors"
)

type fakeProvider struct {
	permitted bool
	fix       *entity.Coordinate
	hang      bool
	last      *entity.Coordinate
}

func (f *fakeProvider) HasPermission(ctx context.Context) bool { return f.permitted }

func (f *fakeProvider) CurrentLocation(ctx context.Context) (entity.Coordinate, error) {
	if f.hang {
		<-ctx.Done()
		return entity.Coordinate{}, ctx.Err()
	}
	if f.fix == nil {
		return entity.Coordinate{}, stderrors.New("no fix")
	}
	return *f.fix, nil
}

func (f *fakeProvider) LastKnownLocation(ctx context.Context) (entity.Coordinate, bool, error) {
	if f.last == nil {
		return entity.Coordinate{}, false, nil
	}
	return *f.last, true, nil
}

type memoryLocation struct {
	saved *entity.Coordinate
}

func (m *memoryLocation) LastKnownLocation(ctx context.Context) (entity.Coordinate, bool, error) {
	if m.saved == nil {
		return entity.Coordinate{}, false, nil
	}
	return *m.saved, true, nil
}

func (m *memoryLocation) SetLastKnownLocation(ctx context.Context, c entity.Coordinate) error {
	m.saved = &c
	return nil
}

type fakeGeocoder struct {
	addr *entity.GeoAddress
	err  error
}

func (g fakeGeocoder) ReverseGeocode(ctx context.Context, c entity.Coordinate) (*entity.GeoAddress, error) {
	return g.addr, g.err
}

func TestCurrentCoordinatePersistsFix(t *testing.T) {
	fix := entity.Coordinate{Latitude: 12.97, Longitude: 77.59}
	memory := &memoryLocation{}
	svc := NewLocationService(&fakeProvider{permitted: true, fix: &fix}, nil, memory, time.Second)

	c, err := svc.CurrentCoordinate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fix, c)
	require.NotNil(t, memory.saved)
	assert.Equal(t, fix, *memory.saved)
}

func TestCurrentCoordinateTimesOutToLastKnown(t *testing.T) {
	last := entity.Coordinate{Latitude: 1, Longitude: 2}
	svc := NewLocationService(&fakeProvider{permitted: true, hang: true, last: &last}, nil, &memoryLocation{}, 20*time.Millisecond)

	c, err := svc.CurrentCoordinate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, last, c)
}

func TestCurrentCoordinateFallsBackToSavedLocation(t *testing.T) {
	saved := entity.Coordinate{Latitude: 3, Longitude: 4}
	svc := NewLocationService(&fakeProvider{permitted: true}, nil, &memoryLocation{saved: &saved}, time.Second)

	c, err := svc.CurrentCoordinate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, saved, c)
}

func TestCurrentCoordinateTimeoutWithoutFallback(t *testing.T) {
	svc := NewLocationService(&fakeProvider{permitted: true, hang: true}, nil, &memoryLocation{}, 20*time.Millisecond)

	_, err := svc.CurrentCoordinate(context.Background())
	assert.True(t, errors.Is(err, errors.CodeTimeout))
}

func TestCurrentCoordinateWithoutPermission(t *testing.T) {
	svc := NewLocationService(&fakeProvider{permitted: false}, nil, &memoryLocation{}, time.Second)

	_, err := svc.CurrentCoordinate(context.Background())
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	saved := entity.Coordinate{Latitude: 5, Longitude: 6}
	svc = NewLocationService(&fakeProvider{permitted: false}, nil, &memoryLocation{saved: &saved}, time.Second)
	c, err := svc.CurrentCoordinate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, saved, c)
}

func TestDescribeDegradesGracefully(t *testing.T) {
	c := entity.Coordinate{Latitude: 12.97, Longitude: 77.59}

	failing := NewLocationService(&fakeProvider{}, fakeGeocoder{err: stderrors.New("offline")}, &memoryLocation{}, time.Second)
	got := failing.Describe(context.Background(), c)
	assert.False(t, got.Available)
	assert.Equal(t, entity.LocationNotAvailable, got.Line)

	empty := NewLocationService(&fakeProvider{}, fakeGeocoder{}, &memoryLocation{}, time.Second)
	assert.Equal(t, entity.LocationNotAvailable, empty.Describe(context.Background(), c).Line)

	ok := NewLocationService(&fakeProvider{}, fakeGeocoder{addr: &entity.GeoAddress{Line: "12 MG Road", City: "Bengaluru"}}, &memoryLocation{}, time.Second)
	got = ok.Describe(context.Background(), c)
	assert.True(t, got.Available)
	assert.Equal(t, "Bengaluru", got.City)
}
