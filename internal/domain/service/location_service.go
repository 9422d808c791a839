package service

import (
	"context"
	stderrors "errors"
	"time"

	"nearbasket/internal/domain/entity"
	"nearbasket/pkg/errors"
	"nearbasket/pkg/logger"
	"nearbasket/pkg/utils"
)

// LocationMemory persists the last successful fix across restarts.
type LocationMemory interface {
	LastKnownLocation(ctx context.Context) (entity.Coordinate, bool, error)
	SetLastKnownLocation(ctx context.Context, c entity.Coordinate) error
}

type LocationService struct {
	provider LocationProvider
	geocoder Geocoder
	memory   LocationMemory
	timeout  time.Duration
}

func NewLocationService(provider LocationProvider, geocoder Geocoder, memory LocationMemory, timeout time.Duration) *LocationService {
	return &LocationService{
		provider: provider,
		geocoder: geocoder,
		memory:   memory,
		timeout:  timeout,
	}
}

// CurrentCoordinate asks the device for a fix, bounded by the configured
// timeout. Without permission, or when the fix fails, it falls back to the
// device's last known location and then to the persisted one.
func (s *LocationService) CurrentCoordinate(ctx context.Context) (entity.Coordinate, error) {
	if !s.provider.HasPermission(ctx) {
		if c, ok := s.lastKnown(ctx); ok {
			return c, nil
		}
		return entity.Coordinate{}, errors.Forbidden("Location permission is required to find stores near you", nil)
	}

	fixCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	c, err := s.provider.CurrentLocation(fixCtx)
	if err == nil && utils.ValidCoordinate(c.Latitude, c.Longitude) {
		if err := s.memory.SetLastKnownLocation(ctx, c); err != nil {
			logger.LogSyncError("location", "persist", err)
		}
		return c, nil
	}
	if err != nil {
		logger.Warn("current location unavailable: %v", err)
	}

	if c, ok := s.lastKnown(ctx); ok {
		return c, nil
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return entity.Coordinate{}, errors.Timeout("Finding your location took too long", err)
	}
	return entity.Coordinate{}, errors.NotFound("Location", err)
}

func (s *LocationService) lastKnown(ctx context.Context) (entity.Coordinate, bool) {
	if c, ok, err := s.provider.LastKnownLocation(ctx); err == nil && ok {
		return c, true
	} else if err != nil {
		logger.Debug("device last known location failed: %v", err)
	}

	c, ok, err := s.memory.LastKnownLocation(ctx)
	if err != nil {
		logger.Debug("saved location unavailable: %v", err)
		return entity.Coordinate{}, false
	}
	return c, ok
}

// Describe reverse-geocodes c. It never fails: when nothing can be resolved
// the result carries the "Location not available" placeholder.
func (s *LocationService) Describe(ctx context.Context, c entity.Coordinate) entity.GeoAddress {
	if s.geocoder == nil {
		return entity.UnavailableGeoAddress()
	}
	addr, err := s.geocoder.ReverseGeocode(ctx, c)
	if err != nil || addr == nil || addr.Line == "" {
		if err != nil {
			logger.Debug("reverse geocode failed: %v", err)
		}
		return entity.UnavailableGeoAddress()
	}
	out := *addr
	out.Available = true
	return out
}
