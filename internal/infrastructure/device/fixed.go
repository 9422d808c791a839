// Package device provides location sources for runs without a GPS, such as
// the headless sync runner.
package device

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"nearbasket/internal/domain/entity"
	"nearbasket/pkg/errors"
	"nearbasket/pkg/utils"
)

// FixedLocation reports a configured coordinate as the device fix. A zero
// FixedLocation has no permission, so callers fall back to saved locations.
type FixedLocation struct {
	coordinate entity.Coordinate
	set        bool
}

// ParseFixedLocation reads "lat,lng". An empty value yields a provider
// without permission.
func ParseFixedLocation(value string) (*FixedLocation, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return &FixedLocation{}, nil
	}

	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("location %q must look like lat,lng", value)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("latitude in %q: %w", value, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("longitude in %q: %w", value, err)
	}
	if !utils.ValidCoordinate(lat, lng) {
		return nil, fmt.Errorf("location %q is out of range", value)
	}
	return &FixedLocation{coordinate: entity.Coordinate{Latitude: lat, Longitude: lng}, set: true}, nil
}

func (f *FixedLocation) HasPermission(ctx context.Context) bool {
	return f.set
}

func (f *FixedLocation) CurrentLocation(ctx context.Context) (entity.Coordinate, error) {
	if !f.set {
		return entity.Coordinate{}, errors.NotFound("Location", nil)
	}
	return f.coordinate, nil
}

func (f *FixedLocation) LastKnownLocation(ctx context.Context) (entity.Coordinate, bool, error) {
	return f.coordinate, f.set, nil
}
