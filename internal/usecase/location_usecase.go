package usecase

import (
	"context"

	"nearbasket/internal/domain/entity"
	"nearbasket/internal/domain/service"
	"nearbasket/pkg/result"
)

// CurrentPlace is the device position with its reverse-geocoded address.
type CurrentPlace struct {
	Coordinate entity.Coordinate
	Address    entity.GeoAddress
}

type LocationUseCase struct {
	location *service.LocationService
}

func NewLocationUseCase(location *service.LocationService) *LocationUseCase {
	return &LocationUseCase{location: location}
}

func (uc *LocationUseCase) CurrentCoordinate(ctx context.Context) result.Result[entity.Coordinate] {
	c, err := uc.location.CurrentCoordinate(ctx)
	return result.From(c, err)
}

// CurrentPlace never fails on geocoding: an unresolved address carries the
// "Location not available" placeholder.
func (uc *LocationUseCase) CurrentPlace(ctx context.Context) result.Result[CurrentPlace] {
	c, err := uc.location.CurrentCoordinate(ctx)
	if err != nil {
		return result.Failure[CurrentPlace](err)
	}
	return result.Success(CurrentPlace{Coordinate: c, Address: uc.location.Describe(ctx, c)})
}
