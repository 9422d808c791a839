package usecase

import (
	"context"
	"strings"

	"nearbasket/internal/domain/entity"
	"nearbasket/internal/domain/repository"
	"nearbasket/pkg/errors"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

type StoreUseCase struct {
	storeRepo     repository.StoreRepository
	validate      *Validator
	defaultRadius float64
}

func NewStoreUseCase(storeRepo repository.StoreRepository, validate *Validator, defaultRadiusKm float64) *StoreUseCase {
	return &StoreUseCase{
		storeRepo:     storeRepo,
		validate:      validate,
		defaultRadius: defaultRadiusKm,
	}
}

// NearbyInput locates the customer. A zero RadiusKm means the configured
// default.
type NearbyInput struct {
	Latitude  float64 `label:"Latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `label:"Longitude" validate:"gte=-180,lte=180"`
	RadiusKm  float64 `label:"Radius" validate:"gt=0,lte=100"`
}

func (uc *StoreUseCase) NearbyStores(ctx context.Context, input NearbyInput) result.Result[[]*entity.Store] {
	if input.RadiusKm == 0 {
		input.RadiusKm = uc.defaultRadius
	}
	if err := uc.validate.Struct(input); err != nil {
		return result.Failure[[]*entity.Store](err)
	}
	stores, err := uc.storeRepo.FetchNearbyStores(ctx, input.Latitude, input.Longitude, input.RadiusKm)
	return result.From(stores, err)
}

func (uc *StoreUseCase) SearchStores(ctx context.Context, query string) result.Result[[]*entity.Store] {
	query = strings.TrimSpace(query)
	if query == "" {
		return result.Failure[[]*entity.Store](errors.Validation("Enter a store name to search"))
	}
	stores, err := uc.storeRepo.SearchStores(ctx, query)
	return result.From(stores, err)
}

func (uc *StoreUseCase) GetStore(ctx context.Context, id string) result.Result[*entity.Store] {
	if strings.TrimSpace(id) == "" {
		return result.Failure[*entity.Store](errors.Validation("Store is required"))
	}
	store, err := uc.storeRepo.GetStore(ctx, id)
	return result.From(store, err)
}

func (uc *StoreUseCase) ObserveStores() *observable.Stream[result.Result[[]*entity.Store]] {
	return uc.storeRepo.ObserveStores()
}

func (uc *StoreUseCase) ObserveStore(id string) *observable.Stream[result.Result[*entity.Store]] {
	return uc.storeRepo.ObserveStore(id)
}
