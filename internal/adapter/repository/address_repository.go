package repository

import (
	"context"

	"nearbasket/internal/domain/entity"
	"nearbasket/internal/domain/repository"
	"nearbasket/internal/infrastructure/cache"
	"nearbasket/internal/infrastructure/remote"
	"nearbasket/pkg/errors"
	"nearbasket/pkg/logger"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

// addressRepository writes to the backend first and mirrors into the cache
// only after the backend accepted the change.
//
// Switching the default takes two remote calls (clear, then mark) and is only
// eventually consistent on the backend. Locally it is a single transaction.
type addressRepository struct {
	gateway *remote.Gateway
	cache   *cache.DB
}

func NewAddressRepository(gateway *remote.Gateway, cache *cache.DB) repository.AddressRepository {
	return &addressRepository{
		gateway: gateway,
		cache:   cache,
	}
}

func (r *addressRepository) FetchAddresses(ctx context.Context, customerID string) ([]*entity.Address, error) {
	dtos, err := r.gateway.FetchAddresses(ctx, customerID)
	if err == nil {
		addresses := make([]*entity.Address, 0, len(dtos))
		for i := range dtos {
			addresses = append(addresses, dtos[i].ToEntity())
		}
		if err := r.cache.ReplaceAddresses(ctx, customerID, addresses); err != nil {
			return nil, err
		}
		return r.cache.GetAddresses(ctx, customerID)
	}

	cached, cacheErr := r.cache.GetAddresses(ctx, customerID)
	if cacheErr != nil || len(cached) == 0 {
		return nil, err
	}
	logger.Warn("serving %d cached addresses: %v", len(cached), err)
	return cached, nil
}

func (r *addressRepository) AddAddress(ctx context.Context, address *entity.Address) (*entity.Address, error) {
	if !address.IsDefault {
		existing, err := r.cache.GetAddresses(ctx, address.CustomerID)
		if err != nil {
			return nil, err
		}
		address.IsDefault = len(existing) == 0
	}

	if address.IsDefault {
		if err := r.gateway.ClearDefaultAddress(ctx, address.CustomerID); err != nil {
			return nil, err
		}
	}

	dto := remote.NewAddressDTO(address)
	if err := r.gateway.InsertAddress(ctx, dto); err != nil {
		return nil, err
	}

	saved := dto.ToEntity()
	if err := r.cache.UpsertAddress(ctx, saved); err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *addressRepository) UpdateAddress(ctx context.Context, address *entity.Address) (*entity.Address, error) {
	if address.IsDefault {
		if err := r.gateway.ClearDefaultAddress(ctx, address.CustomerID); err != nil {
			return nil, err
		}
	}

	dto := remote.NewAddressDTO(address)
	if err := r.gateway.UpdateAddress(ctx, dto); err != nil {
		return nil, err
	}

	saved := dto.ToEntity()
	if err := r.cache.UpsertAddress(ctx, saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// DeleteAddress hands the default flag to the customer's oldest remaining
// address when the deleted one was the default. A failed remote promotion is
// logged; the next refresh reconciles it.
func (r *addressRepository) DeleteAddress(ctx context.Context, id string) error {
	successor, err := r.successor(ctx, id)
	if err != nil {
		return err
	}
	if err := r.gateway.DeleteAddress(ctx, id); err != nil {
		return err
	}

	successorID := ""
	if successor != nil {
		successorID = successor.ID
		if err := r.gateway.MarkDefaultAddress(ctx, successorID); err != nil {
			logger.LogSyncError("address", "promote default", err)
		}
	}
	return r.cache.DeleteAddress(ctx, id, successorID)
}

func (r *addressRepository) successor(ctx context.Context, id string) (*entity.Address, error) {
	address, err := r.cache.GetAddress(ctx, id)
	if errors.Is(err, errors.CodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !address.IsDefault {
		return nil, nil
	}

	others, err := r.cache.GetAddresses(ctx, address.CustomerID)
	if err != nil {
		return nil, err
	}
	for _, a := range others {
		if a.ID != id {
			return a, nil
		}
	}
	return nil, nil
}

func (r *addressRepository) GetAddress(ctx context.Context, id string) (*entity.Address, error) {
	return r.cache.GetAddress(ctx, id)
}

// SetDefaultAddress clears the old default and marks the new one remotely,
// then applies both locally in one transaction.
func (r *addressRepository) SetDefaultAddress(ctx context.Context, customerID, addressID string) error {
	if err := r.gateway.ClearDefaultAddress(ctx, customerID); err != nil {
		return err
	}
	if err := r.gateway.MarkDefaultAddress(ctx, addressID); err != nil {
		return err
	}
	return r.cache.SetDefaultAddress(ctx, customerID, addressID)
}

func (r *addressRepository) GetDefaultAddress(ctx context.Context, customerID string) (*entity.Address, error) {
	return r.cache.GetDefaultAddress(ctx, customerID)
}

func (r *addressRepository) ObserveAddresses(customerID string) *observable.Stream[result.Result[[]*entity.Address]] {
	return r.cache.WatchAddresses(customerID)
}
