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

// RecentSearches keeps the last few address search terms.
type RecentSearches interface {
	AddRecentSearch(ctx context.Context, term string) ([]string, error)
	RecentSearches(ctx context.Context) ([]string, error)
	ClearRecentSearches(ctx context.Context) error
}

type AddressUseCase struct {
	addressRepo repository.AddressRepository
	authRepo    repository.AuthRepository
	searches    RecentSearches
	validate    *Validator
}

func NewAddressUseCase(
	addressRepo repository.AddressRepository,
	authRepo repository.AuthRepository,
	searches RecentSearches,
	validate *Validator,
) *AddressUseCase {
	return &AddressUseCase{
		addressRepo: addressRepo,
		authRepo:    authRepo,
		searches:    searches,
		validate:    validate,
	}
}

type AddressInput struct {
	Type             string  `label:"Address type" validate:"oneof=HOME WORK OTHER"`
	Latitude         float64 `label:"Latitude" validate:"gte=-90,lte=90"`
	Longitude        float64 `label:"Longitude" validate:"gte=-180,lte=180"`
	FormattedAddress string  `label:"Address" validate:"max=250"`
	Line1            string  `label:"Address line 1" validate:"required,max=120"`
	Line2            string  `label:"Address line 2" validate:"max=120"`
	City             string  `label:"City" validate:"required,max=60"`
	State            string  `label:"State" validate:"required,max=60"`
	Pincode          string  `label:"Pincode" validate:"required,number,min=5,max=6"`
	ReceiverName     string  `label:"Receiver name" validate:"required,min=2,max=50,alpha_space"`
	ReceiverPhone    string  `label:"Receiver phone" validate:"required,len=10,number"`
	IsDefault        bool
}

func (in *AddressInput) normalize() {
	in.Type = strings.ToUpper(strings.TrimSpace(in.Type))
	if in.Type == "" {
		in.Type = entity.AddressTypeHome
	}
	for _, s := range []*string{&in.FormattedAddress, &in.Line1, &in.Line2, &in.City, &in.State, &in.Pincode, &in.ReceiverName} {
		*s = strings.TrimSpace(*s)
	}
	in.ReceiverPhone = strings.Join(strings.Fields(in.ReceiverPhone), "")
}

func (in *AddressInput) apply(a *entity.Address) {
	a.Type = in.Type
	a.Latitude = in.Latitude
	a.Longitude = in.Longitude
	a.FormattedAddress = in.FormattedAddress
	a.Line1 = in.Line1
	a.Line2 = in.Line2
	a.City = in.City
	a.State = in.State
	a.Pincode = in.Pincode
	a.ReceiverName = in.ReceiverName
	a.ReceiverPhone = in.ReceiverPhone
	a.IsDefault = in.IsDefault
}

func (uc *AddressUseCase) FetchAddresses(ctx context.Context) result.Result[[]*entity.Address] {
	customerID, err := uc.authRepo.CurrentCustomerID(ctx)
	if err != nil {
		return result.Failure[[]*entity.Address](err)
	}
	addresses, err := uc.addressRepo.FetchAddresses(ctx, customerID)
	return result.From(addresses, err)
}

func (uc *AddressUseCase) AddAddress(ctx context.Context, input AddressInput) result.Result[*entity.Address] {
	input.normalize()
	if err := uc.validate.Struct(input); err != nil {
		return result.Failure[*entity.Address](err)
	}
	customerID, err := uc.authRepo.CurrentCustomerID(ctx)
	if err != nil {
		return result.Failure[*entity.Address](err)
	}

	address := &entity.Address{CustomerID: customerID}
	input.apply(address)
	saved, err := uc.addressRepo.AddAddress(ctx, address)
	return result.From(saved, err)
}

// UpdateAddress rewrites an address. Clearing IsDefault on the current
// default is refused: a customer with addresses keeps one default.
func (uc *AddressUseCase) UpdateAddress(ctx context.Context, id string, input AddressInput) result.Result[*entity.Address] {
	input.normalize()
	if err := uc.validate.Struct(input); err != nil {
		return result.Failure[*entity.Address](err)
	}
	customerID, err := uc.authRepo.CurrentCustomerID(ctx)
	if err != nil {
		return result.Failure[*entity.Address](err)
	}

	address, err := uc.addressRepo.GetAddress(ctx, id)
	if err != nil {
		return result.Failure[*entity.Address](err)
	}
	if address.CustomerID != customerID {
		return result.Failure[*entity.Address](errors.Forbidden("This address belongs to another account", nil))
	}
	if address.IsDefault && !input.IsDefault {
		return result.Failure[*entity.Address](errors.BadRequest("Choose another default address first", nil))
	}

	input.apply(address)
	saved, err := uc.addressRepo.UpdateAddress(ctx, address)
	return result.From(saved, err)
}

func (uc *AddressUseCase) DeleteAddress(ctx context.Context, id string) result.Result[bool] {
	customerID, err := uc.authRepo.CurrentCustomerID(ctx)
	if err != nil {
		return result.Failure[bool](err)
	}
	address, err := uc.addressRepo.GetAddress(ctx, id)
	if err != nil {
		return result.Failure[bool](err)
	}
	if address.CustomerID != customerID {
		return result.Failure[bool](errors.Forbidden("This address belongs to another account", nil))
	}
	if err := uc.addressRepo.DeleteAddress(ctx, id); err != nil {
		return result.Failure[bool](err)
	}
	return result.Success(true)
}

func (uc *AddressUseCase) SetDefaultAddress(ctx context.Context, id string) result.Result[bool] {
	customerID, err := uc.authRepo.CurrentCustomerID(ctx)
	if err != nil {
		return result.Failure[bool](err)
	}
	if err := uc.addressRepo.SetDefaultAddress(ctx, customerID, id); err != nil {
		return result.Failure[bool](err)
	}
	return result.Success(true)
}

func (uc *AddressUseCase) GetDefaultAddress(ctx context.Context) result.Result[*entity.Address] {
	customerID, err := uc.authRepo.CurrentCustomerID(ctx)
	if err != nil {
		return result.Failure[*entity.Address](err)
	}
	address, err := uc.addressRepo.GetDefaultAddress(ctx, customerID)
	return result.From(address, err)
}

func (uc *AddressUseCase) ObserveAddresses(ctx context.Context) (*observable.Stream[result.Result[[]*entity.Address]], error) {
	customerID, err := uc.authRepo.CurrentCustomerID(ctx)
	if err != nil {
		return nil, err
	}
	return uc.addressRepo.ObserveAddresses(customerID), nil
}

// AddRecentSearch remembers an address search term and returns the updated
// list, most recent first.
func (uc *AddressUseCase) AddRecentSearch(ctx context.Context, term string) result.Result[[]string] {
	terms, err := uc.searches.AddRecentSearch(ctx, term)
	return result.From(terms, err)
}

func (uc *AddressUseCase) RecentSearches(ctx context.Context) result.Result[[]string] {
	terms, err := uc.searches.RecentSearches(ctx)
	return result.From(terms, err)
}

func (uc *AddressUseCase) ClearRecentSearches(ctx context.Context) result.Result[bool] {
	if err := uc.searches.ClearRecentSearches(ctx); err != nil {
		return result.Failure[bool](err)
	}
	return result.Success(true)
}
