package usecase

import (
	"context"
	"io"
	"strings"

	"nearbasket/internal/domain/entity"
	"nearbasket/internal/domain/repository"
	"nearbasket/pkg/errors"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

type AuthUseCase struct {
	authRepo           repository.AuthRepository
	validate           *Validator
	defaultCountryCode string
}

func NewAuthUseCase(authRepo repository.AuthRepository, validate *Validator, defaultCountryCode string) *AuthUseCase {
	return &AuthUseCase{
		authRepo:           authRepo,
		validate:           validate,
		defaultCountryCode: defaultCountryCode,
	}
}

type PhoneInput struct {
	CountryCode string `label:"Country code" validate:"required,dial_code"`
	Phone       string `label:"Phone number" validate:"required,len=10,number"`
}

// E164 joins the country code and the local number.
func (in PhoneInput) E164() string {
	return in.CountryCode + in.Phone
}

type VerifyOTPInput struct {
	PhoneInput
	Code string `label:"Verification code" validate:"required,len=6,number"`
}

type ProfileInput struct {
	Name      string  `label:"Name" validate:"required,min=2,max=50,alpha_space"`
	Address   string  `label:"Address" validate:"max=250"`
	Latitude  float64 `label:"Latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `label:"Longitude" validate:"gte=-180,lte=180"`
}

var profileImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

func (uc *AuthUseCase) normalize(in *PhoneInput) {
	in.CountryCode = strings.TrimSpace(in.CountryCode)
	if in.CountryCode == "" {
		in.CountryCode = uc.defaultCountryCode
	}
	in.Phone = strings.Join(strings.Fields(in.Phone), "")
}

// SendOTP texts a verification code and returns the number it went to.
func (uc *AuthUseCase) SendOTP(ctx context.Context, input PhoneInput) result.Result[string] {
	uc.normalize(&input)
	if err := uc.validate.Struct(input); err != nil {
		return result.Failure[string](err)
	}
	phone := input.E164()
	if err := uc.authRepo.SendOTP(ctx, phone); err != nil {
		return result.Failure[string](err)
	}
	return result.Success(phone)
}

func (uc *AuthUseCase) VerifyOTP(ctx context.Context, input VerifyOTPInput) result.Result[*entity.Customer] {
	uc.normalize(&input.PhoneInput)
	input.Code = strings.TrimSpace(input.Code)
	if err := uc.validate.Struct(input); err != nil {
		return result.Failure[*entity.Customer](err)
	}
	customer, err := uc.authRepo.VerifyOTP(ctx, input.E164(), input.Code)
	return result.From(customer, err)
}

func (uc *AuthUseCase) CurrentCustomer(ctx context.Context) result.Result[*entity.Customer] {
	customer, err := uc.authRepo.CurrentCustomer(ctx)
	return result.From(customer, err)
}

// ObserveCurrentCustomer streams the signed-in customer's cached profile.
func (uc *AuthUseCase) ObserveCurrentCustomer(ctx context.Context) (*observable.Stream[result.Result[*entity.Customer]], error) {
	id, err := uc.authRepo.CurrentCustomerID(ctx)
	if err != nil {
		return nil, err
	}
	return uc.authRepo.ObserveCustomer(id), nil
}

func (uc *AuthUseCase) UpdateProfile(ctx context.Context, input ProfileInput) result.Result[*entity.Customer] {
	input.Name = strings.TrimSpace(input.Name)
	input.Address = strings.TrimSpace(input.Address)
	if err := uc.validate.Struct(input); err != nil {
		return result.Failure[*entity.Customer](err)
	}

	customer, err := uc.authRepo.CurrentCustomer(ctx)
	if err != nil {
		return result.Failure[*entity.Customer](err)
	}
	customer.Name = input.Name
	customer.Address = input.Address
	customer.Latitude = input.Latitude
	customer.Longitude = input.Longitude
	saved, err := uc.authRepo.UpdateProfile(ctx, customer)
	return result.From(saved, err)
}

func (uc *AuthUseCase) UploadProfileImage(ctx context.Context, data io.Reader, contentType string) result.Result[*entity.Customer] {
	if !profileImageTypes[strings.ToLower(contentType)] {
		return result.Failure[*entity.Customer](errors.Validation("Profile image must be a JPEG, PNG or WebP file"))
	}
	id, err := uc.authRepo.CurrentCustomerID(ctx)
	if err != nil {
		return result.Failure[*entity.Customer](err)
	}
	saved, err := uc.authRepo.UploadProfileImage(ctx, id, data, contentType)
	return result.From(saved, err)
}

func (uc *AuthUseCase) IsSignedIn(ctx context.Context) bool {
	return uc.authRepo.IsSignedIn(ctx)
}

func (uc *AuthUseCase) SignOut(ctx context.Context) result.Result[bool] {
	if err := uc.authRepo.SignOut(ctx); err != nil {
		return result.Failure[bool](err)
	}
	return result.Success(true)
}
