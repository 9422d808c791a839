package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nearbasket/internal/domain/entity"
	"nearbasket/pkg/errors"
)

func TestSendOTPUsesDefaultCountryCode(t *testing.T) {
	auth := new(mockAuthRepo)
	uc := NewAuthUseCase(auth, NewValidator(), "+91")

	auth.On("SendOTP", mock.Anything, "+919876543210").Return(nil).Once()

	r := uc.SendOTP(context.Background(), PhoneInput{Phone: "98765 43210"})
	require.True(t, r.IsSuccess(), r.Message())
	assert.Equal(t, "+919876543210", r.Data())
	auth.AssertExpectations(t)
}

func TestSendOTPRejectsShortNumber(t *testing.T) {
	auth := new(mockAuthRepo)
	uc := NewAuthUseCase(auth, NewValidator(), "+91")

	r := uc.SendOTP(context.Background(), PhoneInput{Phone: "98765"})
	assert.True(t, errors.Is(r.Err(), errors.CodeValidation))
	auth.AssertNotCalled(t, "SendOTP", mock.Anything, mock.Anything)
}

func TestVerifyOTPValidatesCode(t *testing.T) {
	auth := new(mockAuthRepo)
	uc := NewAuthUseCase(auth, NewValidator(), "+91")

	r := uc.VerifyOTP(context.Background(), VerifyOTPInput{PhoneInput: PhoneInput{Phone: "9876543210"}, Code: "12a456"})
	assert.True(t, errors.Is(r.Err(), errors.CodeValidation))
	auth.AssertNotCalled(t, "VerifyOTP", mock.Anything, mock.Anything, mock.Anything)

	auth.On("VerifyOTP", mock.Anything, "+449876543210", "123456").Return(&entity.Customer{ID: "c1"}, nil)
	r = uc.VerifyOTP(context.Background(), VerifyOTPInput{PhoneInput: PhoneInput{CountryCode: "+44", Phone: "9876543210"}, Code: " 123456 "})
	require.True(t, r.IsSuccess(), r.Message())
	assert.Equal(t, "c1", r.Data().ID)
}

func TestUpdateProfileKeepsIdentity(t *testing.T) {
	auth := new(mockAuthRepo)
	uc := NewAuthUseCase(auth, NewValidator(), "+91")

	auth.On("CurrentCustomer", mock.Anything).Return(&entity.Customer{ID: "c1", Phone: "+919876543210"}, nil)
	auth.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(c *entity.Customer) bool {
		return c.ID == "c1" && c.Phone == "+919876543210" && c.Name == "Asha Rao"
	})).Return(&entity.Customer{ID: "c1", Name: "Asha Rao"}, nil).Once()

	r := uc.UpdateProfile(context.Background(), ProfileInput{Name: " Asha Rao ", Latitude: 12.97, Longitude: 77.59})
	require.True(t, r.IsSuccess(), r.Message())
	auth.AssertExpectations(t)
}

func TestUploadProfileImageRejectsUnknownType(t *testing.T) {
	auth := new(mockAuthRepo)
	uc := NewAuthUseCase(auth, NewValidator(), "+91")

	r := uc.UploadProfileImage(context.Background(), strings.NewReader("gif"), "image/gif")
	assert.True(t, errors.Is(r.Err(), errors.CodeValidation))
	auth.AssertNotCalled(t, "UploadProfileImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
