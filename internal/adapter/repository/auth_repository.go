package repository

import (
	"context"
	"io"

	"nearbasket/internal/domain/entity"
	"nearbasket/internal/domain/repository"
	"nearbasket/internal/domain/service"
	"nearbasket/internal/infrastructure/cache"
	"nearbasket/internal/infrastructure/preferences"
	"nearbasket/internal/infrastructure/ratelimit"
	"nearbasket/internal/infrastructure/remote"
	"nearbasket/internal/infrastructure/session"
	"nearbasket/pkg/errors"
	"nearbasket/pkg/logger"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

const profileImageFolder = "profiles"

type authRepository struct {
	auth     remote.Authenticator
	gateway  *remote.Gateway
	cache    *cache.DB
	prefs    *preferences.Store
	sessions *session.Manager
	limiter  *ratelimit.RateLimiter
	storage  service.ObjectStorage
}

func NewAuthRepository(
	auth remote.Authenticator,
	gateway *remote.Gateway,
	cache *cache.DB,
	prefs *preferences.Store,
	sessions *session.Manager,
	limiter *ratelimit.RateLimiter,
	storage service.ObjectStorage,
) repository.AuthRepository {
	return &authRepository{
		auth:     auth,
		gateway:  gateway,
		cache:    cache,
		prefs:    prefs,
		sessions: sessions,
		limiter:  limiter,
		storage:  storage,
	}
}

func (r *authRepository) SendOTP(ctx context.Context, phone string) error {
	if ok, wait := r.limiter.Allow(phone, ratelimit.ActionSendOTP); !ok {
		return errors.TooManyRequests("Please wait before requesting another code", wait)
	}
	if err := r.auth.SendOTP(ctx, phone); err != nil {
		// Nothing was sent, so the cooldown should not apply.
		r.limiter.Reset(phone, ratelimit.ActionSendOTP)
		return err
	}
	logger.Info("verification code sent to %s", maskPhone(phone))
	return nil
}

func (r *authRepository) VerifyOTP(ctx context.Context, phone, code string) (*entity.Customer, error) {
	if ok, wait := r.limiter.Allow(phone, ratelimit.ActionVerifyOTP); !ok {
		return nil, errors.TooManyRequests("Too many attempts, please try again later", wait)
	}

	authSession, err := r.auth.VerifyOTP(ctx, phone, code)
	if err != nil {
		return nil, err
	}
	if authSession.User.Phone == "" {
		authSession.User.Phone = phone
	}
	if err := r.sessions.Save(authSession); err != nil {
		return nil, err
	}

	customer, err := r.ensureCustomer(ctx, authSession.User.ID, phone)
	if err != nil {
		return nil, err
	}
	if err := r.cache.UpsertCustomer(ctx, customer); err != nil {
		return nil, err
	}
	if err := r.prefs.SetCurrentCustomerID(ctx, customer.ID); err != nil {
		return nil, err
	}

	r.limiter.Reset(phone, ratelimit.ActionSendOTP)
	r.limiter.Reset(phone, ratelimit.ActionVerifyOTP)
	logger.Info("customer %s signed in", customer.ID)
	return customer, nil
}

// ensureCustomer loads the customer row of a verified user, creating it on
// first sign-in. The row id is the auth user id.
func (r *authRepository) ensureCustomer(ctx context.Context, userID, phone string) (*entity.Customer, error) {
	dto, err := r.gateway.GetCustomer(ctx, userID)
	if err == nil {
		return dto.ToEntity(), nil
	}
	if !errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}

	dto = &remote.CustomerDTO{ID: userID, Phone: phone}
	if err := r.gateway.CreateCustomer(ctx, dto); err != nil {
		if !errors.Is(err, errors.CodeConflict) {
			return nil, err
		}
		// The phone already has a customer row under another id.
		existing, lookupErr := r.gateway.GetCustomerByPhone(ctx, phone)
		if lookupErr != nil {
			return nil, err
		}
		return existing.ToEntity(), nil
	}
	logger.Info("created customer %s", dto.ID)
	return dto.ToEntity(), nil
}

func (r *authRepository) CurrentCustomerID(ctx context.Context) (string, error) {
	id, err := r.prefs.CurrentCustomerID(ctx)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", errors.Unauthorized("Please sign in to continue", nil)
	}
	return id, nil
}

func (r *authRepository) CurrentCustomer(ctx context.Context) (*entity.Customer, error) {
	id, err := r.CurrentCustomerID(ctx)
	if err != nil {
		return nil, err
	}

	dto, err := r.gateway.GetCustomer(ctx, id)
	if err == nil {
		customer := dto.ToEntity()
		if err := r.cache.UpsertCustomer(ctx, customer); err != nil {
			return nil, err
		}
		return customer, nil
	}
	if !canFallBack(err) || errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}

	cached, cacheErr := r.cache.GetCustomer(ctx, id)
	if cacheErr != nil {
		return nil, err
	}
	return cached, nil
}

func (r *authRepository) ObserveCustomer(customerID string) *observable.Stream[result.Result[*entity.Customer]] {
	return r.cache.WatchCustomer(customerID)
}

func (r *authRepository) UpdateProfile(ctx context.Context, customer *entity.Customer) (*entity.Customer, error) {
	dto := remote.NewCustomerDTO(customer)
	if err := r.gateway.UpdateCustomer(ctx, dto); err != nil {
		return nil, err
	}
	saved := dto.ToEntity()
	if err := r.cache.UpsertCustomer(ctx, saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// UploadProfileImage stores the image, points the profile at it and then
// removes the previous image. A failed removal only leaves an orphan object.
func (r *authRepository) UploadProfileImage(ctx context.Context, customerID string, data io.Reader, contentType string) (*entity.Customer, error) {
	dto, err := r.gateway.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	customer := dto.ToEntity()
	previous := customer.ProfileImageURL

	url, err := r.storage.Upload(ctx, profileImageFolder+"/"+customerID, data, contentType)
	if err != nil {
		return nil, err
	}
	customer.ProfileImageURL = url

	saved, err := r.UpdateProfile(ctx, customer)
	if err != nil {
		if delErr := r.storage.Delete(ctx, url); delErr != nil {
			logger.Warn("failed to remove unused profile image %s: %v", url, delErr)
		}
		return nil, err
	}

	if previous != "" && previous != url {
		if err := r.storage.Delete(ctx, previous); err != nil && !errors.Is(err, errors.CodeNotFound) {
			logger.Warn("failed to remove old profile image %s: %v", previous, err)
		}
	}
	return saved, nil
}

func (r *authRepository) IsSignedIn(ctx context.Context) bool {
	if !r.sessions.IsSignedIn() {
		return false
	}
	id, err := r.prefs.CurrentCustomerID(ctx)
	return err == nil && id != ""
}

// SignOut always clears local state. Revoking the token remotely is best
// effort: an offline device must still be able to sign out.
func (r *authRepository) SignOut(ctx context.Context) error {
	if s, err := r.sessions.Current(); err == nil && s != nil {
		if err := r.auth.SignOut(ctx, s.AccessToken); err != nil {
			logger.Warn("remote sign-out failed: %v", err)
		}
	}

	customerID, err := r.prefs.CurrentCustomerID(ctx)
	if err != nil {
		return err
	}
	if err := r.sessions.Clear(); err != nil {
		return err
	}
	if customerID != "" {
		if err := r.cache.ClearCustomerData(ctx, customerID); err != nil {
			return err
		}
	}
	if err := r.prefs.ClearSession(ctx); err != nil {
		return err
	}
	logger.Info("customer %s signed out", customerID)
	return nil
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return "******" + phone[len(phone)-4:]
}
