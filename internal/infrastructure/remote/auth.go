package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"nearbasket/pkg/errors"
)

// Authenticator is the hosted phone-OTP auth service.
type Authenticator interface {
	SendOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, code string) (*AuthSession, error)
	RefreshSession(ctx context.Context, refreshToken string) (*AuthSession, error)
	SignOut(ctx context.Context, accessToken string) error
}

type AuthUser struct {
	ID    string `json:"id"`
	Phone string `json:"phone"`
}

type AuthSession struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int64    `json:"expires_in"`
	ExpiresAt    int64    `json:"expires_at"`
	User         AuthUser `json:"user"`
}

type otpRequest struct {
	Phone string `json:"phone"`
}

type verifyRequest struct {
	Phone string `json:"phone"`
	Token string `json:"token"`
	Type  string `json:"type"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (c *RestClient) SendOTP(ctx context.Context, phone string) error {
	_, err := c.do(ctx, http.MethodPost, authPath+"otp", nil, otpRequest{Phone: phone}, nil, false)
	return err
}

func (c *RestClient) VerifyOTP(ctx context.Context, phone, code string) (*AuthSession, error) {
	body, err := c.do(ctx, http.MethodPost, authPath+"verify", nil, verifyRequest{Phone: phone, Token: code, Type: "sms"}, nil, false)
	if err != nil {
		if errors.Is(err, errors.CodeBadRequest) || errors.Is(err, errors.CodeUnauthorized) || errors.Is(err, errors.CodeForbidden) {
			return nil, errors.Unauthorized("The verification code is invalid or has expired", err)
		}
		return nil, err
	}
	return decodeSession(body)
}

func (c *RestClient) RefreshSession(ctx context.Context, refreshToken string) (*AuthSession, error) {
	params := url.Values{"grant_type": []string{"refresh_token"}}
	body, err := c.do(ctx, http.MethodPost, authPath+"token", params, refreshRequest{RefreshToken: refreshToken}, nil, false)
	if err != nil {
		if errors.Is(err, errors.CodeBadRequest) {
			return nil, errors.Unauthorized("Your session has expired, please sign in again", err)
		}
		return nil, err
	}
	return decodeSession(body)
}

func (c *RestClient) SignOut(ctx context.Context, accessToken string) error {
	headers := map[string]string{"Authorization": "Bearer " + accessToken}
	_, err := c.do(ctx, http.MethodPost, authPath+"logout", nil, nil, headers, false)
	return err
}

func decodeSession(body []byte) (*AuthSession, error) {
	var session AuthSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, errors.Decode("Unexpected response from the server", err)
	}
	if session.AccessToken == "" || session.User.ID == "" {
		return nil, errors.Decode("Unexpected response from the server", nil)
	}
	return &session, nil
}
