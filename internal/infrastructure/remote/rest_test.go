package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nearbasket/pkg/errors"
)

type staticToken string

func (s staticToken) AccessToken(ctx context.Context) (string, error) {
	return string(s), nil
}

func newRestServer(t *testing.T, register func(e *echo.Echo)) *RestClient {
	t.Helper()
	e := echo.New()
	register(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return NewRestClient(srv.URL+"/", "anon-key", 2*time.Second)
}

func TestRestSelectEncodesFiltersAndHeaders(t *testing.T) {
	var (
		params url.Values
		header http.Header
	)
	client := newRestServer(t, func(e *echo.Echo) {
		e.GET("/rest/v1/stores", func(c echo.Context) error {
			params = c.QueryParams()
			header = c.Request().Header.Clone()
			return c.JSON(http.StatusOK, []StoreDTO{{ID: "s1", Name: "Fresh Mart"}})
		})
	})

	var stores []StoreDTO
	q := Where(Eq("subscription_status", "ACTIVE"), ILike("name", "%fresh%")).Order("name", false)
	q.Limit = 20
	require.NoError(t, client.Select(context.Background(), TableStores, q, &stores))

	require.Len(t, stores, 1)
	assert.Equal(t, "Fresh Mart", stores[0].Name)
	assert.Equal(t, "eq.ACTIVE", params.Get("subscription_status"))
	assert.Equal(t, "ilike.*fresh*", params.Get("name"))
	assert.Equal(t, "name.asc", params.Get("order"))
	assert.Equal(t, "20", params.Get("limit"))
	assert.Equal(t, "*", params.Get("select"))
	assert.Equal(t, "anon-key", header.Get("apikey"))
	assert.Equal(t, "Bearer anon-key", header.Get("Authorization"))
}

func TestRestUsesSessionTokenWhenAvailable(t *testing.T) {
	var auth string
	client := newRestServer(t, func(e *echo.Echo) {
		e.GET("/rest/v1/orders", func(c echo.Context) error {
			auth = c.Request().Header.Get("Authorization")
			return c.JSON(http.StatusOK, []OrderDTO{})
		})
	})
	client.SetTokenSource(staticToken("user-jwt"))

	var orders []OrderDTO
	require.NoError(t, client.Select(context.Background(), TableOrders, Where(Eq("customer_id", "c1")), &orders))
	assert.Equal(t, "Bearer user-jwt", auth)
}

func TestEncodeQueryInFilter(t *testing.T) {
	params, err := encodeQuery(Where(In("order_id", []string{"o1", "o2"})).Order("created_at", true))
	require.NoError(t, err)

	assert.Equal(t, `in.("o1","o2")`, params.Get("order_id"))
	assert.Equal(t, "created_at.desc", params.Get("order"))
}

func TestEncodeQueryRejectsBadColumn(t *testing.T) {
	_, err := encodeQuery(Where(Eq("name; drop table", "x")))
	assert.Error(t, err)
}

func TestRestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		header map[string]string
		code   string
	}{
		{"bad request", http.StatusBadRequest, `{"message":"invalid input syntax"}`, nil, errors.CodeBadRequest},
		{"unauthorized", http.StatusUnauthorized, `{}`, nil, errors.CodeUnauthorized},
		{"forbidden", http.StatusForbidden, `{}`, nil, errors.CodeForbidden},
		{"not found", http.StatusNotFound, `{}`, nil, errors.CodeNotFound},
		{"conflict", http.StatusConflict, `{"code":"23505"}`, nil, errors.CodeConflict},
		{"throttled", http.StatusTooManyRequests, `{}`, map[string]string{"Retry-After": "3"}, errors.CodeTooManyRequests},
		{"unavailable", http.StatusServiceUnavailable, `upstream down`, nil, errors.CodeRemote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newRestServer(t, func(e *echo.Echo) {
				e.GET("/rest/v1/stores", func(c echo.Context) error {
					for k, v := range tt.header {
						c.Response().Header().Set(k, v)
					}
					return c.Blob(tt.status, echo.MIMEApplicationJSON, []byte(tt.body))
				})
			})

			var stores []StoreDTO
			err := client.Select(context.Background(), TableStores, Query{}, &stores)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestRestBadRequestKeepsServerMessage(t *testing.T) {
	client := newRestServer(t, func(e *echo.Echo) {
		e.GET("/rest/v1/stores", func(c echo.Context) error {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "column does not exist"})
		})
	})

	var stores []StoreDTO
	err := client.Select(context.Background(), TableStores, Query{}, &stores)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, "column does not exist", appErr.Message)
}

func TestRestServerErrorIsRemoteWithStatus(t *testing.T) {
	client := newRestServer(t, func(e *echo.Echo) {
		e.GET("/rest/v1/stores", func(c echo.Context) error {
			return c.NoContent(http.StatusBadGateway)
		})
	})

	var stores []StoreDTO
	err := client.Select(context.Background(), TableStores, Query{}, &stores)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeRemote, appErr.Code)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
	assert.True(t, errors.IsRemote(err))
}

func TestRestTimeout(t *testing.T) {
	e := echo.New()
	e.GET("/rest/v1/stores", func(c echo.Context) error {
		time.Sleep(300 * time.Millisecond)
		return c.JSON(http.StatusOK, []StoreDTO{})
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	client := NewRestClient(srv.URL, "anon-key", 50*time.Millisecond)
	var stores []StoreDTO
	err := client.Select(context.Background(), TableStores, Query{}, &stores)
	assert.True(t, errors.Is(err, errors.CodeTimeout), "got %v", err)
}

func TestRestUndecodableBody(t *testing.T) {
	client := newRestServer(t, func(e *echo.Echo) {
		e.GET("/rest/v1/stores", func(c echo.Context) error {
			return c.String(http.StatusOK, "<html>maintenance</html>")
		})
	})

	var stores []StoreDTO
	err := client.Select(context.Background(), TableStores, Query{}, &stores)
	assert.True(t, errors.Is(err, errors.CodeDecode))
}

func TestRestInsertReadsRepresentation(t *testing.T) {
	var prefer string
	client := newRestServer(t, func(e *echo.Echo) {
		e.POST("/rest/v1/store_reviews", func(c echo.Context) error {
			prefer = c.Request().Header.Get("Prefer")
			var in ReviewDTO
			if err := c.Bind(&in); err != nil {
				return err
			}
			in.CustomerName = "Stored " + in.CustomerName
			return c.JSON(http.StatusCreated, []ReviewDTO{in})
		})
	})

	review := &ReviewDTO{ID: "r1", StoreID: "s1", CustomerID: "c1", CustomerName: "Asha", Rating: 4}
	require.NoError(t, client.Insert(context.Background(), TableReviews, review))

	assert.Equal(t, "return=representation", prefer)
	assert.Equal(t, "Stored Asha", review.CustomerName)
}

func TestRestUpsertSendsConflictTarget(t *testing.T) {
	var (
		onConflict string
		prefer     string
	)
	client := newRestServer(t, func(e *echo.Echo) {
		e.POST("/rest/v1/addresses", func(c echo.Context) error {
			onConflict = c.QueryParam("on_conflict")
			prefer = c.Request().Header.Get("Prefer")
			return c.JSON(http.StatusOK, []AddressDTO{{ID: "a1"}})
		})
	})

	require.NoError(t, client.Upsert(context.Background(), TableAddresses, &AddressDTO{ID: "a1"}, "id"))
	assert.Equal(t, "id", onConflict)
	assert.Contains(t, prefer, "resolution=merge-duplicates")
}

func TestRestRefusesUnfilteredWrites(t *testing.T) {
	client := NewRestClient("http://127.0.0.1:1", "anon-key", time.Second)

	err := client.Update(context.Background(), TableStores, Query{}, map[string]interface{}{"rating": 1}, nil)
	assert.True(t, errors.Is(err, errors.CodeInternal))

	err = client.Delete(context.Background(), TableStores, Query{})
	assert.True(t, errors.Is(err, errors.CodeInternal))
}

func TestVerifyOTP(t *testing.T) {
	client := newRestServer(t, func(e *echo.Echo) {
		e.POST("/auth/v1/verify", func(c echo.Context) error {
			var req verifyRequest
			if err := c.Bind(&req); err != nil {
				return err
			}
			if req.Token != "123456" || req.Type != "sms" {
				return c.JSON(http.StatusBadRequest, map[string]string{"msg": "Token has expired or is invalid"})
			}
			return c.JSON(http.StatusOK, AuthSession{
				AccessToken:  "access",
				RefreshToken: "refresh",
				ExpiresIn:    3600,
				User:         AuthUser{ID: "u1", Phone: req.Phone},
			})
		})
	})

	session, err := client.VerifyOTP(context.Background(), "+919876543210", "123456")
	require.NoError(t, err)
	assert.Equal(t, "access", session.AccessToken)
	assert.Equal(t, "+919876543210", session.User.Phone)

	_, err = client.VerifyOTP(context.Background(), "+919876543210", "000000")
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeUnauthorized, appErr.Code)
	assert.Equal(t, "The verification code is invalid or has expired", appErr.Message)
}

func TestRefreshSessionUsesRefreshGrant(t *testing.T) {
	var grant string
	client := newRestServer(t, func(e *echo.Echo) {
		e.POST("/auth/v1/token", func(c echo.Context) error {
			grant = c.QueryParam("grant_type")
			var req refreshRequest
			if err := c.Bind(&req); err != nil {
				return err
			}
			if req.RefreshToken != "refresh" {
				return c.JSON(http.StatusBadRequest, map[string]string{"error_description": "Invalid Refresh Token"})
			}
			return c.JSON(http.StatusOK, AuthSession{AccessToken: "access-2", RefreshToken: "refresh-2", User: AuthUser{ID: "u1"}})
		})
	})

	session, err := client.RefreshSession(context.Background(), "refresh")
	require.NoError(t, err)
	assert.Equal(t, "refresh_token", grant)
	assert.Equal(t, "access-2", session.AccessToken)

	_, err = client.RefreshSession(context.Background(), "stale")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))
}

func TestSignOutSendsUserToken(t *testing.T) {
	var auth string
	client := newRestServer(t, func(e *echo.Echo) {
		e.POST("/auth/v1/logout", func(c echo.Context) error {
			auth = c.Request().Header.Get("Authorization")
			return c.NoContent(http.StatusNoContent)
		})
	})

	require.NoError(t, client.SignOut(context.Background(), "access"))
	assert.Equal(t, "Bearer access", auth)
}
