package usecase

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"nearbasket/internal/domain/entity"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

type mockAuthRepo struct{ mock.Mock }

func (m *mockAuthRepo) SendOTP(ctx context.Context, phone string) error {
	return m.Called(ctx, phone).Error(0)
}

func (m *mockAuthRepo) VerifyOTP(ctx context.Context, phone, code string) (*entity.Customer, error) {
	args := m.Called(ctx, phone, code)
	c, _ := args.Get(0).(*entity.Customer)
	return c, args.Error(1)
}

func (m *mockAuthRepo) CurrentCustomerID(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockAuthRepo) CurrentCustomer(ctx context.Context) (*entity.Customer, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).(*entity.Customer)
	return c, args.Error(1)
}

func (m *mockAuthRepo) ObserveCustomer(customerID string) *observable.Stream[result.Result[*entity.Customer]] {
	s, _ := m.Called(customerID).Get(0).(*observable.Stream[result.Result[*entity.Customer]])
	return s
}

func (m *mockAuthRepo) UpdateProfile(ctx context.Context, customer *entity.Customer) (*entity.Customer, error) {
	args := m.Called(ctx, customer)
	c, _ := args.Get(0).(*entity.Customer)
	return c, args.Error(1)
}

func (m *mockAuthRepo) UploadProfileImage(ctx context.Context, customerID string, data io.Reader, contentType string) (*entity.Customer, error) {
	args := m.Called(ctx, customerID, data, contentType)
	c, _ := args.Get(0).(*entity.Customer)
	return c, args.Error(1)
}

func (m *mockAuthRepo) IsSignedIn(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *mockAuthRepo) SignOut(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockStoreRepo struct{ mock.Mock }

func (m *mockStoreRepo) FetchNearbyStores(ctx context.Context, lat, lng, radiusKm float64) ([]*entity.Store, error) {
	args := m.Called(ctx, lat, lng, radiusKm)
	s, _ := args.Get(0).([]*entity.Store)
	return s, args.Error(1)
}

func (m *mockStoreRepo) SearchStores(ctx context.Context, query string) ([]*entity.Store, error) {
	args := m.Called(ctx, query)
	s, _ := args.Get(0).([]*entity.Store)
	return s, args.Error(1)
}

func (m *mockStoreRepo) GetStore(ctx context.Context, id string) (*entity.Store, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*entity.Store)
	return s, args.Error(1)
}

func (m *mockStoreRepo) ObserveStores() *observable.Stream[result.Result[[]*entity.Store]] {
	s, _ := m.Called().Get(0).(*observable.Stream[result.Result[[]*entity.Store]])
	return s
}

func (m *mockStoreRepo) ObserveStore(id string) *observable.Stream[result.Result[*entity.Store]] {
	s, _ := m.Called(id).Get(0).(*observable.Stream[result.Result[*entity.Store]])
	return s
}

type mockProductRepo struct{ mock.Mock }

func (m *mockProductRepo) FetchProducts(ctx context.Context, storeID string) ([]*entity.Product, error) {
	args := m.Called(ctx, storeID)
	p, _ := args.Get(0).([]*entity.Product)
	return p, args.Error(1)
}

func (m *mockProductRepo) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*entity.Product)
	return p, args.Error(1)
}

func (m *mockProductRepo) SearchProducts(ctx context.Context, storeID, query string) ([]*entity.Product, error) {
	args := m.Called(ctx, storeID, query)
	p, _ := args.Get(0).([]*entity.Product)
	return p, args.Error(1)
}

func (m *mockProductRepo) ObserveProducts(storeID string) *observable.Stream[result.Result[[]*entity.Product]] {
	s, _ := m.Called(storeID).Get(0).(*observable.Stream[result.Result[[]*entity.Product]])
	return s
}

type mockCartRepo struct{ mock.Mock }

func (m *mockCartRepo) AddToCart(ctx context.Context, customerID string, product *entity.Product, quantity int) (*entity.CartItem, error) {
	args := m.Called(ctx, customerID, product, quantity)
	i, _ := args.Get(0).(*entity.CartItem)
	return i, args.Error(1)
}

func (m *mockCartRepo) UpdateQuantity(ctx context.Context, customerID, productID string, quantity int) error {
	return m.Called(ctx, customerID, productID, quantity).Error(0)
}

func (m *mockCartRepo) RemoveFromCart(ctx context.Context, customerID, productID string) error {
	return m.Called(ctx, customerID, productID).Error(0)
}

func (m *mockCartRepo) ClearCart(ctx context.Context, customerID string) error {
	return m.Called(ctx, customerID).Error(0)
}

func (m *mockCartRepo) GetCart(ctx context.Context, customerID string) (*entity.Cart, error) {
	args := m.Called(ctx, customerID)
	c, _ := args.Get(0).(*entity.Cart)
	return c, args.Error(1)
}

func (m *mockCartRepo) ObserveCart(customerID string) *observable.Stream[result.Result[*entity.Cart]] {
	s, _ := m.Called(customerID).Get(0).(*observable.Stream[result.Result[*entity.Cart]])
	return s
}

type mockOrderRepo struct{ mock.Mock }

func (m *mockOrderRepo) PlaceOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	args := m.Called(ctx, order)
	o, _ := args.Get(0).(*entity.Order)
	return o, args.Error(1)
}

func (m *mockOrderRepo) FetchOrders(ctx context.Context, customerID string) ([]*entity.Order, error) {
	args := m.Called(ctx, customerID)
	o, _ := args.Get(0).([]*entity.Order)
	return o, args.Error(1)
}

func (m *mockOrderRepo) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*entity.Order)
	return o, args.Error(1)
}

func (m *mockOrderRepo) CancelOrder(ctx context.Context, id string) (*entity.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*entity.Order)
	return o, args.Error(1)
}

func (m *mockOrderRepo) DeleteOrder(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOrderRepo) ObserveOrders(customerID string) *observable.Stream[result.Result[[]*entity.Order]] {
	s, _ := m.Called(customerID).Get(0).(*observable.Stream[result.Result[[]*entity.Order]])
	return s
}

type mockAddressRepo struct{ mock.Mock }

func (m *mockAddressRepo) FetchAddresses(ctx context.Context, customerID string) ([]*entity.Address, error) {
	args := m.Called(ctx, customerID)
	a, _ := args.Get(0).([]*entity.Address)
	return a, args.Error(1)
}

func (m *mockAddressRepo) AddAddress(ctx context.Context, address *entity.Address) (*entity.Address, error) {
	args := m.Called(ctx, address)
	a, _ := args.Get(0).(*entity.Address)
	return a, args.Error(1)
}

func (m *mockAddressRepo) UpdateAddress(ctx context.Context, address *entity.Address) (*entity.Address, error) {
	args := m.Called(ctx, address)
	a, _ := args.Get(0).(*entity.Address)
	return a, args.Error(1)
}

func (m *mockAddressRepo) DeleteAddress(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAddressRepo) GetAddress(ctx context.Context, id string) (*entity.Address, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*entity.Address)
	return a, args.Error(1)
}

func (m *mockAddressRepo) SetDefaultAddress(ctx context.Context, customerID, addressID string) error {
	return m.Called(ctx, customerID, addressID).Error(0)
}

func (m *mockAddressRepo) GetDefaultAddress(ctx context.Context, customerID string) (*entity.Address, error) {
	args := m.Called(ctx, customerID)
	a, _ := args.Get(0).(*entity.Address)
	return a, args.Error(1)
}

func (m *mockAddressRepo) ObserveAddresses(customerID string) *observable.Stream[result.Result[[]*entity.Address]] {
	s, _ := m.Called(customerID).Get(0).(*observable.Stream[result.Result[[]*entity.Address]])
	return s
}

type mockReviewRepo struct{ mock.Mock }

func (m *mockReviewRepo) AddReview(ctx context.Context, review *entity.StoreReview) (*entity.StoreReview, error) {
	args := m.Called(ctx, review)
	r, _ := args.Get(0).(*entity.StoreReview)
	return r, args.Error(1)
}

func (m *mockReviewRepo) UpdateReview(ctx context.Context, review *entity.StoreReview) (*entity.StoreReview, error) {
	args := m.Called(ctx, review)
	r, _ := args.Get(0).(*entity.StoreReview)
	return r, args.Error(1)
}

func (m *mockReviewRepo) DeleteReview(ctx context.Context, storeID, reviewID string) error {
	return m.Called(ctx, storeID, reviewID).Error(0)
}

func (m *mockReviewRepo) GetCustomerReview(ctx context.Context, storeID, customerID string) (*entity.StoreReview, error) {
	args := m.Called(ctx, storeID, customerID)
	r, _ := args.Get(0).(*entity.StoreReview)
	return r, args.Error(1)
}

func (m *mockReviewRepo) FetchStoreReviews(ctx context.Context, storeID string) ([]*entity.StoreReview, error) {
	args := m.Called(ctx, storeID)
	r, _ := args.Get(0).([]*entity.StoreReview)
	return r, args.Error(1)
}

func (m *mockReviewRepo) ObserveStoreReviews(storeID string) *observable.Stream[result.Result[[]*entity.StoreReview]] {
	s, _ := m.Called(storeID).Get(0).(*observable.Stream[result.Result[[]*entity.StoreReview]])
	return s
}

func (m *mockReviewRepo) RecomputeStoreRating(ctx context.Context, storeID string) (float64, error) {
	args := m.Called(ctx, storeID)
	return args.Get(0).(float64), args.Error(1)
}
