package usecase

import (
	"context"
	"fmt"

	"nearbasket/internal/domain/entity"
	"nearbasket/internal/domain/repository"
	"nearbasket/pkg/errors"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
	"nearbasket/pkg/utils"
)

type OrderUseCase struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	storeRepo repository.StoreRepository
	authRepo  repository.AuthRepository
	validate  *Validator
}

func NewOrderUseCase(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	storeRepo repository.StoreRepository,
	authRepo repository.AuthRepository,
	validate *Validator,
) *OrderUseCase {
	return &OrderUseCase{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		storeRepo: storeRepo,
		authRepo:  authRepo,
		validate:  validate,
	}
}

type OrderItemInput struct {
	ProductID   string  `label:"Product" validate:"required"`
	ProductName string  `label:"Product name" validate:"required"`
	Quantity    int     `label:"Quantity" validate:"gt=0"`
	UnitPrice   float64 `label:"Price" validate:"gte=0"`
}

type PlaceOrderInput struct {
	StoreID string           `label:"Store" validate:"required"`
	Items   []OrderItemInput `label:"Items" validate:"required,min=1,dive"`
}

// PlaceOrder creates a PENDING order priced from the input. The total is the
// items subtotal plus the store's delivery fee, and the subtotal must reach
// the store's minimum order. The cart is left as it is.
func (uc *OrderUseCase) PlaceOrder(ctx context.Context, input PlaceOrderInput) result.Result[*entity.Order] {
	if err := uc.validate.Struct(input); err != nil {
		return result.Failure[*entity.Order](err)
	}
	customerID, err := uc.authRepo.CurrentCustomerID(ctx)
	if err != nil {
		return result.Failure[*entity.Order](err)
	}
	store, err := uc.storeRepo.GetStore(ctx, input.StoreID)
	if err != nil {
		return result.Failure[*entity.Order](err)
	}

	order := &entity.Order{
		CustomerID: customerID,
		StoreID:    store.ID,
		Status:     entity.OrderStatusPending,
	}
	for _, item := range input.Items {
		order.Items = append(order.Items, &entity.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	subtotal := order.ItemsTotal()
	if subtotal < store.MinimumOrder {
		return result.Failure[*entity.Order](errors.Validation(
			fmt.Sprintf("Minimum order for %s is %.2f", store.Name, store.MinimumOrder)))
	}
	order.TotalAmount = utils.RoundTo(subtotal+store.DeliveryFee, 2)

	placed, err := uc.orderRepo.PlaceOrder(ctx, order)
	return result.From(placed, err)
}

// Checkout places an order for the current cart.
func (uc *OrderUseCase) Checkout(ctx context.Context) result.Result[*entity.Order] {
	customerID, err := uc.authRepo.CurrentCustomerID(ctx)
	if err != nil {
		return result.Failure[*entity.Order](err)
	}
	cart, err := uc.cartRepo.GetCart(ctx, customerID)
	if err != nil {
		return result.Failure[*entity.Order](err)
	}
	if cart.IsEmpty() {
		return result.Failure[*entity.Order](errors.Validation("Your cart is empty"))
	}

	input := PlaceOrderInput{StoreID: cart.StoreID}
	for _, item := range cart.Items {
		input.Items = append(input.Items, OrderItemInput{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.Price,
		})
	}
	return uc.PlaceOrder(ctx, input)
}

func (uc *OrderUseCase) FetchOrders(ctx context.Context) result.Result[[]*entity.Order] {
	customerID, err := uc.authRepo.CurrentCustomerID(ctx)
	if err != nil {
		return result.Failure[[]*entity.Order](err)
	}
	orders, err := uc.orderRepo.FetchOrders(ctx, customerID)
	return result.From(orders, err)
}

func (uc *OrderUseCase) GetOrder(ctx context.Context, id string) result.Result[*entity.Order] {
	order, err := uc.orderRepo.GetOrder(ctx, id)
	return result.From(order, err)
}

func (uc *OrderUseCase) CancelOrder(ctx context.Context, id string) result.Result[*entity.Order] {
	order, err := uc.orderRepo.CancelOrder(ctx, id)
	return result.From(order, err)
}

func (uc *OrderUseCase) DeleteOrder(ctx context.Context, id string) result.Result[bool] {
	if err := uc.orderRepo.DeleteOrder(ctx, id); err != nil {
		return result.Failure[bool](err)
	}
	return result.Success(true)
}

func (uc *OrderUseCase) ObserveOrders(ctx context.Context) (*observable.Stream[result.Result[[]*entity.Order]], error) {
	customerID, err := uc.authRepo.CurrentCustomerID(ctx)
	if err != nil {
		return nil, err
	}
	return uc.orderRepo.ObserveOrders(customerID), nil
}
