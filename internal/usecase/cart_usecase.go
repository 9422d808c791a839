package usecase

import (
	"context"
	"fmt"

	"nearbasket/internal/domain/entity"
	"nearbasket/internal/domain/repository"
	"nearbasket/pkg/errors"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

type CartUseCase struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	authRepo    repository.AuthRepository
	validate    *Validator
}

func NewCartUseCase(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	authRepo repository.AuthRepository,
	validate *Validator,
) *CartUseCase {
	return &CartUseCase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		authRepo:    authRepo,
		validate:    validate,
	}
}

type AddToCartInput struct {
	ProductID string `label:"Product" validate:"required"`
	Quantity  int    `label:"Quantity" validate:"gt=0,lte=99"`
}

// AddToCart adds a product at its current price. Adding from another store
// replaces the cart.
func (uc *CartUseCase) AddToCart(ctx context.Context, input AddToCartInput) result.Result[*entity.CartItem] {
	if err := uc.validate.Struct(input); err != nil {
		return result.Failure[*entity.CartItem](err)
	}
	customerID, err := uc.authRepo.CurrentCustomerID(ctx)
	if err != nil {
		return result.Failure[*entity.CartItem](err)
	}

	product, err := uc.productRepo.GetProduct(ctx, input.ProductID)
	if err != nil {
		return result.Failure[*entity.CartItem](err)
	}
	if !product.InStock() {
		return result.Failure[*entity.CartItem](errors.BadRequest(product.Name+" is out of stock", nil))
	}

	item, err := uc.cartRepo.AddToCart(ctx, customerID, product, input.Quantity)
	return result.From(item, err)
}

// UpdateQuantity sets a line's quantity; zero removes the line.
func (uc *CartUseCase) UpdateQuantity(ctx context.Context, productID string, quantity int) result.Result[*entity.Cart] {
	if quantity < 0 {
		return result.Failure[*entity.Cart](errors.Validation("Quantity cannot be negative"))
	}
	if quantity > entity.MaxCartQuantity {
		return result.Failure[*entity.Cart](errors.Validation(fmt.Sprintf("Quantity must be %d or less", entity.MaxCartQuantity)))
	}
	customerID, err := uc.authRepo.CurrentCustomerID(ctx)
	if err != nil {
		return result.Failure[*entity.Cart](err)
	}
	if err := uc.cartRepo.UpdateQuantity(ctx, customerID, productID, quantity); err != nil {
		return result.Failure[*entity.Cart](err)
	}
	cart, err := uc.cartRepo.GetCart(ctx, customerID)
	return result.From(cart, err)
}

func (uc *CartUseCase) RemoveFromCart(ctx context.Context, productID string) result.Result[*entity.Cart] {
	customerID, err := uc.authRepo.CurrentCustomerID(ctx)
	if err != nil {
		return result.Failure[*entity.Cart](err)
	}
	if err := uc.cartRepo.RemoveFromCart(ctx, customerID, productID); err != nil {
		return result.Failure[*entity.Cart](err)
	}
	cart, err := uc.cartRepo.GetCart(ctx, customerID)
	return result.From(cart, err)
}

func (uc *CartUseCase) ClearCart(ctx context.Context) result.Result[bool] {
	customerID, err := uc.authRepo.CurrentCustomerID(ctx)
	if err != nil {
		return result.Failure[bool](err)
	}
	if err := uc.cartRepo.ClearCart(ctx, customerID); err != nil {
		return result.Failure[bool](err)
	}
	return result.Success(true)
}

func (uc *CartUseCase) GetCart(ctx context.Context) result.Result[*entity.Cart] {
	customerID, err := uc.authRepo.CurrentCustomerID(ctx)
	if err != nil {
		return result.Failure[*entity.Cart](err)
	}
	cart, err := uc.cartRepo.GetCart(ctx, customerID)
	return result.From(cart, err)
}

func (uc *CartUseCase) ObserveCart(ctx context.Context) (*observable.Stream[result.Result[*entity.Cart]], error) {
	customerID, err := uc.authRepo.CurrentCustomerID(ctx)
	if err != nil {
		return nil, err
	}
	return uc.cartRepo.ObserveCart(customerID), nil
}
