package usecase

import (
	"context"
	"sort"
	"strings"

	"nearbasket/internal/domain/entity"
	"nearbasket/internal/domain/repository"
	"nearbasket/pkg/errors"
	"nearbasket/pkg/observable"
	"nearbasket/pkg/result"
)

type ProductUseCase struct {
	productRepo repository.ProductRepository
}

func NewProductUseCase(productRepo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{productRepo: productRepo}
}

// CategoryGroup is one section of a store's catalogue.
type CategoryGroup struct {
	Category string
	Products []*entity.Product
}

func (uc *ProductUseCase) FetchProducts(ctx context.Context, storeID string) result.Result[[]*entity.Product] {
	if strings.TrimSpace(storeID) == "" {
		return result.Failure[[]*entity.Product](errors.Validation("Store is required"))
	}
	products, err := uc.productRepo.FetchProducts(ctx, storeID)
	return result.From(products, err)
}

// ProductsByCategory fetches the catalogue and groups it for display.
func (uc *ProductUseCase) ProductsByCategory(ctx context.Context, storeID string) result.Result[[]CategoryGroup] {
	return result.Map(uc.FetchProducts(ctx, storeID), GroupByCategory)
}

func (uc *ProductUseCase) GetProduct(ctx context.Context, id string) result.Result[*entity.Product] {
	product, err := uc.productRepo.GetProduct(ctx, id)
	return result.From(product, err)
}

// SearchProducts matches name or category within one store's cached
// catalogue. An empty query lists everything.
func (uc *ProductUseCase) SearchProducts(ctx context.Context, storeID, query string) result.Result[[]*entity.Product] {
	products, err := uc.productRepo.SearchProducts(ctx, storeID, strings.TrimSpace(query))
	return result.From(products, err)
}

func (uc *ProductUseCase) ObserveProducts(storeID string) *observable.Stream[result.Result[[]*entity.Product]] {
	return uc.productRepo.ObserveProducts(storeID)
}

// GroupByCategory groups products by category, categories in alphabetical
// order with the default category last. Product order within a group is kept.
func GroupByCategory(products []*entity.Product) []CategoryGroup {
	index := make(map[string]int)
	var groups []CategoryGroup
	for _, p := range products {
		category := entity.NormalizeCategory(p.Category)
		i, ok := index[category]
		if !ok {
			i = len(groups)
			index[category] = i
			groups = append(groups, CategoryGroup{Category: category})
		}
		groups[i].Products = append(groups[i].Products, p)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].Category, groups[j].Category
		if (a == entity.DefaultCategory) != (b == entity.DefaultCategory) {
			return b == entity.DefaultCategory
		}
		return strings.ToLower(a) < strings.ToLower(b)
	})
	return groups
}
