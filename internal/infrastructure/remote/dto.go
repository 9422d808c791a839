package remote

import (
	"time"

	"nearbasket/internal/domain/entity"
)

const (
	TableCustomers  = "customers"
	TableStores     = "stores"
	TableProducts   = "products"
	TableOrders     = "orders"
	TableOrderItems = "order_items"
	TableAddresses  = "addresses"
	TableReviews    = "store_reviews"
)

// Transfer objects mirror the backend tables column for column. The json tags
// are the wire names; gorm derives the same snake_case column names.

type CustomerDTO struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	Phone           string    `json:"phone" gorm:"uniqueIndex"`
	Name            string    `json:"name"`
	Address         string    `json:"address"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	ProfileImageURL string    `json:"profile_image_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type StoreDTO struct {
	ID                 string    `json:"id" gorm:"primaryKey"`
	Name               string    `json:"name"`
	Address            string    `json:"address"`
	Latitude           float64   `json:"latitude"`
	Longitude          float64   `json:"longitude"`
	Phone              string    `json:"phone"`
	LogoURL            string    `json:"logo_url"`
	Rating             float64   `json:"rating"`
	MinimumOrder       float64   `json:"minimum_order"`
	DeliveryFee        float64   `json:"delivery_fee"`
	DeliveryMinutes    int       `json:"delivery_minutes"`
	IsOpen             bool      `json:"is_open"`
	SubscriptionStatus string    `json:"subscription_status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type ProductDTO struct {
	ID          string  `json:"id" gorm:"primaryKey"`
	StoreID     string  `json:"store_id" gorm:"index"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"image_url"`
	Category    string  `json:"category"`
}

type OrderDTO struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	CustomerID  string    `json:"customer_id" gorm:"index"`
	StoreID     string    `json:"store_id"`
	TotalAmount float64   `json:"total_amount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type OrderItemDTO struct {
	ID          string  `json:"id" gorm:"primaryKey"`
	OrderID     string  `json:"order_id" gorm:"index"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type AddressDTO struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	CustomerID       string    `json:"customer_id" gorm:"index"`
	AddressType      string    `json:"address_type"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	FormattedAddress string    `json:"formatted_address"`
	Line1            string    `json:"line1" gorm:"column:line1"`
	Line2            string    `json:"line2" gorm:"column:line2"`
	City             string    `json:"city"`
	State            string    `json:"state"`
	Pincode          string    `json:"pincode"`
	ReceiverName     string    `json:"receiver_name"`
	ReceiverPhone    string    `json:"receiver_phone"`
	IsDefault        bool      `json:"is_default"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type ReviewDTO struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	StoreID      string    `json:"store_id" gorm:"uniqueIndex:idx_review_store_customer"`
	CustomerID   string    `json:"customer_id" gorm:"uniqueIndex:idx_review_store_customer"`
	CustomerName string    `json:"customer_name"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (d *CustomerDTO) ToEntity() *entity.Customer {
	return &entity.Customer{
		ID:              d.ID,
		Phone:           d.Phone,
		Name:            d.Name,
		Address:         d.Address,
		Latitude:        d.Latitude,
		Longitude:       d.Longitude,
		ProfileImageURL: d.ProfileImageURL,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func NewCustomerDTO(c *entity.Customer) *CustomerDTO {
	return &CustomerDTO{
		ID:              c.ID,
		Phone:           c.Phone,
		Name:            c.Name,
		Address:         c.Address,
		Latitude:        c.Latitude,
		Longitude:       c.Longitude,
		ProfileImageURL: c.ProfileImageURL,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func (d *StoreDTO) ToEntity() *entity.Store {
	return &entity.Store{
		ID:                 d.ID,
		Name:               d.Name,
		Address:            d.Address,
		Latitude:           d.Latitude,
		Longitude:          d.Longitude,
		Phone:              d.Phone,
		LogoURL:            d.LogoURL,
		Rating:             d.Rating,
		MinimumOrder:       d.MinimumOrder,
		DeliveryFee:        d.DeliveryFee,
		DeliveryMinutes:    d.DeliveryMinutes,
		IsOpen:             d.IsOpen,
		SubscriptionStatus: d.SubscriptionStatus,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

func NewStoreDTO(s *entity.Store) *StoreDTO {
	return &StoreDTO{
		ID:                 s.ID,
		Name:               s.Name,
		Address:            s.Address,
		Latitude:           s.Latitude,
		Longitude:          s.Longitude,
		Phone:              s.Phone,
		LogoURL:            s.LogoURL,
		Rating:             s.Rating,
		MinimumOrder:       s.MinimumOrder,
		DeliveryFee:        s.DeliveryFee,
		DeliveryMinutes:    s.DeliveryMinutes,
		IsOpen:             s.IsOpen,
		SubscriptionStatus: s.SubscriptionStatus,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func (d *ProductDTO) ToEntity() *entity.Product {
	return &entity.Product{
		ID:          d.ID,
		StoreID:     d.StoreID,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Stock:       d.Stock,
		ImageURL:    d.ImageURL,
		Category:    entity.NormalizeCategory(d.Category),
	}
}

func NewProductDTO(p *entity.Product) *ProductDTO {
	return &ProductDTO{
		ID:          p.ID,
		StoreID:     p.StoreID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		Category:    entity.NormalizeCategory(p.Category),
	}
}

func (d *OrderDTO) ToEntity(items []OrderItemDTO) *entity.Order {
	order := &entity.Order{
		ID:          d.ID,
		CustomerID:  d.CustomerID,
		StoreID:     d.StoreID,
		TotalAmount: d.TotalAmount,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	for i := range items {
		if items[i].OrderID == d.ID {
			order.Items = append(order.Items, items[i].ToEntity())
		}
	}
	return order
}

func NewOrderDTO(o *entity.Order) *OrderDTO {
	return &OrderDTO{
		ID:          o.ID,
		CustomerID:  o.CustomerID,
		StoreID:     o.StoreID,
		TotalAmount: o.TotalAmount,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func (d *OrderItemDTO) ToEntity() *entity.OrderItem {
	return &entity.OrderItem{
		ID:          d.ID,
		OrderID:     d.OrderID,
		ProductID:   d.ProductID,
		ProductName: d.ProductName,
		Quantity:    d.Quantity,
		UnitPrice:   d.UnitPrice,
	}
}

func NewOrderItemDTOs(items []*entity.OrderItem) []OrderItemDTO {
	dtos := make([]OrderItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, OrderItemDTO{
			ID:          item.ID,
			OrderID:     item.OrderID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return dtos
}

func (d *AddressDTO) ToEntity() *entity.Address {
	return &entity.Address{
		ID:               d.ID,
		CustomerID:       d.CustomerID,
		Type:             d.AddressType,
		Latitude:         d.Latitude,
		Longitude:        d.Longitude,
		FormattedAddress: d.FormattedAddress,
		Line1:            d.Line1,
		Line2:            d.Line2,
		City:             d.City,
		State:            d.State,
		Pincode:          d.Pincode,
		ReceiverName:     d.ReceiverName,
		ReceiverPhone:    d.ReceiverPhone,
		IsDefault:        d.IsDefault,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func NewAddressDTO(a *entity.Address) *AddressDTO {
	return &AddressDTO{
		ID:               a.ID,
		CustomerID:       a.CustomerID,
		AddressType:      a.Type,
		Latitude:         a.Latitude,
		Longitude:        a.Longitude,
		FormattedAddress: a.FormattedAddress,
		Line1:            a.Line1,
		Line2:            a.Line2,
		City:             a.City,
		State:            a.State,
		Pincode:          a.Pincode,
		ReceiverName:     a.ReceiverName,
		ReceiverPhone:    a.ReceiverPhone,
		IsDefault:        a.IsDefault,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func (d *ReviewDTO) ToEntity() *entity.StoreReview {
	return &entity.StoreReview{
		ID:           d.ID,
		StoreID:      d.StoreID,
		CustomerID:   d.CustomerID,
		CustomerName: d.CustomerName,
		Rating:       d.Rating,
		Comment:      d.Comment,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func NewReviewDTO(r *entity.StoreReview) *ReviewDTO {
	return &ReviewDTO{
		ID:           r.ID,
		StoreID:      r.StoreID,
		CustomerID:   r.CustomerID,
		CustomerName: r.CustomerName,
		Rating:       r.Rating,
		Comment:      r.Comment,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
