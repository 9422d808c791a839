package cache

import (
	"time"

	"nearbasket/internal/domain/entity"
)

// Rows keep remote timestamps as given, so gorm's automatic time tracking is
// switched off on every model mirrored from the backend.

type customerRow struct {
	ID              string `gorm:"primaryKey"`
	Phone           string `gorm:"index"`
	Name            string
	Address         string
	Latitude        float64
	Longitude       float64
	ProfileImageURL string
	CreatedAt       time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime:false"`
}

func (customerRow) TableName() string { return tableCustomers }

type storeRow struct {
	ID                 string `gorm:"primaryKey"`
	Name               string `gorm:"index"`
	Address            string
	Latitude           float64
	Longitude          float64
	Phone              string
	LogoURL            string
	Rating             float64
	MinimumOrder       float64
	DeliveryFee        float64
	DeliveryMinutes    int
	IsOpen             bool
	SubscriptionStatus string
	CreatedAt          time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime:false"`
}

func (storeRow) TableName() string { return tableStores }

type productRow struct {
	ID          string `gorm:"primaryKey"`
	StoreID     string `gorm:"index"`
	Name        string
	Description string
	Price       float64
	Stock       int
	ImageURL    string
	Category    string
}

func (productRow) TableName() string { return tableProducts }

type cartItemRow struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	CustomerID  string `gorm:"uniqueIndex:idx_cart_customer_product"`
	ProductID   string `gorm:"uniqueIndex:idx_cart_customer_product"`
	StoreID     string `gorm:"index"`
	ProductName string
	ImageURL    string
	Quantity    int
	Price       float64
}

func (cartItemRow) TableName() string { return tableCart }

type orderRow struct {
	ID          string `gorm:"primaryKey"`
	CustomerID  string `gorm:"index"`
	StoreID     string
	TotalAmount float64
	Status      string
	PendingSync bool
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`
}

func (orderRow) TableName() string { return tableOrders }

type orderItemRow struct {
	ID          string `gorm:"primaryKey"`
	OrderID     string `gorm:"index"`
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   float64
}

func (orderItemRow) TableName() string { return tableOrderItems }

type addressRow struct {
	ID               string `gorm:"primaryKey"`
	CustomerID       string `gorm:"index"`
	AddressType      string
	Latitude         float64
	Longitude        float64
	FormattedAddress string
	Line1            string `gorm:"column:line1"`
	Line2            string `gorm:"column:line2"`
	City             string
	State            string
	Pincode          string
	ReceiverName     string
	ReceiverPhone    string
	IsDefault        bool
	CreatedAt        time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime:false"`
}

func (addressRow) TableName() string { return tableAddresses }

type reviewRow struct {
	ID           string `gorm:"primaryKey"`
	StoreID      string `gorm:"uniqueIndex:idx_review_store_customer"`
	CustomerID   string `gorm:"uniqueIndex:idx_review_store_customer"`
	CustomerName string
	Rating       int
	Comment      string
	CreatedAt    time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime:false"`
}

func (reviewRow) TableName() string { return tableReviews }

func newCustomerRow(c *entity.Customer) customerRow {
	return customerRow{
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

func (r *customerRow) entity() *entity.Customer {
	return &entity.Customer{
		ID:              r.ID,
		Phone:           r.Phone,
		Name:            r.Name,
		Address:         r.Address,
		Latitude:        r.Latitude,
		Longitude:       r.Longitude,
		ProfileImageURL: r.ProfileImageURL,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func newStoreRow(s *entity.Store) storeRow {
	return storeRow{
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

func (r *storeRow) entity() *entity.Store {
	return &entity.Store{
		ID:                 r.ID,
		Name:               r.Name,
		Address:            r.Address,
		Latitude:           r.Latitude,
		Longitude:          r.Longitude,
		Phone:              r.Phone,
		LogoURL:            r.LogoURL,
		Rating:             r.Rating,
		MinimumOrder:       r.MinimumOrder,
		DeliveryFee:        r.DeliveryFee,
		DeliveryMinutes:    r.DeliveryMinutes,
		IsOpen:             r.IsOpen,
		SubscriptionStatus: r.SubscriptionStatus,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func newProductRow(p *entity.Product) productRow {
	return productRow{
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

func (r *productRow) entity() *entity.Product {
	return &entity.Product{
		ID:          r.ID,
		StoreID:     r.StoreID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		ImageURL:    r.ImageURL,
		Category:    entity.NormalizeCategory(r.Category),
	}
}

func (r *cartItemRow) entity() *entity.CartItem {
	return &entity.CartItem{
		ID:          r.ID,
		CustomerID:  r.CustomerID,
		StoreID:     r.StoreID,
		ProductID:   r.ProductID,
		ProductName: r.ProductName,
		ImageURL:    r.ImageURL,
		Quantity:    r.Quantity,
		Price:       r.Price,
	}
}

func newOrderRow(o *entity.Order) orderRow {
	return orderRow{
		ID:          o.ID,
		CustomerID:  o.CustomerID,
		StoreID:     o.StoreID,
		TotalAmount: o.TotalAmount,
		Status:      o.Status,
		PendingSync: o.PendingSync,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func (r *orderRow) entity(items []orderItemRow) *entity.Order {
	order := &entity.Order{
		ID:          r.ID,
		CustomerID:  r.CustomerID,
		StoreID:     r.StoreID,
		TotalAmount: r.TotalAmount,
		Status:      r.Status,
		PendingSync: r.PendingSync,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	for i := range items {
		if items[i].OrderID == r.ID {
			order.Items = append(order.Items, items[i].entity())
		}
	}
	return order
}

func newOrderItemRows(order *entity.Order) []orderItemRow {
	rows := make([]orderItemRow, 0, len(order.Items))
	for _, item := range order.Items {
		rows = append(rows, orderItemRow{
			ID:          item.ID,
			OrderID:     order.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return rows
}

func (r *orderItemRow) entity() *entity.OrderItem {
	return &entity.OrderItem{
		ID:          r.ID,
		OrderID:     r.OrderID,
		ProductID:   r.ProductID,
		ProductName: r.ProductName,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
	}
}

func newAddressRow(a *entity.Address) addressRow {
	return addressRow{
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

func (r *addressRow) entity() *entity.Address {
	return &entity.Address{
		ID:               r.ID,
		CustomerID:       r.CustomerID,
		Type:             r.AddressType,
		Latitude:         r.Latitude,
		Longitude:        r.Longitude,
		FormattedAddress: r.FormattedAddress,
		Line1:            r.Line1,
		Line2:            r.Line2,
		City:             r.City,
		State:            r.State,
		Pincode:          r.Pincode,
		ReceiverName:     r.ReceiverName,
		ReceiverPhone:    r.ReceiverPhone,
		IsDefault:        r.IsDefault,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func newReviewRow(r *entity.StoreReview) reviewRow {
	return reviewRow{
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

func (r *reviewRow) entity() *entity.StoreReview {
	return &entity.StoreReview{
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
