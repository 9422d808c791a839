package entity

// MaxCartQuantity is the most of one product a cart line can hold.
const MaxCartQuantity = 99

// CartItem exists only on the device. ID is a local autoincrement key; Price
// is the product price when the item was added.
type CartItem struct {
	ID          int64   `json:"id"`
	CustomerID  string  `json:"customer_id"`
	StoreID     string  `json:"store_id"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	ImageURL    string  `json:"image_url,omitempty"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

func (i *CartItem) LineTotal() float64 {
	return float64(i.Quantity) * i.Price
}

// Cart is a customer's cart. All items share StoreID.
type Cart struct {
	CustomerID string      `json:"customer_id"`
	StoreID    string      `json:"store_id"`
	Items      []*CartItem `json:"items"`
}

func NewCart(customerID string, items []*CartItem) *Cart {
	cart := &Cart{CustomerID: customerID, Items: items}
	if len(items) > 0 {
		cart.StoreID = items[0].StoreID
	}
	return cart
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) Subtotal() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.LineTotal()
	}
	return total
}

func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (c *Cart) Find(productID string) *CartItem {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item
		}
	}
	return nil
}
