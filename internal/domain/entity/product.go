package entity

const DefaultCategory = "General"

// Product belongs to exactly one store.
type Product struct {
	ID          string  `json:"id"`
	StoreID     string  `json:"store_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"image_url,omitempty"`
	Category    string  `json:"category"`
}

func (p *Product) InStock() bool {
	return p.Stock > 0
}

// NormalizeCategory replaces a blank category with DefaultCategory.
func NormalizeCategory(category string) string {
	if category == "" {
		return DefaultCategory
	}
	return category
}
