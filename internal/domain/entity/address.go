package entity

import (
	"time"
)

const (
	AddressTypeHome  = "HOME"
	AddressTypeWork  = "WORK"
	AddressTypeOther = "OTHER"
)

// Address belongs to a customer. At most one address per customer has
// IsDefault set.
type Address struct {
	ID               string    `json:"id"`
	CustomerID       string    `json:"customer_id"`
	Type             string    `json:"address_type"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	FormattedAddress string    `json:"formatted_address"`
	Line1            string    `json:"line1"`
	Line2            string    `json:"line2"`
	City             string    `json:"city"`
	State            string    `json:"state"`
	Pincode          string    `json:"pincode"`
	ReceiverName     string    `json:"receiver_name"`
	ReceiverPhone    string    `json:"receiver_phone"`
	IsDefault        bool      `json:"is_default"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (a *Address) Coordinate() Coordinate {
	return Coordinate{Latitude: a.Latitude, Longitude: a.Longitude}
}
