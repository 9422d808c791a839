package entity

import (
	"time"
)

// Customer is created on the first successful phone verification. Phone is the
// identity anchor and is unique across customers.
type Customer struct {
	ID              string    `json:"id"`
	Phone           string    `json:"phone"`
	Name            string    `json:"name"`
	Address         string    `json:"address"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HasProfile reports whether the customer finished onboarding.
func (c *Customer) HasProfile() bool {
	return c.Name != ""
}
