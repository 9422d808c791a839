package entity

import (
	"time"
)

const (
	SubscriptionActive   = "ACTIVE"
	SubscriptionInactive = "INACTIVE"
	SubscriptionExpired  = "EXPIRED"
)

// Store is read-only on the client. Rating is derived from the store's reviews.
type Store struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Address            string    `json:"address"`
	Latitude           float64   `json:"latitude"`
	Longitude          float64   `json:"longitude"`
	Phone              string    `json:"phone"`
	LogoURL            string    `json:"logo_url,omitempty"`
	Rating             float64   `json:"rating"`
	MinimumOrder       float64   `json:"minimum_order"`
	DeliveryFee        float64   `json:"delivery_fee"`
	DeliveryMinutes    int       `json:"delivery_minutes"`
	IsOpen             bool      `json:"is_open"`
	SubscriptionStatus string    `json:"subscription_status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	// DistanceKm is filled in by nearby queries only.
	DistanceKm float64 `json:"distance_km,omitempty"`
}

func (s *Store) IsActive() bool {
	return s.SubscriptionStatus == SubscriptionActive
}

func (s *Store) Coordinate() Coordinate {
	return Coordinate{Latitude: s.Latitude, Longitude: s.Longitude}
}
