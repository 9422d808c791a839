package entity

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinate) IsZero() bool {
	return c.Latitude == 0 && c.Longitude == 0
}

// GeoAddress is a reverse-geocoded coordinate. Available is false when the
// geocoder could not resolve anything; Line then holds a placeholder.
type GeoAddress struct {
	Line      string `json:"line"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	Pincode   string `json:"pincode,omitempty"`
	Available bool   `json:"available"`
}

const LocationNotAvailable = "Location not available"

func UnavailableGeoAddress() GeoAddress {
	return GeoAddress{Line: LocationNotAvailable}
}
