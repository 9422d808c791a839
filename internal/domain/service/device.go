package service

import (
	"context"
	"io"

	"nearbasket/internal/domain/entity"
)

// LocationProvider is the device location service.
type LocationProvider interface {
	HasPermission(ctx context.Context) bool
	// CurrentLocation blocks until a fix is available or ctx is done.
	CurrentLocation(ctx context.Context) (entity.Coordinate, error)
	LastKnownLocation(ctx context.Context) (entity.Coordinate, bool, error)
}

// Geocoder turns coordinates into address components. It may fail or find
// nothing; callers degrade instead of failing the whole flow.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, c entity.Coordinate) (*entity.GeoAddress, error)
}

// SecretStore is the encrypted key-value store for tokens. Lookups report
// whether the key was present.
type SecretStore interface {
	GetString(key string) (string, bool, error)
	SetString(key, value string) error
	GetBool(key string) (bool, bool, error)
	SetBool(key string, value bool) error
	Remove(key string) error
	Clear() error
}

// ObjectStorage keeps uploaded files such as profile images. Upload returns
// the public URL of the stored object; Delete takes that URL back.
type ObjectStorage interface {
	Upload(ctx context.Context, folder string, data io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, fileURL string) error
}
