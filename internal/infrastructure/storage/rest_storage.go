package storage

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"nearbasket/internal/infrastructure/remote"
	"nearbasket/pkg/errors"
)

// RestStorage uploads to the hosted backend's object store, where buckets are
// addressed as /storage/v1/object/<bucket>/<name>.
type RestStorage struct {
	baseURL    string
	anonKey    string
	bucket     string
	tokens     remote.TokenSource
	httpClient *http.Client
	now        func() time.Time
}

func NewRestStorage(baseURL, anonKey, bucket string, tokens remote.TokenSource, timeout time.Duration) *RestStorage {
	return &RestStorage{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		bucket:     bucket,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

func (s *RestStorage) objectURL(name string) string {
	return s.baseURL + "/storage/v1/object/" + s.bucket + "/" + name
}

func (s *RestStorage) publicPrefix() string {
	return s.baseURL + "/storage/v1/object/public/" + s.bucket + "/"
}

// Upload stores data and returns the object's public URL. Existing objects
// with the same name are overwritten.
func (s *RestStorage) Upload(ctx context.Context, folder string, data io.Reader, contentType string) (string, error) {
	name := objectName(folder, contentType, s.now())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(name), data)
	if err != nil {
		return "", errors.Internal("Failed to build request", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Cache-Control", "max-age=86400")
	req.Header.Set("x-upsert", "true")

	if err := s.send(req); err != nil {
		return "", err
	}
	return s.publicPrefix() + name, nil
}

func (s *RestStorage) Delete(ctx context.Context, fileURL string) error {
	prefix := s.publicPrefix()
	if !strings.HasPrefix(fileURL, prefix) || len(fileURL) == len(prefix) {
		return errors.BadRequest("File does not belong to this bucket", nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.objectURL(strings.TrimPrefix(fileURL, prefix)), nil)
	if err != nil {
		return errors.Internal("Failed to build request", err)
	}
	return s.send(req)
}

func (s *RestStorage) send(req *http.Request) error {
	bearer := s.anonKey
	if s.tokens != nil {
		token, err := s.tokens.AccessToken(req.Context())
		if err != nil {
			return err
		}
		if token != "" {
			bearer = token
		}
	}
	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return remote.TransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return remote.TransportError(err)
	}
	if resp.StatusCode >= 300 {
		return remote.StatusError(resp.StatusCode, resp.Header, body)
	}
	return nil
}

func (s *RestStorage) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}
