package storage

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"nearbasket/pkg/errors"
	"nearbasket/pkg/logger"
)

const gcsHost = "https://storage.googleapis.com/"

type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
	now        func() time.Time
}

func NewCloudStorageClient(ctx context.Context, bucketName, credentialsPath string) (*CloudStorageClient, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Remote("Failed to create storage client", 0, err)
	}

	return &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
		now:        time.Now,
	}, nil
}

// Upload writes a publicly readable object and returns its public URL.
func (c *CloudStorageClient) Upload(ctx context.Context, folder string, data io.Reader, contentType string) (string, error) {
	name := objectName(folder, contentType, c.now())

	obj := c.client.Bucket(c.bucketName).Object(name)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(wc, data); err != nil {
		wc.Close()
		return "", errors.Remote("Failed to upload file", 0, err)
	}
	if err := wc.Close(); err != nil {
		return "", errors.Remote("Failed to upload file", 0, err)
	}

	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return "", errors.Remote("Failed to publish file", 0, err)
	}

	logger.Debug("uploaded gs://%s/%s", c.bucketName, name)
	return fmt.Sprintf("%s%s/%s", gcsHost, c.bucketName, name), nil
}

func (c *CloudStorageClient) Delete(ctx context.Context, fileURL string) error {
	name, err := gcsObjectName(fileURL, c.bucketName)
	if err != nil {
		return err
	}

	if err := c.client.Bucket(c.bucketName).Object(name).Delete(ctx); err != nil {
		if stderrors.Is(err, storage.ErrObjectNotExist) {
			return errors.NotFound("File", err)
		}
		return errors.Remote("Failed to delete file", 0, err)
	}
	return nil
}

// gcsObjectName extracts the object name from
// https://storage.googleapis.com/<bucket>/<name>.
func gcsObjectName(fileURL, bucketName string) (string, error) {
	if !strings.HasPrefix(fileURL, gcsHost) {
		return "", errors.BadRequest("Invalid file URL", nil)
	}

	parts := strings.SplitN(strings.TrimPrefix(fileURL, gcsHost), "/", 2)
	if len(parts) != 2 || parts[0] != bucketName || parts[1] == "" {
		return "", errors.BadRequest("File does not belong to this bucket", nil)
	}
	return parts[1], nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}
