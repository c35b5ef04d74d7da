package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"citywatch/internal/domain/service"
)

// CloudStorageClient stores report photos in a GCS bucket under photos/<uuid>.
// The returned blob id is the uuid; the content type lives on the object attrs.
type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
}

func NewCloudStorageClient(ctx context.Context, bucketName, credentialsPath string) (*CloudStorageClient, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	return &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
	}, nil
}

var _ service.BlobStore = (*CloudStorageClient)(nil)

func (c *CloudStorageClient) Store(ctx context.Context, r io.Reader, contentType string) (string, error) {
	id := uuid.New().String()

	obj := c.client.Bucket(c.bucketName).Object(objectName(id))
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to copy photo to GCS: %v", err)
	}

	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %v", err)
	}

	return id, nil
}

func (c *CloudStorageClient) Open(ctx context.Context, id string) (io.ReadCloser, string, error) {
	obj := c.client.Bucket(c.bucketName).Object(objectName(id))
	rdr, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, "", service.ErrBlobNotFound
		}
		return nil, "", fmt.Errorf("failed to open photo: %v", err)
	}

	return rdr, rdr.Attrs.ContentType, nil
}

func (c *CloudStorageClient) Delete(ctx context.Context, id string) error {
	obj := c.client.Bucket(c.bucketName).Object(objectName(id))
	if err := obj.Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return service.ErrBlobNotFound
		}
		return fmt.Errorf("failed to delete photo: %v", err)
	}

	return nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}

func objectName(id string) string {
	return "photos/" + id
}
