// Package storage holds listing images in S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds the connection settings for the object store.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Client uploads and removes listing images in one bucket.
type Client struct {
	client *minio.Client
	bucket string
	useSSL bool
}

// New connects to the object store. minio-go expects a bare host:port
// endpoint, so any scheme prefix is stripped.
func New(cfg Config) (*Client, error) {
	endpoint := strings.TrimPrefix(cfg.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: connect: %w", err)
	}

	return &Client{client: client, bucket: cfg.Bucket, useSSL: cfg.UseSSL}, nil
}

// EnsureBucket creates the image bucket when it does not exist yet.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("storage: check bucket: %w", err)
	}
	if !exists {
		if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("storage: create bucket %s: %w", c.bucket, err)
		}
	}
	return nil
}

// ImageKey builds a collision-free object key for a listing image, keeping
// the original file extension.
func ImageKey(filename string) string {
	return "properties/" + uuid.NewString() + strings.ToLower(path.Ext(filename))
}

// Upload stores one image and returns its public URL.
func (c *Client) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := c.client.PutObject(ctx, c.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("storage: upload %s: %w", key, err)
	}
	return c.URL(key), nil
}

// Remove deletes one image. Removing a missing key is not an error.
func (c *Client) Remove(ctx context.Context, key string) error {
	err := c.client.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("storage: remove %s: %w", key, err)
	}
	return nil
}

// URL returns the public address of an object.
func (c *Client) URL(key string) string {
	scheme := "http"
	if c.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, c.client.EndpointURL().Host, c.bucket, key)
}

// Ping verifies the object store is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.client.BucketExists(ctx, c.bucket); err != nil {
		return fmt.Errorf("storage: ping: %w", err)
	}
	return nil
}
