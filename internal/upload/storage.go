package upload

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// ImageBucket is the backend storage bucket memory photos go into.
const ImageBucket = "memory-images"

// Uploader stores uploaded files and returns a public URL for them.
type Uploader interface {
	UploadImage(ctx context.Context, objectPath, contentType string, data []byte) (string, error)
}

// StorageClient uploads objects to the managed backend's storage API.
type StorageClient struct {
	client  *resty.Client
	baseURL string
}

// NewStorageClient creates a storage client for the backend base URL and
// deployment API key.
func NewStorageClient(baseURL, apiKey string) (*StorageClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("backend URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("backend key is required")
	}

	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("apikey", apiKey).
		SetHeader("Authorization", "Bearer "+apiKey).
		SetTimeout(30 * time.Second)

	return &StorageClient{client: c, baseURL: baseURL}, nil
}

// UploadImage PUTs the object into the image bucket, overwriting any
// previous upload at the same path, and returns its public URL.
func (s *StorageClient) UploadImage(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "true").
		SetBody(data).
		Put(fmt.Sprintf("/storage/v1/object/%s/%s", ImageBucket, objectPath))
	if err != nil {
		return "", fmt.Errorf("storage upload: %w", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return "", fmt.Errorf("storage upload status %d: %s", resp.StatusCode(), resp.String())
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, ImageBucket, objectPath), nil
}
