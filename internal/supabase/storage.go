package supabase

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	storage "github.com/supabase-community/storage-go"
)

const (
	videoContentType = "video/mp4"
	videoPrefix      = "videos"
)

// StorageClient mirrors finished videos into a public Supabase Storage bucket.
type StorageClient struct {
	// storage-go keeps upload options on a shared header set.
	mu      sync.Mutex
	client  *storage.Client
	bucket  string
	baseURL string
	breaker *gobreaker.CircuitBreaker[string]
}

func NewStorageClient(supabaseURL, serviceRoleKey, bucket string, log zerolog.Logger) *StorageClient {
	baseURL := strings.TrimRight(supabaseURL, "/")
	return &StorageClient{
		client:  storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil),
		bucket:  bucket,
		baseURL: baseURL,
		breaker: newBreaker[string]("supabase-storage", log),
	}
}

// UploadVideo uploads the file at path as videos/<key> and returns its
// public URL. Existing objects are overwritten.
func (s *StorageClient) UploadVideo(ctx context.Context, key, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	return s.breaker.Execute(func() (string, error) {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("failed to open video: %w", err)
		}
		defer f.Close()

		storagePath := videoPrefix + "/" + key
		contentType := videoContentType
		upsert := true

		s.mu.Lock()
		_, err = s.client.UploadFile(s.bucket, storagePath, f, storage.FileOptions{
			ContentType: &contentType,
			Upsert:      &upsert,
		})
		s.mu.Unlock()
		if err != nil {
			return "", fmt.Errorf("failed to upload file: %w", err)
		}

		return s.GetPublicURL(storagePath), nil
	})
}

func (s *StorageClient) GetPublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		s.baseURL, s.bucket, storagePath)
}
