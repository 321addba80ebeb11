// Where: cli/internal/infra/blob/minio.go
// What: MinIO emulator store for the local environment.
// Why: Upload staged files into the local object-storage emulator.
package blob

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/poruru/envdb/cli/internal/storageops"
)

// MinioStore adapts a minio client to storageops.FileStore.
type MinioStore struct {
	client *minio.Client
}

var _ storageops.FileStore = MinioStore{}

// NewMinioStore connects to the emulator at host:port.
func NewMinioStore(endpoint, accessKey, secretKey string, secure bool) (MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return MinioStore{}, fmt.Errorf("create minio client: %w", err)
	}
	return MinioStore{client: client}, nil
}

func (m MinioStore) List(ctx context.Context, container string) ([]storageops.Object, error) {
	var out []storageops.Object
	for obj := range m.client.ListObjects(ctx, container, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		out = append(out, storageops.Object{Key: obj.Key, Size: obj.Size})
	}
	return out, nil
}

func (m MinioStore) Get(ctx context.Context, container, key string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, container, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (m MinioStore) Put(ctx context.Context, container, key string, body io.Reader, size int64) error {
	_, err := m.client.PutObject(ctx, container, key, body, size, minio.PutObjectOptions{})
	return err
}

func (m MinioStore) PutFile(ctx context.Context, container, key, path string) error {
	_, err := m.client.FPutObject(ctx, container, key, path, minio.PutObjectOptions{})
	return err
}

func (m MinioStore) Delete(ctx context.Context, container, key string) error {
	return m.client.RemoveObject(ctx, container, key, minio.RemoveObjectOptions{})
}

func (m MinioStore) EnsureContainer(ctx context.Context, container string) error {
	exists, err := m.client.BucketExists(ctx, container)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return m.client.MakeBucket(ctx, container, minio.MakeBucketOptions{})
}
