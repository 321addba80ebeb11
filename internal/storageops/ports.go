// Where: cli/internal/storageops/ports.go
// What: Object store ports used by storage duplication.
// Why: Keep the duplication algorithm independent of the S3 and emulator clients.
package storageops

import (
	"context"
	"errors"
	"io"

	"github.com/poruru/envdb/cli/internal/registry"
)

// Object describes one stored blob.
type Object struct {
	Key  string
	Size int64
}

// ObjectStore is the container-level API shared by remote and emulator stores.
type ObjectStore interface {
	List(ctx context.Context, container string) ([]Object, error)
	Get(ctx context.Context, container, key string) (io.ReadCloser, error)
	Put(ctx context.Context, container, key string, body io.Reader, size int64) error
	Delete(ctx context.Context, container, key string) error
	EnsureContainer(ctx context.Context, container string) error
}

// FileStore uploads staged files directly from disk.
type FileStore interface {
	ObjectStore
	PutFile(ctx context.Context, container, key, path string) error
}

// Access is the token scope requested for one side of a transfer.
type Access string

const (
	AccessReadList Access = "read-list"
	AccessFull     Access = "read-write-delete"
)

// Connector opens stores for resolved environment profiles.
type Connector interface {
	Remote(ctx context.Context, profile registry.Profile, access Access) (ObjectStore, error)
	Emulator(ctx context.Context, profile registry.Profile) (FileStore, error)
}

// ErrReadOnly is returned when a write reaches a store opened with AccessReadList.
var ErrReadOnly = errors.New("store opened read-only")

// ReadOnly wraps a store so writes fail before reaching the backend.
func ReadOnly(store ObjectStore) ObjectStore {
	return readOnlyStore{inner: store}
}

type readOnlyStore struct {
	inner ObjectStore
}

func (s readOnlyStore) List(ctx context.Context, container string) ([]Object, error) {
	return s.inner.List(ctx, container)
}

func (s readOnlyStore) Get(ctx context.Context, container, key string) (io.ReadCloser, error) {
	return s.inner.Get(ctx, container, key)
}

func (readOnlyStore) Put(context.Context, string, string, io.Reader, int64) error {
	return ErrReadOnly
}

func (readOnlyStore) Delete(context.Context, string, string) error {
	return ErrReadOnly
}

func (readOnlyStore) EnsureContainer(context.Context, string) error {
	return ErrReadOnly
}
