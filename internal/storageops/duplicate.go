// Where: cli/internal/storageops/duplicate.go
// What: Container duplication between environments.
// Why: Mirror a source container into a destination, remote or local emulator.
package storageops

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
	"github.com/poruru/envdb/cli/internal/registry"
)

// Mode selects the transfer strategy.
type Mode string

const (
	ModeRemote Mode = "remote"
	ModeLocal  Mode = "local"
)

// Report summarizes one duplication.
type Report struct {
	Mode                 Mode
	Source               string
	Destination          string
	SourceContainer      string
	DestinationContainer string
	Deleted              int
	Copied               int
	Bytes                int64
}

// Operations duplicates storage containers.
type Operations struct {
	Connector  Connector
	StagingDir string
	Logger     *slog.Logger
}

// New returns Operations staging local transfers under stagingDir.
func New(connector Connector, stagingDir string) *Operations {
	return &Operations{
		Connector:  connector,
		StagingDir: stagingDir,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (o *Operations) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// ModeFor reports the strategy used for destination.
func ModeFor(destination registry.Profile) Mode {
	if destination.IsLocal() {
		return ModeLocal
	}
	return ModeRemote
}

// DuplicateStorage replaces the destination container contents with the source's.
// Prior destination objects are deleted without confirmation.
func (o *Operations) DuplicateStorage(ctx context.Context, source, destination registry.Profile) (Report, error) {
	report := Report{
		Mode:                 ModeFor(destination),
		Source:               source.Name,
		Destination:          destination.Name,
		SourceContainer:      source.Storage.Container,
		DestinationContainer: destination.Storage.Container,
	}
	if o == nil || o.Connector == nil {
		return report, errors.New("storage connector not configured")
	}
	if source.Name == destination.Name {
		return report, fmt.Errorf("%w: source and destination are both %q", lifecycle.ErrUsage, source.Name)
	}
	if sameLocation(source, destination) {
		return report, &lifecycle.StorageError{
			Step:      "check destination",
			Container: report.DestinationContainer,
			Err:       fmt.Errorf("%q and %q address the same container", source.Name, destination.Name),
		}
	}
	for _, p := range []registry.Profile{source, destination} {
		if !p.Storage.Configured() {
			return report, fmt.Errorf("environment %q has no storage container configured", p.Name)
		}
		if _, err := p.StorageCredentials(); err != nil {
			return report, err
		}
	}

	src, err := o.Connector.Remote(ctx, source, AccessReadList)
	if err != nil {
		return report, &lifecycle.StorageError{Step: "connect source", Container: report.SourceContainer, Err: err}
	}
	src = ReadOnly(src)

	log := o.logger().With("op", lifecycle.KindDuplicateStorage, "from", source.Name, "to", destination.Name, "mode", report.Mode)
	if report.Mode == ModeLocal {
		emu, err := o.Connector.Emulator(ctx, destination)
		if err != nil {
			return report, &lifecycle.StorageError{Step: "connect emulator", Container: report.DestinationContainer, Err: err}
		}
		err = o.toLocal(ctx, src, emu, &report)
		log.Info("storage duplication finished", "deleted", report.Deleted, "copied", report.Copied, "bytes", report.Bytes, "ok", err == nil)
		return report, err
	}

	dst, err := o.Connector.Remote(ctx, destination, AccessFull)
	if err != nil {
		return report, &lifecycle.StorageError{Step: "connect destination", Container: report.DestinationContainer, Err: err}
	}
	err = o.toRemote(ctx, src, dst, &report)
	log.Info("storage duplication finished", "deleted", report.Deleted, "copied", report.Copied, "bytes", report.Bytes, "ok", err == nil)
	return report, err
}

// sameLocation reports whether both profiles resolve to one container.
// Local profiles share the emulator, so only two local or two remote
// profiles can collide.
func sameLocation(a, b registry.Profile) bool {
	if a.IsLocal() != b.IsLocal() {
		return false
	}
	endpoint := func(p registry.Profile) string {
		return strings.TrimRight(strings.ToLower(strings.TrimSpace(p.Storage.Endpoint)), "/")
	}
	return endpoint(a) == endpoint(b) &&
		strings.TrimSpace(a.Storage.Container) == strings.TrimSpace(b.Storage.Container)
}

func (o *Operations) toRemote(ctx context.Context, src, dst ObjectStore, report *Report) error {
	if err := clearContainer(ctx, dst, report); err != nil {
		return err
	}
	objects, err := src.List(ctx, report.SourceContainer)
	if err != nil {
		return &lifecycle.StorageError{Step: "list source", Container: report.SourceContainer, Err: err}
	}
	for _, obj := range objects {
		if err := copyObject(ctx, src, dst, report, obj); err != nil {
			return err
		}
	}
	return nil
}

func copyObject(ctx context.Context, src, dst ObjectStore, report *Report, obj Object) error {
	body, err := src.Get(ctx, report.SourceContainer, obj.Key)
	if err != nil {
		return &lifecycle.StorageError{Step: "read", Container: report.SourceContainer, Key: obj.Key, Err: err}
	}
	defer body.Close()
	if err := dst.Put(ctx, report.DestinationContainer, obj.Key, body, obj.Size); err != nil {
		return &lifecycle.StorageError{Step: "write", Container: report.DestinationContainer, Key: obj.Key, Err: err}
	}
	report.Copied++
	report.Bytes += obj.Size
	return nil
}

func clearContainer(ctx context.Context, dst ObjectStore, report *Report) error {
	existing, err := dst.List(ctx, report.DestinationContainer)
	if err != nil {
		return &lifecycle.StorageError{Step: "list destination", Container: report.DestinationContainer, Err: err}
	}
	for _, obj := range existing {
		if err := dst.Delete(ctx, report.DestinationContainer, obj.Key); err != nil {
			return &lifecycle.StorageError{Step: "delete", Container: report.DestinationContainer, Key: obj.Key, Err: err}
		}
		report.Deleted++
	}
	return nil
}

type stagedObject struct {
	Object
	Path string
}

func (o *Operations) toLocal(ctx context.Context, src ObjectStore, emu FileStore, report *Report) error {
	staging, err := os.MkdirTemp(o.StagingDir, "envdb-storage-")
	if err != nil {
		return &lifecycle.StorageError{Step: "stage", Container: report.SourceContainer, Err: err}
	}
	defer func() { _ = os.RemoveAll(staging) }()

	objects, err := src.List(ctx, report.SourceContainer)
	if err != nil {
		return &lifecycle.StorageError{Step: "list source", Container: report.SourceContainer, Err: err}
	}
	staged := make([]stagedObject, 0, len(objects))
	for _, obj := range objects {
		target, err := StagingPath(staging, obj.Key)
		if err != nil {
			return &lifecycle.StorageError{Step: "stage", Container: report.SourceContainer, Key: obj.Key, Err: err}
		}
		if err := download(ctx, src, report.SourceContainer, obj.Key, target); err != nil {
			return &lifecycle.StorageError{Step: "download", Container: report.SourceContainer, Key: obj.Key, Err: err}
		}
		staged = append(staged, stagedObject{Object: obj, Path: target})
	}

	if err := emu.EnsureContainer(ctx, report.DestinationContainer); err != nil {
		return &lifecycle.StorageError{Step: "create bucket", Container: report.DestinationContainer, Err: err}
	}
	if err := clearContainer(ctx, emu, report); err != nil {
		return err
	}
	for _, obj := range staged {
		if err := emu.PutFile(ctx, report.DestinationContainer, obj.Key, obj.Path); err != nil {
			return &lifecycle.StorageError{Step: "upload", Container: report.DestinationContainer, Key: obj.Key, Err: err}
		}
		report.Copied++
		report.Bytes += obj.Size
	}
	return nil
}

// StagingPath maps an object key under root, rejecting keys that would escape it.
func StagingPath(root, key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || filepath.IsAbs(key) {
		return "", fmt.Errorf("object key %q is absolute or empty", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", fmt.Errorf("object key %q escapes the staging directory", key)
		}
	}
	clean := path.Clean(key)
	if clean == "." || strings.HasSuffix(key, "/") {
		return "", fmt.Errorf("object key %q does not name a file", key)
	}
	return filepath.Join(root, filepath.FromSlash(clean)), nil
}

func download(ctx context.Context, src ObjectStore, container, key, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return err
	}
	body, err := src.Get(ctx, container, key)
	if err != nil {
		return err
	}
	defer body.Close()
	file, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, body); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
