// Where: cli/internal/infra/blob/connector.go
// What: Opens object stores for resolved environment profiles.
// Why: Pick S3 for remote environments and the MinIO emulator for local.
package blob

import (
	"context"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/poruru/envdb/cli/internal/registry"
	"github.com/poruru/envdb/cli/internal/storageops"
)

const (
	emulatorService = "minio"
	emulatorPort    = 9000
	emulatorHost    = "localhost"
)

// Connector implements storageops.Connector.
type Connector struct {
	ComposeProject string
	// PortOverride is the raw ENVDB_PORT_S3 value.
	PortOverride string
	Resolver     PortResolver
}

var _ storageops.Connector = Connector{}

func (c Connector) Remote(ctx context.Context, p registry.Profile, _ storageops.Access) (storageops.ObjectStore, error) {
	creds, err := p.StorageCredentials()
	if err != nil {
		return nil, err
	}
	client, err := NewS3Client(ctx, S3Options{
		Endpoint:        p.Storage.Endpoint,
		Region:          p.Storage.Region,
		AccessKeyID:     creds.User,
		SecretAccessKey: creds.Password,
	})
	if err != nil {
		return nil, err
	}
	return NewS3Store(client), nil
}

func (c Connector) Emulator(ctx context.Context, p registry.Profile) (storageops.FileStore, error) {
	creds, err := p.StorageCredentials()
	if err != nil {
		return nil, err
	}
	endpoint, secure := c.EmulatorEndpoint(ctx, p)
	return NewMinioStore(endpoint, creds.User, creds.Password, secure)
}

// EmulatorEndpoint returns host:port for the local emulator and whether it uses TLS.
func (c Connector) EmulatorEndpoint(ctx context.Context, p registry.Profile) (string, bool) {
	if raw := strings.TrimSpace(p.Storage.Endpoint); raw != "" {
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			return u.Host, u.Scheme == "https"
		}
		return raw, false
	}
	port := ResolvePort(ctx, c.PortOverride, emulatorPort, PortRequest{
		Project:       c.ComposeProject,
		Service:       emulatorService,
		ContainerPort: emulatorPort,
	}, c.Resolver)
	return net.JoinHostPort(emulatorHost, strconv.Itoa(port)), false
}
