// Where: cli/internal/infra/blob/ports.go
// What: Published port discovery for the local compose stack.
// Why: Find the emulator's host port when Docker Compose assigns it dynamically.
package blob

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
)

const (
	composeProjectLabel = "com.docker.compose.project"
	composeServiceLabel = "com.docker.compose.service"
)

// DockerClient is the subset of the Docker SDK used for port discovery.
type DockerClient interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
}

// NewDockerClient connects to the daemon configured by DOCKER_HOST and friends.
func NewDockerClient() (*client.Client, error) {
	return client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
}

// PortRequest names one published container port of a compose service.
type PortRequest struct {
	Project       string
	Service       string
	ContainerPort int
}

type PortResolver interface {
	Resolve(ctx context.Context, request PortRequest) (int, error)
}

type DockerPortResolver struct {
	Client DockerClient
}

func (r DockerPortResolver) Resolve(ctx context.Context, request PortRequest) (int, error) {
	if r.Client == nil {
		return 0, fmt.Errorf("docker client is nil")
	}
	if strings.TrimSpace(request.Project) == "" {
		return 0, fmt.Errorf("compose project is required")
	}
	if strings.TrimSpace(request.Service) == "" {
		return 0, fmt.Errorf("compose service is required")
	}
	if request.ContainerPort <= 0 {
		return 0, fmt.Errorf("container port is required")
	}

	labelFilter := filters.NewArgs()
	labelFilter.Add("label", fmt.Sprintf("%s=%s", composeProjectLabel, request.Project))
	labelFilter.Add("label", fmt.Sprintf("%s=%s", composeServiceLabel, request.Service))

	containers, err := r.Client.ContainerList(ctx, container.ListOptions{Filters: labelFilter})
	if err != nil {
		return 0, err
	}
	for _, ctr := range containers {
		if ctr.Labels[composeProjectLabel] != request.Project || ctr.Labels[composeServiceLabel] != request.Service {
			continue
		}
		for _, port := range ctr.Ports {
			if int(port.PrivatePort) == request.ContainerPort && port.PublicPort > 0 {
				return int(port.PublicPort), nil
			}
		}
	}
	return 0, fmt.Errorf("published port not found for %s:%d", request.Service, request.ContainerPort)
}

// ResolvePort prefers an explicit override, then the resolver, then the default.
func ResolvePort(ctx context.Context, override string, defaultPort int, request PortRequest, resolver PortResolver) int {
	if port, err := strconv.Atoi(strings.TrimSpace(override)); err == nil && port > 0 {
		return port
	}
	if resolver != nil {
		if resolved, err := resolver.Resolve(ctx, request); err == nil && resolved > 0 {
			return resolved
		}
	}
	return defaultPort
}
