// Where: cli/internal/registry/profile.go
// What: Resolved environment profile value types.
// Why: Give operations an immutable, secret-aware view of one environment.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
)

// Classification is the deployment class of an environment.
type Classification string

const (
	ClassLocal       Classification = "local"
	ClassDevelopment Classification = "development"
	ClassStaging     Classification = "staging"
	ClassProduction  Classification = "production"
)

func parseClassification(value string) (Classification, error) {
	switch c := Classification(value); c {
	case ClassLocal, ClassDevelopment, ClassStaging, ClassProduction:
		return c, nil
	case "":
		return "", fmt.Errorf("classification is required")
	default:
		return "", fmt.Errorf("unsupported classification %q", value)
	}
}

// InstanceMain marks the primary, non-disposable instance of a fleet.
const InstanceMain = "main"

// Profile identifies one deployment environment for the duration of an operation.
type Profile struct {
	Name           string
	Instance       string
	Classification Classification
	IsMain         bool
	IsProduction   bool
	Database       DatabaseProfile
	Storage        StorageProfile
}

// DatabaseProfile holds the connection fields of an environment database.
type DatabaseProfile struct {
	Host               string
	Port               int
	Name               string
	User               string
	Password           string
	AdminUser          string
	AdminPassword      string
	OriginDatabaseName string
}

// Credentials is a user/password pair for one connection.
type Credentials struct {
	User     string
	Password string
}

// Owner returns the application user credentials.
func (d DatabaseProfile) Owner() Credentials {
	return Credentials{User: d.User, Password: d.Password}
}

// Admin returns the administrative credentials, falling back to the owner.
func (d DatabaseProfile) Admin() Credentials {
	if d.AdminUser == "" {
		return d.Owner()
	}
	return Credentials{User: d.AdminUser, Password: d.AdminPassword}
}

// StorageProfile locates the blob container of an environment.
type StorageProfile struct {
	Endpoint        string
	Container       string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// Configured reports whether the environment has a container at all.
func (s StorageProfile) Configured() bool {
	return s.Container != ""
}

// IsLocal reports whether the environment is the local development stack.
func (p Profile) IsLocal() bool {
	return p.Classification == ClassLocal
}

// Validate checks the origin invariant for non-main environments.
func (p Profile) Validate() error {
	if !p.IsMain && p.Database.OriginDatabaseName != "" && p.Database.OriginDatabaseName == p.Database.Name {
		return &lifecycle.GuardError{
			Guard:       lifecycle.GuardSelfOrigin,
			Kind:        lifecycle.KindCreate,
			Environment: p.Name,
			Database:    p.Database.Name,
			Origin:      p.Database.OriginDatabaseName,
		}
	}
	return nil
}

// StorageCredentials returns the container token pair or MissingCredential.
func (p Profile) StorageCredentials() (Credentials, error) {
	if !p.Storage.Configured() {
		return Credentials{}, fmt.Errorf("environment %q has no storage container configured", p.Name)
	}
	if p.Storage.AccessKeyID == "" || p.Storage.SecretAccessKey == "" {
		return Credentials{}, missingCredential(p.Name, "storage access key")
	}
	return Credentials{User: p.Storage.AccessKeyID, Password: p.Storage.SecretAccessKey}, nil
}

// LogValue emits only non-sensitive fields.
func (p Profile) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", p.Name),
		slog.String("classification", string(p.Classification)),
		slog.Bool("main", p.IsMain),
		slog.String("db_host", p.Database.Host),
		slog.Int("db_port", p.Database.Port),
		slog.String("db_name", p.Database.Name),
		slog.String("db_origin", p.Database.OriginDatabaseName),
		slog.String("container", p.Storage.Container),
	)
}

// String keeps secrets out of %v formatting.
func (p Profile) String() string {
	return fmt.Sprintf("%s(%s/%s)", p.Name, p.Database.Host, p.Database.Name)
}

func missingCredential(env, what string) error {
	return fmt.Errorf("%w: %s for environment %q", lifecycle.ErrMissingCredential, what, env)
}
