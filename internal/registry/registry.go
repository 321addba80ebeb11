// Where: cli/internal/registry/registry.go
// What: Static environment table and name-to-profile resolution.
// Why: Resolve credentials from the caller's environment without process-wide state.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/poruru/envdb/cli/internal/config"
	"github.com/poruru/envdb/cli/internal/constants"
	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
	"github.com/poruru/envdb/cli/internal/envutil"
)

const (
	defaultPostgresPort = 5432
	localPostgresUser   = "postgres"
	localPostgresPass   = "password"
	localStorageAccess  = "minioadmin"
	localStorageSecret  = "minioadmin"
	maintenanceDatabase = "postgres"
)

// Registry is an immutable table of environments.
type Registry struct {
	entries []config.EnvironmentEntry
	index   map[string]int
}

// New builds a registry from the table file plus names whose fields come
// entirely from namespaced variables.
func New(file config.RegistryFile, extra ...string) *Registry {
	r := &Registry{index: map[string]int{}}
	for _, entry := range file.Environments {
		r.add(entry)
	}
	for _, name := range extra {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		r.add(config.EnvironmentEntry{Name: name})
	}
	return r
}

func (r *Registry) add(entry config.EnvironmentEntry) {
	if _, ok := r.index[entry.Name]; ok {
		return
	}
	r.index[entry.Name] = len(r.entries)
	r.entries = append(r.entries, entry)
}

// Names lists registered environments in table order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		names = append(names, entry.Name)
	}
	return names
}

// overlay mirrors the namespaced variables for one environment.
type overlay struct {
	Host             string `env:"DB_HOST"`
	Port             int    `env:"DB_PORT"`
	Name             string `env:"DB_NAME"`
	User             string `env:"DB_USER"`
	AdminUser        string `env:"DB_ADMIN_USER"`
	Origin           string `env:"DB_ORIGIN_NAME"`
	Instance         string `env:"INSTANCE"`
	Classification   string `env:"CLASSIFICATION"`
	StorageEndpoint  string `env:"STORAGE_ENDPOINT"`
	StorageContainer string `env:"STORAGE_CONTAINER"`
	StorageRegion    string `env:"STORAGE_REGION"`

	Password         string `env:"DB_PASSWORD"`
	AdminPassword    string `env:"DB_ADMIN_PASSWORD"`
	StorageAccessKey string `env:"STORAGE_ACCESS_KEY"`
	StorageSecretKey string `env:"STORAGE_SECRET_KEY"`
}

// Resolve returns the profile for name using environ as the only source of
// overrides and secrets.
func (r *Registry) Resolve(name string, environ map[string]string) (Profile, error) {
	idx, ok := r.index[name]
	if !ok {
		known := r.Names()
		sort.Strings(known)
		return Profile{}, fmt.Errorf("%w %q (known: %s)", lifecycle.ErrUnknownEnvironment, name, strings.Join(known, ", "))
	}
	entry := r.entries[idx]

	vars := overlay{
		Host:             entry.Database.Host,
		Port:             entry.Database.Port,
		Name:             entry.Database.Name,
		User:             entry.Database.User,
		AdminUser:        entry.Database.AdminUser,
		Origin:           entry.Database.Origin,
		Instance:         entry.Instance,
		Classification:   entry.Classification,
		StorageEndpoint:  entry.Storage.Endpoint,
		StorageContainer: entry.Storage.Container,
		StorageRegion:    entry.Storage.Region,
	}
	if environ == nil {
		environ = map[string]string{}
	}
	if err := env.ParseWithOptions(&vars, env.Options{
		Prefix:      envutil.EnvPrefix(name),
		Environment: environ,
	}); err != nil {
		return Profile{}, fmt.Errorf("environment %q: parse env: %w", name, err)
	}

	classification, err := parseClassification(strings.TrimSpace(vars.Classification))
	if err != nil {
		return Profile{}, fmt.Errorf("environment %q: %w", name, err)
	}
	profile := Profile{
		Name:           name,
		Instance:       vars.Instance,
		Classification: classification,
		IsMain:         vars.Instance == InstanceMain,
		IsProduction:   classification == ClassProduction,
		Database: DatabaseProfile{
			Host:               vars.Host,
			Port:               vars.Port,
			Name:               vars.Name,
			User:               vars.User,
			Password:           vars.Password,
			AdminUser:          vars.AdminUser,
			AdminPassword:      vars.AdminPassword,
			OriginDatabaseName: vars.Origin,
		},
		Storage: StorageProfile{
			Endpoint:        vars.StorageEndpoint,
			Container:       vars.StorageContainer,
			Region:          vars.StorageRegion,
			AccessKeyID:     vars.StorageAccessKey,
			SecretAccessKey: vars.StorageSecretKey,
		},
	}
	if profile.Database.Port == 0 {
		profile.Database.Port = defaultPostgresPort
	}
	if profile.IsLocal() {
		applyLocalDefaults(&profile)
	}
	if err := checkRequired(profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

func applyLocalDefaults(p *Profile) {
	if p.Database.User == "" {
		p.Database.User = localPostgresUser
	}
	if p.Database.Password == "" {
		p.Database.Password = localPostgresPass
	}
	if p.Database.AdminUser != "" && p.Database.AdminPassword == "" {
		p.Database.AdminPassword = localPostgresPass
	}
	if p.Storage.AccessKeyID == "" {
		p.Storage.AccessKeyID = localStorageAccess
	}
	if p.Storage.SecretAccessKey == "" {
		p.Storage.SecretAccessKey = localStorageSecret
	}
}

func checkRequired(p Profile) error {
	var missing []string
	if p.Database.Host == "" {
		missing = append(missing, envutil.EnvKey(p.Name, constants.SuffixDBHost))
	}
	if p.Database.Name == "" {
		missing = append(missing, envutil.EnvKey(p.Name, constants.SuffixDBName))
	}
	if p.Database.User == "" {
		missing = append(missing, envutil.EnvKey(p.Name, constants.SuffixDBUser))
	}
	if len(missing) > 0 {
		return fmt.Errorf("environment %q: missing configuration %s", p.Name, strings.Join(missing, ", "))
	}
	if p.Database.Password == "" {
		return missingCredential(p.Name, envutil.EnvKey(p.Name, constants.SuffixDBPassword))
	}
	if p.Database.AdminUser != "" && p.Database.AdminPassword == "" {
		return missingCredential(p.Name, envutil.EnvKey(p.Name, constants.SuffixDBAdminPassword))
	}
	return nil
}

// MaintenanceDatabase is the database administrative statements connect to.
func MaintenanceDatabase() string {
	return maintenanceDatabase
}
