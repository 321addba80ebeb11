// Where: cli/internal/argo/bundle.go
// What: Per-environment config and secret bundles for cluster jobs.
// Why: Split non-sensitive values from credentials so each lands in its own resource.
package argo

import (
	"fmt"
	"strconv"

	"github.com/poruru/envdb/cli/internal/constants"
	"github.com/poruru/envdb/cli/internal/envutil"
	"github.com/poruru/envdb/cli/internal/registry"
)

// Bundle holds the variables injected into one environment's jobs.
type Bundle struct {
	Environment string
	Config      map[string]string
	Secret      map[string]string
}

// ConfigName is the ConfigMap name of an environment's config bundle.
func ConfigName(env string) string {
	return fmt.Sprintf("%s-config", resourcePrefix(env))
}

// SecretName is the Secret name of an environment's secret bundle.
func SecretName(env string) string {
	return fmt.Sprintf("%s-secret", resourcePrefix(env))
}

// BuildBundle derives both bundles from a resolved profile.
// The config bundle binds ENVDB_ENV so the job needs no other selector, and
// disables prompting because no operator is attached to a cluster job.
func BuildBundle(p registry.Profile) Bundle {
	instance := ""
	if p.IsMain {
		instance = registry.InstanceMain
	}
	values := map[string]string{
		constants.SuffixDBHost:           p.Database.Host,
		constants.SuffixDBPort:           strconv.Itoa(p.Database.Port),
		constants.SuffixDBName:           p.Database.Name,
		constants.SuffixDBUser:           p.Database.User,
		constants.SuffixDBAdminUser:      p.Database.AdminUser,
		constants.SuffixDBOriginName:     p.Database.OriginDatabaseName,
		constants.SuffixInstance:         instance,
		constants.SuffixClassification:   string(p.Classification),
		constants.SuffixStorageEndpoint:  p.Storage.Endpoint,
		constants.SuffixStorageContainer: p.Storage.Container,
		constants.SuffixStorageRegion:    p.Storage.Region,
		constants.SuffixDBPassword:       p.Database.Password,
		constants.SuffixDBAdminPassword:  p.Database.AdminPassword,
		constants.SuffixStorageAccessKey: p.Storage.AccessKeyID,
		constants.SuffixStorageSecretKey: p.Storage.SecretAccessKey,
	}
	cfg := map[string]string{
		constants.EnvEnvironment:  p.Name,
		constants.EnvEnvironments: p.Name,
		constants.EnvInteractive:  "false",
	}
	for _, suffix := range constants.ConfigSuffixes {
		cfg[envutil.EnvKey(p.Name, suffix)] = values[suffix]
	}
	secret := make(map[string]string, len(constants.SecretSuffixes))
	for _, suffix := range constants.SecretSuffixes {
		secret[envutil.EnvKey(p.Name, suffix)] = values[suffix]
	}
	return Bundle{Environment: p.Name, Config: dropEmpty(cfg), Secret: dropEmpty(secret)}
}

func dropEmpty(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Environ flattens the bundle into the variable map a job would see.
func (b Bundle) Environ() map[string]string {
	out := make(map[string]string, len(b.Config)+len(b.Secret))
	for k, v := range b.Config {
		out[k] = v
	}
	for k, v := range b.Secret {
		out[k] = v
	}
	return out
}
