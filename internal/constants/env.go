// Where: cli/internal/constants/env.go
// What: Environment variable naming constants.
// Why: Centralize environment variable names to avoid typos and inconsistencies.
package constants

// Tool variables that other components set or name.
// The full list of tool settings lives in config.Settings.
const (
	EnvEnvironment  = "ENVDB_ENV"
	EnvEnvironments = "ENVDB_ENVIRONMENTS"
	EnvInteractive  = "ENVDB_INTERACTIVE"
)

// Per-environment suffixes. The full key is ENVDB_<ENV>_<SUFFIX>.
const (
	// Non-sensitive values (config bundle)
	SuffixDBHost           = "DB_HOST"
	SuffixDBPort           = "DB_PORT"
	SuffixDBName           = "DB_NAME"
	SuffixDBUser           = "DB_USER"
	SuffixDBAdminUser      = "DB_ADMIN_USER"
	SuffixDBOriginName     = "DB_ORIGIN_NAME"
	SuffixInstance         = "INSTANCE"
	SuffixClassification   = "CLASSIFICATION"
	SuffixStorageEndpoint  = "STORAGE_ENDPOINT"
	SuffixStorageContainer = "STORAGE_CONTAINER"
	SuffixStorageRegion    = "STORAGE_REGION"

	// Sensitive values (secret bundle)
	SuffixDBPassword       = "DB_PASSWORD"
	SuffixDBAdminPassword  = "DB_ADMIN_PASSWORD"
	SuffixStorageAccessKey = "STORAGE_ACCESS_KEY"
	SuffixStorageSecretKey = "STORAGE_SECRET_KEY"
)

// ConfigSuffixes lists the keys rendered into an environment's config bundle.
var ConfigSuffixes = []string{
	SuffixDBHost,
	SuffixDBPort,
	SuffixDBName,
	SuffixDBUser,
	SuffixDBAdminUser,
	SuffixDBOriginName,
	SuffixInstance,
	SuffixClassification,
	SuffixStorageEndpoint,
	SuffixStorageContainer,
	SuffixStorageRegion,
}

// SecretSuffixes lists the keys rendered into an environment's secret bundle.
var SecretSuffixes = []string{
	SuffixDBPassword,
	SuffixDBAdminPassword,
	SuffixStorageAccessKey,
	SuffixStorageSecretKey,
}
