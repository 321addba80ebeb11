// Where: cli/internal/config/settings.go
// What: Tool-level settings parsed from environment variables.
// Why: Keep CLI defaults (dump dir, registry file, log level) in one typed struct.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/poruru/envdb/cli/internal/meta"
)

// Settings captures ENVDB_* values that shape a single invocation.
type Settings struct {
	RegistryFile      string   `env:"ENVDB_REGISTRY_FILE"`
	ExtraEnvironments []string `env:"ENVDB_ENVIRONMENTS" envSeparator:","`
	DumpDir           string   `env:"ENVDB_DUMP_DIR"`
	StagingDir        string   `env:"ENVDB_STAGING_DIR"`
	LogLevel          string   `env:"ENVDB_LOG_LEVEL" envDefault:"info"`
	Environment       string   `env:"ENVDB_ENV"`
	Interactive       string   `env:"ENVDB_INTERACTIVE"`
	ComposeProject    string   `env:"ENVDB_COMPOSE_PROJECT" envDefault:"envdb"`
	DatabasePort      string   `env:"ENVDB_PORT_DATABASE"`
	S3Port            string   `env:"ENVDB_PORT_S3"`
}

// LoadSettings parses settings from an environment snapshot.
func LoadSettings(environ map[string]string) (Settings, error) {
	var settings Settings
	if err := env.ParseWithOptions(&settings, env.Options{Environment: environ}); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if strings.TrimSpace(settings.DumpDir) == "" {
		settings.DumpDir = meta.DumpDir
	}
	if strings.TrimSpace(settings.StagingDir) == "" {
		settings.StagingDir = os.TempDir()
	}
	for i, name := range settings.ExtraEnvironments {
		settings.ExtraEnvironments[i] = strings.TrimSpace(name)
	}
	return settings, nil
}

// InteractiveOverride reports an explicit ENVDB_INTERACTIVE value.
// The second result is false when the variable is unset or unparsable.
func (s Settings) InteractiveOverride() (bool, bool) {
	raw := strings.TrimSpace(s.Interactive)
	if raw == "" {
		return false, false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return value, true
}
