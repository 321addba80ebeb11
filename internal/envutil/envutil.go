// Package envutil provides helper functions for environment variable handling.
package envutil

import (
	"os"
	"strings"

	"github.com/poruru/envdb/cli/internal/meta"
)

// EnvPrefix returns the variable prefix for one named environment.
// Example: EnvPrefix("sandbox-alice") returns "ENVDB_SANDBOX_ALICE_".
func EnvPrefix(envName string) string {
	return meta.EnvPrefix + "_" + normalize(envName) + "_"
}

// EnvKey constructs the namespaced variable name for an environment.
// Example: EnvKey("staging", "DB_HOST") returns "ENVDB_STAGING_DB_HOST".
func EnvKey(envName, suffix string) string {
	return EnvPrefix(envName) + suffix
}

// Snapshot returns the process environment as a map.
// Callers resolve against the snapshot so later mutations do not leak in.
func Snapshot() map[string]string {
	return FromPairs(os.Environ())
}

// FromPairs converts KEY=VALUE pairs into a map. Malformed entries are skipped.
func FromPairs(pairs []string) map[string]string {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			continue
		}
		out[key] = value
	}
	return out
}

func normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(name)) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
