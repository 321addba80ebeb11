// Where: cli/internal/config/registry_file.go
// What: Environment table file format, loader, and embedded default fleet.
// Why: Populate the registry from one validated YAML document at process start.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
	k8syaml "sigs.k8s.io/yaml"
)

//go:embed environments.yml
var defaultRegistryYAML []byte

//go:embed schema/registry.schema.json
var registrySchemaJSON string

const registrySchemaURL = "registry.schema.json"

var (
	registrySchemaOnce sync.Once
	registrySchema     *jsonschema.Schema
	registrySchemaErr  error
)

// RegistryFile is the on-disk shape of the environment table.
type RegistryFile struct {
	Environments []EnvironmentEntry `yaml:"environments"`
}

// EnvironmentEntry describes one deployment environment without secrets.
type EnvironmentEntry struct {
	Name           string        `yaml:"name"`
	Instance       string        `yaml:"instance,omitempty"`
	Classification string        `yaml:"classification"`
	Database       DatabaseEntry `yaml:"database"`
	Storage        StorageEntry  `yaml:"storage,omitempty"`
}

// DatabaseEntry holds the non-sensitive connection fields.
type DatabaseEntry struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port,omitempty"`
	Name      string `yaml:"name"`
	User      string `yaml:"user"`
	AdminUser string `yaml:"admin_user,omitempty"`
	Origin    string `yaml:"origin,omitempty"`
}

// StorageEntry holds the container location for an environment.
type StorageEntry struct {
	Endpoint  string `yaml:"endpoint,omitempty"`
	Container string `yaml:"container,omitempty"`
	Region    string `yaml:"region,omitempty"`
}

// DefaultRegistry returns the environment table compiled into the binary.
func DefaultRegistry() (RegistryFile, error) {
	return ParseRegistry(defaultRegistryYAML)
}

// LoadRegistry reads the table at path, or the embedded default when path is empty.
func LoadRegistry(path string) (RegistryFile, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultRegistry()
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return RegistryFile{}, fmt.Errorf("read registry file: %w", err)
	}
	file, err := ParseRegistry(content)
	if err != nil {
		return RegistryFile{}, fmt.Errorf("registry file %s: %w", path, err)
	}
	return file, nil
}

// ParseRegistry validates content against the registry schema and decodes it.
func ParseRegistry(content []byte) (RegistryFile, error) {
	if err := validateRegistryDocument(content); err != nil {
		return RegistryFile{}, err
	}
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	var file RegistryFile
	if err := decoder.Decode(&file); err != nil {
		return RegistryFile{}, fmt.Errorf("decode registry: %w", err)
	}
	seen := map[string]struct{}{}
	for _, entry := range file.Environments {
		if _, ok := seen[entry.Name]; ok {
			return RegistryFile{}, fmt.Errorf("duplicate environment %q", entry.Name)
		}
		seen[entry.Name] = struct{}{}
	}
	return file, nil
}

func validateRegistryDocument(content []byte) error {
	sch, err := loadRegistrySchema()
	if err != nil {
		return err
	}
	jsonData, err := k8syaml.YAMLToJSON(content)
	if err != nil {
		return fmt.Errorf("convert yaml to json: %w", err)
	}
	var document any
	if err := json.Unmarshal(jsonData, &document); err != nil {
		return fmt.Errorf("unmarshal json: %w", err)
	}
	if err := sch.Validate(document); err != nil {
		return fmt.Errorf("invalid registry: %w", err)
	}
	return nil
}

func loadRegistrySchema() (*jsonschema.Schema, error) {
	registrySchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(registrySchemaURL, strings.NewReader(registrySchemaJSON)); err != nil {
			registrySchemaErr = err
			return
		}
		registrySchema, registrySchemaErr = compiler.Compile(registrySchemaURL)
	})
	return registrySchema, registrySchemaErr
}
