// Where: cli/internal/registry/registry_test.go
// What: Tests for environment resolution.
// Why: Ensure profiles come only from the table and the supplied snapshot.
package registry

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/poruru/envdb/cli/internal/config"
	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
)

func testTable() config.RegistryFile {
	return config.RegistryFile{Environments: []config.EnvironmentEntry{
		{
			Name:           "local",
			Classification: "local",
			Database:       config.DatabaseEntry{Host: "localhost", Name: "projects", User: "postgres"},
			Storage:        config.StorageEntry{Container: "projects"},
		},
		{
			Name:           "staging",
			Instance:       "main",
			Classification: "staging",
			Database: config.DatabaseEntry{
				Host: "staging-db", Port: 5432, Name: "staging_projects", User: "projects",
				AdminUser: "postgres", Origin: "staging_projects",
			},
			Storage: config.StorageEntry{Endpoint: "https://s3.staging", Container: "staging-projects"},
		},
		{
			Name:           "sandbox_alice",
			Classification: "development",
			Database:       config.DatabaseEntry{Host: "dev-db", Name: "sandbox_alice", User: "alice", Origin: "dev_projects"},
		},
	}}
}

func TestResolveUnknownEnvironment(t *testing.T) {
	reg := New(testTable())
	_, err := reg.Resolve("qa", nil)
	if !errors.Is(err, lifecycle.ErrUnknownEnvironment) {
		t.Fatalf("expected unknown environment, got %v", err)
	}
	if !strings.Contains(err.Error(), "staging") {
		t.Fatalf("expected known names in message, got %v", err)
	}
}

func TestResolveLocalNeedsNoVariables(t *testing.T) {
	profile, err := New(testTable()).Resolve("local", nil)
	if err != nil {
		t.Fatalf("resolve local: %v", err)
	}
	if profile.Database.Port != 5432 || profile.Database.Password != "password" {
		t.Fatalf("expected local defaults, got %#v", profile.Database)
	}
	if profile.Storage.AccessKeyID != "minioadmin" {
		t.Fatalf("expected emulator defaults, got %#v", profile.Storage)
	}
	if profile.IsMain || profile.IsProduction || !profile.IsLocal() {
		t.Fatalf("unexpected flags: %#v", profile)
	}
}

func TestResolveMissingPassword(t *testing.T) {
	_, err := New(testTable()).Resolve("sandbox_alice", map[string]string{})
	if !errors.Is(err, lifecycle.ErrMissingCredential) {
		t.Fatalf("expected missing credential, got %v", err)
	}
	if !strings.Contains(err.Error(), "ENVDB_SANDBOX_ALICE_DB_PASSWORD") {
		t.Fatalf("expected variable name in message, got %v", err)
	}
}

func TestResolveMissingAdminPassword(t *testing.T) {
	_, err := New(testTable()).Resolve("staging", map[string]string{
		"ENVDB_STAGING_DB_PASSWORD": "s3cret",
	})
	if !errors.Is(err, lifecycle.ErrMissingCredential) {
		t.Fatalf("expected missing credential, got %v", err)
	}
}

func TestResolveAppliesOverlay(t *testing.T) {
	environ := map[string]string{
		"ENVDB_STAGING_DB_PASSWORD":        "s3cret",
		"ENVDB_STAGING_DB_ADMIN_PASSWORD":  "admin",
		"ENVDB_STAGING_DB_HOST":            "10.0.0.5",
		"ENVDB_STAGING_DB_PORT":            "6432",
		"ENVDB_STAGING_STORAGE_ACCESS_KEY": "AK",
		"ENVDB_STAGING_STORAGE_SECRET_KEY": "SK",
		"ENVDB_LOCAL_DB_HOST":              "ignored-for-staging",
	}
	profile, err := New(testTable()).Resolve("staging", environ)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if profile.Database.Host != "10.0.0.5" || profile.Database.Port != 6432 {
		t.Fatalf("expected overlay host/port, got %#v", profile.Database)
	}
	if !profile.IsMain || profile.IsProduction {
		t.Fatalf("unexpected flags: main=%v production=%v", profile.IsMain, profile.IsProduction)
	}
	if admin := profile.Database.Admin(); admin.User != "postgres" || admin.Password != "admin" {
		t.Fatalf("unexpected admin credentials: %#v", admin)
	}
	creds, err := profile.StorageCredentials()
	if err != nil || creds.User != "AK" {
		t.Fatalf("unexpected storage credentials: %#v (%v)", creds, err)
	}
}

func TestResolveDoesNotShareState(t *testing.T) {
	reg := New(testTable())
	first, err := reg.Resolve("sandbox_alice", map[string]string{"ENVDB_SANDBOX_ALICE_DB_PASSWORD": "one"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := reg.Resolve("sandbox_alice", map[string]string{
		"ENVDB_SANDBOX_ALICE_DB_PASSWORD": "two",
		"ENVDB_SANDBOX_ALICE_DB_NAME":     "sandbox_alice_v2",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if first.Database.Password != "one" || first.Database.Name != "sandbox_alice" {
		t.Fatalf("first profile mutated: %#v", first.Database)
	}
	if second.Database.Name != "sandbox_alice_v2" {
		t.Fatalf("expected overlay on second resolve, got %#v", second.Database)
	}
}

func TestExtraEnvironmentFromVariablesOnly(t *testing.T) {
	reg := New(testTable(), "sandbox_bob")
	environ := map[string]string{
		"ENVDB_SANDBOX_BOB_CLASSIFICATION": "development",
		"ENVDB_SANDBOX_BOB_DB_HOST":        "dev-db",
		"ENVDB_SANDBOX_BOB_DB_NAME":        "sandbox_bob",
		"ENVDB_SANDBOX_BOB_DB_USER":        "bob",
		"ENVDB_SANDBOX_BOB_DB_PASSWORD":    "pw",
		"ENVDB_SANDBOX_BOB_DB_ORIGIN_NAME": "staging_projects",
	}
	profile, err := reg.Resolve("sandbox_bob", environ)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if profile.Database.OriginDatabaseName != "staging_projects" {
		t.Fatalf("unexpected origin %q", profile.Database.OriginDatabaseName)
	}
	if names := reg.Names(); names[len(names)-1] != "sandbox_bob" {
		t.Fatalf("expected extra environment listed last, got %v", names)
	}

	_, err = reg.Resolve("sandbox_bob", map[string]string{})
	if err == nil || !strings.Contains(err.Error(), "classification is required") {
		t.Fatalf("expected classification error, got %v", err)
	}
}

func TestValidateSelfOrigin(t *testing.T) {
	profile := Profile{Name: "dev", Database: DatabaseProfile{Name: "dev_projects", OriginDatabaseName: "dev_projects"}}
	if err := profile.Validate(); !errors.Is(err, lifecycle.ErrSelfOrigin) {
		t.Fatalf("expected self origin, got %v", err)
	}
	profile.IsMain = true
	if err := profile.Validate(); err != nil {
		t.Fatalf("expected main to be exempt, got %v", err)
	}
}

func TestProfileNeverPrintsSecrets(t *testing.T) {
	profile := Profile{
		Name:     "staging",
		Database: DatabaseProfile{Host: "db", Name: "projects", Password: "hunter2", AdminPassword: "root"},
		Storage:  StorageProfile{SecretAccessKey: "topsecret"},
	}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("resolved", "profile", profile)
	printed := fmt.Sprintf("%v %s", profile, buf.String())
	for _, secret := range []string{"hunter2", "root", "topsecret"} {
		if strings.Contains(printed, secret) {
			t.Fatalf("secret %q leaked: %s", secret, printed)
		}
	}
}
