// Where: cli/internal/workflows/render_test.go
// What: Tests for the render and job workflows.
// Why: Ensure manifests land on disk and job parameters are checked before any database call.
package workflows

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/poruru/envdb/cli/internal/argo"
	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
)

func TestRenderWorkflowWritesManifests(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	ui := &testUI{}

	result, err := NewRenderWorkflow(testProfiles(), ui).Run(RenderRequest{Env: "sandbox_alice", OutDir: dir})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Files) != 4 {
		t.Fatalf("expected 4 files, got %v", result.Files)
	}
	for _, name := range []string{argo.FileCreateDB, argo.FileDropDB, argo.FileConfigMap, argo.FileSecret} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	if len(ui.successes) != 1 {
		t.Fatalf("expected success, got %v", ui.successes)
	}
}

func TestRenderWorkflowRequiresOutDir(t *testing.T) {
	_, err := NewRenderWorkflow(testProfiles(), nil).Run(RenderRequest{Env: "dev"})
	if !errors.Is(err, lifecycle.ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestJobWorkflowDropDefaultsToDryRun(t *testing.T) {
	db := &recordDatabase{}
	ui := &testUI{}
	result, err := NewJobWorkflow(testProfiles(), db, ui).Run(context.Background(), JobRequest{
		Template: argo.TemplateDropDB,
		Env:      "sandbox_alice",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.DryRun || result.Done {
		t.Fatalf("expected dry run, got %+v", result)
	}
	if want := []string{"drop:sandbox_alice:dry=true:force=false"}; !reflect.DeepEqual(db.calls, want) {
		t.Fatalf("calls = %v, want %v", db.calls, want)
	}
	if len(ui.warns) != 1 || !strings.Contains(ui.warns[0], "dry_run=false") || strings.Contains(ui.warns[0], "--no-dry-run") {
		t.Fatalf("expected template parameter hint, got %v", ui.warns)
	}
}

func TestJobWorkflowDropWithParams(t *testing.T) {
	db := &recordDatabase{}
	result, err := NewJobWorkflow(testProfiles(), db, nil).Run(context.Background(), JobRequest{
		Template: argo.TemplateDropDB,
		Env:      "sandbox_alice",
		Params:   map[string]string{argo.ParamDryRun: "false", argo.ParamForceDisconnect: "true"},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.Done {
		t.Fatalf("expected drop, got %+v", result)
	}
	if want := []string{"drop:sandbox_alice:dry=false:force=true"}; !reflect.DeepEqual(db.calls, want) {
		t.Fatalf("calls = %v, want %v", db.calls, want)
	}
}

func TestJobWorkflowRejectsBadParamsBeforeResolve(t *testing.T) {
	db := &recordDatabase{}
	_, err := NewJobWorkflow(testProfiles(), db, nil).Run(context.Background(), JobRequest{
		Template: argo.TemplateDropDB,
		Env:      "missing_env",
		Params:   map[string]string{argo.ParamDryRun: "yes"},
	})
	if !errors.Is(err, lifecycle.ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if len(db.calls) != 0 {
		t.Fatalf("expected no calls, got %v", db.calls)
	}
}

func TestJobWorkflowCreate(t *testing.T) {
	db := &recordDatabase{}
	result, err := NewJobWorkflow(testProfiles(), db, nil).Run(context.Background(), JobRequest{
		Template: argo.TemplateCreateDB,
		Env:      "sandbox_alice",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.Done || result.Database != "sandbox_alice" {
		t.Fatalf("unexpected result: %+v", result)
	}

	_, err = NewJobWorkflow(testProfiles(), db, nil).Run(context.Background(), JobRequest{
		Template: argo.TemplateCreateDB,
		Env:      "sandbox_alice",
		Params:   map[string]string{"dry_run": "true"},
	})
	if !errors.Is(err, lifecycle.ErrUsage) {
		t.Fatalf("create-db takes no parameters, got %v", err)
	}
}

func TestJobWorkflowRequiresBinding(t *testing.T) {
	for _, req := range []JobRequest{
		{Template: argo.TemplateCreateDB},
		{Template: "migrate-db", Env: "dev"},
	} {
		_, err := NewJobWorkflow(testProfiles(), &recordDatabase{}, nil).Run(context.Background(), req)
		if !errors.Is(err, lifecycle.ErrUsage) {
			t.Fatalf("%+v: expected usage error, got %v", req, err)
		}
	}
}
