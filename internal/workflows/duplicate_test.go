// Where: cli/internal/workflows/duplicate_test.go
// What: Tests for the duplicate workflow.
// Why: Ensure pipeline states are printed and gate aborts are warnings.
package workflows

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
	"github.com/poruru/envdb/cli/internal/pipeline"
)

func newTestPipeline(db *recordDatabase, storage *recordStorage, storageGate pipeline.Gate) *pipeline.Pipeline {
	return &pipeline.Pipeline{
		Resolver:    testProfiles(),
		Database:    db,
		Storage:     storage,
		ContextGate: pipeline.FixedGate(lifecycle.Proceed),
		StorageGate: storageGate,
	}
}

func TestDuplicateWorkflowCompletes(t *testing.T) {
	db := &recordDatabase{}
	storage := &recordStorage{}
	ui := &testUI{}

	out, err := NewDuplicateWorkflow(newTestPipeline(db, storage, pipeline.FixedGate(lifecycle.Proceed)), ui).Run(
		context.Background(), DuplicateRequest{From: "dev", To: "sandbox_alice"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.State != pipeline.StateDone {
		t.Fatalf("expected done, got %s", out.State)
	}
	want := []string{"backup:dev:", "restore:sandbox_alice<-dumps/dev.dump"}
	if !reflect.DeepEqual(db.calls, want) {
		t.Fatalf("calls = %v, want %v", db.calls, want)
	}
	if len(storage.calls) != 1 {
		t.Fatalf("expected storage duplication, got %v", storage.calls)
	}
	if len(ui.infos) == 0 || !strings.Contains(ui.infos[len(ui.infos)-1], string(pipeline.StateDone)) {
		t.Fatalf("expected state transitions printed, got %v", ui.infos)
	}
	if len(ui.successes) != 1 {
		t.Fatalf("expected success, got %v", ui.successes)
	}
}

func TestDuplicateWorkflowStorageGateDeclined(t *testing.T) {
	db := &recordDatabase{}
	storage := &recordStorage{}
	ui := &testUI{}
	var seen []pipeline.State
	p := newTestPipeline(db, storage, pipeline.FixedGate(lifecycle.Abort))
	p.OnState = func(s pipeline.State) { seen = append(seen, s) }

	out, err := NewDuplicateWorkflow(p, ui).Run(context.Background(), DuplicateRequest{From: "dev", To: "sandbox_alice"})
	if err != nil {
		t.Fatalf("abort must not be an error: %v", err)
	}
	if !out.Aborted() || out.AbortedAt != pipeline.StateGateStorage {
		t.Fatalf("expected abort at storage gate, got %+v", out)
	}
	if !out.Restored {
		t.Fatalf("database half should be complete")
	}
	if len(storage.calls) != 0 {
		t.Fatalf("expected no storage calls, got %v", storage.calls)
	}
	if len(ui.warns) != 1 {
		t.Fatalf("expected abort warning, got %v", ui.warns)
	}
	if len(seen) == 0 {
		t.Fatalf("existing state callback must still run")
	}
}

func TestDuplicateWorkflowPropagatesGuard(t *testing.T) {
	db := &recordDatabase{}
	_, err := NewDuplicateWorkflow(newTestPipeline(db, &recordStorage{}, pipeline.FixedGate(lifecycle.Proceed)), &testUI{}).Run(
		context.Background(), DuplicateRequest{From: "sandbox_alice", To: "production"})
	if !lifecycle.IsGuardRejection(err) {
		t.Fatalf("expected guard rejection, got %v", err)
	}
	if len(db.calls) != 0 {
		t.Fatalf("expected no backup before guard, got %v", db.calls)
	}
}
