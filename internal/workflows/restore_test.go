// Where: cli/internal/workflows/restore_test.go
// What: Tests for the restore workflow.
// Why: Ensure guards fire before the operator is asked and a refusal changes nothing.
package workflows

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
)

func TestRestoreWorkflowConfirmsThenRestores(t *testing.T) {
	db := &recordDatabase{}
	confirm := &scriptedConfirmer{answer: true}
	ui := &testUI{}

	artifact, err := NewRestoreWorkflow(testProfiles(), db, confirm, ui).Run(context.Background(), RestoreRequest{
		Env:  "sandbox_alice",
		File: "dumps/dev_dev_projects_1700000000.dump",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if artifact.CreatedAtEpochSeconds != 1700000000 {
		t.Fatalf("expected epoch from file name, got %d", artifact.CreatedAtEpochSeconds)
	}
	if len(confirm.titles) != 1 {
		t.Fatalf("expected one confirmation, got %v", confirm.titles)
	}
	if want := []string{"restore:sandbox_alice<-dumps/dev_dev_projects_1700000000.dump"}; !reflect.DeepEqual(db.calls, want) {
		t.Fatalf("calls = %v, want %v", db.calls, want)
	}
	if len(ui.successes) != 1 {
		t.Fatalf("expected success, got %v", ui.successes)
	}
}

func TestRestoreWorkflowDeclined(t *testing.T) {
	db := &recordDatabase{}
	ui := &testUI{}

	_, err := NewRestoreWorkflow(testProfiles(), db, &scriptedConfirmer{}, ui).Run(context.Background(), RestoreRequest{
		Env:  "sandbox_alice",
		File: "x.dump",
	})
	if !errors.Is(err, lifecycle.ErrOperatorAborted) {
		t.Fatalf("expected abort, got %v", err)
	}
	if lifecycle.ExitCode(err) != lifecycle.ExitOK {
		t.Fatalf("abort should exit cleanly")
	}
	if len(db.calls) != 0 {
		t.Fatalf("expected no database calls, got %v", db.calls)
	}
	if len(ui.warns) != 1 {
		t.Fatalf("expected abort warning, got %v", ui.warns)
	}
}

func TestRestoreWorkflowGuardBeforeConfirm(t *testing.T) {
	for _, env := range []string{"dev", "production"} {
		confirm := &scriptedConfirmer{answer: true}
		db := &recordDatabase{}
		_, err := NewRestoreWorkflow(testProfiles(), db, confirm, nil).Run(context.Background(), RestoreRequest{
			Env:  env,
			File: "x.dump",
		})
		if !lifecycle.IsGuardRejection(err) {
			t.Fatalf("%s: expected guard rejection, got %v", env, err)
		}
		if len(confirm.titles) != 0 || len(db.calls) != 0 {
			t.Fatalf("%s: guard must fire before confirmation and engine calls", env)
		}
	}
}

func TestRestoreWorkflowRequiresFile(t *testing.T) {
	_, err := NewRestoreWorkflow(testProfiles(), &recordDatabase{}, &scriptedConfirmer{}, nil).Run(context.Background(), RestoreRequest{Env: "sandbox_alice"})
	if !errors.Is(err, lifecycle.ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestRestoreWorkflowConfirmError(t *testing.T) {
	boom := errors.New("no tty")
	db := &recordDatabase{}
	_, err := NewRestoreWorkflow(testProfiles(), db, &scriptedConfirmer{err: boom}, nil).Run(context.Background(), RestoreRequest{
		Env:  "sandbox_alice",
		File: "x.dump",
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected confirm error, got %v", err)
	}
	if len(db.calls) != 0 {
		t.Fatalf("expected no database calls")
	}
}

func TestArtifactFromFile(t *testing.T) {
	cases := []struct {
		path  string
		epoch int64
	}{
		{path: "dumps/sandbox_alice_dev_projects_1700000000.dump", epoch: 1700000000},
		{path: "snapshot.dump", epoch: 0},
		{path: "a_b_notanumber.dump", epoch: 0},
	}
	for _, tc := range cases {
		got := ArtifactFromFile(tc.path)
		if got.FilePath != tc.path || got.CreatedAtEpochSeconds != tc.epoch {
			t.Fatalf("%s: got %+v", tc.path, got)
		}
	}
}
