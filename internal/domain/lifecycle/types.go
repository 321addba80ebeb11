// Where: cli/internal/domain/lifecycle/types.go
// What: Operation request, dump artifact, and gate decision types.
// Why: Share the lifecycle data model between operations, pipeline, and CLI.
package lifecycle

import (
	"fmt"
	"strings"
	"time"
)

// Kind enumerates the operations the orchestrator can perform.
type Kind string

const (
	KindCreate           Kind = "create"
	KindDrop             Kind = "drop"
	KindBackup           Kind = "backup"
	KindRestore          Kind = "restore"
	KindDuplicateStorage Kind = "duplicate-storage"
	KindVerify           Kind = "verify"
)

// Destructive reports whether the kind may remove existing data.
func (k Kind) Destructive() bool {
	switch k {
	case KindDrop, KindRestore, KindDuplicateStorage:
		return true
	default:
		return false
	}
}

// OperationRequest is the input to any database or storage operation.
type OperationRequest struct {
	Kind              Kind
	TargetEnvironment string
	SourceEnvironment string
	DryRun            bool
	ForceDisconnect   bool
}

// NewOperationRequest returns a request with dry run enabled for destructive kinds.
func NewOperationRequest(kind Kind, target string) OperationRequest {
	return OperationRequest{
		Kind:              kind,
		TargetEnvironment: target,
		DryRun:            kind.Destructive(),
	}
}

// Validate checks the request shape before any environment is resolved.
// Every failure is a usage error.
func (r OperationRequest) Validate() error {
	if strings.TrimSpace(r.TargetEnvironment) == "" {
		return fmt.Errorf("%w: %s: target environment is required", ErrUsage, r.Kind)
	}
	switch r.Kind {
	case KindCreate, KindDrop, KindBackup, KindRestore, KindVerify:
	case KindDuplicateStorage:
		if strings.TrimSpace(r.SourceEnvironment) == "" {
			return fmt.Errorf("%w: %s: source environment is required", ErrUsage, r.Kind)
		}
		if strings.TrimSpace(r.SourceEnvironment) == strings.TrimSpace(r.TargetEnvironment) {
			return fmt.Errorf("%w: %s: source and destination are both %q", ErrUsage, r.Kind, r.TargetEnvironment)
		}
	default:
		return fmt.Errorf("%w: unknown operation kind %q", ErrUsage, r.Kind)
	}
	if r.ForceDisconnect && r.Kind != KindDrop {
		return fmt.Errorf("%w: %s: force disconnect only applies to drop", ErrUsage, r.Kind)
	}
	return nil
}

// DumpArtifact is a point-in-time custom-format export of one database.
type DumpArtifact struct {
	SourceEnvironment     string
	Database              string
	CreatedAtEpochSeconds int64
	FilePath              string
}

// CreatedAt returns the artifact timestamp as a time value.
func (a DumpArtifact) CreatedAt() time.Time {
	return time.Unix(a.CreatedAtEpochSeconds, 0).UTC()
}

// DumpExtension is the file extension used for archives.
const DumpExtension = ".dump"

// DumpFileName returns the deterministic archive name for an environment database.
// Example: DumpFileName("staging", "projects", t) returns "staging_projects_1700000000.dump".
func DumpFileName(environment, database string, at time.Time) string {
	return fmt.Sprintf("%s_%s_%d%s", environment, database, at.Unix(), DumpExtension)
}

// Decision is the operator answer at a pipeline gate.
type Decision int

const (
	Abort Decision = iota
	Proceed
)

func (d Decision) String() string {
	if d == Proceed {
		return "proceed"
	}
	return "abort"
}
