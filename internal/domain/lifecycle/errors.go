// Where: cli/internal/domain/lifecycle/errors.go
// What: Error taxonomy for lifecycle operations.
// Why: Let callers classify failures and map them to exit codes.
package lifecycle

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownEnvironment     = errors.New("unknown environment")
	ErrMissingCredential      = errors.New("missing credential")
	ErrCannotDropMain         = errors.New("cannot drop main instance")
	ErrCannotDropOrigin       = errors.New("cannot drop origin database")
	ErrCannotDropProduction   = errors.New("cannot drop production database")
	ErrSelfOrigin             = errors.New("environment cannot be its own origin")
	ErrDatabaseInUse          = errors.New("database in use")
	ErrDatabaseExists         = errors.New("database already exists")
	ErrEngineFailure          = errors.New("engine failure")
	ErrStorageTransferFailure = errors.New("storage transfer failure")
	ErrOperatorAborted        = errors.New("aborted by operator")
	ErrUsage                  = errors.New("usage error")
)

// Guard names the protection rule that rejected an operation.
type Guard string

const (
	GuardMain       Guard = "main-instance"
	GuardOrigin     Guard = "origin-database"
	GuardProduction Guard = "production-environment"
	GuardSelfOrigin Guard = "self-origin"
)

// GuardError reports a guard rejection with the concrete names involved.
type GuardError struct {
	Guard       Guard
	Kind        Kind
	Environment string
	Database    string
	Origin      string
}

func (e *GuardError) Error() string {
	switch e.Guard {
	case GuardMain:
		return fmt.Sprintf("%s rejected by %s guard: environment %q is the main instance, database %q is protected",
			e.Kind, e.Guard, e.Environment, e.Database)
	case GuardOrigin:
		return fmt.Sprintf("%s rejected by %s guard: database %q of environment %q is its own origin %q",
			e.Kind, e.Guard, e.Database, e.Environment, e.Origin)
	case GuardProduction:
		return fmt.Sprintf("%s rejected by %s guard: environment %q is classified production, database %q is protected",
			e.Kind, e.Guard, e.Environment, e.Database)
	case GuardSelfOrigin:
		return fmt.Sprintf("%s rejected by %s guard: environment %q would clone database %q from itself",
			e.Kind, e.Guard, e.Environment, e.Database)
	default:
		return fmt.Sprintf("%s rejected by %s guard for environment %q", e.Kind, e.Guard, e.Environment)
	}
}

// Is matches the sentinel that corresponds to the guard.
func (e *GuardError) Is(target error) bool {
	switch e.Guard {
	case GuardMain:
		return target == ErrCannotDropMain
	case GuardOrigin:
		return target == ErrCannotDropOrigin
	case GuardProduction:
		return target == ErrCannotDropProduction
	case GuardSelfOrigin:
		return target == ErrSelfOrigin
	}
	return false
}

// IsGuardRejection reports whether err is any guard rejection.
func IsGuardRejection(err error) bool {
	var guardErr *GuardError
	return errors.As(err, &guardErr)
}

// EngineError wraps a failed engine or archiver step.
type EngineError struct {
	Step     string
	Database string
	Err      error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine failure during %s of %q: %v", e.Step, e.Database, e.Err)
}

func (e *EngineError) Unwrap() []error {
	return []error{ErrEngineFailure, e.Err}
}

// Engine wraps err as an engine failure for the given step.
// Errors that already classify as DatabaseInUse are returned unchanged.
func Engine(step, database string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDatabaseInUse) || errors.Is(err, ErrEngineFailure) {
		return err
	}
	return &EngineError{Step: step, Database: database, Err: err}
}

// StorageError wraps a failed object transfer step.
type StorageError struct {
	Step      string
	Container string
	Key       string
	Err       error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage transfer failure during %s of %s/%s: %v", e.Step, e.Container, e.Key, e.Err)
	}
	return fmt.Sprintf("storage transfer failure during %s of %s: %v", e.Step, e.Container, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorageTransferFailure, e.Err}
}

// Exit codes returned by the CLI.
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitGuardRejected     = 2
	ExitEngineFailure     = 3
	ExitUnknownEnv        = 4
	ExitMissingCredential = 5
	ExitStorageFailure    = 6
	ExitUsage             = 64
)

// ExitCode classifies err for the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, ErrOperatorAborted):
		return ExitOK
	case IsGuardRejection(err):
		return ExitGuardRejected
	case errors.Is(err, ErrUnknownEnvironment):
		return ExitUnknownEnv
	case errors.Is(err, ErrMissingCredential):
		return ExitMissingCredential
	case errors.Is(err, ErrDatabaseInUse), errors.Is(err, ErrEngineFailure):
		return ExitEngineFailure
	case errors.Is(err, ErrStorageTransferFailure):
		return ExitStorageFailure
	case errors.Is(err, ErrUsage):
		return ExitUsage
	default:
		return ExitFailure
	}
}
