// Where: cli/internal/workflows/storage.go
// What: Storage sync workflow.
// Why: Confirm and run a one-shot container duplication outside the pipeline.
package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
	"github.com/poruru/envdb/cli/internal/ports"
	"github.com/poruru/envdb/cli/internal/storageops"
)

// SyncStorageRequest captures inputs for the storage sync workflow.
type SyncStorageRequest struct {
	From string
	To   string
}

// SyncStorageWorkflow overwrites the destination container with the source.
type SyncStorageWorkflow struct {
	Resolver  ports.EnvironmentResolver
	Storage   ports.StorageDuplicator
	Confirmer ports.Confirmer
	UI        ports.UserInterface
}

// NewSyncStorageWorkflow constructs a SyncStorageWorkflow.
func NewSyncStorageWorkflow(
	resolver ports.EnvironmentResolver,
	storage ports.StorageDuplicator,
	confirmer ports.Confirmer,
	ui ports.UserInterface,
) SyncStorageWorkflow {
	return SyncStorageWorkflow{Resolver: resolver, Storage: storage, Confirmer: confirmer, UI: ui}
}

// Run executes the storage sync workflow.
func (w SyncStorageWorkflow) Run(ctx context.Context, req SyncStorageRequest) (storageops.Report, error) {
	if w.Resolver == nil || w.Storage == nil {
		return storageops.Report{}, errors.New("storage sync not configured")
	}
	op := lifecycle.NewOperationRequest(lifecycle.KindDuplicateStorage, req.To)
	op.SourceEnvironment = req.From
	if err := op.Validate(); err != nil {
		return storageops.Report{}, err
	}
	src, err := w.Resolver.Resolve(req.From)
	if err != nil {
		return storageops.Report{}, err
	}
	dst, err := w.Resolver.Resolve(req.To)
	if err != nil {
		return storageops.Report{}, err
	}

	if w.Confirmer == nil {
		return storageops.Report{}, fmt.Errorf("%w: storage sync needs confirmation", lifecycle.ErrUsage)
	}
	ok, err := w.Confirmer.Confirm(
		fmt.Sprintf("Overwrite container %q of %q?", dst.Storage.Container, dst.Name),
		fmt.Sprintf("Every object in %q is deleted, then %q is copied in (%s mode).",
			dst.Storage.Container, src.Storage.Container, storageops.ModeFor(dst)),
	)
	if err != nil {
		return storageops.Report{}, err
	}
	if !ok {
		if w.UI != nil {
			w.UI.Warn("storage sync aborted")
		}
		return storageops.Report{}, lifecycle.ErrOperatorAborted
	}

	report, err := w.Storage.DuplicateStorage(ctx, src, dst)
	if err != nil {
		return report, err
	}
	if w.UI != nil {
		w.UI.Block("🪣", "Storage", reportRows(report))
		w.UI.Success(fmt.Sprintf("container %q synced from %q", report.DestinationContainer, report.SourceContainer))
	}
	return report, nil
}

func reportRows(r storageops.Report) []ports.KeyValue {
	return []ports.KeyValue{
		{Key: "Mode", Value: r.Mode},
		{Key: "Source", Value: fmt.Sprintf("%s (%s)", r.Source, r.SourceContainer)},
		{Key: "Destination", Value: fmt.Sprintf("%s (%s)", r.Destination, r.DestinationContainer)},
		{Key: "Deleted", Value: r.Deleted},
		{Key: "Copied", Value: r.Copied},
		{Key: "Bytes", Value: r.Bytes},
	}
}
