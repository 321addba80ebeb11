// Where: cli/internal/app/commands.go
// What: Command handlers translating flags into workflow requests.
// Why: Keep kong parsing separate from lifecycle orchestration.
package app

import (
	"strings"

	"github.com/poruru/envdb/cli/internal/argo"
	"github.com/poruru/envdb/cli/internal/dbops"
	"github.com/poruru/envdb/cli/internal/pipeline"
	"github.com/poruru/envdb/cli/internal/workflows"
)

func runEnvList(cli CLI, rt *runtime) error {
	_, err := workflows.NewEnvListWorkflow(rt.resolver(), rt.ui).Run(workflows.EnvListRequest{Sorted: cli.Env.List.Sort})
	return err
}

func runCreate(cli CLI, rt *runtime) error {
	_, err := workflows.NewCreateWorkflow(rt.resolver(), rt.database(""), rt.ui).Run(rt.ctx, workflows.CreateRequest{
		Env:               cli.Create.Env,
		ReassignOwnership: cli.Create.Reassign,
	})
	return err
}

func runDrop(cli CLI, rt *runtime) error {
	_, err := workflows.NewDropWorkflow(rt.resolver(), rt.database(""), rt.ui).Run(rt.ctx, workflows.DropRequest{
		Env: cli.Drop.Env,
		Options: dbops.DropOptions{
			DryRun:          cli.Drop.DryRun,
			ForceDisconnect: cli.Drop.ForceDisconnect,
		},
		ApplyHint: "pass --no-dry-run to drop it",
	})
	return err
}

func runBackup(cli CLI, rt *runtime) error {
	_, err := workflows.NewBackupWorkflow(rt.resolver(), rt.database(cli.Backup.Dir), rt.ui).Run(rt.ctx, workflows.BackupRequest{
		Env:  cli.Backup.Env,
		Name: cli.Backup.Name,
	})
	return err
}

func runRestore(cli CLI, rt *runtime) error {
	confirm, err := rt.confirmer("restore", cli.Restore.Yes)
	if err != nil {
		return err
	}
	_, err = workflows.NewRestoreWorkflow(rt.resolver(), rt.database(""), confirm, rt.ui).Run(rt.ctx, workflows.RestoreRequest{
		Env:  cli.Restore.Env,
		File: cli.Restore.File,
	})
	return err
}

func runSyncStorage(cli CLI, rt *runtime) error {
	confirm, err := rt.confirmer("sync-storage", cli.SyncStorage.Yes)
	if err != nil {
		return err
	}
	_, err = workflows.NewSyncStorageWorkflow(rt.resolver(), rt.storage(), confirm, rt.ui).Run(rt.ctx, workflows.SyncStorageRequest{
		From: cli.SyncStorage.From,
		To:   cli.SyncStorage.To,
	})
	return err
}

func runDuplicate(cli CLI, rt *runtime) error {
	gate, err := rt.gate(cli.Duplicate.Yes)
	if err != nil {
		return err
	}
	p := &pipeline.Pipeline{
		Resolver:    rt.resolver(),
		Database:    rt.database(""),
		Storage:     rt.storage(),
		ContextGate: gate,
		StorageGate: gate,
		Logger:      rt.logger,
	}
	_, err = workflows.NewDuplicateWorkflow(p, rt.ui).Run(rt.ctx, workflows.DuplicateRequest{
		From: cli.Duplicate.From,
		To:   cli.Duplicate.To,
	})
	return err
}

func runVerify(cli CLI, rt *runtime) error {
	_, err := workflows.NewVerifyWorkflow(rt.resolver(), rt.database(""), rt.ui).Run(rt.ctx, workflows.VerifyRequest{Env: cli.Verify.Env})
	return err
}

func runWorkflowRender(cli CLI, rt *runtime) error {
	cmd := cli.Workflow.Render
	_, err := workflows.NewRenderWorkflow(rt.resolver(), rt.ui).Run(workflows.RenderRequest{
		Env:    cmd.Env,
		OutDir: cmd.Out,
		Options: argo.RenderOptions{
			Namespace:      cmd.Namespace,
			Image:          cmd.Image,
			ServiceAccount: cmd.ServiceAccount,
		},
	})
	return err
}

func runJobCreateDB(cli CLI, rt *runtime) error {
	return rt.runJob(argo.TemplateCreateDB, cli.Job.CreateDB.Env, nil)
}

func runJobDropDB(cli CLI, rt *runtime) error {
	params := map[string]string{}
	if v := strings.TrimSpace(cli.Job.DropDB.DryRun); v != "" {
		params[argo.ParamDryRun] = v
	}
	if v := strings.TrimSpace(cli.Job.DropDB.ForceDisconnect); v != "" {
		params[argo.ParamForceDisconnect] = v
	}
	return rt.runJob(argo.TemplateDropDB, cli.Job.DropDB.Env, params)
}

// runJob executes a template step. The bound environment comes from the
// flag or from ENVDB_ENV set by the environment's config bundle.
func (rt *runtime) runJob(template, env string, params map[string]string) error {
	if strings.TrimSpace(env) == "" {
		env = rt.settings.Environment
	}
	log := rt.logger.With("template", template, "env", env)
	log.Info("job started", "params", params)
	result, err := workflows.NewJobWorkflow(rt.resolver(), rt.database(""), rt.ui).Run(rt.ctx, workflows.JobRequest{
		Template: template,
		Env:      env,
		Params:   params,
	})
	if err != nil {
		return err
	}
	log.Info("job finished", "db", result.Database, "dry_run", result.DryRun, "done", result.Done)
	return nil
}

