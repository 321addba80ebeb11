// Where: cli/internal/argo/params.go
// What: Invocation parameter validation for workflow jobs.
// Why: Reject values outside the declared enumerations before a job touches a database.
package argo

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/poruru/envdb/cli/internal/dbops"
	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
)

// Workflow template names.
const (
	TemplateCreateDB = "create-db"
	TemplateDropDB   = "drop-db"
)

// drop-db parameter names.
const (
	ParamDryRun          = "dry_run"
	ParamForceDisconnect = "force_disconnect"
)

//go:embed schema/*.json
var schemaFS embed.FS

var schemaCache sync.Map

// ValidateParams checks params against the template's parameter schema.
// Any violation is a usage error.
func ValidateParams(templateName string, params map[string]string) error {
	sch, err := loadParamSchema(templateName)
	if err != nil {
		return err
	}
	document := make(map[string]any, len(params))
	for k, v := range params {
		document[k] = v
	}
	if err := sch.Validate(document); err != nil {
		return fmt.Errorf("%w: invalid %s parameters: %v", lifecycle.ErrUsage, templateName, err)
	}
	return nil
}

// ParseDropParams validates drop-db parameters and applies the defaults
// dry_run=true and force_disconnect=false.
func ParseDropParams(params map[string]string) (dbops.DropOptions, error) {
	if err := ValidateParams(TemplateDropDB, params); err != nil {
		return dbops.DropOptions{}, err
	}
	opts := dbops.DefaultDropOptions()
	if v, ok := params[ParamDryRun]; ok {
		opts.DryRun = v == "true"
	}
	if v, ok := params[ParamForceDisconnect]; ok {
		opts.ForceDisconnect = v == "true"
	}
	return opts, nil
}

func loadParamSchema(templateName string) (*jsonschema.Schema, error) {
	if value, ok := schemaCache.Load(templateName); ok {
		cached, ok := value.(*jsonschema.Schema)
		if !ok {
			return nil, fmt.Errorf("schema cache type mismatch for %s", templateName)
		}
		return cached, nil
	}
	file := fmt.Sprintf("schema/%s.params.schema.json", templateName)
	raw, err := schemaFS.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown workflow template %q", lifecycle.ErrUsage, templateName)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(file, strings.NewReader(string(raw))); err != nil {
		return nil, err
	}
	sch, err := compiler.Compile(file)
	if err != nil {
		return nil, err
	}
	schemaCache.Store(templateName, sch)
	return sch, nil
}
