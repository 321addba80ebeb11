// Where: cli/internal/argo/render.go
// What: Render cluster workflow templates and per-environment bundles.
// Why: Expose create-db and drop-db as parameterized jobs bound to one environment.
package argo

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/poruru/envdb/cli/internal/meta"
	"github.com/poruru/envdb/cli/internal/registry"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templateCache sync.Map

const helpersTemplate = "templates/_helpers.tmpl"

// Output file names written by Render.
const (
	FileCreateDB  = "workflowtemplate-create-db.yaml"
	FileDropDB    = "workflowtemplate-drop-db.yaml"
	FileConfigMap = "configmap.yaml"
	FileSecret    = "secret.yaml"
)

// RenderOptions tunes the generated manifests.
type RenderOptions struct {
	Namespace      string
	Image          string
	ServiceAccount string
}

// File is one rendered manifest.
type File struct {
	Name    string
	Content string
}

type dropParam struct {
	Name    string
	Flag    string
	Default string
	Enum    []string
}

type renderData struct {
	App            string
	LabelPrefix    string
	Binary         string
	Environment    string
	Prefix         string
	Namespace      string
	Image          string
	ServiceAccount string
	ConfigName     string
	SecretName     string
	DropParams     []dropParam
	Config         map[string]any
	Secret         map[string]any
}

func resourcePrefix(env string) string {
	return meta.Slug + "-" + strings.ReplaceAll(strings.ToLower(env), "_", "-")
}

// Render produces both workflow templates and the environment's bundles.
func Render(p registry.Profile, opts RenderOptions) ([]File, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("environment name is required")
	}
	bundle := BuildBundle(p)
	data := renderData{
		App:            meta.AppName,
		LabelPrefix:    meta.LabelPrefix,
		Binary:         meta.AppName,
		Environment:    p.Name,
		Prefix:         resourcePrefix(p.Name),
		Namespace:      defaultString(opts.Namespace, "default"),
		Image:          defaultString(opts.Image, meta.JobImage+":latest"),
		ServiceAccount: defaultString(opts.ServiceAccount, meta.WorkflowAccount),
		ConfigName:     ConfigName(p.Name),
		SecretName:     SecretName(p.Name),
		DropParams:     dropParams(),
		Config:         toAny(bundle.Config),
		Secret:         toAny(bundle.Secret),
	}

	names := []string{FileCreateDB, FileDropDB, FileConfigMap, FileSecret}
	files := make([]File, 0, len(names))
	for _, name := range names {
		content, err := renderTemplate(name+".tmpl", data)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", name, err)
		}
		files = append(files, File{Name: name, Content: content})
	}
	return files, nil
}

// WriteFiles writes rendered files into dir. The secret manifest is owner-only.
func WriteFiles(dir string, files []File) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	written := make([]string, 0, len(files))
	for _, file := range files {
		mode := os.FileMode(0o644)
		if file.Name == FileSecret {
			mode = 0o600
		}
		target := filepath.Join(dir, file.Name)
		if err := os.WriteFile(target, []byte(file.Content), mode); err != nil {
			return written, fmt.Errorf("write %s: %w", target, err)
		}
		written = append(written, target)
	}
	return written, nil
}

func dropParams() []dropParam {
	enum := []string{"true", "false"}
	return []dropParam{
		{Name: ParamDryRun, Flag: "--dry-run", Default: "true", Enum: enum},
		{Name: ParamForceDisconnect, Flag: "--force-disconnect", Default: "false", Enum: enum},
	}
}

func renderTemplate(name string, data any) (string, error) {
	tmpl, err := loadTemplate(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func loadTemplate(name string) (*template.Template, error) {
	if value, ok := templateCache.Load(name); ok {
		cached, ok := value.(*template.Template)
		if !ok {
			return nil, fmt.Errorf("template cache type mismatch for %s", name)
		}
		return cached, nil
	}
	tmpl := template.New(name)
	funcs := sprig.TxtFuncMap()
	funcs["argo"] = func(expr string) string { return "{{" + expr + "}}" }
	funcs["include"] = func(helper string, data any) (string, error) {
		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, helper, data); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	tmpl, err := tmpl.Funcs(funcs).ParseFS(templateFS, helpersTemplate, "templates/"+name)
	if err != nil {
		return nil, err
	}
	templateCache.Store(name, tmpl)
	return tmpl, nil
}

func toAny(values map[string]string) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
