package assets

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/wolfeidau/webparts/internal/fragment"
)

var (
	// ErrNotBuilt indicates the metadata was requested before a build finished
	ErrNotBuilt = errors.New("assets not built yet, call Build() first")
	// ErrUnsafeClean indicates a clean path resolving to or outside the root
	ErrUnsafeClean = errors.New("refusing to clean path outside the project root")
	// ErrBuildFailed indicates esbuild reported errors
	ErrBuildFailed = errors.New("esbuild failed with errors")
)

type BuildMetadata struct {
	Outputs map[string]OutputInfo `json:"outputs"`
}

type OutputInfo struct {
	Bytes      int          `json:"bytes"`
	EntryPoint string       `json:"entryPoint"`
	Imports    []ImportInfo `json:"imports"`
	CSSBundle  string       `json:"cssBundle"`
}

type ImportInfo struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// Pipeline runs a validated configuration through esbuild and the plugin
// phases around it
type Pipeline struct {
	config   Config
	build    fragment.Config
	metadata *BuildMetadata
	tmpl     *template.Template
	tmplName string
	buildID  string
	watching bool
	mu       sync.RWMutex
}

// New creates a new asset pipeline for the merged configuration
func New(config Config, build fragment.Config) (*Pipeline, error) {
	p := &Pipeline{
		config:  config,
		build:   build,
		buildID: uuid.NewString(),
	}

	funcs := template.FuncMap{
		"marshal": marshal,
		"safe": func(s string) template.HTML {
			return template.HTML(s) //nolint:gosec
		},
	}

	var (
		tmpl *template.Template
		err  error
	)
	if config.Template != "" {
		p.tmplName = filepath.Base(config.Template)
		tmpl, err = template.New(p.tmplName).Funcs(funcs).ParseFiles(config.Template)
	} else {
		p.tmplName = indexTemplateName
		tmpl, err = template.New(p.tmplName).Funcs(funcs).Parse(defaultIndexTemplate)
	}
	if err != nil {
		return nil, err
	}
	p.tmpl = tmpl

	return p, nil
}

// Metadata returns the metafile of the last successful build
func (p *Pipeline) Metadata() (*BuildMetadata, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.metadata == nil {
		return nil, ErrNotBuilt
	}
	return p.metadata, nil
}

func marshal(value any) string {
	buf := new(bytes.Buffer)

	if err := json.NewEncoder(buf).Encode(value); err != nil {
		panic(errors.New("context can only be json serializable"))
	}

	return buf.String()
}
