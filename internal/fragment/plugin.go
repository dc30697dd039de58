package fragment

import "fmt"

type PluginKind string

const (
	KindHTML        PluginKind = "html"
	KindHotReload   PluginKind = "hot-module-replacement"
	KindMinify      PluginKind = "minify"
	KindDefine      PluginKind = "define"
	KindSplitChunks PluginKind = "split-chunks"
	KindClean       PluginKind = "clean"
	KindExtractCSS  PluginKind = "extract-css"
	KindPurifyCSS   PluginKind = "purify-css"
)

// Phase is the execution stage a plugin belongs to. Phases run in ascending
// order; plugins within a phase keep their list order.
type Phase int

const (
	PhasePrepare Phase = iota
	PhaseCompile
	PhaseOptimize
	PhaseExtract
	PhasePostProcess
	PhaseEmit
)

func (p Phase) String() string {
	switch p {
	case PhasePrepare:
		return "prepare"
	case PhaseCompile:
		return "compile"
	case PhaseOptimize:
		return "optimize"
	case PhaseExtract:
		return "extract"
	case PhasePostProcess:
		return "postprocess"
	case PhaseEmit:
		return "emit"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Phase returns the stage the kind runs in.
func (k PluginKind) Phase() Phase {
	switch k {
	case KindClean:
		return PhasePrepare
	case KindHotReload, KindDefine:
		return PhaseCompile
	case KindSplitChunks, KindMinify:
		return PhaseOptimize
	case KindExtractCSS:
		return PhaseExtract
	case KindPurifyCSS:
		return PhasePostProcess
	default:
		return PhaseEmit
	}
}

// Requires lists the kinds that must appear earlier in the plugin list.
func (k PluginKind) Requires() []PluginKind {
	if k == KindPurifyCSS {
		return []PluginKind{KindExtractCSS}
	}
	return nil
}

// Known reports whether k is one of the declared plugin kinds.
func (k PluginKind) Known() bool {
	switch k {
	case KindHTML, KindHotReload, KindMinify, KindDefine, KindSplitChunks,
		KindClean, KindExtractCSS, KindPurifyCSS:
		return true
	}
	return false
}

// Plugin describes one bundler plugin and the options it is created with.
type Plugin struct {
	Kind    PluginKind    `json:"kind" yaml:"kind"`
	Phase   Phase         `json:"phase" yaml:"phase"`
	Options PluginOptions `json:"options,omitempty" yaml:"options,omitempty"`
}

// PluginOptions is implemented by the typed option set of each plugin kind.
type PluginOptions interface {
	Kind() PluginKind
}

// NewPlugin wraps opts in a descriptor tagged with its kind and phase.
func NewPlugin(opts PluginOptions) Plugin {
	return Plugin{Kind: opts.Kind(), Phase: opts.Kind().Phase(), Options: opts}
}

type HTMLOptions struct {
	Title string `json:"title" yaml:"title"`
}

func (HTMLOptions) Kind() PluginKind { return KindHTML }

type HotReloadOptions struct {
	MultiStep bool `json:"multiStep" yaml:"multiStep"`
}

func (HotReloadOptions) Kind() PluginKind { return KindHotReload }

type MinifyOptions struct {
	Beautify    bool     `json:"beautify" yaml:"beautify"`
	Comments    bool     `json:"comments" yaml:"comments"`
	Warnings    bool     `json:"warnings" yaml:"warnings"`
	DropConsole bool     `json:"dropConsole" yaml:"dropConsole"`
	Reserved    []string `json:"reserved,omitempty" yaml:"reserved,omitempty"`
	KeepFnames  bool     `json:"keepFnames" yaml:"keepFnames"`
	// LegacyIE keeps IE8 compatibility workarounds in the output.
	LegacyIE bool `json:"legacyIE" yaml:"legacyIE"`
}

func (MinifyOptions) Kind() PluginKind { return KindMinify }

// DefineOptions maps global identifiers to source-code replacements. Values
// are inserted verbatim, so string constants must already be quoted.
type DefineOptions struct {
	Definitions map[string]string `json:"definitions" yaml:"definitions"`
}

func (DefineOptions) Kind() PluginKind { return KindDefine }

// SplitChunksOptions factors code shared by the named chunks into separate
// output chunks. The last name is the runtime manifest chunk.
type SplitChunksOptions struct {
	Names []string `json:"names" yaml:"names"`
}

func (SplitChunksOptions) Kind() PluginKind { return KindSplitChunks }

// Manifest returns the runtime chunk name, or "" when none is set.
func (o SplitChunksOptions) Manifest() string {
	if len(o.Names) < 2 {
		return ""
	}
	return o.Names[len(o.Names)-1]
}

// CleanOptions removes Paths before the build. Relative paths resolve
// against Root; an empty Root means the project root.
type CleanOptions struct {
	Paths []string `json:"paths" yaml:"paths"`
	Root  string   `json:"root,omitempty" yaml:"root,omitempty"`
}

func (CleanOptions) Kind() PluginKind { return KindClean }

// ExtractCSSOptions writes stylesheets to their own files. esbuild names them
// from output.filename, so Filename is only validated against it.
type ExtractCSSOptions struct {
	Filename string `json:"filename" yaml:"filename"`
}

func (ExtractCSSOptions) Kind() PluginKind { return KindExtractCSS }

// PurifyCSSOptions scans Paths for used selectors. An empty BasePath means
// the project root.
type PurifyCSSOptions struct {
	BasePath string   `json:"basePath,omitempty" yaml:"basePath,omitempty"`
	Paths    []string `json:"paths" yaml:"paths"`
}

func (PurifyCSSOptions) Kind() PluginKind { return KindPurifyCSS }
