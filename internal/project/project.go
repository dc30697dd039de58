package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

const (
	ManifestFile = "package.json"
	DefaultFile  = "webparts.yaml"
)

var (
	// ErrManifestNotFound indicates the project has no dependency manifest
	ErrManifestNotFound = errors.New("dependency manifest not found")
	// ErrInvalidManifest indicates the dependency manifest could not be parsed
	ErrInvalidManifest = errors.New("invalid dependency manifest")
)

// Paths holds the absolute locations the build reads from and writes to.
type Paths struct {
	Root  string `json:"root" yaml:"root"`
	App   string `json:"app" yaml:"app"`
	Style string `json:"style" yaml:"style"`
	Build string `json:"build" yaml:"build"`
}

// Layout overrides the default project layout. Relative entries resolve
// against the project root; empty entries keep the default.
type Layout struct {
	Title string `yaml:"title"`
	App   string `yaml:"app"`
	Style string `yaml:"style"`
	Build string `yaml:"build"`
}

// DefaultLayout is app/ for sources, app/main.css for styles and build/ for
// output.
func DefaultLayout() Layout {
	return Layout{
		App:   "app",
		Style: filepath.Join("app", "main.css"),
		Build: "build",
	}
}

// ResolvePaths resolves the layout against root. Every returned path is
// absolute; existence is not checked.
func ResolvePaths(root string, layout Layout) (Paths, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Paths{}, fmt.Errorf("failed to resolve project root: %w", err)
	}

	def := DefaultLayout()
	resolve := func(p, fallback string) string {
		if p == "" {
			p = fallback
		}
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(absRoot, p)
	}

	return Paths{
		Root:  absRoot,
		App:   resolve(layout.App, def.App),
		Style: resolve(layout.Style, def.Style),
		Build: resolve(layout.Build, def.Build),
	}, nil
}

// LoadLayout reads a YAML project file. A missing file yields the zero
// Layout when optional is set.
func LoadLayout(path string, optional bool) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Layout{}, nil
		}
		return Layout{}, fmt.Errorf("read project file: %w", err)
	}

	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("parse project file %s: %w", path, err)
	}

	return layout, nil
}

type manifest struct {
	Dependencies map[string]string `json:"dependencies"`
}

// ReadDependencies returns the sorted dependency names declared in the
// package.json under root.
func ReadDependencies(root string) ([]string, error) {
	path := filepath.Join(root, ManifestFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidManifest, path, err)
	}

	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	slices.Sort(names)

	return names, nil
}
