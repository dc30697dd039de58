package assets

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/webparts/internal/fragment"
)

const (
	// IndexFile is the page written by the html plugin
	IndexFile = "index.html"

	indexTemplateName = "index"
)

const defaultIndexTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
{{- range .Styles}}
<link rel="stylesheet" href="{{.}}">
{{- end}}
{{- range .Preloads}}
<link rel="modulepreload" href="{{.}}">
{{- end}}
</head>
<body>
{{- range .Scripts}}
<script{{if $.Module}} type="module"{{end}} src="{{.}}"></script>
{{- end}}
{{- if .LiveReload}}
<script>new EventSource({{.LiveReload}}).onmessage = function () { location.reload(); };</script>
{{- end}}
</body>
</html>
`

var errEntryNotFound = errors.New("entrypoint not found in metadata")

// Page lists the assets the index page loads
type Page struct {
	Title      string
	Scripts    []string
	Styles     []string
	Preloads   []string
	Module     bool
	LiveReload string
}

// LoadScripts returns the ordered list of script paths needed for the named
// entry and the entry's own script path
func (p *Pipeline) LoadScripts(name string) ([]string, string, error) {
	metadata, err := p.Metadata()
	if err != nil {
		return nil, "", err
	}
	return p.loadScripts(metadata, name)
}

func (p *Pipeline) loadScripts(metadata *BuildMetadata, name string) ([]string, string, error) {
	matcher := outputMatcher(p.build.Output.Filename)

	for _, outputPath := range sortedOutputs(metadata) {
		info := metadata.Outputs[outputPath]
		if info.EntryPoint == "" || path.Ext(outputPath) != ".js" || !matcher(outputPath, name) {
			continue
		}

		scripts := []string{}
		visited := map[string]bool{outputPath: true}
		p.addDependencies(metadata, info, &scripts, visited)
		return scripts, p.publicPath(outputPath), nil
	}

	return nil, "", errEntryNotFound
}

func (p *Pipeline) addDependencies(metadata *BuildMetadata, output OutputInfo, scripts *[]string, visited map[string]bool) {
	for _, imp := range output.Imports {
		if imp.Kind != "import-statement" || visited[imp.Path] {
			continue
		}
		visited[imp.Path] = true
		*scripts = append(*scripts, p.publicPath(imp.Path))

		if chunkInfo, exists := metadata.Outputs[imp.Path]; exists {
			p.addDependencies(metadata, chunkInfo, scripts, visited)
		}
	}
}

// page collects the page assets in entry order: bundles split out by the
// split chunks plugin first, then the remaining entries by name
func (p *Pipeline) page(opts fragment.HTMLOptions, metadata *BuildMetadata) Page {
	pg := Page{
		Title:      opts.Title,
		Module:     p.build.HasPlugin(fragment.KindSplitChunks),
		LiveReload: p.config.LiveReload,
	}

	matcher := outputMatcher(p.build.Output.Filename)
	seenStyle := map[string]bool{}
	addStyle := func(outputPath string) {
		if outputPath == "" || seenStyle[outputPath] {
			return
		}
		seenStyle[outputPath] = true
		pg.Styles = append(pg.Styles, p.publicPath(outputPath))
	}

	for _, name := range p.entryOrder() {
		for _, outputPath := range sortedOutputs(metadata) {
			if !matcher(outputPath, name) {
				continue
			}
			info := metadata.Outputs[outputPath]
			switch path.Ext(outputPath) {
			case ".css":
				addStyle(outputPath)
			case ".js":
				if info.EntryPoint == "" {
					continue
				}
				addStyle(info.CSSBundle)
				preloads, script, err := p.loadScripts(metadata, name)
				if err != nil {
					continue
				}
				pg.Scripts = append(pg.Scripts, script)
				if !pg.Module {
					continue
				}
				for _, preload := range preloads {
					if !slices.Contains(pg.Preloads, preload) {
						pg.Preloads = append(pg.Preloads, preload)
					}
				}
			}
		}
	}

	return pg
}

func (p *Pipeline) entryOrder() []string {
	var first []string
	for _, plugin := range p.build.PluginsOf(fragment.KindSplitChunks) {
		if o, ok := plugin.Options.(fragment.SplitChunksOptions); ok {
			for _, n := range o.Names {
				if _, isEntry := p.build.Entry[n]; isEntry {
					first = append(first, n)
				}
			}
		}
	}

	var rest []string
	for name := range p.build.Entry {
		if !slices.Contains(first, name) {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)

	return append(first, rest...)
}

// RenderIndex renders the index page for the last successful build
func (p *Pipeline) RenderIndex(w io.Writer) error {
	metadata, err := p.Metadata()
	if err != nil {
		return err
	}
	return p.renderIndex(w, metadata)
}

func (p *Pipeline) renderIndex(w io.Writer, metadata *BuildMetadata) error {
	plugins := p.build.PluginsOf(fragment.KindHTML)
	opts := fragment.HTMLOptions{}
	if len(plugins) > 0 {
		if o, ok := plugins[0].Options.(fragment.HTMLOptions); ok {
			opts = o
		}
	}
	return p.tmpl.ExecuteTemplate(w, p.tmplName, p.page(opts, metadata))
}

func (p *Pipeline) writeIndex(opts fragment.HTMLOptions, metadata *BuildMetadata) error {
	buf := new(bytes.Buffer)
	if err := p.tmpl.ExecuteTemplate(buf, p.tmplName, p.page(opts, metadata)); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(p.build.Output.Path, IndexFile), buf.Bytes(), 0600)
}

// Handler returns an http.HandlerFunc that renders the index page from the
// latest build metadata
func (p *Pipeline) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		if err := p.RenderIndex(buf); err != nil {
			log.Error().Err(err).Msg("Failed to render index")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := buf.WriteTo(w); err != nil {
			log.Error().Err(err).Msg("Failed to write index")
		}
	}
}

// publicPath turns a metafile output path into an absolute URL path below
// the output directory
func (p *Pipeline) publicPath(outputPath string) string {
	rel, err := filepath.Rel(p.build.Output.Path, p.outputFile(outputPath))
	if err != nil {
		return "/" + outputPath
	}
	return "/" + filepath.ToSlash(rel)
}

// outputMatcher reports whether an output file was produced for the named
// entry under the filename pattern
func outputMatcher(filename string) func(outputPath, name string) bool {
	pattern := regexp.QuoteMeta(namePattern(filename, "[name]"))
	pattern = strings.ReplaceAll(pattern, regexp.QuoteMeta("[hash]"), `[A-Za-z0-9]+`)

	return func(outputPath, name string) bool {
		base := path.Base(outputPath)
		base = strings.TrimSuffix(base, path.Ext(base))
		re, err := regexp.Compile("^" + strings.ReplaceAll(pattern, regexp.QuoteMeta("[name]"), regexp.QuoteMeta(name)) + "$")
		if err != nil {
			return false
		}
		return re.MatchString(base)
	}
}

func sortedOutputs(metadata *BuildMetadata) []string {
	keys := make([]string, 0, len(metadata.Outputs))
	for k := range metadata.Outputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
