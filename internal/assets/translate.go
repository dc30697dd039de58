package assets

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/webparts/internal/fragment"
)

const entryNamespace = "webparts-entry"

var (
	hashPlaceholder = regexp.MustCompile(`\[(chunkhash|contenthash)\]`)
	extPattern      = regexp.MustCompile(`^\\\.(\w+)\$$`)

	indexFiles = []string{"index.js", "index.jsx", "index.ts", "index.tsx"}
)

// BuildOptions translates the configuration into esbuild options
func (p *Pipeline) BuildOptions() api.BuildOptions {
	cfg := p.build

	opts := api.BuildOptions{
		AbsWorkingDir: p.config.Root,
		Bundle:        true,
		Write:         true,
		Metafile:      true,
		Platform:      api.PlatformBrowser,
		Format:        api.FormatIIFE,
		Outdir:        cfg.Output.Path,
		EntryNames:    namePattern(cfg.Output.Filename, "[name]"),
		ChunkNames:    namePattern(cfg.Output.ChunkFilename, "[name]-[hash]"),
		AssetNames:    "[name].[hash]",
		Sourcemap:     sourceMap(cfg.Devtool),
		LogLevel:      api.LogLevelSilent,
		Loader:        map[string]api.Loader{},
		Define:        map[string]string{},
	}

	opts.EntryPointsAdvanced = entryPoints(cfg.Entry)

	var styleRules []fragment.LoaderRule
	for _, rule := range cfg.Module.Loaders {
		ext := ruleExtension(rule.Test)
		switch {
		case ext == ".css" && !rule.Extract:
			styleRules = append(styleRules, rule)
		case ext == ".css":
			opts.Loader[ext] = api.LoaderCSS
		case ext == ".js" || ext == ".jsx":
			if rule.HasPreset("react") {
				opts.Loader[ext] = api.LoaderJSX
			}
			if rule.HasPreset("es2015") {
				opts.Target = api.ES2015
			}
		case ext == "":
			log.Debug().Str("test", rule.Test).Msg("Loader rule test is not an extension match, skipping")
		}
	}

	for _, plugin := range cfg.Plugins {
		switch o := plugin.Options.(type) {
		case fragment.DefineOptions:
			for k, v := range o.Definitions {
				opts.Define[k] = v
			}
		case fragment.MinifyOptions:
			applyMinify(&opts, o)
		case fragment.SplitChunksOptions:
			opts.Splitting = true
			opts.Format = api.FormatESModule
		}
	}

	opts.Plugins = []api.Plugin{entryPlugin(cfg.Entry, p.config.Root)}
	if len(styleRules) > 0 {
		opts.Plugins = append(opts.Plugins, styleInjectPlugin(styleRules))
	}
	opts.Plugins = append(opts.Plugins, p.postBuildPlugin())

	return opts
}

func applyMinify(opts *api.BuildOptions, o fragment.MinifyOptions) {
	opts.MinifyWhitespace = !o.Beautify
	opts.MinifyIdentifiers = true
	opts.MinifySyntax = true
	opts.KeepNames = o.KeepFnames
	if !o.Comments {
		opts.LegalComments = api.LegalCommentsNone
	}
	if o.DropConsole {
		opts.Drop |= api.DropConsole
	}
	if !o.LegacyIE && opts.Target == api.DefaultTarget {
		opts.Target = api.ES2015
	}
	// esbuild never renames free globals, reserved names are kept as is
	if len(o.Reserved) > 0 {
		log.Debug().Strs("reserved", o.Reserved).Msg("Reserved globals are left unmangled")
	}
}

// entryPoints returns one esbuild entry per configured name, sorted by name.
// Names with several modules point at a generated module importing each.
func entryPoints(entry map[string][]string) []api.EntryPoint {
	names := make([]string, 0, len(entry))
	for name := range entry {
		names = append(names, name)
	}
	sort.Strings(names)

	var eps []api.EntryPoint
	for _, name := range names {
		modules := entry[name]
		switch len(modules) {
		case 0:
			log.Debug().Str("entry", name).Msg("Skipping empty entry")
		case 1:
			eps = append(eps, api.EntryPoint{InputPath: resolveEntry(modules[0]), OutputPath: name})
		default:
			eps = append(eps, api.EntryPoint{InputPath: entryNamespace + ":" + name, OutputPath: name})
		}
	}
	return eps
}

// resolveEntry maps a directory entry to its index module, the way the
// bundler resolves directory imports
func resolveEntry(module string) string {
	info, err := os.Stat(module)
	if err != nil || !info.IsDir() {
		return module
	}
	for _, index := range indexFiles {
		candidate := filepath.Join(module, index)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return module
}

// namePattern converts an output filename pattern into an esbuild name
// template, which carries no extension.
func namePattern(filename, fallback string) string {
	if filename == "" {
		return fallback
	}
	name := filename
	if ext := filepath.Ext(filename); !strings.Contains(ext, "[") {
		name = strings.TrimSuffix(filename, ext)
	}
	name = hashPlaceholder.ReplaceAllString(name, "[hash]")
	return strings.ReplaceAll(name, "[id]", "[name]")
}

func sourceMap(devtool string) api.SourceMap {
	switch {
	case devtool == "":
		return api.SourceMapNone
	case strings.HasPrefix(devtool, "eval"), strings.HasPrefix(devtool, "inline"):
		return api.SourceMapInline
	case strings.HasPrefix(devtool, "hidden"):
		return api.SourceMapExternal
	default:
		return api.SourceMapLinked
	}
}

// ruleExtension returns ".css" for a test such as `\.css$`, or "" when the
// test is not a plain extension match.
func ruleExtension(test string) string {
	m := extPattern.FindStringSubmatch(test)
	if m == nil {
		return ""
	}
	return "." + m[1]
}

func included(path string, include []string) bool {
	if len(include) == 0 {
		return true
	}
	return slices.ContainsFunc(include, func(inc string) bool {
		return path == inc || strings.HasPrefix(path, inc+string(filepath.Separator))
	})
}
