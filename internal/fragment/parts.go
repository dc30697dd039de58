package fragment

import (
	"encoding/json"
	"slices"
)

const (
	// ManifestChunk holds the bundler runtime split out by ExtractBundle.
	ManifestChunk = "manifest"

	// ExtractedCSSFilename is the naming pattern for extracted stylesheets.
	ExtractedCSSFilename = "[name].[chunkhash].css"

	cssTest    = `\.css$`
	jsTest     = `\.js$`
	vendorDirs = `(node_modules|bower_components)`
)

type DevServerOptions struct {
	Host string
	Port int
}

// DevServer enables history API fallback routing, hot reloading with
// multi-step recompilation, the inline client and error-only output. An empty
// host or zero port leaves the dev server default in place.
func DevServer(options DevServerOptions) Config {
	return Config{
		DevServer: ServerOptions{
			HistoryAPIFallback: true,
			Hot:                true,
			Inline:             true,
			Stats:              "errors-only",
			Host:               options.Host,
			Port:               options.Port,
		},
		Plugins: []Plugin{
			NewPlugin(HotReloadOptions{MultiStep: true}),
		},
	}
}

// SetupCSS injects stylesheets under paths from script.
func SetupCSS(paths ...string) Config {
	return Config{
		Module: Module{
			Loaders: []LoaderRule{
				{
					Test:    cssTest,
					Loaders: []string{"style", "css"},
					Include: slices.Clone(paths),
				},
			},
		},
	}
}

// BabelLoader transpiles application scripts with the react and es2015
// presets, skipping vendored packages.
func BabelLoader() Config {
	return Config{
		Module: Module{
			Loaders: []LoaderRule{
				{
					Test:    jsTest,
					Exclude: vendorDirs,
					Loaders: []string{"babel"},
					Presets: []string{"react", "es2015"},
				},
			},
		},
	}
}

func Minify() Config {
	return Config{
		Plugins: []Plugin{
			NewPlugin(MinifyOptions{
				Beautify:    false,
				Comments:    false,
				Warnings:    false,
				DropConsole: true,
				Reserved:    []string{"$"},
				KeepFnames:  true,
				LegacyIE:    false,
			}),
		},
	}
}

// SetFreeVariable defines key as a global constant. The value is JSON encoded,
// so passing an already quoted string quotes it twice.
func SetFreeVariable(key, value string) Config {
	encoded, _ := json.Marshal(value) // strings always encode

	return Config{
		Plugins: []Plugin{
			NewPlugin(DefineOptions{
				Definitions: map[string]string{key: string(encoded)},
			}),
		},
	}
}

type BundleOptions struct {
	Name    string
	Entries []string
}

// ExtractBundle adds a Name entry made of Entries and splits the code it
// shares with the rest of the build, plus the runtime, into separate chunks.
func ExtractBundle(options BundleOptions) Config {
	return Config{
		Entry: map[string][]string{
			options.Name: slices.Clone(options.Entries),
		},
		Plugins: []Plugin{
			NewPlugin(SplitChunksOptions{
				Names: []string{options.Name, ManifestChunk},
			}),
		},
	}
}

// Clean removes path, relative to the project root, before anything is
// written.
func Clean(path string) Config {
	return Config{
		Plugins: []Plugin{
			NewPlugin(CleanOptions{Paths: []string{path}}),
		},
	}
}

// ExtractCSS writes stylesheets under paths to separate hashed files.
func ExtractCSS(paths ...string) Config {
	return Config{
		Module: Module{
			Loaders: []LoaderRule{
				{
					Test:    cssTest,
					Loaders: []string{"style", "css"},
					Include: slices.Clone(paths),
					Extract: true,
				},
			},
		},
		Plugins: []Plugin{
			NewPlugin(ExtractCSSOptions{Filename: ExtractedCSSFilename}),
		},
	}
}

// PurifyCSS strips rules whose selectors are not used by files under paths.
// It operates on extracted stylesheets, so it must follow ExtractCSS.
func PurifyCSS(paths ...string) Config {
	return Config{
		Plugins: []Plugin{
			NewPlugin(PurifyCSSOptions{Paths: slices.Clone(paths)}),
		},
	}
}
