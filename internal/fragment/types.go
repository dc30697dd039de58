package fragment

// Config is a partial bundler configuration. The same type describes a single
// fragment and the result of merging fragments together.
type Config struct {
	Entry     map[string][]string `json:"entry,omitempty" yaml:"entry,omitempty"`
	Output    Output              `json:"output,omitzero" yaml:"output,omitempty"`
	Module    Module              `json:"module,omitzero" yaml:"module,omitempty"`
	Plugins   []Plugin            `json:"plugins,omitempty" yaml:"plugins,omitempty"`
	DevServer ServerOptions       `json:"devServer,omitzero" yaml:"devServer,omitempty"`
	Devtool   string              `json:"devtool,omitempty" yaml:"devtool,omitempty"`
}

type Output struct {
	Path          string `json:"path,omitempty" yaml:"path,omitempty"`
	Filename      string `json:"filename,omitempty" yaml:"filename,omitempty"`
	ChunkFilename string `json:"chunkFilename,omitempty" yaml:"chunkFilename,omitempty"`
}

type Module struct {
	Loaders []LoaderRule `json:"loaders,omitempty" yaml:"loaders,omitempty"`
}

// LoaderRule matches source files by Test and runs them through the Loaders
// chain. Loaders apply right to left, so ["style", "css"] feeds the css
// loader's output into the style loader.
type LoaderRule struct {
	Test    string   `json:"test" yaml:"test"`
	Include []string `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude string   `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Loaders []string `json:"loaders" yaml:"loaders"`
	Presets []string `json:"presets,omitempty" yaml:"presets,omitempty"`
	// Extract writes matched styles to a separate file instead of injecting
	// them from script.
	Extract bool `json:"extract,omitempty" yaml:"extract,omitempty"`
}

// HasPreset reports whether the rule applies the named source transform preset.
func (r LoaderRule) HasPreset(name string) bool {
	for _, p := range r.Presets {
		if p == name {
			return true
		}
	}
	return false
}

// ServerOptions configures the development server.
type ServerOptions struct {
	HistoryAPIFallback bool   `json:"historyApiFallback,omitempty" yaml:"historyApiFallback,omitempty"`
	Hot                bool   `json:"hot,omitempty" yaml:"hot,omitempty"`
	Inline             bool   `json:"inline,omitempty" yaml:"inline,omitempty"`
	Stats              string `json:"stats,omitempty" yaml:"stats,omitempty"`
	Host               string `json:"host,omitempty" yaml:"host,omitempty"`
	Port               int    `json:"port,omitempty" yaml:"port,omitempty"`
}

// Configured reports whether any dev server option has been set.
func (d ServerOptions) Configured() bool {
	return d != ServerOptions{}
}

// PluginsOf returns the plugins of the given kind in list order.
func (c Config) PluginsOf(kind PluginKind) []Plugin {
	var out []Plugin
	for _, p := range c.Plugins {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

// HasPlugin reports whether at least one plugin of the given kind is present.
func (c Config) HasPlugin(kind PluginKind) bool {
	for _, p := range c.Plugins {
		if p.Kind == kind {
			return true
		}
	}
	return false
}
