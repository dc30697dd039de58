package assets

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/webparts/internal/fragment"
	"github.com/wolfeidau/webparts/internal/logger"
)

// cssModuleTemplate wraps CSS content in a JS module that injects a <style> tag.
// The data-file attribute lets a rebuild replace the existing tag.
const cssModuleTemplate = `const __file = %q;
let s = document.querySelector('style[data-file="' + __file + '"]');
if (!s) { s = document.createElement('style'); s.dataset.file = __file; document.head.appendChild(s); }
s.textContent = %s;
`

// entryPlugin serves the generated modules behind entries made of several
// modules, such as the vendor bundle.
func entryPlugin(entry map[string][]string, root string) api.Plugin {
	return api.Plugin{
		Name: entryNamespace,
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: "^" + entryNamespace + ":"},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					return api.OnResolveResult{
						Path:      strings.TrimPrefix(args.Path, entryNamespace+":"),
						Namespace: entryNamespace,
					}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: entryNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					modules, ok := entry[args.Path]
					if !ok {
						return api.OnLoadResult{}, fmt.Errorf("no entry named %q", args.Path)
					}

					var b strings.Builder
					for _, m := range modules {
						fmt.Fprintf(&b, "import %q;\n", m)
					}
					contents := b.String()

					return api.OnLoadResult{
						Contents:   &contents,
						ResolveDir: root,
						Loader:     api.LoaderJS,
					}, nil
				})
		},
	}
}

// styleInjectPlugin loads stylesheets matched by rules as script modules
// that inject them into the page.
func styleInjectPlugin(rules []fragment.LoaderRule) api.Plugin {
	return api.Plugin{
		Name: "style-inject",
		Setup: func(build api.PluginBuild) {
			for _, rule := range rules {
				build.OnLoad(api.OnLoadOptions{Filter: rule.Test, Namespace: "file"},
					func(args api.OnLoadArgs) (api.OnLoadResult, error) {
						if !included(args.Path, rule.Include) {
							return api.OnLoadResult{}, nil
						}

						contents, err := styleModule(args.Path)
						if err != nil {
							return api.OnLoadResult{}, err
						}

						return api.OnLoadResult{
							Contents: &contents,
							Loader:   api.LoaderJS,
						}, nil
					})
			}
		},
	}
}

func styleModule(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	text, err := json.Marshal(string(data))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(cssModuleTemplate, path, text), nil
}

// postBuildPlugin runs the post build plugin phases once esbuild has
// written its output, including every watch mode rebuild
func (p *Pipeline) postBuildPlugin() api.Plugin {
	return api.Plugin{
		Name: "webparts-post-build",
		Setup: func(build api.PluginBuild) {
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				if len(result.Errors) > 0 {
					if p.watching {
						logger.BuildMessages(log.Logger, zerolog.ErrorLevel, "Rebuild error", result.Errors)
					}
					return api.OnEndResult{}, nil
				}

				if err := p.afterBuild(result.Metafile); err != nil {
					if p.watching {
						log.Error().Err(err).Msg("Post build failed")
					}
					return api.OnEndResult{
						Errors: []api.Message{{PluginName: "webparts-post-build", Text: err.Error()}},
					}, nil
				}

				return api.OnEndResult{}, nil
			})
		},
	}
}
