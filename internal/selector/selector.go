package selector

import (
	"errors"
	"fmt"

	"github.com/wolfeidau/webparts/internal/fragment"
	"github.com/wolfeidau/webparts/internal/project"
	"github.com/wolfeidau/webparts/internal/validate"
)

const (
	DefaultTitle = "Webpack demo"
	VendorChunk  = "vendor"

	nodeEnvKey = "process.env.NODE_ENV"
)

var ErrUnknownLifecycle = errors.New("unknown lifecycle")

// Params carries everything the selector reads. Environment values are
// captured by the caller and passed in here.
type Params struct {
	Paths project.Paths
	// Title of the generated HTML page, DefaultTitle when empty.
	Title string
	// Dependencies become the members of the vendor bundle.
	Dependencies []string
	Host         string
	Port         int
	// Quiet suppresses validation warnings.
	Quiet bool
}

// Base is the configuration shared by every lifecycle.
func Base(paths project.Paths, title string) fragment.Config {
	if title == "" {
		title = DefaultTitle
	}

	return fragment.Config{
		Entry: map[string][]string{
			"style": {paths.Style},
			"app":   {paths.App},
		},
		Output: fragment.Output{
			Path:     paths.Build,
			Filename: "[name].js",
		},
		Plugins: []fragment.Plugin{
			fragment.NewPlugin(fragment.HTMLOptions{Title: title}),
		},
	}
}

// Fragments returns the ordered fragment list for the lifecycle, base first.
func Fragments(lc Lifecycle, p Params) ([]fragment.Config, error) {
	base := Base(p.Paths, p.Title)

	switch lc {
	case Build:
		return production(base, p), nil
	case Stats:
		return production(base, p), nil
	case Dev:
		return []fragment.Config{
			base,
			fragment.BabelLoader(),
			fragment.SetupCSS(p.Paths.Style),
			{Devtool: "eval-source-map"},
			fragment.DevServer(fragment.DevServerOptions{
				Host: p.Host,
				Port: p.Port,
			}),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownLifecycle, lc)
	}
}

func production(base fragment.Config, p Params) []fragment.Config {
	return []fragment.Config{
		base,
		{
			Devtool: "source-map",
			Output: fragment.Output{
				Path:          p.Paths.Build,
				Filename:      "[name].[chunkhash].js",
				ChunkFilename: "[chunkhash].js",
			},
		},
		fragment.BabelLoader(),
		fragment.Clean(p.Paths.Build),
		fragment.SetFreeVariable(nodeEnvKey, "production"),
		fragment.ExtractBundle(fragment.BundleOptions{
			Name:    VendorChunk,
			Entries: p.Dependencies,
		}),
		fragment.Minify(),
		fragment.ExtractCSS(p.Paths.Style),
		fragment.PurifyCSS(p.Paths.App),
	}
}

// Select merges the fragments for the lifecycle and validates the result.
func Select(lc Lifecycle, p Params) (fragment.Config, error) {
	fragments, err := Fragments(lc, p)
	if err != nil {
		return fragment.Config{}, err
	}

	cfg, err := fragment.Merge(fragments...)
	if err != nil {
		return fragment.Config{}, err
	}

	if err := validate.Validate(cfg, validate.Options{Quiet: p.Quiet}); err != nil {
		return fragment.Config{}, fmt.Errorf("%s configuration: %w", lc, err)
	}

	return cfg, nil
}
