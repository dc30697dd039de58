package validate

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/webparts/internal/fragment"
)

var (
	// ErrInvalidConfig wraps every validation failure
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrPluginOrder indicates a plugin listed before a plugin it depends on
	ErrPluginOrder = errors.New("plugin order violation")

	placeholderPattern = regexp.MustCompile(`\[[^\]]*\]`)
	hashPattern        = regexp.MustCompile(`\[(chunkhash|hash|contenthash)\]`)

	allowedPlaceholders = map[string]bool{
		"[name]":        true,
		"[hash]":        true,
		"[chunkhash]":   true,
		"[contenthash]": true,
		"[id]":          true,
	}
)

type Options struct {
	// Quiet suppresses warnings; errors are always returned.
	Quiet bool
}

// Validate checks cfg against the shape the asset pipeline accepts. Warnings
// are logged unless opts.Quiet is set.
func Validate(cfg fragment.Config, opts Options) error {
	warnings, err := Check(cfg)
	if !opts.Quiet {
		for _, w := range warnings {
			log.Warn().Str("check", "config").Msg(w)
		}
	}
	return err
}

// Check returns the warnings for cfg and an error joining every violation.
func Check(cfg fragment.Config) ([]string, error) {
	var (
		errs     []error
		warnings []string
	)

	if len(cfg.Entry) == 0 {
		errs = append(errs, errors.New("entry: at least one entry point is required"))
	}
	for name, paths := range cfg.Entry {
		if name == "" {
			errs = append(errs, errors.New("entry: entry name must not be empty"))
		}
		if len(paths) == 0 {
			warnings = append(warnings, fmt.Sprintf("entry %q has no modules and will be skipped", name))
		}
	}

	if cfg.Output.Path == "" {
		errs = append(errs, errors.New("output.path: is required"))
	} else if !filepath.IsAbs(cfg.Output.Path) {
		errs = append(errs, fmt.Errorf("output.path: %q must be an absolute path", cfg.Output.Path))
	}
	if cfg.Output.Filename == "" {
		errs = append(errs, errors.New("output.filename: is required"))
	}
	errs = append(errs, checkPattern("output.filename", cfg.Output.Filename)...)
	errs = append(errs, checkPattern("output.chunkFilename", cfg.Output.ChunkFilename)...)

	for i, rule := range cfg.Module.Loaders {
		errs = append(errs, checkRule(i, rule, &warnings)...)
	}

	errs = append(errs, checkPlugins(cfg.Plugins, &warnings)...)

	for i, p := range cfg.Plugins {
		o, ok := p.Options.(fragment.ExtractCSSOptions)
		if !ok {
			continue
		}
		field := fmt.Sprintf("plugins[%d].filename", i)
		errs = append(errs, checkPattern(field, o.Filename)...)
		if hashPattern.MatchString(o.Filename) != hashPattern.MatchString(cfg.Output.Filename) {
			warnings = append(warnings, fmt.Sprintf("%s: %q disagrees with output.filename %q, stylesheets are named from output.filename", field, o.Filename, cfg.Output.Filename))
		}
	}

	if cfg.DevServer.Configured() && hashPattern.MatchString(cfg.Output.Filename) {
		warnings = append(warnings, "devServer: hashed output filenames defeat incremental rebuilds")
	}
	if cfg.DevServer.Port < 0 || cfg.DevServer.Port > 65535 {
		errs = append(errs, fmt.Errorf("devServer.port: %d is out of range", cfg.DevServer.Port))
	}

	if len(errs) > 0 {
		return warnings, fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return warnings, nil
}

func checkPattern(field, pattern string) []error {
	var errs []error
	for _, ph := range placeholderPattern.FindAllString(pattern, -1) {
		if !allowedPlaceholders[ph] {
			errs = append(errs, fmt.Errorf("%s: unsupported placeholder %s", field, ph))
		}
	}
	return errs
}

func checkRule(i int, rule fragment.LoaderRule, warnings *[]string) []error {
	var errs []error
	field := fmt.Sprintf("module.loaders[%d]", i)

	if rule.Test == "" {
		errs = append(errs, fmt.Errorf("%s.test: is required", field))
	} else if _, err := regexp.Compile(rule.Test); err != nil {
		errs = append(errs, fmt.Errorf("%s.test: %w", field, err))
	}
	if rule.Exclude != "" {
		if _, err := regexp.Compile(rule.Exclude); err != nil {
			errs = append(errs, fmt.Errorf("%s.exclude: %w", field, err))
		}
	}
	if len(rule.Loaders) == 0 {
		errs = append(errs, fmt.Errorf("%s.loaders: at least one loader is required", field))
	}
	for _, inc := range rule.Include {
		if !filepath.IsAbs(inc) {
			*warnings = append(*warnings, fmt.Sprintf("%s.include: %q is relative to the working directory", field, inc))
		}
	}

	return errs
}

func checkPlugins(plugins []fragment.Plugin, warnings *[]string) []error {
	var errs []error
	seen := make(map[fragment.PluginKind]bool)

	for i, p := range plugins {
		field := fmt.Sprintf("plugins[%d]", i)

		if !p.Kind.Known() {
			errs = append(errs, fmt.Errorf("%s: unknown plugin kind %q", field, p.Kind))
			continue
		}
		if p.Options == nil || p.Options.Kind() != p.Kind {
			errs = append(errs, fmt.Errorf("%s: options do not match plugin kind %q", field, p.Kind))
		}
		if p.Phase != p.Kind.Phase() {
			errs = append(errs, fmt.Errorf("%s: %s plugin must run in the %s phase, not %s", field, p.Kind, p.Kind.Phase(), p.Phase))
		}
		for _, req := range p.Kind.Requires() {
			if !seen[req] {
				errs = append(errs, fmt.Errorf("%w: %s: %s plugin must follow a %s plugin", ErrPluginOrder, field, p.Kind, req))
			}
		}
		if seen[p.Kind] && p.Kind != fragment.KindDefine {
			*warnings = append(*warnings, fmt.Sprintf("%s: duplicate %s plugin", field, p.Kind))
		}

		seen[p.Kind] = true
	}

	return errs
}
