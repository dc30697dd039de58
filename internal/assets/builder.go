package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/webparts/internal/fragment"
	"github.com/wolfeidau/webparts/internal/logger"
	"github.com/wolfeidau/webparts/internal/purify"
)

const defaultMetafileName = "meta"

type step struct {
	phase fragment.Phase
	kind  fragment.PluginKind
	run   func(metadata *BuildMetadata) error
}

// Build cleans, runs esbuild with the translated options and then runs the
// post build phases
func (p *Pipeline) Build() error {
	if err := p.Prepare(); err != nil {
		return err
	}

	log.Info().Str("build_id", p.buildID).Str("outdir", p.build.Output.Path).Msg("Building assets")

	result := api.Build(p.BuildOptions())

	buildLog := log.With().Str("build_id", p.buildID).Logger()

	if len(result.Errors) > 0 {
		logger.BuildMessages(buildLog, zerolog.ErrorLevel, "Build error", result.Errors)
		return ErrBuildFailed
	}

	if p.logWarnings() {
		logger.BuildMessages(buildLog, zerolog.WarnLevel, "Build warning", result.Warnings)
	}

	for _, file := range result.OutputFiles {
		log.Info().Str("file", file.Path).Msg("Built file")
	}

	if p.config.Analyze && p.config.Stats != nil {
		fmt.Fprint(p.config.Stats, api.AnalyzeMetafile(result.Metafile, api.AnalyzeMetafileOptions{}))
	}

	return nil
}

// Context creates an esbuild context for incremental and watch mode builds.
// Callers run Prepare first and Dispose the context when done.
func (p *Pipeline) Context() (api.BuildContext, error) {
	p.watching = true

	ctx, ctxErr := api.Context(p.BuildOptions())
	if ctxErr != nil {
		msgs := make([]error, 0, len(ctxErr.Errors))
		for _, msg := range ctxErr.Errors {
			msgs = append(msgs, errors.New(msg.Text))
		}
		return nil, fmt.Errorf("failed to create build context: %w", errors.Join(msgs...))
	}
	return ctx, nil
}

// Prepare runs the prepare phase plugins, which must finish before any
// output is written
func (p *Pipeline) Prepare() error {
	for _, plugin := range p.build.PluginsOf(fragment.KindClean) {
		opts, ok := plugin.Options.(fragment.CleanOptions)
		if !ok {
			continue
		}
		if err := p.clean(opts); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) clean(opts fragment.CleanOptions) error {
	base := opts.Root
	if base == "" {
		base = p.config.Root
	}

	for _, path := range opts.Paths {
		target := path
		if !filepath.IsAbs(target) {
			target = filepath.Join(base, target)
		}

		rel, err := filepath.Rel(base, target)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("%w: %s", ErrUnsafeClean, target)
		}

		log.Info().Str("path", target).Msg("Cleaning")
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("failed to clean %s: %w", target, err)
		}
	}
	return nil
}

// afterBuild parses the metafile and runs the post build steps ordered by
// phase, keeping plugin list order within a phase
func (p *Pipeline) afterBuild(metafile string) error {
	var metadata BuildMetadata
	if err := json.Unmarshal([]byte(metafile), &metadata); err != nil {
		return err
	}

	steps := p.postBuildSteps(metafile)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].phase < steps[j].phase })

	for _, s := range steps {
		if err := s.run(&metadata); err != nil {
			return fmt.Errorf("%s plugin: %w", s.kind, err)
		}
	}

	p.mu.Lock()
	p.metadata = &metadata
	p.mu.Unlock()

	if p.config.OnRebuild != nil {
		p.config.OnRebuild()
	}

	return nil
}

func (p *Pipeline) postBuildSteps(metafile string) []step {
	var steps []step

	for _, plugin := range p.build.Plugins {
		switch o := plugin.Options.(type) {
		case fragment.PurifyCSSOptions:
			steps = append(steps, step{plugin.Phase, plugin.Kind, func(m *BuildMetadata) error {
				return p.purifyOutputs(o, m)
			}})
		case fragment.HTMLOptions:
			steps = append(steps, step{plugin.Phase, plugin.Kind, func(m *BuildMetadata) error {
				return p.writeIndex(o, m)
			}})
		}
	}

	name := defaultMetafileName
	if split := p.build.PluginsOf(fragment.KindSplitChunks); len(split) > 0 {
		if o, ok := split[0].Options.(fragment.SplitChunksOptions); ok && o.Manifest() != "" {
			name = o.Manifest()
		}
	}
	steps = append(steps, step{fragment.PhaseEmit, fragment.KindSplitChunks, func(*BuildMetadata) error {
		return os.WriteFile(filepath.Join(p.build.Output.Path, name+".json"), []byte(metafile), 0600)
	}})

	return steps
}

func (p *Pipeline) purifyOutputs(opts fragment.PurifyCSSOptions, metadata *BuildMetadata) error {
	base := opts.BasePath
	if base == "" {
		base = p.config.Root
	}

	used, err := purify.Scan(base, opts.Paths...)
	if err != nil {
		return err
	}

	for outputPath := range metadata.Outputs {
		if filepath.Ext(outputPath) != ".css" {
			continue
		}

		path := p.outputFile(outputPath)
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		purified, err := purify.Purify(src, used)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		log.Debug().Str("file", path).Int("before", len(src)).Int("after", len(purified)).Msg("Purified stylesheet")

		if err := os.WriteFile(path, purified, 0600); err != nil {
			return err
		}
	}
	return nil
}

// outputFile resolves a metafile output path, which is relative to the root
func (p *Pipeline) outputFile(outputPath string) string {
	if filepath.IsAbs(outputPath) {
		return outputPath
	}
	return filepath.Join(p.config.Root, filepath.FromSlash(outputPath))
}

// logWarnings is false when the configuration asks for error only output
func (p *Pipeline) logWarnings() bool {
	if p.build.DevServer.Stats == "errors-only" {
		return false
	}
	for _, plugin := range p.build.PluginsOf(fragment.KindMinify) {
		if o, ok := plugin.Options.(fragment.MinifyOptions); ok && !o.Warnings {
			return false
		}
	}
	return true
}
