// Package bundler builds the web client with esbuild using the
// configuration computed by package buildconfig.
package bundler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/evanw/esbuild/pkg/api"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"clientbuild.dev/internal/projectconfig"
	"clientbuild.dev/internal/version"
	"clientbuild.dev/pkg/buildconfig"
	"clientbuild.dev/pkg/xos"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ManifestName is the name of the manifest written into the output directory.
const ManifestName = "manifest.json"

// Options describe a single build of the client.
type Options struct {
	// Root is the absolute path to the client project.
	Root string

	Project *projectconfig.Config
	Config  *buildconfig.BuildConfig

	Minify    bool
	Sourcemap bool

	// Log is the logger to use. If nil the global logger is used.
	Log *zerolog.Logger
}

// DefaultOptions reports the options for building the project at root.
// Production builds are minified and development builds carry inline sourcemaps.
func DefaultOptions(root string, project *projectconfig.Config, cfg *buildconfig.BuildConfig) Options {
	prod := buildconfig.IsProduction(cfg.Mode)
	return Options{
		Root:      root,
		Project:   project,
		Config:    cfg,
		Minify:    prod,
		Sourcemap: !prod,
	}
}

// OutDir reports the absolute output directory.
func (o Options) OutDir() string {
	return filepath.Join(o.Root, o.Project.OutDir)
}

func (o Options) logger() *zerolog.Logger {
	if o.Log != nil {
		return o.Log
	}
	l := log.With().Str("component", "bundler").Logger()
	return &l
}

// nodeEnv is the value process.env.NODE_ENV is replaced with.
// Libraries such as React select their production build from it.
func (o Options) nodeEnv() string {
	if buildconfig.IsProduction(o.Config.Mode) {
		return buildconfig.Production
	}
	return buildconfig.Development
}

func (o Options) esbuildOptions() api.BuildOptions {
	sourcemap := api.SourceMapNone
	if o.Sourcemap {
		sourcemap = api.SourceMapInline
	}

	opts := api.BuildOptions{
		LogLevel: api.LogLevelSilent,
		Banner:   map[string]string{"js": version.Banner()},
		Charset:  api.CharsetUTF8,

		Platform: api.PlatformBrowser,
		Format:   api.FormatESModule,
		Target:   o.Project.ESBuildTarget(),
		External: o.Project.External,

		MinifyWhitespace:  o.Minify,
		MinifySyntax:      o.Minify,
		MinifyIdentifiers: o.Minify,
		Sourcemap:         sourcemap,

		AbsWorkingDir: o.Root,
		EntryPoints:   o.Project.Entry,
		EntryNames:    "assets/[name]",
		AssetNames:    "assets/[name]-[hash]",
		Bundle:        true,
		Outdir:        o.OutDir(),
		Write:         true,
		Metafile:      true,

		Define: map[string]string{
			"process.env.NODE_ENV": buildconfig.Quote(o.nodeEnv()),
		},
	}
	o.Config.Apply(&opts)
	return opts
}

// Result describes a completed build.
type Result struct {
	// Outputs maps output paths, relative to the project root, to their size in bytes.
	Outputs map[string]int

	// Copied lists the static files copied into the output directory.
	Copied []string

	Warnings []string
	Duration time.Duration
}

// Build runs a single build.
func Build(ctx context.Context, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := cleanOutDir(opts); err != nil {
		return nil, err
	}

	logger := opts.logger()
	logger.Debug().Str("mode", opts.Config.Mode).Strs("entry", opts.Project.Entry).Msg("building client")

	start := time.Now()
	res := api.Build(opts.esbuildOptions())
	return finish(opts, res, start)
}

// finish turns an esbuild result into a Result and completes the
// output directory with static files and the manifest.
func finish(opts Options, res api.BuildResult, start time.Time) (*Result, error) {
	logger := opts.logger()
	if len(res.Errors) > 0 {
		return nil, newBuildError(res.Errors)
	}

	result := &Result{
		Warnings: formatMessages(res.Warnings, api.WarningMessage),
	}
	for _, w := range result.Warnings {
		logger.Warn().Msg(w)
	}

	outputs, err := parseMetafile(res.Metafile)
	if err != nil {
		return nil, err
	}
	result.Outputs = outputs

	copied, err := copyStatic(opts)
	if err != nil {
		return nil, err
	}
	result.Copied = copied

	if err := writeManifest(opts, result); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	logger.Info().
		Int("outputs", len(result.Outputs)).
		Int("warnings", len(result.Warnings)).
		Dur("duration", result.Duration).
		Msg("client built")
	return result, nil
}

// cleanOutDir removes the previous build output.
// It refuses to touch directories outside the project root, or
// directories overlapping the project's sources or static files.
func cleanOutDir(opts Options) error {
	out := opts.OutDir()
	rel, err := filepath.Rel(opts.Root, out)
	if err != nil {
		return errors.WithStack(err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errors.Newf("refusing to clean output directory %s outside of project root %s", out, opts.Root)
	}
	if err := opts.Project.ValidateOutDir(); err != nil {
		return errors.Wrapf(err, "refusing to clean output directory %s", out)
	}
	return errors.WithStack(os.RemoveAll(out))
}

func copyStatic(opts Options) ([]string, error) {
	out := opts.OutDir()
	var copied []string

	if opts.Project.HTML != "" {
		src := filepath.Join(opts.Root, opts.Project.HTML)
		if _, err := os.Stat(src); err == nil {
			dst := filepath.Join(out, filepath.Base(src))
			if err := xos.CopyFile(src, dst); err != nil {
				return nil, errors.Wrap(err, "copy html")
			}
			copied = append(copied, dst)
		}
	}

	if opts.Project.PublicDir != "" {
		files, err := xos.CopyDir(filepath.Join(opts.Root, opts.Project.PublicDir), out)
		if err != nil {
			return nil, err
		}
		copied = append(copied, files...)
	}
	return copied, nil
}

type metafile struct {
	Outputs map[string]struct {
		Bytes int `json:"bytes"`
	} `json:"outputs"`
}

func parseMetafile(data string) (map[string]int, error) {
	outputs := make(map[string]int)
	if data == "" {
		return outputs, nil
	}
	var meta metafile
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return nil, errors.Wrap(err, "parse metafile")
	}
	for path, o := range meta.Outputs {
		outputs[filepath.ToSlash(path)] = o.Bytes
	}
	return outputs, nil
}

// Manifest is the contents of the manifest file.
type Manifest struct {
	Version   string         `json:"version"`
	Mode      string         `json:"mode"`
	ServerURL string         `json:"server_url"`
	Outputs   map[string]int `json:"outputs"`
}

func writeManifest(opts Options, result *Result) error {
	m := Manifest{
		Version:   version.Version,
		Mode:      opts.Config.Mode,
		ServerURL: buildconfig.ServerURL(opts.Config.Mode),
		Outputs:   result.Outputs,
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal manifest")
	}
	return xos.WriteFile(filepath.Join(opts.OutDir(), ManifestName), data, 0644)
}

// ReadManifest reads the manifest from the output directory dir.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "parse manifest")
	}
	return &m, nil
}
