// Package projectconfig loads the optional clientbuild.toml file
// describing the layout of a client project.
package projectconfig

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// FileName is the name of the project configuration file, relative to the project root.
const FileName = "clientbuild.toml"

// Config describes the configuration structure we support.
type Config struct {
	// Entry points of the bundle, relative to the project root.
	Entry []string `koanf:"entry"`

	// Directory the bundle is written to, relative to the project root.
	OutDir string `koanf:"outdir"`

	// Directory whose files are copied verbatim into OutDir.
	// It's fine for it not to exist.
	PublicDir string `koanf:"public"`

	// HTML shell copied into OutDir. It's fine for it not to exist.
	HTML string `koanf:"html"`

	// JavaScript language target, e.g. "es2020" or "esnext".
	Target string `koanf:"target"`

	// Import paths left out of the bundle.
	External []string `koanf:"external"`

	Dev DevConfig `koanf:"dev"`
}

type DevConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// Default reports the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Entry:     []string{"src/main.jsx"},
		OutDir:    "dist",
		PublicDir: "public",
		HTML:      "index.html",
		Target:    "es2020",
		Dev: DevConfig{
			Host: "localhost",
			Port: 5173,
		},
	}
}

var targets = map[string]api.Target{
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"esnext": api.ESNext,
}

// Targets reports the supported values for the target key.
func Targets() []string {
	keys := make([]string, 0, len(targets))
	for k := range targets {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ESBuildTarget reports the esbuild target for c.Target.
func (c *Config) ESBuildTarget() api.Target {
	return targets[strings.ToLower(c.Target)]
}

// Path reports the configuration file path for the project at root.
func Path(root string) string {
	return filepath.Join(root, FileName)
}

var tomlParser = toml.Parser()

// Load reads the configuration for the project at root.
// A missing file yields the default configuration.
func Load(root string) (*Config, error) {
	path := Path(root)
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), tomlParser); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(err, "unable to parse %s", path)
	}
	cfg, err := unmarshal(k)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Validate checks that data is a valid configuration file.
func Validate(data []byte) error {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), tomlParser); err != nil {
		return errors.Wrap(err, "unable to parse config")
	}
	_, err := unmarshal(k)
	return err
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	cfg := Default()
	err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"})
	if err != nil {
		return nil, errors.Wrap(err, "unable to unmarshal config")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case len(c.Entry) == 0:
		return errors.New("entry: at least one entry point is required")
	case c.OutDir == "":
		return errors.New("outdir: must not be empty")
	case c.ESBuildTarget() == api.DefaultTarget:
		return errors.Newf("target: unknown target %q (supported: %s)", c.Target, strings.Join(Targets(), ", "))
	case c.Dev.Port <= 0 || c.Dev.Port > 65535:
		return errors.Newf("dev.port: %d is not a valid port", c.Dev.Port)
	}
	for _, e := range c.Entry {
		if e == "" {
			return errors.New("entry: entry points must not be empty")
		}
	}
	return c.ValidateOutDir()
}

// ValidateOutDir checks that the output directory can be emptied before a
// build without deleting project files: it must lie inside the project root
// and must not overlap the public directory, the HTML shell or the
// directory of any entry point.
func (c *Config) ValidateOutDir() error {
	out := relPath(c.OutDir)
	if out == "." || out == ".." || strings.HasPrefix(out, ".."+string(filepath.Separator)) {
		return errors.Newf("outdir: %q must be a directory inside the project root", c.OutDir)
	}

	if c.PublicDir != "" && overlaps(out, relPath(c.PublicDir)) {
		return errors.Newf("outdir: %q overlaps the public directory %q", c.OutDir, c.PublicDir)
	}
	if c.HTML != "" && within(relPath(c.HTML), out) {
		return errors.Newf("outdir: %q contains the html file %q", c.OutDir, c.HTML)
	}
	for _, e := range c.Entry {
		if overlaps(out, filepath.Dir(relPath(e))) {
			return errors.Newf("outdir: %q overlaps the directory of entry point %q", c.OutDir, e)
		}
	}
	return nil
}

// relPath cleans p the way filepath.Join(root, p) interprets it.
func relPath(p string) string {
	return filepath.Join(".", p)
}

// overlaps reports whether out and dir are the same directory or one contains the other.
// The project root itself only conflicts when out is the root.
func overlaps(out, dir string) bool {
	if dir == "." {
		return out == "."
	}
	return out == dir || within(dir, out) || within(out, dir)
}

// within reports whether path lies strictly inside dir.
func within(path, dir string) bool {
	if dir == "." {
		return path != "."
	}
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}
