// Package buildconfig computes the compile-time configuration handed to the
// bundler when building the web client.
package buildconfig

import (
	"github.com/evanw/esbuild/pkg/api"
	jsoniter "github.com/json-iterator/go"

	"clientbuild.dev/pkg/environ"
)

// Mode values the configuration distinguishes.
// Anything other than Production is treated as Development.
const (
	Production  = "production"
	Development = "development"
)

// ModeFlag is the environment variable holding the build mode.
const ModeFlag = "NODE_ENV"

// ServerURLDefine is the symbol the client source uses to reach the API server.
const ServerURLDefine = "SERVER_URL"

const (
	productionServerURL  = "http://13.204.66.128:5000"
	developmentServerURL = "http://localhost:5000"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BuildConfig is the configuration for a single bundler invocation.
type BuildConfig struct {
	// Mode is the mode flag the config was computed from, verbatim.
	Mode string

	// Plugins are the bundler plugins to enable, in order.
	Plugins []api.Plugin

	// Defines maps compile-time constant names to the source
	// expression substituted for them.
	Defines map[string]string
}

// New computes the build configuration for the given mode flag.
// Only the exact value "production" selects the production server;
// every other value, including the empty string, selects development.
func New(mode string) *BuildConfig {
	return &BuildConfig{
		Mode:    mode,
		Plugins: []api.Plugin{React(IsProduction(mode))},
		Defines: map[string]string{
			ServerURLDefine: Quote(ServerURL(mode)),
		},
	}
}

// FromEnviron reads the mode flag from env and computes the configuration.
func FromEnviron(env environ.Environ) *BuildConfig {
	return New(env.Get(ModeFlag))
}

// IsProduction reports whether mode selects a production build.
func IsProduction(mode string) bool {
	return mode == Production
}

// ServerURL reports the API server address embedded for the given mode.
func ServerURL(mode string) string {
	if IsProduction(mode) {
		return productionServerURL
	}
	return developmentServerURL
}

// Apply merges the configuration into opts.
// Defines from c take precedence over any already present.
func (c *BuildConfig) Apply(opts *api.BuildOptions) {
	if opts.Define == nil {
		opts.Define = make(map[string]string, len(c.Defines))
	}
	for k, v := range c.Defines {
		opts.Define[k] = v
	}
	opts.Plugins = append(opts.Plugins, c.Plugins...)
}

// PluginNames reports the names of the configured plugins, in order.
func (c *BuildConfig) PluginNames() []string {
	names := make([]string, len(c.Plugins))
	for i, p := range c.Plugins {
		names[i] = p.Name
	}
	return names
}

// Quote encodes s as a JavaScript string literal, suitable as a define value.
func Quote(s string) string {
	data, err := json.Marshal(s)
	if err != nil {
		// Marshalling a string cannot fail.
		panic(err)
	}
	return string(data)
}
