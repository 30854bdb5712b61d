package buildconfig

import (
	"github.com/evanw/esbuild/pkg/api"
)

// ReactPluginName is the name of the plugin returned by React.
const ReactPluginName = "react"

// reactLoaders are the loaders the React plugin installs for extensions
// the build has not configured itself.
var reactLoaders = map[string]api.Loader{
	".js":  api.LoaderJSX,
	".jsx": api.LoaderJSX,
	".ts":  api.LoaderTS,
	".tsx": api.LoaderTSX,
}

// React returns a plugin enabling React support for the build it is added to:
// the automatic JSX runtime importing from "react", and JSX parsing for
// plain .js files. When prod is false the development JSX transform is used.
func React(prod bool) api.Plugin {
	return api.Plugin{
		Name: ReactPluginName,
		Setup: func(build api.PluginBuild) {
			configureReact(build.InitialOptions, prod)
		},
	}
}

func configureReact(opts *api.BuildOptions, prod bool) {
	opts.JSX = api.JSXAutomatic
	if opts.JSXImportSource == "" {
		opts.JSXImportSource = "react"
	}
	opts.JSXDev = !prod

	if opts.Loader == nil {
		opts.Loader = make(map[string]api.Loader, len(reactLoaders))
	}
	for ext, loader := range reactLoaders {
		if _, ok := opts.Loader[ext]; !ok {
			opts.Loader[ext] = loader
		}
	}
}
