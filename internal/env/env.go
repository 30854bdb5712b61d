// Package env answers which mode a build runs in and where the client project is located.
package env

import (
	"os"

	"clientbuild.dev/pkg/buildconfig"
	"clientbuild.dev/pkg/environ"
)

// Mode reports the build mode flag from e.
// If the flag is unset it reports def. A flag that is set
// to the empty string is reported as-is.
func Mode(e environ.Environ, def string) string {
	if v, ok := e.Lookup(buildconfig.ModeFlag); ok {
		return v
	}
	return def
}

// ProjectRoot reports the directory containing the client project.
// It can be overridden by setting CLIENTBUILD_ROOT, and otherwise
// defaults to the working directory.
func ProjectRoot(e environ.Environ) (string, error) {
	if p := e.Get("CLIENTBUILD_ROOT"); p != "" {
		return p, nil
	}
	return os.Getwd()
}

// List reports the environment variables that affect the build,
// in the same format as os.Environ().
func List(e environ.Environ) []string {
	root, _ := ProjectRoot(e)
	return []string{
		buildconfig.ModeFlag + "=" + e.Get(buildconfig.ModeFlag),
		"CLIENTBUILD_ROOT=" + root,
	}
}
