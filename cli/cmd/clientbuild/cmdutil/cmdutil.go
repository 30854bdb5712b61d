package cmdutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"clientbuild.dev/internal/env"
	"clientbuild.dev/internal/projectconfig"
	"clientbuild.dev/pkg/bundler"
	"clientbuild.dev/pkg/environ"
)

// Project loads the client project the command operates on.
func Project(e environ.Environ) (root string, cfg *projectconfig.Config, err error) {
	root, err = env.ProjectRoot(e)
	if err != nil {
		return "", nil, err
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return "", nil, errors.WithStack(err)
	}
	cfg, err = projectconfig.Load(root)
	if err != nil {
		return "", nil, err
	}
	return root, cfg, nil
}

// MustProject is like Project but instead of returning an error
// it prints it to stderr and exits.
func MustProject(e environ.Environ) (root string, cfg *projectconfig.Config) {
	root, cfg, err := Project(e)
	if err != nil {
		Fatal(err)
	}
	return root, cfg
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// WithSpinner runs fn while displaying a spinner with the given prefix on stderr,
// if stderr is a terminal.
func WithSpinner(prefix string, fn func() error) error {
	if !IsTerminal(os.Stderr) {
		return fn()
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Prefix = prefix
	s.Start()
	err := fn()
	s.Stop()
	return err
}

// Fatal prints the error described by args to stderr and exits.
func Fatal(args ...any) {
	PrintError(os.Stderr, args...)
	os.Exit(1)
}

// PrintError prints args in red, prefixed with "error: ".
// A build error is printed with esbuild's own formatting.
func PrintError(w io.Writer, args ...any) {
	red := color.New(color.FgRed)
	for _, arg := range args {
		if err, ok := arg.(error); ok {
			var buildErr *bundler.BuildError
			if errors.As(err, &buildErr) {
				_, _ = red.Fprintln(w, "error: build failed")
				for _, m := range buildErr.Messages {
					_, _ = fmt.Fprint(w, m)
				}
				return
			}
		}
	}

	_, _ = red.Fprint(w, "error: ")
	_, _ = red.Fprintln(w, args...)
}
