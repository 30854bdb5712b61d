package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"clientbuild.dev/cli/cmd/clientbuild/cmdutil"
	"clientbuild.dev/cli/cmd/clientbuild/root"
	"clientbuild.dev/internal/env"
	"clientbuild.dev/pkg/buildconfig"
	"clientbuild.dev/pkg/bundler"
	"clientbuild.dev/pkg/environ"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the web client into the output directory",
	Long: `Builds the web client into the output directory.

The build mode is read from the NODE_ENV environment variable and defaults
to "production" when unset. Production builds embed the production server
address; every other mode embeds the local development server address.`,
	Args: cobra.NoArgs,

	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		e := environ.OS()
		projectRoot, project := cmdutil.MustProject(e)
		cfg := buildconfig.New(env.Mode(e, buildconfig.Production))

		opts := bundler.DefaultOptions(projectRoot, project, cfg)
		if cmd.Flags().Changed("minify") {
			opts.Minify = minify
		}
		if cmd.Flags().Changed("sourcemap") {
			opts.Sourcemap = sourcemap
		}

		var res *bundler.Result
		err := cmdutil.WithSpinner("Building client ", func() (err error) {
			res, err = bundler.Build(ctx, opts)
			return err
		})
		if err != nil {
			cmdutil.Fatal(err)
		}
		printResult(projectRoot, cfg, res)
	},
}

var minify, sourcemap bool

func printResult(projectRoot string, cfg *buildconfig.BuildConfig, res *bundler.Result) {
	paths := make([]string, 0, len(res.Outputs))
	for p := range res.Outputs {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	gray := color.New(color.Faint)
	for _, p := range paths {
		_, _ = gray.Printf("  %-40s %8d B\n", p, res.Outputs[p])
	}
	for _, p := range res.Copied {
		if rel, err := filepath.Rel(projectRoot, p); err == nil {
			p = filepath.ToSlash(rel)
		}
		_, _ = gray.Printf("  %-40s %10s\n", p, "(copied)")
	}
	fmt.Printf("Built client in %s mode for %s in %s.\n",
		displayMode(cfg.Mode), buildconfig.ServerURL(cfg.Mode), res.Duration.Round(time.Millisecond))
}

func displayMode(mode string) string {
	if buildconfig.IsProduction(mode) {
		return buildconfig.Production
	}
	return buildconfig.Development
}

func init() {
	buildCmd.Flags().BoolVar(&minify, "minify", false, "minify output (default true in production)")
	buildCmd.Flags().BoolVar(&sourcemap, "sourcemap", false, "emit inline sourcemaps (default true outside production)")
	root.Cmd.AddCommand(buildCmd)
}
