package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"clientbuild.dev/cli/cmd/clientbuild/cmdutil"
	"clientbuild.dev/cli/cmd/clientbuild/root"
	"clientbuild.dev/internal/env"
	"clientbuild.dev/pkg/buildconfig"
	"clientbuild.dev/pkg/bundler"
	"clientbuild.dev/pkg/devserver"
	"clientbuild.dev/pkg/environ"
)

var (
	devHost string
	devPort int
)

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Serves the web client and rebuilds it on changes",
	Long: `Serves the web client and rebuilds it whenever its sources change.

The build mode is read from the NODE_ENV environment variable and defaults
to "development" when unset.`,
	Args: cobra.NoArgs,

	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		e := environ.OS()
		projectRoot, project := cmdutil.MustProject(e)
		cfg := buildconfig.New(env.Mode(e, buildconfig.Development))

		host, port := project.Dev.Host, project.Dev.Port
		if cmd.Flags().Changed("host") {
			host = devHost
		}
		if cmd.Flags().Changed("port") {
			port = devPort
		}

		err := devserver.Run(ctx, devserver.Options{
			Bundle: bundler.DefaultOptions(projectRoot, project, cfg),
			Host:   host,
			Port:   port,
			Ready: func(r bundler.ServeResult) {
				green := color.New(color.FgGreen)
				_, _ = green.Printf("Client running at http://%s:%d\n", r.Host, r.Port)
				fmt.Printf("API server: %s\n", buildconfig.ServerURL(cfg.Mode))
			},
		})
		if err != nil {
			cmdutil.Fatal(err)
		}
	},
}

func init() {
	devCmd.Flags().StringVar(&devHost, "host", "", "host to listen on (default from clientbuild.toml)")
	devCmd.Flags().IntVar(&devPort, "port", 0, "port to listen on (default from clientbuild.toml)")
	root.Cmd.AddCommand(devCmd)
}
