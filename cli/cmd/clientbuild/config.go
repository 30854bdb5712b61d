package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"clientbuild.dev/cli/cmd/clientbuild/cmdutil"
	"clientbuild.dev/cli/cmd/clientbuild/root"
	"clientbuild.dev/internal/env"
	"clientbuild.dev/pkg/buildconfig"
	"clientbuild.dev/pkg/environ"
)

var configOutput = cmdutil.Oneof{
	Value:   "text",
	Allowed: []string{"text", "json"},
	Desc:    "Output format of the configuration",
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Prints the build configuration for the current NODE_ENV",
	Args:  cobra.NoArgs,

	Run: func(cmd *cobra.Command, args []string) {
		e := environ.OS()
		cfg := buildconfig.FromEnviron(e)
		if err := renderConfig(os.Stdout, cfg, env.List(e), configOutput.Value); err != nil {
			cmdutil.Fatal(err)
		}
	},
}

type configJSON struct {
	Mode      string            `json:"mode"`
	ServerURL string            `json:"server_url"`
	Plugins   []string          `json:"plugins"`
	Defines   map[string]string `json:"defines"`

	// Environment lists the environment variables affecting the build.
	Environment []string `json:"environment"`
}

func renderConfig(w io.Writer, cfg *buildconfig.BuildConfig, environment []string, format string) error {
	if format == "json" {
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(configJSON{
			Mode:      cfg.Mode,
			ServerURL: buildconfig.ServerURL(cfg.Mode),
			Plugins:   cfg.PluginNames(),
			Defines:   cfg.Defines,

			Environment: environment,
		})
	}

	mode := cfg.Mode
	if mode == "" {
		mode = "(unset)"
	}
	fmt.Fprintf(w, "mode:       %s\n", mode)
	fmt.Fprintf(w, "server url: %s\n", buildconfig.ServerURL(cfg.Mode))
	fmt.Fprintf(w, "plugins:\n")
	for _, name := range cfg.PluginNames() {
		fmt.Fprintf(w, "  - %s\n", name)
	}
	fmt.Fprintf(w, "defines:\n")
	keys := make([]string, 0, len(cfg.Defines))
	for k := range cfg.Defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %s\n", k, cfg.Defines[k])
	}
	fmt.Fprintf(w, "environment:\n")
	for _, kv := range environment {
		fmt.Fprintf(w, "  %s\n", kv)
	}
	return nil
}

func init() {
	configOutput.AddFlag(configCmd)
	root.Cmd.AddCommand(configCmd)
}
