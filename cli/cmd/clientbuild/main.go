package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"clientbuild.dev/cli/cmd/clientbuild/cmdutil"
	"clientbuild.dev/cli/cmd/clientbuild/root"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if err := root.Cmd.Execute(); err != nil {
		cmdutil.Fatal(err)
	}
}
