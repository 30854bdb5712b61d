package root

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var Verbosity int

var Cmd = &cobra.Command{
	Use:           "clientbuild",
	Short:         "clientbuild builds and serves the web client",
	SilenceErrors: true, // We'll handle displaying an error in our main func
	SilenceUsage:  true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true, // Hide the "completion" command from help (used for generating auto-completions for the shell)
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Logger = log.Logger.Level(LogLevel(Verbosity))
	},
}

// LogLevel maps the number of -v flags to a log level.
func LogLevel(verbosity int) zerolog.Level {
	switch {
	case verbosity >= 2:
		return zerolog.TraceLevel
	case verbosity == 1:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

func init() {
	Cmd.PersistentFlags().CountVarP(&Verbosity, "verbose", "v", "verbose output")
}
