package bundler

import (
	"strconv"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// BuildError is returned when esbuild reports errors for a build.
type BuildError struct {
	// Messages are the formatted esbuild error messages.
	Messages []string
}

func newBuildError(msgs []api.Message) *BuildError {
	return &BuildError{Messages: formatMessages(msgs, api.ErrorMessage)}
}

func (e *BuildError) Error() string {
	if len(e.Messages) == 1 {
		return "build failed:\n" + e.Messages[0]
	}
	var b strings.Builder
	b.WriteString("build failed with ")
	b.WriteString(plural(len(e.Messages), "error"))
	b.WriteString(":\n")
	for _, m := range e.Messages {
		b.WriteString(m)
	}
	return b.String()
}

func formatMessages(msgs []api.Message, kind api.MessageKind) []string {
	if len(msgs) == 0 {
		return nil
	}
	return api.FormatMessages(msgs, api.FormatMessagesOptions{
		Kind:          kind,
		TerminalWidth: 100,
	})
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
