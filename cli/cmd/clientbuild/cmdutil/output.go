package cmdutil

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Oneof is an --output/-o flag value restricted to a fixed set of alternatives.
type Oneof struct {
	Value   string
	Allowed []string
	Desc    string // usage desc
}

func (o *Oneof) AddFlag(cmd *cobra.Command) {
	cmd.Flags().AddFlag(
		&pflag.Flag{
			Name:      "output",
			Shorthand: "o",
			Usage:     o.Usage(),
			Value:     o,
			DefValue:  o.String(),
		})
	_ = cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return o.Allowed, cobra.ShellCompDirectiveNoFileComp
	})
}

func (o *Oneof) String() string {
	return o.Value
}

func (o *Oneof) Type() string {
	return "format"
}

func (o *Oneof) Set(v string) error {
	if slices.Contains(o.Allowed, v) {
		o.Value = v
		return nil
	}

	var b strings.Builder
	b.WriteString("must be one of ")
	o.oneOf(&b)
	return errors.New(b.String())
}

func (o *Oneof) Usage() string {
	var b strings.Builder
	desc := o.Desc
	if desc == "" {
		desc = "Output format"
	}
	b.WriteString(desc + ". One of (")
	o.oneOf(&b)
	b.WriteString(").")
	return b.String()
}

func (o *Oneof) oneOf(b *strings.Builder) {
	n := len(o.Allowed)
	for i, s := range o.Allowed {
		if i > 0 {
			switch {
			case n == 2:
				b.WriteString(" or ")
			case i == n-1:
				b.WriteString(", or ")
			default:
				b.WriteString(", ")
			}
		}
		b.WriteString(strconv.Quote(s))
	}
}
