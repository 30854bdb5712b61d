package cmdutil

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/spf13/cobra"
)

func TestOneof(t *testing.T) {
	c := qt.New(t)

	o := &Oneof{Value: "text", Allowed: []string{"text", "json"}}
	c.Assert(o.Usage(), qt.Equals, `Output format. One of ("text" or "json").`)
	c.Assert(o.Set("yaml"), qt.ErrorMatches, `must be one of "text" or "json"`)
	c.Assert(o.Set("json"), qt.IsNil)
	c.Assert(o.String(), qt.Equals, "json")

	three := &Oneof{Allowed: []string{"a", "b", "c"}, Desc: "Layout"}
	c.Assert(three.Usage(), qt.Equals, `Layout. One of ("a", "b", or "c").`)
	c.Assert(three.Type(), qt.Equals, "format")
}

func TestOneofAddFlag(t *testing.T) {
	c := qt.New(t)

	o := &Oneof{Value: "text", Allowed: []string{"text", "json"}}
	cmd := &cobra.Command{Use: "test"}
	o.AddFlag(cmd)

	c.Assert(cmd.Flags().Parse([]string{"-o", "json"}), qt.IsNil)
	c.Assert(o.Value, qt.Equals, "json")
	c.Assert(cmd.Flags().Parse([]string{"--output=xml"}), qt.ErrorMatches, `.*must be one of "text" or "json"`)
}
