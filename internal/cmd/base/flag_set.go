package base

import (
	"flag"
	"fmt"
	"strings"

	"github.com/mitchellh/go-wordwrap"
)

// FlagSet wraps the standard library flag set with help rendering that
// matches the command help texts. Usage strings may carry an [ENV_VAR]
// marker naming the environment variable that fills the flag when it is
// left empty.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet wraps f. The flag set's own usage output is silenced since
// commands render help themselves.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	f.Usage = func() {}
	return &FlagSet{FlagSet: f}
}

// Help renders the option block for appending to a command's help text.
func (f *FlagSet) Help() string {
	var b strings.Builder
	b.WriteString("\n\nOptions:\n")

	f.VisitAll(func(fl *flag.Flag) {
		fmt.Fprintf(&b, "\n  -%s", fl.Name)
		if def := fl.DefValue; def != "" && def != "false" {
			fmt.Fprintf(&b, " (default: %s)", def)
		}
		b.WriteString("\n")

		usage := strings.Join(strings.Fields(fl.Usage), " ")
		for _, line := range strings.Split(wordwrap.WrapString(usage, 68), "\n") {
			fmt.Fprintf(&b, "      %s\n", line)
		}
	})

	return b.String()
}
