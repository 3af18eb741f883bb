// Package base carries the pieces every CLI command shares: the UI the
// command talks to the user through and the logger it hands down into
// the packages it drives.
package base

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

// Command is embedded in every CLI command.
type Command struct {
	// UI is used for command output to the user.
	UI cli.Ui

	// Log is the structured logger commands pass into client packages.
	Log hclog.Logger
}

// NewCommand builds the shared command base.
func NewCommand(log hclog.Logger, ui cli.Ui) *Command {
	return &Command{
		UI:  ui,
		Log: log,
	}
}
