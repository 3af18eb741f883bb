package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/asencis/datacite-go/internal/cmd/base"
	"github.com/asencis/datacite-go/internal/cmd/commands/doi"
	"github.com/asencis/datacite-go/internal/cmd/commands/heartbeat"
	"github.com/asencis/datacite-go/internal/cmd/commands/report"
	versioncmd "github.com/asencis/datacite-go/internal/cmd/commands/version"
)

// Commands is the mapping of all available CLI commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	Commands = map[string]cli.CommandFactory{
		"doi": func() (cli.Command, error) {
			return &doi.Command{Command: base.NewCommand(log, ui)}, nil
		},
		"doi mint": func() (cli.Command, error) {
			return &doi.MintCommand{Command: base.NewCommand(log, ui)}, nil
		},
		"doi get": func() (cli.Command, error) {
			return &doi.GetCommand{Command: base.NewCommand(log, ui)}, nil
		},
		"doi delete": func() (cli.Command, error) {
			return &doi.DeleteCommand{Command: base.NewCommand(log, ui)}, nil
		},
		"doi validate": func() (cli.Command, error) {
			return &doi.ValidateCommand{Command: base.NewCommand(log, ui)}, nil
		},
		"reports": func() (cli.Command, error) {
			return &report.Command{Command: base.NewCommand(log, ui)}, nil
		},
		"reports submit": func() (cli.Command, error) {
			return &report.SubmitCommand{Command: base.NewCommand(log, ui)}, nil
		},
		"heartbeat": func() (cli.Command, error) {
			return &heartbeat.Command{Command: base.NewCommand(log, ui)}, nil
		},
		"version": func() (cli.Command, error) {
			return &versioncmd.Command{Command: base.NewCommand(log, ui)}, nil
		},
	}
}
