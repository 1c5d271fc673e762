package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/linkorb/etcdkv-go/internal/cmd/base"
	"github.com/linkorb/etcdkv-go/internal/cmd/commands/kv"
	"github.com/linkorb/etcdkv-go/internal/cmd/commands/version"
)

// Commands maps subcommand names to their factories.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	b := &base.Command{UI: ui, Log: log}

	Commands = map[string]cli.CommandFactory{
		"get": func() (cli.Command, error) {
			return kv.NewGetCommand(b), nil
		},
		"set": func() (cli.Command, error) {
			return kv.NewSetCommand(b), nil
		},
		"mk": func() (cli.Command, error) {
			return kv.NewMkCommand(b), nil
		},
		"mkdir": func() (cli.Command, error) {
			return kv.NewMkdirCommand(b), nil
		},
		"update": func() (cli.Command, error) {
			return kv.NewUpdateCommand(b), nil
		},
		"updatedir": func() (cli.Command, error) {
			return kv.NewUpdateDirCommand(b), nil
		},
		"rm": func() (cli.Command, error) {
			return kv.NewRmCommand(b), nil
		},
		"ls": func() (cli.Command, error) {
			return kv.NewLsCommand(b), nil
		},
		"version": func() (cli.Command, error) {
			return &version.VersionCommand{Command: b}, nil
		},
	}
}
