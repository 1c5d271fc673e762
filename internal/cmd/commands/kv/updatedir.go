package kv

import (
	"context"
	"flag"
	"fmt"

	"github.com/linkorb/etcdkv-go/internal/cmd/base"
)

type UpdateDirCommand struct {
	clientCommand

	flagTTL int64
}

// NewUpdateDirCommand builds the updatedir command with the shared CLI dependencies.
func NewUpdateDirCommand(b *base.Command) *UpdateDirCommand {
	return &UpdateDirCommand{clientCommand: clientCommand{Command: b}}
}

func (c *UpdateDirCommand) Synopsis() string {
	return "Refresh the TTL of an existing directory"
}

func (c *UpdateDirCommand) Help() string {
	return `Usage: etcdkv updatedir -ttl <seconds> <key>

  Refreshes the TTL of an existing directory. The TTL flag is mandatory.` +
		c.Flags().Help()
}

func (c *UpdateDirCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("updatedir", flag.ContinueOnError))
	c.clientFlags(f)
	f.Int64Var(
		&c.flagTTL, "ttl", 0, "(Required) Seconds until the directory expires.",
	)
	return f
}

func (c *UpdateDirCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if flags.NArg() != 1 {
		c.UI.Error("exactly one key argument is required")
		return 1
	}

	client, err := c.client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	resp, err := client.UpdateDir(context.Background(), flags.Arg(0), c.flagTTL)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	c.UI.Output(resp.Node.Key)
	return 0
}
