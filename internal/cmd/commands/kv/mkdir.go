package kv

import (
	"context"
	"flag"
	"fmt"

	"github.com/linkorb/etcdkv-go/internal/cmd/base"
)

type MkdirCommand struct {
	clientCommand

	flagTTL     int64
	flagInOrder bool
}

// NewMkdirCommand builds the mkdir command with the shared CLI dependencies.
func NewMkdirCommand(b *base.Command) *MkdirCommand {
	return &MkdirCommand{clientCommand: clientCommand{Command: b}}
}

func (c *MkdirCommand) Synopsis() string {
	return "Create a directory, failing if it already exists"
}

func (c *MkdirCommand) Help() string {
	return `Usage: etcdkv mkdir <key>

  Creates a directory at the key, failing when a node is already
  present there. With -in-order the directory is appended under the key
  with an ordered, auto-generated suffix.` +
		c.Flags().Help()
}

func (c *MkdirCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("mkdir", flag.ContinueOnError))
	c.clientFlags(f)
	f.Int64Var(
		&c.flagTTL, "ttl", 0, "Seconds until the directory expires (0 means no expiry).",
	)
	f.BoolVar(
		&c.flagInOrder, "in-order", false, "Append under the directory with an ordered key.",
	)
	return f
}

func (c *MkdirCommand) Run(args []string) int {
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

	ctx := context.Background()
	var key string
	if c.flagInOrder {
		resp, err := client.MkdirInOrder(ctx, flags.Arg(0), c.flagTTL)
		if err != nil {
			c.UI.Error(err.Error())
			return 1
		}
		key = resp.Node.Key
	} else {
		resp, err := client.Mkdir(ctx, flags.Arg(0), c.flagTTL)
		if err != nil {
			c.UI.Error(err.Error())
			return 1
		}
		key = resp.Node.Key
	}
	c.UI.Output(key)
	return 0
}
