package kv

import (
	"context"
	"flag"
	"fmt"

	"github.com/linkorb/etcdkv-go/internal/cmd/base"
)

type MkCommand struct {
	clientCommand

	flagTTL     int64
	flagInOrder bool
}

// NewMkCommand builds the mk command with the shared CLI dependencies.
func NewMkCommand(b *base.Command) *MkCommand {
	return &MkCommand{clientCommand: clientCommand{Command: b}}
}

func (c *MkCommand) Synopsis() string {
	return "Create a key, failing if it already exists"
}

func (c *MkCommand) Help() string {
	return `Usage: etcdkv mk <key> <value>

  Creates the key with the value. The command fails when the key is
  already present. With -in-order the key names a directory and the new
  entry is appended under it with an ordered, auto-generated suffix.` +
		c.Flags().Help()
}

func (c *MkCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("mk", flag.ContinueOnError))
	c.clientFlags(f)
	f.Int64Var(
		&c.flagTTL, "ttl", 0, "Seconds until the key expires (0 means no expiry).",
	)
	f.BoolVar(
		&c.flagInOrder, "in-order", false, "Append under the directory with an ordered key.",
	)
	return f
}

func (c *MkCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if flags.NArg() != 2 {
		c.UI.Error("key and value arguments are required")
		return 1
	}

	client, err := c.client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	ctx := context.Background()
	if c.flagInOrder {
		resp, err := client.CreateInOrder(ctx, flags.Arg(0), flags.Arg(1), c.flagTTL)
		if err != nil {
			c.UI.Error(err.Error())
			return 1
		}
		c.UI.Output(resp.Node.Key)
		return 0
	}

	resp, err := client.Create(ctx, flags.Arg(0), flags.Arg(1), c.flagTTL)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	c.UI.Output(resp.Node.Value)
	return 0
}
