package kv

import (
	"context"
	"flag"
	"fmt"

	"github.com/linkorb/etcdkv-go/internal/cmd/base"
)

type RmCommand struct {
	clientCommand

	flagDir       bool
	flagRecursive bool
}

// NewRmCommand builds the rm command with the shared CLI dependencies.
func NewRmCommand(b *base.Command) *RmCommand {
	return &RmCommand{clientCommand: clientCommand{Command: b}}
}

func (c *RmCommand) Synopsis() string {
	return "Remove a key or directory"
}

func (c *RmCommand) Help() string {
	return `Usage: etcdkv rm <key>

  Removes the leaf at the key. With -dir the key must be a directory;
  -recursive removes the directory's contents as well.` +
		c.Flags().Help()
}

func (c *RmCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("rm", flag.ContinueOnError))
	c.clientFlags(f)
	f.BoolVar(
		&c.flagDir, "dir", false, "Remove a directory instead of a leaf.",
	)
	f.BoolVar(
		&c.flagRecursive, "recursive", false, "Remove the directory contents as well.",
	)
	return f
}

func (c *RmCommand) Run(args []string) int {
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
	key := flags.Arg(0)
	if c.flagDir || c.flagRecursive {
		if _, err := client.DeleteDir(ctx, key, c.flagRecursive); err != nil {
			c.UI.Error(err.Error())
			return 1
		}
	} else {
		if _, err := client.Delete(ctx, key); err != nil {
			c.UI.Error(err.Error())
			return 1
		}
	}
	c.UI.Output(fmt.Sprintf("removed %s", key))
	return 0
}
