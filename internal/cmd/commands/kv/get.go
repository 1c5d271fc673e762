package kv

import (
	"context"
	"flag"
	"fmt"

	"github.com/linkorb/etcdkv-go/internal/cmd/base"
)

type GetCommand struct {
	clientCommand
}

// NewGetCommand builds the get command with the shared CLI dependencies.
func NewGetCommand(b *base.Command) *GetCommand {
	return &GetCommand{clientCommand: clientCommand{Command: b}}
}

func (c *GetCommand) Synopsis() string {
	return "Retrieve the value stored at a key"
}

func (c *GetCommand) Help() string {
	return `Usage: etcdkv get <key>

  Retrieves the leaf value stored at the key, resolved under the
  configured namespace root.` +
		c.Flags().Help()
}

func (c *GetCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("get", flag.ContinueOnError))
	c.clientFlags(f)
	return f
}

func (c *GetCommand) Run(args []string) int {
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

	value, err := client.Get(context.Background(), flags.Arg(0))
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	c.UI.Output(value)
	return 0
}
