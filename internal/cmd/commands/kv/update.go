package kv

import (
	"context"
	"flag"
	"fmt"

	"github.com/linkorb/etcdkv-go/internal/cmd/base"
	"github.com/linkorb/etcdkv-go/pkg/keyspace"
)

type UpdateCommand struct {
	clientCommand

	flagTTL       int64
	flagSwapValue string
	flagSwapIndex uint64
}

// NewUpdateCommand builds the update command with the shared CLI dependencies.
func NewUpdateCommand(b *base.Command) *UpdateCommand {
	return &UpdateCommand{clientCommand: clientCommand{Command: b}}
}

func (c *UpdateCommand) Synopsis() string {
	return "Replace the value of an existing key"
}

func (c *UpdateCommand) Help() string {
	return `Usage: etcdkv update <key> <value>

  Replaces the value of the key, failing when the key does not exist.
  Optional compare-and-swap predicates restrict the write further.` +
		c.Flags().Help()
}

func (c *UpdateCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("update", flag.ContinueOnError))
	c.clientFlags(f)
	f.Int64Var(
		&c.flagTTL, "ttl", 0, "Seconds until the key expires (0 means no expiry).",
	)
	f.StringVar(
		&c.flagSwapValue, "swap-with-value", "", "Only write if the current value matches.",
	)
	f.Uint64Var(
		&c.flagSwapIndex, "swap-with-index", 0, "Only write if the current modified index matches.",
	)
	return f
}

func (c *UpdateCommand) Run(args []string) int {
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

	resp, err := client.Update(context.Background(), flags.Arg(0), flags.Arg(1), c.flagTTL, keyspace.Condition{
		PrevValue: c.flagSwapValue,
		PrevIndex: c.flagSwapIndex,
	})
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	c.UI.Output(resp.Node.Value)
	return 0
}
