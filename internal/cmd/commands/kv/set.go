package kv

import (
	"context"
	"flag"
	"fmt"

	"github.com/linkorb/etcdkv-go/internal/cmd/base"
	"github.com/linkorb/etcdkv-go/pkg/keyspace"
)

type SetCommand struct {
	clientCommand

	flagTTL       int64
	flagSwapValue string
	flagSwapIndex uint64
}

// NewSetCommand builds the set command with the shared CLI dependencies.
func NewSetCommand(b *base.Command) *SetCommand {
	return &SetCommand{clientCommand: clientCommand{Command: b}}
}

func (c *SetCommand) Synopsis() string {
	return "Store a value at a key"
}

func (c *SetCommand) Help() string {
	return `Usage: etcdkv set <key> <value>

  Stores the value at the key, creating or replacing it. Optional
  compare-and-swap predicates restrict the write to a known prior state.` +
		c.Flags().Help()
}

func (c *SetCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("set", flag.ContinueOnError))
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

func (c *SetCommand) Run(args []string) int {
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

	resp, err := client.Set(context.Background(), flags.Arg(0), flags.Arg(1), &keyspace.SetOptions{
		TTL: c.flagTTL,
		Condition: keyspace.Condition{
			PrevValue: c.flagSwapValue,
			PrevIndex: c.flagSwapIndex,
		},
	})
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	c.UI.Output(resp.Node.Value)
	return 0
}
