package kv

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/linkorb/etcdkv-go/internal/cmd/base"
	"github.com/linkorb/etcdkv-go/pkg/keyspace"
)

type LsCommand struct {
	clientCommand

	flagRecursive bool
	flagLong      bool
}

// NewLsCommand builds the ls command with the shared CLI dependencies.
func NewLsCommand(b *base.Command) *LsCommand {
	return &LsCommand{clientCommand: clientCommand{Command: b}}
}

func (c *LsCommand) Synopsis() string {
	return "List a directory"
}

func (c *LsCommand) Help() string {
	return `Usage: etcdkv ls [<key>]

  Lists the directory at the key (default "/"). Directories are suffixed
  with "/"; -l adds values and expiration details.` +
		c.Flags().Help()
}

func (c *LsCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("ls", flag.ContinueOnError))
	c.clientFlags(f)
	f.BoolVar(
		&c.flagRecursive, "recursive", false, "Descend into subdirectories.",
	)
	f.BoolVar(
		&c.flagLong, "l", false, "Long listing with values and expiry.",
	)
	return f
}

func (c *LsCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	key := "/"
	if flags.NArg() > 1 {
		c.UI.Error("at most one key argument is allowed")
		return 1
	}
	if flags.NArg() == 1 {
		key = flags.Arg(0)
	}

	client, err := c.client()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	resp, err := client.ListDir(context.Background(), key, c.flagRecursive)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	c.print(resp.Node)
	return 0
}

func (c *LsCommand) print(n *keyspace.Node) {
	if n == nil {
		return
	}
	for _, child := range n.Nodes {
		if child.Dir {
			c.UI.Output(child.Key + "/")
			c.print(child)
			continue
		}
		if c.flagLong {
			c.UI.Output(fmt.Sprintf("%s\t%s%s", child.Key, child.Value, expiry(child)))
		} else {
			c.UI.Output(child.Key)
		}
	}
}

func expiry(n *keyspace.Node) string {
	if n.Expiration == nil {
		return ""
	}
	return fmt.Sprintf("\texpires %s", humanize.Time(n.Expiration.In(time.Local)))
}
