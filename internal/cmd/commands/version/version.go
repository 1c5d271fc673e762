// Package version implements the etcdkv version subcommand.
package version

import (
	"context"
	"flag"
	"fmt"

	"github.com/linkorb/etcdkv-go/internal/cmd/base"
	buildversion "github.com/linkorb/etcdkv-go/internal/version"
	"github.com/linkorb/etcdkv-go/pkg/keyspace"
)

type VersionCommand struct {
	*base.Command

	flagEndpoint string
}

func (c *VersionCommand) Synopsis() string {
	return "Print client and server versions"
}

func (c *VersionCommand) Help() string {
	return `Usage: etcdkv version

  Prints the etcdkv version and, when a server is reachable, the store's
  server and cluster versions.` +
		c.Flags().Help()
}

func (c *VersionCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("version", flag.ContinueOnError))
	f.StringVar(
		&c.flagEndpoint, "endpoint", "", "Store base URL to query for the server version.",
	)
	return f
}

func (c *VersionCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	c.UI.Output("etcdkv " + buildversion.Version)

	client, err := keyspace.New(c.flagEndpoint)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	info, err := client.Version(context.Background())
	if err != nil {
		c.UI.Warn(fmt.Sprintf("server unreachable: %v", err))
		return 0
	}
	if parsed, err := info.ServerVersion(); err == nil {
		c.UI.Output(fmt.Sprintf("server %s (cluster %s)", parsed, info.Cluster))
	} else {
		c.UI.Output(fmt.Sprintf("server %s (cluster %s)", info.Server, info.Cluster))
	}
	return 0
}
