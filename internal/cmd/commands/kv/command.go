// Package kv implements the etcdkv key-space subcommands.
package kv

import (
	"time"

	"github.com/linkorb/etcdkv-go/internal/cliconfig"
	"github.com/linkorb/etcdkv-go/internal/cmd/base"
	"github.com/linkorb/etcdkv-go/internal/httpx"
	"github.com/linkorb/etcdkv-go/pkg/keyspace"
)

// clientCommand is embedded by every kv subcommand: it owns the flags that
// select the store endpoint and namespace root, and builds the client.
type clientCommand struct {
	*base.Command

	flagConfig   string
	flagEndpoint string
	flagRoot     string
}

func (c *clientCommand) clientFlags(f *base.FlagSet) {
	f.StringVar(
		&c.flagConfig, "config", "", "Path to an etcdkv YAML config file.",
	)
	f.StringVar(
		&c.flagEndpoint, "endpoint", "", "Store base URL (overrides the config file).",
	)
	f.StringVar(
		&c.flagRoot, "root", "", "Namespace root prefixed to every key (overrides the config file).",
	)
}

func (c *clientCommand) client() (*keyspace.Client, error) {
	cfg := cliconfig.Default()
	if c.flagConfig != "" {
		loaded, err := cliconfig.Load(c.flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}
	if c.flagEndpoint != "" {
		cfg.Endpoint = c.flagEndpoint
	}
	if c.flagRoot != "" {
		cfg.Root = c.flagRoot
	}

	client, err := keyspace.New(cfg.Endpoint,
		httpx.WithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second),
		httpx.WithLogger(c.Log),
	)
	if err != nil {
		return nil, err
	}
	client.SetRoot(cfg.Root)
	client.SetAPIVersion(cfg.Version)
	return client, nil
}
