package keyspace

import (
	"context"
	"fmt"
)

// Ls lists the directory paths below key in document order. The listed
// directory itself is excluded; leaves are never reported as directories.
// Each call performs a fresh listing: nothing is cached between calls.
func (c *Client) Ls(ctx context.Context, key string, recursive bool) ([]string, error) {
	resp, err := c.ListDir(ctx, key, recursive)
	if err != nil {
		return nil, err
	}
	dirs, _ := flatten(resp.Node)
	return dirs, nil
}

// Values maps every leaf key below root to its value. Each call performs a
// fresh listing and rebuilds the map from scratch.
func (c *Client) Values(ctx context.Context, root string, recursive bool) (map[string]string, error) {
	resp, err := c.ListDir(ctx, root, recursive)
	if err != nil {
		return nil, err
	}
	_, values := flatten(resp.Node)
	return values, nil
}

// FindValue performs a fresh listing below root and returns the value of
// the single leaf at key, reporting ErrKeyNotFound when the key is not
// part of the listing.
func (c *Client) FindValue(ctx context.Context, root, key string, recursive bool) (string, error) {
	values, err := c.Values(ctx, root, recursive)
	if err != nil {
		return "", err
	}
	value, ok := values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return value, nil
}

// flatten materializes one node tree into the ordered directory paths and
// the leaf key-to-value map, visiting children depth-first in the order the
// server returned them. The traversal root itself is never listed. A
// malformed node claiming both dir and a value is treated as a directory
// and its value is dropped. All state is call-local.
func flatten(root *Node) ([]string, map[string]string) {
	var dirs []string
	values := make(map[string]string)
	if root == nil {
		return dirs, values
	}
	for _, child := range root.Nodes {
		dirs = walk(child, dirs, values)
	}
	return dirs, values
}

func walk(n *Node, dirs []string, values map[string]string) []string {
	if n == nil {
		return dirs
	}
	if n.Dir {
		dirs = append(dirs, n.Key)
		for _, child := range n.Nodes {
			dirs = walk(child, dirs, values)
		}
		return dirs
	}
	values[n.Key] = n.Value
	return dirs
}
