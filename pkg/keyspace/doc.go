// Package keyspace provides a client for a hierarchical key-value store
// exposed over the etcd v2 keys API. Keys are organized like filesystem
// paths under a configurable namespace root; each node is either a leaf
// value or a directory of child nodes, with optional per-key expiration
// and optimistic-concurrency preconditions on writes. The public API
// centres around the Client type, which exposes conditional get/set/
// create/update/delete operations over keys and directories plus the
// Ls/Values listing helpers that materialize a directory tree into
// directory-path and key-value collections.
package keyspace
