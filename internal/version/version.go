// Package version records the CLI release version.
package version

// Version is the etcdkv release version.
const Version = "0.9.0"
