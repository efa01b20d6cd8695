// Package config holds respkv-cli defaults stored in ~/.respkv/cli.yaml.
//
// Flags and RESPKV_CLI_* environment variables override the file; the
// file overrides the built-in defaults.
package config
