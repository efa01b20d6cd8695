// Package output renders server replies for respkv-cli.
//
// Three formats are supported:
//
//   - text: the redis-cli layout ("value", (integer) 1, (nil), 1) ...)
//   - json: replies converted to plain values, indented
//   - yaml: the same values encoded with gopkg.in/yaml.v3
package output
