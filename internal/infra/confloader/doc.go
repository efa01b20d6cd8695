// Package confloader provides configuration loading mechanism.
//
// This package implements a configuration loader that supports multiple
// sources using koanf as the underlying library.
//
// Features:
//
//   - Multiple Sources: YAML files, environment variables, .env files, maps
//   - Watch Support: debounced change notification for config files (fsnotify)
//   - Type Safety: Unmarshaling into typed structs
//   - Defaults: values already set on the target survive missing keys
//
// Priority (highest to lowest):
//
//  1. Command-line flags (LoadMap)
//  2. Environment variables
//  3. Configuration files
//  4. Default values
package confloader
