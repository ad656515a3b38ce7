// Package cmd implements the command-line interface for the kdbtask
// reconciliation engine.
//
// The package is organized into several subpackages:
//
//   - apply: Run the reconciliation tasks of a YAML playbook
//   - facts: Print the configuration below a root key as JSON
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See kdbtask -help for a list of all commands.
package cmd
