// Package driving provides interfaces for inbound adapters
// (primary ports): the operations the CLI and watcher invoke.
package driving
