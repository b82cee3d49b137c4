// Package cmd implements the pyexpr subcommands: eval, fmt, filter, repl and
// init.
//
// Commands receive a [context.Context] carrying the parsed [kong.Context],
// the [Engine] that evaluates expressions, and the standard streams they
// read from and write to. Hosts and tests install these with [WithContext],
// [WithEngine] and [WithStreams].
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
