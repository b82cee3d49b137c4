// Package cli contains the command line interface of pyexpr.
//
// # Commands
//
//	pyexpr [eval] EXPR...            evaluate expressions (the default command)
//	pyexpr fmt [native|json|yaml|ast|tokens] [SOURCE]
//	pyexpr filter DOMAIN -r RECORDS  print the records a domain matches
//	pyexpr repl                      start an interactive session
//	pyexpr init                      write the configuration file
//
// # Configuration
//
// Flags may be set in $XDG_CONFIG_HOME/pyexpr/config, a file holding one
// dict expression evaluated with the default builtins. Keys are flag names
// with hyphens or underscores; a nested dict keyed by a command name holds
// flags of that command:
//
//	{
//	  'log_level': 'debug',
//	  'timezone': 'Europe/Brussels',
//	  'eval': {'output': 'json'},
//	}
//
// A JSON file of the same name with a .json extension is read as well.
// Command-line flags override both. "pyexpr init" writes the current values
// of the global flags in this format.
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: output format (text, json)
//   - --log-time-layout: timestamp layout (RFC3339, Kitchen, none, ...)
//   - --log-caller: include caller information
//   - --[no-]log-pretty: colorized output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: allocs, block, clock, cpu, goroutine, heap, mem, mutex,
//     thread or trace
//   - --pprof-dir: output directory (default ~/.cache/pyexpr/pprof)
package cli
