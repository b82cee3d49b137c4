// Package log is a small leveled logger over [log/slog].
//
// A [Logger] is immutable: options are applied when it is made, and
// [Logger.Wrap] and [Logger.With] return new loggers. The zero Logger
// discards every record, which lets packages hold one in their options
// without checking for nil.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON))
//	logger.Info("evaluated", slog.String("source", src))
//
// Besides slog's levels there is [LevelTrace], used for parser and
// evaluator internals.
//
// The package-level functions log through a default logger writing text to
// standard error; [Config] reconfigures it. Functions without a context
// argument use [DefaultContextProvider].
//
// Text output may be colorized with [WithPretty]. Colors follow the
// capabilities of the output writer.
package log
