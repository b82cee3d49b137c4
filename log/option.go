package log

import "io"

// Option configures a [Logger].
type Option func(*config)

// WithOutput sets the destination of log records. A nil writer discards
// them.
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.output = w }
}

// WithLevel sets the minimum level of emitted records.
func WithLevel(level Level) Option {
	return func(c *config) { c.level = level }
}

// WithFormat sets the record encoding.
func WithFormat(format Format) Option {
	return func(c *config) { c.format = format }
}

// WithTimeLayout sets the timestamp layout. Named layouts such as
// "RFC3339Nano" or "kitchen" are recognized case-insensitively; an empty
// layout omits timestamps.
func WithTimeLayout(layout string) Option {
	return func(c *config) { c.layout = timeLayout(layout) }
}

// WithCaller includes the source location of each call.
func WithCaller(enable bool) Option {
	return func(c *config) { c.caller = enable }
}

// WithPretty colorizes text output for terminals.
func WithPretty(enable bool) Option {
	return func(c *config) { c.pretty = enable }
}
