// Package profile optionally profiles the pyexpr command with
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the pprof build tag:
//
//	go build -tags pprof .
//	pyexpr --pprof-mode cpu eval "sum([1, 2, 3])"
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a no-op,
// so callers never need their own build constraints.
//
// Supported modes with the tag are allocs, block, clock, cpu, goroutine,
// heap, mem, mutex, thread and trace. Output is written under
// [Profiler.Dir], or the working directory when it is empty.
package profile
