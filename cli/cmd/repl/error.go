package repl

import "github.com/ardnew/pyexpr/lang"

// Sentinel errors.
var (
	ErrOutOfBounds    = lang.NewError("history index out of range")
	ErrInvalidBinding = lang.NewError("invalid binding (want NAME = EXPR)")
	ErrUnknownCommand = lang.NewError("unknown command (try 'help')")
	ErrEditDeclined   = lang.NewError("edit declined")
	ErrEditNotMapping = lang.NewError("edited context must be a dict with string keys")
)
