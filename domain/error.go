package domain

import "github.com/ardnew/pyexpr/lang"

// Domain errors. Each belongs to an engine error class, so callers can
// handle them with the same taxonomy as evaluation errors.
var (
	ErrInvalidDomain   = lang.ErrType.Subclass("invalid domain")
	ErrInvalidTerm     = lang.ErrType.Subclass("invalid domain term")
	ErrUnknownOperator = lang.ErrType.Subclass("unknown domain operator")
	ErrArity           = lang.ErrType.Subclass("domain operator is missing operands")
	ErrCompile         = lang.ErrType.Subclass("domain compilation failed")
	ErrMatch           = lang.ErrType.Subclass("domain evaluation failed")
	ErrHierarchy       = lang.ErrNotImplemented.Subclass("hierarchy operators need parent data")
)
