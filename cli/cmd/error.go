package cmd

import "github.com/ardnew/pyexpr/lang"

// Errors returned by commands. Evaluation failures keep their [lang] error
// class; these cover the plumbing around them.
var (
	ErrReadInput         = lang.ErrReadInput
	ErrDecode            = lang.NewError("decode input")
	ErrDecodeContext     = ErrDecode.Subclass("context must be a mapping keyed by names")
	ErrDecodeRecords     = ErrDecode.Subclass("records must be a list of mappings")
	ErrInvalidDefinition = lang.NewError("invalid definition (want NAME=EXPR)")
	ErrEncode            = lang.NewError("encode output")
	ErrWriteOutput       = lang.NewError("write output")
	ErrWriteConfig       = lang.NewError("write configuration file")
	ErrFileExists        = lang.NewError("file exists (use --force to overwrite)")
)
