// Package lang implements a restricted subset of Python expressions used to
// describe record filters ("domains") and evaluation contexts.
//
// Source text flows through a fixed pipeline:
//
//	source ─▶ Tokenize ─▶ Parse ─▶ Evaluate ─▶ Value
//
// [ParseString] combines the first two stages and caches the resulting tree,
// and [EvaluateExpr] runs the whole pipeline.
//
// # Grammar
//
// Informal EBNF, loosest binding first:
//
//	expr       → test (',' test)* [',']
//	test       → lambda | or_test ['if' or_test 'else' test]
//	lambda     → 'lambda' [NAME (',' NAME)*] ':' test
//	or_test    → and_test ('or' and_test)*
//	and_test   → not_test ('and' not_test)*
//	not_test   → 'not' not_test | comparison
//	comparison → arith (comp_op arith)*
//	comp_op    → '<' | '>' | '==' | '>=' | '<=' | '!='
//	           | 'in' | 'not' 'in' | 'is' | 'is' 'not'
//	arith      → term (('+' | '-') term)*
//	term       → factor (('*' | '/' | '//' | '%') factor)*
//	factor     → ('+' | '-') factor | power
//	power      → postfix ['**' factor]
//	postfix    → atom (call | '[' expr ']' | '.' NAME)*
//	call       → '(' [arg (',' arg)* [',']] ')'
//	arg        → test | NAME '=' test
//	atom       → NAME | NUMBER | STRING+ | 'True' | 'False' | 'None'
//	           | '(' [expr] ')' | '[' [test (',' test)* [',']] ']'
//	           | '{' [test ':' test (',' test ':' test)* [',']] '}'
//
// # Safety
//
// Expressions cannot define functions, import modules or reach host state.
// A call is only permitted when its target is a name or attribute that
// resolves to a callable supplied by the caller, either through the
// evaluation [Env] or the builtin [Registry]. Any other call is rejected with
// [ErrForbiddenCall] before its arguments are evaluated. Lambdas parse but
// fail evaluation with [ErrNotImplemented].
//
// # Errors
//
// Every engine error matches exactly one class with errors.Is: [ErrSyntax],
// [ErrName], [ErrType], [ErrForbiddenCall] or [ErrNotImplemented]. Errors
// carry the source position of the offending construct.
//
// # Concurrency
//
// Parsed trees, registries and cached parse results are immutable and may be
// shared by any number of goroutines. Each evaluation allocates fresh
// containers, so values built by one evaluation never alias another's.
package lang
