// Package expr compiles single-variable algebraic expressions into fast,
// repeatedly callable numeric functions.
//
// # Overview
//
// An [Engine] owns a list of indexed slots. Each slot holds the text the user
// typed and exactly one of two states: [Compiled] (a ready [*Program]) or
// [Failed] (a human-readable diagnostic). Compilation happens once in
// [Engine.SetExpression]; evaluation through [Engine.Evaluate] or
// [Engine.EvaluateRange] never re-parses.
//
// # Grammar
//
// The surface language is the usual calculator notation over the variable x:
//
//	expr    := term (('+' | '-') term)*
//	term    := power (('*' | '/') power | power)*   // juxtaposition multiplies
//	power   := unary ('^' power)?                   // right associative
//	unary   := ('-' | '+') unary | primary
//	primary := NUMBER | x | pi | π | e | FUNC '(' expr ')' | '(' expr ')'
//
// Unary minus binds tighter than exponentiation, so -2^2 is 4, while 2^-1 is
// 0.5. Juxtaposition (2x, 3(x+1), 2pi) multiplies at the same precedence as '*'.
//
// Supported functions: sin, cos, tan, asin, acos, atan, sinh, cosh, tanh,
// log (natural), log10, exp, sqrt, abs, ceil, floor.
//
// # Errors
//
// Compile-time problems are reported as [*SyntaxError] values carrying the
// byte offset of the offending token. Evaluation failures are coded
// [errors.Error] values: DOMAIN_ERROR for mathematically undefined operations
// (log of a non-positive number, division by zero, sqrt of a negative number),
// RUNTIME_ERROR for overflow, UNDEFINED_SLOT for slots without a program.
//
// # Concurrency
//
// An Engine is not safe for concurrent use. A *Program is immutable and may be
// evaluated from any number of goroutines.
//
// # Example
//
//	eng := expr.NewEngine()
//	if !eng.SetExpression(0, "x^2 - 4") {
//	    fmt.Println(eng.Diagnostic(0))
//	}
//	y, err := eng.Evaluate(0, 3) // 5, nil
package expr
