package expr

import (
	"fmt"
	"strings"

	ferrors "github.com/matzehuels/funcplot/pkg/errors"
)

// SyntaxError describes why an expression failed to compile.
// Pos is the byte offset of the offending token in Source.
type SyntaxError struct {
	Source  string
	Pos     int
	Message string
}

func newSyntaxError(src string, pos int, msg string) *SyntaxError {
	return &SyntaxError{Source: src, Pos: pos, Message: msg}
}

// Error returns a one-line description with a 1-based column.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at column %d: %s", e.Column(), e.Message)
}

// Column returns the 1-based column of the error, counted in runes.
func (e *SyntaxError) Column() int {
	pos := e.Pos
	if pos > len(e.Source) {
		pos = len(e.Source)
	}
	return len([]rune(e.Source[:pos])) + 1
}

// Show renders the source with a caret under the error position:
//
//	1/(
//	   ^ unexpected end of input
func (e *SyntaxError) Show(indent string) string {
	var b strings.Builder
	b.WriteString(indent)
	b.WriteString(e.Source)
	b.WriteByte('\n')
	b.WriteString(indent)
	b.WriteString(strings.Repeat(" ", e.Column()-1))
	b.WriteString("^ ")
	b.WriteString(e.Message)
	return b.String()
}

// Unwrap exposes the coded form so callers can test with errors.Is(err, SYNTAX_ERROR).
func (e *SyntaxError) Unwrap() error {
	return ferrors.New(ferrors.ErrCodeSyntax, "%s", e.Message)
}

func domainError(format string, args ...any) error {
	return ferrors.New(ferrors.ErrCodeDomain, format, args...)
}

func runtimeError(format string, args ...any) error {
	return ferrors.New(ferrors.ErrCodeRuntime, format, args...)
}

func undefinedSlot(index int) error {
	return ferrors.New(ferrors.ErrCodeUndefinedSlot, "slot %d has no valid expression", index)
}
