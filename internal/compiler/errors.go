package compiler

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/xirelogy/go-rox/internal/token"
)

// Error is a single compile diagnostic.
type Error struct {
	Line    int
	Where   string // " at 'x'", " at end" or empty for scanner errors
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[line %d] Error%s: %s", e.Line, e.Where, e.Message)
}

// ErrorList collects every diagnostic reported while compiling one source.
type ErrorList []*Error

func (l ErrorList) Error() string {
	return strings.Join(lo.Map(l, func(e *Error, _ int) string { return e.Error() }), "\n")
}

func (c *compiler) error(msg string) {
	c.errorAt(c.previous, msg)
}

func (c *compiler) errorAtCurrent(msg string) {
	c.errorAt(c.current, msg)
}

// errorAt records a diagnostic unless the parser is already recovering from
// an earlier one.
func (c *compiler) errorAt(tok token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	e := &Error{Line: tok.Line, Message: msg}
	switch tok.Type {
	case token.EOF:
		e.Where = " at end"
	case token.Error:
	default:
		e.Where = fmt.Sprintf(" at '%s'", tok.Lexeme)
	}
	c.errors = append(c.errors, e)
}
