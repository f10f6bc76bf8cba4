package compiler

import (
	"github.com/xirelogy/go-rox/internal/bytecode"
	"github.com/xirelogy/go-rox/internal/scanner"
	"github.com/xirelogy/go-rox/internal/token"
	"github.com/xirelogy/go-rox/internal/value"
)

// Interner canonicalizes identifier and string-literal constants.
// *table.Table satisfies it; the compiler does not keep it past Compile.
type Interner interface {
	Intern(chars string) *value.ObjString
}

// Compile translates source into a chunk in a single pass. On failure the
// returned error is an ErrorList holding every diagnostic and the chunk is nil.
func Compile(source string, strings Interner) (*Chunk, error) {
	c := &compiler{
		scanner: scanner.New(source),
		strings: strings,
		chunk:   bytecode.NewChunk(),
	}

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	c.emitByte(OP_RETURN)

	if c.hadError {
		return nil, c.errors
	}
	return c.chunk, nil
}

type compiler struct {
	scanner *scanner.Scanner
	strings Interner
	chunk   *Chunk

	current  token.Token
	previous token.Token

	hadError  bool
	panicMode bool
	errors    ErrorList

	locals     []local
	scopeDepth int
}

func (c *compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.ScanToken()
		if c.current.Type != token.Error {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *compiler) consume(t token.Type, msg string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *compiler) check(t token.Type) bool {
	return c.current.Type == t
}

func (c *compiler) match(t token.Type) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

// synchronize skips tokens until a likely statement boundary so one syntax
// error does not cascade into many.
func (c *compiler) synchronize() {
	c.panicMode = false
	for c.current.Type != token.EOF {
		if c.previous.Type == token.Semicolon {
			return
		}
		if token.StartsStatement(c.current.Type) {
			return
		}
		c.advance()
	}
}

func (c *compiler) emitByte(b byte) {
	c.chunk.Write(b, c.previous.Line)
}

func (c *compiler) emitBytes(b ...byte) {
	for _, x := range b {
		c.emitByte(x)
	}
}

func (c *compiler) emitConstant(v value.Value) {
	c.emitBytes(OP_CONSTANT, c.makeConstant(v))
}

// makeConstant adds v to the pool, reusing an existing slot for an equal
// constant. Interned strings make the reuse check an identity comparison.
func (c *compiler) makeConstant(v value.Value) byte {
	for i, existing := range c.chunk.Consts {
		if value.Equal(existing, v) {
			return byte(i)
		}
	}
	idx := c.chunk.AddConstant(v)
	if idx >= bytecode.MaxConstants {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

func (c *compiler) identifierConstant(name token.Token) byte {
	return c.makeConstant(value.Obj(c.strings.Intern(name.Lexeme)))
}

// emitJump writes op with a placeholder offset and returns the operand position.
func (c *compiler) emitJump(op byte) int {
	c.emitBytes(op, 0xff, 0xff)
	return len(c.chunk.Code) - 2
}

// patchJump points the jump whose operand starts at pos to the current end of code.
func (c *compiler) patchJump(pos int) {
	jump := len(c.chunk.Code) - pos - 2
	if jump > 0xffff {
		c.error("Too much code to jump over.")
	}
	c.chunk.Code[pos] = byte(jump >> 8)
	c.chunk.Code[pos+1] = byte(jump)
}

func (c *compiler) emitLoop(loopStart int) {
	c.emitByte(OP_LOOP)
	offset := len(c.chunk.Code) - loopStart + 2
	if offset > 0xffff {
		c.error("Loop body too large.")
	}
	c.emitBytes(byte(offset>>8), byte(offset))
}
