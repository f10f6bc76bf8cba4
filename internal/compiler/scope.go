package compiler

import "github.com/xirelogy/go-rox/internal/token"

// MaxLocals is the number of stack slots addressable by a 1-byte operand.
const MaxLocals = 256

// local is a block-scoped variable. depth is -1 while its initializer is
// still being compiled.
type local struct {
	name  token.Token
	depth int
}

func (c *compiler) beginScope() {
	c.scopeDepth++
}

// endScope discards every local declared in the closing block, emitting one
// OP_POP per slot so the runtime stack matches.
func (c *compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.emitByte(OP_POP)
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func (c *compiler) addLocal(name token.Token) {
	if len(c.locals) == MaxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.locals = append(c.locals, local{name: name, depth: -1})
}

// declareVariable records the previous identifier as a local in the current
// block. Globals are late bound and need no declaration.
func (c *compiler) declareVariable() {
	if c.scopeDepth == 0 {
		return
	}
	name := c.previous
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != -1 && l.depth < c.scopeDepth {
			break
		}
		if l.name.Lexeme == name.Lexeme {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *compiler) markInitialized() {
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

// resolveLocal returns the stack slot of the innermost local called name,
// or -1 when name must be a global.
func (c *compiler) resolveLocal(name token.Token) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name.Lexeme != name.Lexeme {
			continue
		}
		if c.locals[i].depth == -1 {
			c.error("Can't read local variable in its own initializer.")
		}
		return i
	}
	return -1
}
