package compiler

import "github.com/xirelogy/go-rox/internal/token"

func (c *compiler) declaration() {
	if c.match(token.Var) {
		c.varDeclaration()
	} else {
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")
	if c.match(token.Equal) {
		c.expression()
	} else {
		c.emitByte(OP_NIL)
	}
	c.consume(token.Semicolon, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

// parseVariable consumes an identifier and returns its name constant. Locals
// live in stack slots and get 0.
func (c *compiler) parseVariable(msg string) byte {
	c.consume(token.Identifier, msg)
	c.declareVariable()
	if c.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous)
}

func (c *compiler) defineVariable(global byte) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitBytes(OP_DEFINE_GLOBAL, global)
}

func (c *compiler) statement() {
	switch {
	case c.match(token.Print):
		c.printStatement()
	case c.match(token.For):
		c.forStatement()
	case c.match(token.If):
		c.ifStatement()
	case c.match(token.While):
		c.whileStatement()
	case c.match(token.Return):
		c.error("Can't return from top-level code.")
	case c.match(token.LeftBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *compiler) printStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after value.")
	c.emitByte(OP_PRINT)
}

func (c *compiler) expressionStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after expression.")
	c.emitByte(OP_POP)
}

func (c *compiler) block() {
	for !c.check(token.RightBrace) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RightBrace, "Expect '}' after block.")
}

func (c *compiler) ifStatement() {
	c.consume(token.LeftParen, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	thenJump := c.emitJump(OP_JUMP_IF_FALSE)
	c.emitByte(OP_POP)
	c.statement()

	elseJump := c.emitJump(OP_JUMP)
	c.patchJump(thenJump)
	c.emitByte(OP_POP)

	if c.match(token.Else) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *compiler) whileStatement() {
	loopStart := len(c.chunk.Code)
	c.consume(token.LeftParen, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	exitJump := c.emitJump(OP_JUMP_IF_FALSE)
	c.emitByte(OP_POP)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitByte(OP_POP)
}

// forStatement lowers for (init; cond; incr) body into the same jumps a while
// loop uses. The increment is compiled before the body but runs after it.
func (c *compiler) forStatement() {
	c.beginScope()
	c.consume(token.LeftParen, "Expect '(' after 'for'.")
	switch {
	case c.match(token.Semicolon):
	case c.match(token.Var):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.chunk.Code)
	exitJump := -1
	if !c.match(token.Semicolon) {
		c.expression()
		c.consume(token.Semicolon, "Expect ';' after loop condition.")
		exitJump = c.emitJump(OP_JUMP_IF_FALSE)
		c.emitByte(OP_POP)
	}

	if !c.match(token.RightParen) {
		bodyJump := c.emitJump(OP_JUMP)
		incrementStart := len(c.chunk.Code)
		c.expression()
		c.emitByte(OP_POP)
		c.consume(token.RightParen, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitByte(OP_POP)
	}
	c.endScope()
}
