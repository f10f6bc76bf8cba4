package compiler

import (
	"strconv"

	"github.com/xirelogy/go-rox/internal/token"
	"github.com/xirelogy/go-rox/internal/value"
)

// Precedence orders binding strength from loosest to tightest.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

// parseFn names a prefix or infix handler in the rule table.
type parseFn uint8

const (
	fnNone parseFn = iota
	fnGrouping
	fnUnary
	fnBinary
	fnNumber
	fnString
	fnLiteral
	fnVariable
	fnAnd
	fnOr
)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

var rules = map[token.Type]parseRule{
	token.LeftParen:    {fnGrouping, fnNone, PrecNone},
	token.Minus:        {fnUnary, fnBinary, PrecTerm},
	token.Plus:         {fnNone, fnBinary, PrecTerm},
	token.Slash:        {fnNone, fnBinary, PrecFactor},
	token.Star:         {fnNone, fnBinary, PrecFactor},
	token.Bang:         {fnUnary, fnNone, PrecNone},
	token.BangEqual:    {fnNone, fnBinary, PrecEquality},
	token.EqualEqual:   {fnNone, fnBinary, PrecEquality},
	token.Greater:      {fnNone, fnBinary, PrecComparison},
	token.GreaterEqual: {fnNone, fnBinary, PrecComparison},
	token.Less:         {fnNone, fnBinary, PrecComparison},
	token.LessEqual:    {fnNone, fnBinary, PrecComparison},
	token.Identifier:   {fnVariable, fnNone, PrecNone},
	token.String:       {fnString, fnNone, PrecNone},
	token.Number:       {fnNumber, fnNone, PrecNone},
	token.And:          {fnNone, fnAnd, PrecAnd},
	token.Or:           {fnNone, fnOr, PrecOr},
	token.False:        {fnLiteral, fnNone, PrecNone},
	token.Nil:          {fnLiteral, fnNone, PrecNone},
	token.True:         {fnLiteral, fnNone, PrecNone},
}

// getRule returns the rule for t; tokens without an entry neither start nor
// continue an expression.
func getRule(t token.Type) parseRule {
	return rules[t]
}

func (c *compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

func (c *compiler) parsePrecedence(prec Precedence) {
	c.advance()
	prefix := getRule(c.previous.Type).prefix
	if prefix == fnNone {
		c.error("Expect expression.")
		return
	}

	canAssign := prec <= PrecAssignment
	c.apply(prefix, canAssign)

	for prec <= getRule(c.current.Type).precedence {
		c.advance()
		c.apply(getRule(c.previous.Type).infix, canAssign)
	}

	if canAssign && c.match(token.Equal) {
		c.error("Invalid assignment target.")
	}
}

func (c *compiler) apply(fn parseFn, canAssign bool) {
	switch fn {
	case fnGrouping:
		c.grouping()
	case fnUnary:
		c.unary()
	case fnBinary:
		c.binary()
	case fnNumber:
		c.number()
	case fnString:
		c.stringLiteral()
	case fnLiteral:
		c.literal()
	case fnVariable:
		c.variable(canAssign)
	case fnAnd:
		c.and()
	case fnOr:
		c.or()
	}
}

func (c *compiler) grouping() {
	c.expression()
	c.consume(token.RightParen, "Expect ')' after expression.")
}

func (c *compiler) number() {
	n, err := strconv.ParseInt(c.previous.Lexeme, 10, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(value.Number(n))
}

// stringLiteral emits the literal without its surrounding quotes, interned.
func (c *compiler) stringLiteral() {
	lex := c.previous.Lexeme
	c.emitConstant(value.Obj(c.strings.Intern(lex[1 : len(lex)-1])))
}

func (c *compiler) literal() {
	switch c.previous.Type {
	case token.False:
		c.emitByte(OP_FALSE)
	case token.Nil:
		c.emitByte(OP_NIL)
	case token.True:
		c.emitByte(OP_TRUE)
	}
}

func (c *compiler) unary() {
	op := c.previous.Type
	c.parsePrecedence(PrecUnary)
	switch op {
	case token.Bang:
		c.emitByte(OP_NOT)
	case token.Minus:
		c.emitByte(OP_NEGATE)
	}
}

func (c *compiler) binary() {
	op := c.previous.Type
	c.parsePrecedence(getRule(op).precedence + 1)

	switch op {
	case token.BangEqual:
		c.emitBytes(OP_EQUAL, OP_NOT)
	case token.EqualEqual:
		c.emitByte(OP_EQUAL)
	case token.Greater:
		c.emitByte(OP_GREATER)
	case token.GreaterEqual:
		c.emitBytes(OP_LESS, OP_NOT)
	case token.Less:
		c.emitByte(OP_LESS)
	case token.LessEqual:
		c.emitBytes(OP_GREATER, OP_NOT)
	case token.Plus:
		c.emitByte(OP_ADD)
	case token.Minus:
		c.emitByte(OP_SUBTRACT)
	case token.Star:
		c.emitByte(OP_MULTIPLY)
	case token.Slash:
		c.emitByte(OP_DIVIDE)
	}
}

func (c *compiler) variable(canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

func (c *compiler) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp, arg byte
	if slot := c.resolveLocal(name); slot != -1 {
		getOp, setOp, arg = OP_GET_LOCAL, OP_SET_LOCAL, byte(slot)
	} else {
		getOp, setOp, arg = OP_GET_GLOBAL, OP_SET_GLOBAL, c.identifierConstant(name)
	}

	if canAssign && c.match(token.Equal) {
		c.expression()
		c.emitBytes(setOp, arg)
		return
	}
	c.emitBytes(getOp, arg)
}

// and leaves the left operand on the stack when it is falsey and skips the
// right operand.
func (c *compiler) and() {
	endJump := c.emitJump(OP_JUMP_IF_FALSE)
	c.emitByte(OP_POP)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

func (c *compiler) or() {
	elseJump := c.emitJump(OP_JUMP_IF_FALSE)
	endJump := c.emitJump(OP_JUMP)
	c.patchJump(elseJump)
	c.emitByte(OP_POP)
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}
