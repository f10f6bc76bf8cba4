package compiler

import "github.com/xirelogy/go-rox/internal/bytecode"

const (
	OP_CONSTANT      = bytecode.OP_CONSTANT
	OP_NIL           = bytecode.OP_NIL
	OP_TRUE          = bytecode.OP_TRUE
	OP_FALSE         = bytecode.OP_FALSE
	OP_POP           = bytecode.OP_POP
	OP_GET_LOCAL     = bytecode.OP_GET_LOCAL
	OP_SET_LOCAL     = bytecode.OP_SET_LOCAL
	OP_GET_GLOBAL    = bytecode.OP_GET_GLOBAL
	OP_DEFINE_GLOBAL = bytecode.OP_DEFINE_GLOBAL
	OP_SET_GLOBAL    = bytecode.OP_SET_GLOBAL
	OP_EQUAL         = bytecode.OP_EQUAL
	OP_GREATER       = bytecode.OP_GREATER
	OP_LESS          = bytecode.OP_LESS
	OP_ADD           = bytecode.OP_ADD
	OP_SUBTRACT      = bytecode.OP_SUBTRACT
	OP_MULTIPLY      = bytecode.OP_MULTIPLY
	OP_DIVIDE        = bytecode.OP_DIVIDE
	OP_NOT           = bytecode.OP_NOT
	OP_NEGATE        = bytecode.OP_NEGATE
	OP_PRINT         = bytecode.OP_PRINT
	OP_JUMP          = bytecode.OP_JUMP
	OP_JUMP_IF_FALSE = bytecode.OP_JUMP_IF_FALSE
	OP_LOOP          = bytecode.OP_LOOP
	OP_RETURN        = bytecode.OP_RETURN
)
