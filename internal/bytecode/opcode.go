package bytecode

import "fmt"

// OpCode enumerates bytecode operations. Zero is never emitted so that a
// zeroed buffer decodes as an error rather than a valid instruction.
const (
	OP_CONSTANT byte = iota + 1
	OP_NIL
	OP_TRUE
	OP_FALSE
	OP_POP
	OP_GET_LOCAL
	OP_SET_LOCAL
	OP_GET_GLOBAL
	OP_DEFINE_GLOBAL
	OP_SET_GLOBAL
	OP_EQUAL
	OP_GREATER
	OP_LESS
	OP_ADD
	OP_SUBTRACT
	OP_MULTIPLY
	OP_DIVIDE
	OP_NOT
	OP_NEGATE
	OP_PRINT
	OP_JUMP
	OP_JUMP_IF_FALSE
	OP_LOOP
	OP_RETURN
)

// Format describes how an instruction's operands are laid out.
type Format int

const (
	FormatSimple   Format = iota // opcode only
	FormatByte                   // opcode + 1-byte slot
	FormatConstant               // opcode + 1-byte constant index
	FormatJump                   // opcode + 2-byte big-endian offset
)

type opInfo struct {
	name   string
	format Format
	// sign applies to jump offsets: +1 forward, -1 backward
	sign int
}

var opTable = map[byte]opInfo{
	OP_CONSTANT:      {"OP_CONSTANT", FormatConstant, 0},
	OP_NIL:           {"OP_NIL", FormatSimple, 0},
	OP_TRUE:          {"OP_TRUE", FormatSimple, 0},
	OP_FALSE:         {"OP_FALSE", FormatSimple, 0},
	OP_POP:           {"OP_POP", FormatSimple, 0},
	OP_GET_LOCAL:     {"OP_GET_LOCAL", FormatByte, 0},
	OP_SET_LOCAL:     {"OP_SET_LOCAL", FormatByte, 0},
	OP_GET_GLOBAL:    {"OP_GET_GLOBAL", FormatConstant, 0},
	OP_DEFINE_GLOBAL: {"OP_DEFINE_GLOBAL", FormatConstant, 0},
	OP_SET_GLOBAL:    {"OP_SET_GLOBAL", FormatConstant, 0},
	OP_EQUAL:         {"OP_EQUAL", FormatSimple, 0},
	OP_GREATER:       {"OP_GREATER", FormatSimple, 0},
	OP_LESS:          {"OP_LESS", FormatSimple, 0},
	OP_ADD:           {"OP_ADD", FormatSimple, 0},
	OP_SUBTRACT:      {"OP_SUBTRACT", FormatSimple, 0},
	OP_MULTIPLY:      {"OP_MULTIPLY", FormatSimple, 0},
	OP_DIVIDE:        {"OP_DIVIDE", FormatSimple, 0},
	OP_NOT:           {"OP_NOT", FormatSimple, 0},
	OP_NEGATE:        {"OP_NEGATE", FormatSimple, 0},
	OP_PRINT:         {"OP_PRINT", FormatSimple, 0},
	OP_JUMP:          {"OP_JUMP", FormatJump, 1},
	OP_JUMP_IF_FALSE: {"OP_JUMP_IF_FALSE", FormatJump, 1},
	OP_LOOP:          {"OP_LOOP", FormatJump, -1},
	OP_RETURN:        {"OP_RETURN", FormatSimple, 0},
}

// OpName returns the mnemonic for op.
func OpName(op byte) string {
	if info, ok := opTable[op]; ok {
		return info.name
	}
	return fmt.Sprintf("OP_0x%02X", op)
}

// OpFormat returns the operand layout for op.
func OpFormat(op byte) (Format, bool) {
	info, ok := opTable[op]
	return info.format, ok
}

// Width returns the encoded size of an instruction in bytes.
func (f Format) Width() int {
	switch f {
	case FormatByte, FormatConstant:
		return 2
	case FormatJump:
		return 3
	default:
		return 1
	}
}
