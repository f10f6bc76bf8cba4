package bytecode

import (
	"fmt"

	"github.com/xirelogy/go-rox/internal/value"
)

// MaxConstants is the number of constants addressable by a 1-byte operand.
const MaxConstants = 256

// Chunk is a compiled bytecode sequence with its constant pool.
// Lines is parallel to Code: Lines[i] is the source line of Code[i].
type Chunk struct {
	Code   []byte
	Lines  []int
	Consts []value.Value
}

// NewChunk returns an empty chunk.
func NewChunk() *Chunk {
	return &Chunk{}
}

// Write appends one byte and the source line it came from.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// AddConstant appends v to the constant pool and returns its index.
// Callers are responsible for rejecting indexes >= MaxConstants.
func (c *Chunk) AddConstant(v value.Value) int {
	c.Consts = append(c.Consts, v)
	return len(c.Consts) - 1
}

// Len returns the number of code bytes.
func (c *Chunk) Len() int { return len(c.Code) }

// LineAt returns the source line for the byte at offset, or 0 if out of range.
func (c *Chunk) LineAt(offset int) int {
	if offset < 0 || offset >= len(c.Lines) {
		return 0
	}
	return c.Lines[offset]
}

// Instruction is one decoded instruction.
type Instruction struct {
	Offset  int
	Op      byte
	Format  Format
	Operand int // slot, constant index or raw jump offset
	Line    int
}

// Next returns the offset of the following instruction.
func (in Instruction) Next() int {
	return in.Offset + in.Format.Width()
}

// Target returns the absolute destination of a jump instruction.
func (in Instruction) Target() int {
	return in.Next() + opTable[in.Op].sign*in.Operand
}

// Decode reads the instruction at offset, validating the opcode, operand
// bounds and constant references.
func (c *Chunk) Decode(offset int) (Instruction, error) {
	if offset < 0 || offset >= len(c.Code) {
		return Instruction{}, fmt.Errorf("offset %d out of range", offset)
	}
	op := c.Code[offset]
	format, ok := OpFormat(op)
	if !ok {
		return Instruction{}, fmt.Errorf("unknown opcode 0x%02X at %d", op, offset)
	}
	in := Instruction{Offset: offset, Op: op, Format: format, Line: c.LineAt(offset)}
	if offset+format.Width() > len(c.Code) {
		return Instruction{}, fmt.Errorf("unexpected end of bytecode in %s at %d", OpName(op), offset)
	}
	switch format {
	case FormatByte:
		in.Operand = int(c.Code[offset+1])
	case FormatConstant:
		in.Operand = int(c.Code[offset+1])
		if in.Operand >= len(c.Consts) {
			return Instruction{}, fmt.Errorf("const index out of range: %d", in.Operand)
		}
	case FormatJump:
		in.Operand = int(c.Code[offset+1])<<8 | int(c.Code[offset+2])
	}
	return in, nil
}
