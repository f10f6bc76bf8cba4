package bytecode

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xirelogy/go-rox/internal/value"
)

// Disassembler formats bytecode as a readable assembly-style dump.
type Disassembler struct {
	w       io.Writer
	printed bool
}

// NewDisassembler constructs a disassembler that writes to w.
func NewDisassembler(w io.Writer) *Disassembler {
	return &Disassembler{w: w}
}

// DisassembleChunk emits a header and every instruction in chunk, returning
// the number of instructions visited.
func (d *Disassembler) DisassembleChunk(name string, chunk *Chunk) (int, error) {
	if chunk == nil {
		return 0, fmt.Errorf("nil chunk")
	}
	d.startSection()
	if name == "" {
		name = "<script>"
	}
	fmt.Fprintf(d.w, "== %s ==\n", name)
	count := 0
	for offset := 0; offset < len(chunk.Code); {
		next, err := d.DisassembleInstruction(chunk, offset)
		if err != nil {
			return count, err
		}
		offset = next
		count++
	}
	return count, nil
}

// DisassembleInstruction prints the instruction at offset and returns the
// offset of the next one.
func (d *Disassembler) DisassembleInstruction(chunk *Chunk, offset int) (int, error) {
	in, err := chunk.Decode(offset)
	if err != nil {
		return offset, err
	}
	lineStr := "-"
	if offset > 0 && chunk.LineAt(offset) == chunk.LineAt(offset-1) {
		lineStr = "|"
	} else if in.Line > 0 {
		lineStr = strconv.Itoa(in.Line)
	}
	fmt.Fprintf(d.w, "%04d %4s ", offset, lineStr)
	if detail := formatOperands(chunk, in); detail != "" {
		fmt.Fprintf(d.w, "%-16s %s\n", OpName(in.Op), detail)
	} else {
		fmt.Fprintln(d.w, OpName(in.Op))
	}
	return in.Next(), nil
}

func (d *Disassembler) startSection() {
	if d.printed {
		fmt.Fprintln(d.w)
	}
	d.printed = true
}

func formatOperands(chunk *Chunk, in Instruction) string {
	switch in.Format {
	case FormatByte:
		return fmt.Sprintf("%d", in.Operand)
	case FormatConstant:
		c := formatConst(chunk.Consts[in.Operand])
		if in.Op == OP_CONSTANT {
			return fmt.Sprintf("%d ; const[%d]=%s", in.Operand, in.Operand, c)
		}
		return fmt.Sprintf("%d ; name=%s", in.Operand, c)
	case FormatJump:
		return fmt.Sprintf("%d ; %d -> %d", in.Operand, in.Offset, in.Target())
	default:
		return ""
	}
}

func formatConst(v value.Value) string {
	if s, ok := v.StringObject(); ok {
		return strconv.Quote(s.Chars)
	}
	return v.Print()
}
