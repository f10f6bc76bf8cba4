package vm

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"

	"github.com/xirelogy/go-rox/internal/bytecode"
	"github.com/xirelogy/go-rox/internal/value"
)

// StackTracer returns a TraceHook that writes the operand stack followed by
// the disassembled instruction about to execute, one pair per dispatch.
func StackTracer(w io.Writer) TraceHook {
	dis := bytecode.NewDisassembler(w)
	return func(info TraceInfo) {
		fmt.Fprintf(w, "          %s\n", FormatStack(info.Stack))
		if _, err := dis.DisassembleInstruction(info.Chunk, info.IP); err != nil {
			fmt.Fprintf(w, "%04d <%v>\n", info.IP, err)
		}
	}
}

// FormatStack renders stack slots bottom to top as "[ a ][ b ]".
func FormatStack(stack []value.Value) string {
	return strings.Join(lo.Map(stack, func(v value.Value, _ int) string {
		return "[ " + v.Print() + " ]"
	}), "")
}
