package vm

import (
	"errors"
	"fmt"

	"github.com/xirelogy/go-rox/internal/bytecode"
	"github.com/xirelogy/go-rox/internal/value"
)

// Sentinel causes carried by RuntimeError; test with errors.Is.
var (
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrUndefinedVariable = errors.New("undefined variable")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrStackOverflow     = errors.New("stack overflow")
	ErrInstructionLimit  = errors.New("instruction limit exceeded")
	ErrBadBytecode       = errors.New("malformed bytecode")
)

// TraceInfo describes a single instruction dispatch. Stack is only valid for
// the duration of the hook call.
type TraceInfo struct {
	Chunk *bytecode.Chunk
	Op    byte
	IP    int
	Line  int
	Stack []value.Value
}

// TraceHook observes instruction dispatch for debugging/profiling.
type TraceHook func(TraceInfo)

// RuntimeError carries source information for VM failures.
type RuntimeError struct {
	Message string
	Line    int
	IP      int
	Op      byte
	Cause   error
}

func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s\n[line %d] in script", e.Message, e.Line)
	}
	return e.Message
}

// Unwrap exposes the sentinel cause.
func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// errorf builds a RuntimeError for the instruction currently executing and
// resets the operand stack.
func (vm *VM) errorf(cause error, format string, args ...interface{}) error {
	err := &RuntimeError{
		Message: fmt.Sprintf(format, args...),
		IP:      vm.lastOp,
		Cause:   cause,
	}
	if vm.chunk != nil && vm.lastOp >= 0 {
		err.Line = vm.chunk.LineAt(vm.lastOp)
		err.Op = vm.chunk.Code[vm.lastOp]
	}
	vm.ResetState()
	return err
}

func (vm *VM) trace(op byte) {
	if vm.traceHook == nil {
		return
	}
	vm.traceHook(TraceInfo{
		Chunk: vm.chunk,
		Op:    op,
		IP:    vm.lastOp,
		Line:  vm.chunk.LineAt(vm.lastOp),
		Stack: vm.stack,
	})
}
