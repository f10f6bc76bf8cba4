package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/xirelogy/go-rox/internal/bytecode"
	"github.com/xirelogy/go-rox/internal/table"
	"github.com/xirelogy/go-rox/internal/value"
)

// VM is a stack-based bytecode interpreter. Globals and interned strings
// persist across Run calls; the operand stack does not.
type VM struct {
	chunk  *bytecode.Chunk
	ip     int
	lastOp int

	stack   []value.Value
	globals *table.Table
	strings *table.Table
	out     io.Writer

	maxStack  int
	traceHook TraceHook
	instLimit int
	instCount int
}

const defaultMaxStack = 1024

// New constructs an empty VM that prints to stdout.
func New() *VM {
	return &VM{
		stack:    make([]value.Value, 0, 256),
		globals:  table.New(),
		strings:  table.New(),
		out:      os.Stdout,
		maxStack: defaultMaxStack,
		lastOp:   -1,
	}
}

// Strings returns the intern table. The compiler interns identifiers and
// string literals through it so runtime equality can compare identities.
func (vm *VM) Strings() *table.Table {
	return vm.strings
}

// SetOutput redirects print statements.
func (vm *VM) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	vm.out = w
}

// SetMaxStack bounds the operand stack depth (<= 0 restores the default).
func (vm *VM) SetMaxStack(n int) {
	if n <= 0 {
		n = defaultMaxStack
	}
	vm.maxStack = n
}

// SetTraceHook registers a callback for instruction-level tracing.
func (vm *VM) SetTraceHook(h TraceHook) {
	vm.traceHook = h
}

// SetInstructionLimit caps the number of instructions executed per Run (0 for unlimited).
func (vm *VM) SetInstructionLimit(limit int) {
	if limit < 0 {
		limit = 0
	}
	vm.instLimit = limit
}

// ResetState clears transient execution state. Globals are kept.
func (vm *VM) ResetState() {
	vm.stack = vm.stack[:0]
	vm.instCount = 0
}

// Run executes chunk from its first instruction until OP_RETURN. A failure is
// always a *RuntimeError and leaves the operand stack empty.
func (vm *VM) Run(chunk *bytecode.Chunk) error {
	vm.ResetState()
	vm.chunk = chunk
	vm.ip = 0
	vm.lastOp = -1
	if chunk == nil {
		return vm.errorf(ErrBadBytecode, "No chunk to run.")
	}
	code := chunk.Code

	for {
		if vm.ip < 0 || vm.ip >= len(code) {
			return vm.errorf(ErrBadBytecode, "Instruction pointer %d out of range.", vm.ip)
		}
		vm.lastOp = vm.ip
		op := code[vm.ip]
		format, ok := bytecode.OpFormat(op)
		if !ok {
			return vm.errorf(ErrBadBytecode, "Unknown opcode 0x%02X.", op)
		}
		if vm.ip+format.Width() > len(code) {
			return vm.errorf(ErrBadBytecode, "Truncated %s.", bytecode.OpName(op))
		}
		vm.ip++

		vm.instCount++
		if vm.instLimit > 0 && vm.instCount > vm.instLimit {
			return vm.errorf(ErrInstructionLimit, "Instruction limit exceeded.")
		}
		if pushesSlot(op) && len(vm.stack) >= vm.maxStack {
			return vm.errorf(ErrStackOverflow, "Stack overflow.")
		}
		vm.trace(op)

		switch op {
		case bytecode.OP_CONSTANT:
			v, err := vm.readConstant()
			if err != nil {
				return err
			}
			vm.push(v)
		case bytecode.OP_NIL:
			vm.push(value.Nil())
		case bytecode.OP_TRUE:
			vm.push(value.Bool(true))
		case bytecode.OP_FALSE:
			vm.push(value.Bool(false))
		case bytecode.OP_POP:
			vm.pop()
		case bytecode.OP_GET_LOCAL:
			slot := int(vm.readByte())
			if slot >= len(vm.stack) {
				return vm.errorf(ErrBadBytecode, "Local slot %d out of range.", slot)
			}
			vm.push(vm.stack[slot])
		case bytecode.OP_SET_LOCAL:
			slot := int(vm.readByte())
			if slot >= len(vm.stack) {
				return vm.errorf(ErrBadBytecode, "Local slot %d out of range.", slot)
			}
			vm.stack[slot] = vm.peek(0)
		case bytecode.OP_GET_GLOBAL:
			name, err := vm.readString()
			if err != nil {
				return err
			}
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.errorf(ErrUndefinedVariable, "Undefined variable '%s'.", name.Chars)
			}
			vm.push(v)
		case bytecode.OP_DEFINE_GLOBAL:
			name, err := vm.readString()
			if err != nil {
				return err
			}
			vm.globals.Set(name, vm.peek(0))
			vm.pop()
		case bytecode.OP_SET_GLOBAL:
			name, err := vm.readString()
			if err != nil {
				return err
			}
			if _, ok := vm.globals.Get(name); !ok {
				return vm.errorf(ErrUndefinedVariable, "Undefined variable '%s'.", name.Chars)
			}
			vm.globals.Set(name, vm.peek(0))
		case bytecode.OP_EQUAL:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case bytecode.OP_GREATER, bytecode.OP_LESS, bytecode.OP_SUBTRACT,
			bytecode.OP_MULTIPLY, bytecode.OP_DIVIDE:
			res, err := vm.arith(op)
			if err != nil {
				return err
			}
			vm.push(res)
		case bytecode.OP_ADD:
			if err := vm.add(); err != nil {
				return err
			}
		case bytecode.OP_NOT:
			vm.push(value.Bool(value.Falsey(vm.pop())))
		case bytecode.OP_NEGATE:
			if !vm.peek(0).IsNumber() {
				return vm.errorf(ErrTypeMismatch, "Operand must be a number.")
			}
			vm.push(value.Number(-vm.pop().AsNumber()))
		case bytecode.OP_PRINT:
			fmt.Fprintln(vm.out, vm.pop().Print())
		case bytecode.OP_JUMP:
			offset := vm.readShort()
			vm.ip += offset
		case bytecode.OP_JUMP_IF_FALSE:
			offset := vm.readShort()
			if value.Falsey(vm.peek(0)) {
				vm.ip += offset
			}
		case bytecode.OP_LOOP:
			offset := vm.readShort()
			vm.ip -= offset
		case bytecode.OP_RETURN:
			return nil
		}
	}
}

// pushesSlot reports whether op leaves the stack one slot deeper. Every
// other opcode pops at least as many slots as it pushes.
func pushesSlot(op byte) bool {
	switch op {
	case bytecode.OP_CONSTANT, bytecode.OP_NIL, bytecode.OP_TRUE, bytecode.OP_FALSE,
		bytecode.OP_GET_LOCAL, bytecode.OP_GET_GLOBAL:
		return true
	}
	return false
}

// add handles OP_ADD: numeric addition, or concatenation when either operand
// is a string. The other operand is rendered the way print shows it.
func (vm *VM) add() error {
	b, a := vm.peek(0), vm.peek(1)
	switch {
	case a.IsNumber() && b.IsNumber():
		vm.pop()
		vm.pop()
		vm.push(value.Number(a.AsNumber() + b.AsNumber()))
	case a.IsString() || b.IsString():
		vm.pop()
		vm.pop()
		s := vm.strings.Intern(a.Print() + b.Print())
		vm.push(value.Obj(s))
	default:
		return vm.errorf(ErrTypeMismatch, "Operands must be two numbers or two strings.")
	}
	return nil
}

func (vm *VM) arith(op byte) (value.Value, error) {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return value.Nil(), vm.errorf(ErrTypeMismatch, "Operands must be numbers.")
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	switch op {
	case bytecode.OP_GREATER:
		return value.Bool(a > b), nil
	case bytecode.OP_LESS:
		return value.Bool(a < b), nil
	case bytecode.OP_SUBTRACT:
		return value.Number(a - b), nil
	case bytecode.OP_MULTIPLY:
		return value.Number(a * b), nil
	default:
		if b == 0 {
			return value.Nil(), vm.errorf(ErrDivisionByZero, "Division by zero.")
		}
		return value.Number(a / b), nil
	}
}

func (vm *VM) push(v value.Value) {
	vm.stack = append(vm.stack, v)
}

// pop returns nil on an empty stack; only malformed bytecode gets there.
func (vm *VM) pop() value.Value {
	if len(vm.stack) == 0 {
		return value.Nil()
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek(distance int) value.Value {
	if distance >= len(vm.stack) {
		return value.Nil()
	}
	return vm.stack[len(vm.stack)-1-distance]
}

func (vm *VM) readByte() byte {
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b
}

func (vm *VM) readShort() int {
	hi := vm.chunk.Code[vm.ip]
	lo := vm.chunk.Code[vm.ip+1]
	vm.ip += 2
	return int(hi)<<8 | int(lo)
}

func (vm *VM) readConstant() (value.Value, error) {
	idx := int(vm.readByte())
	if idx >= len(vm.chunk.Consts) {
		return value.Nil(), vm.errorf(ErrBadBytecode, "Constant index %d out of range.", idx)
	}
	return vm.chunk.Consts[idx], nil
}

func (vm *VM) readString() (*value.ObjString, error) {
	v, err := vm.readConstant()
	if err != nil {
		return nil, err
	}
	s, ok := v.StringObject()
	if !ok {
		return nil, vm.errorf(ErrBadBytecode, "Expected a name constant, got %s.", value.TypeName(v))
	}
	return s, nil
}
