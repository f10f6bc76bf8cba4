// Package rox embeds the rox bytecode interpreter: a single-pass compiler
// and a stack VM sharing one set of globals and interned strings.
package rox

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/xirelogy/go-rox/internal/bytecode"
	"github.com/xirelogy/go-rox/internal/compiler"
	"github.com/xirelogy/go-rox/internal/logs"
	"github.com/xirelogy/go-rox/internal/value"
	"github.com/xirelogy/go-rox/internal/vm"
)

// Result is the outcome of one Interpret or RunChunk call.
type Result int

const (
	ResultOK Result = iota
	ResultCompileError
	ResultRuntimeError
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultCompileError:
		return "compile_error"
	case ResultRuntimeError:
		return "runtime_error"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// ExitCode maps the result to the conventional sysexits code.
func (r Result) ExitCode() int {
	switch r {
	case ResultCompileError:
		return 65
	case ResultRuntimeError:
		return 70
	default:
		return 0
	}
}

// TraceInfo describes a single instruction dispatch.
type TraceInfo struct {
	Op    string
	IP    int
	Line  int
	Stack []string // rendered values, bottom first
}

// TraceHook observes instruction dispatch for debugging/profiling.
type TraceHook func(TraceInfo)

// Options configures a new Interpreter. Zero values select the defaults.
type Options struct {
	Stdout io.Writer // print statements; defaults to os.Stdout
	Stderr io.Writer // diagnostics; defaults to os.Stderr
	Logger *slog.Logger

	MaxStack         int
	InstructionLimit int

	// TraceExecution writes the stack and each instruction to Stderr.
	TraceExecution bool
	// PrintCode disassembles every compiled chunk to Stderr before it runs.
	PrintCode bool
}

// Interpreter compiles and runs rox programs. Globals and interned strings
// persist across calls, so successive Interpret calls behave like REPL lines.
type Interpreter struct {
	core      *vm.VM
	stderr    io.Writer
	logger    *slog.Logger
	printCode bool

	mu   sync.Mutex
	busy bool
}

var errBusy = errors.New("interpreter is busy")

// New constructs an interpreter.
func New(opts Options) *Interpreter {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	logger := opts.Logger
	if logger == nil {
		logger = logs.Discard()
	}

	core := vm.New()
	core.SetOutput(stdout)
	core.SetMaxStack(opts.MaxStack)
	core.SetInstructionLimit(opts.InstructionLimit)
	if opts.TraceExecution {
		core.SetTraceHook(vm.StackTracer(stderr))
	}

	return &Interpreter{
		core:      core,
		stderr:    stderr,
		logger:    logger,
		printCode: opts.PrintCode,
	}
}

// Interpret compiles source and runs it. Compile errors and runtime errors
// are written to the diagnostic writer.
func (in *Interpreter) Interpret(source string) Result {
	if err := in.acquire(); err != nil {
		fmt.Fprintln(in.stderr, err)
		return ResultRuntimeError
	}
	defer in.release()

	start := time.Now()
	chunk, ok := in.compile(source)
	if !ok {
		return ResultCompileError
	}
	return in.run(chunk, start)
}

// RunChunk decodes a serialized chunk produced by CompileToFile and runs it.
// Undecodable data is reported as a compile error.
func (in *Interpreter) RunChunk(data []byte) Result {
	if err := in.acquire(); err != nil {
		fmt.Fprintln(in.stderr, err)
		return ResultRuntimeError
	}
	defer in.release()

	start := time.Now()
	chunk, err := bytecode.UnmarshalChunk(data, in.core.Strings())
	if err != nil {
		fmt.Fprintln(in.stderr, err)
		in.logger.Warn("load chunk", "error", err)
		return ResultCompileError
	}
	return in.run(chunk, start)
}

// CompileToFile compiles source and writes the serialized chunk to path
// without running it. The error is non-nil only when writing fails.
func (in *Interpreter) CompileToFile(source, path string) (Result, error) {
	if err := in.acquire(); err != nil {
		return ResultRuntimeError, err
	}
	defer in.release()

	chunk, ok := in.compile(source)
	if !ok {
		return ResultCompileError, nil
	}
	data, err := bytecode.MarshalChunk(chunk)
	if err != nil {
		return ResultCompileError, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ResultOK, err
	}
	in.logger.Info("compiled", "path", path, "code_bytes", chunk.Len(), "constants", len(chunk.Consts))
	return ResultOK, nil
}

// SetTraceHook attaches a debug hook that observes instruction dispatch.
// It replaces the trace configured through Options.TraceExecution.
func (in *Interpreter) SetTraceHook(h TraceHook) {
	if h == nil {
		in.core.SetTraceHook(nil)
		return
	}
	in.core.SetTraceHook(func(info vm.TraceInfo) {
		h(TraceInfo{
			Op:   bytecode.OpName(info.Op),
			IP:   info.IP,
			Line: info.Line,
			Stack: lo.Map(info.Stack, func(v value.Value, _ int) string {
				return v.Print()
			}),
		})
	})
}

// Global returns a global as a Go value: nil, bool, int64 or string.
func (in *Interpreter) Global(name string) (any, bool) {
	v, ok := in.core.Global(name)
	if !ok {
		return nil, false
	}
	return toGo(v), true
}

// DefineGlobal binds a Go value (nil, bool, any integer kind or string)
// into the global environment.
func (in *Interpreter) DefineGlobal(name string, v any) error {
	val, err := in.fromGo(v)
	if err != nil {
		return fmt.Errorf("global %q: %w", name, err)
	}
	in.core.DefineGlobal(name, val)
	return nil
}

// GlobalNames lists the defined globals in sorted order.
func (in *Interpreter) GlobalNames() []string {
	return in.core.GlobalNames()
}

// Duplicate clones the configuration and global state into a new instance.
// The duplicate shares no tables with the original.
func (in *Interpreter) Duplicate() (*Interpreter, error) {
	if err := in.acquire(); err != nil {
		return nil, fmt.Errorf("cannot duplicate: %w", err)
	}
	defer in.release()

	return &Interpreter{
		core:      in.core.Duplicate(),
		stderr:    in.stderr,
		logger:    in.logger,
		printCode: in.printCode,
	}, nil
}

func (in *Interpreter) compile(source string) (*bytecode.Chunk, bool) {
	chunk, err := compiler.Compile(source, in.core.Strings())
	if err != nil {
		fmt.Fprintln(in.stderr, err)
		var list compiler.ErrorList
		if errors.As(err, &list) {
			in.logger.Debug("compile failed", "errors", len(list), "first_line", list[0].Line)
		}
		return nil, false
	}
	if in.printCode {
		if _, err := bytecode.NewDisassembler(in.stderr).DisassembleChunk("<script>", chunk); err != nil {
			in.logger.Warn("disassemble", "error", err)
		}
	}
	return chunk, true
}

func (in *Interpreter) run(chunk *bytecode.Chunk, start time.Time) Result {
	if err := in.core.Run(chunk); err != nil {
		fmt.Fprintln(in.stderr, err)
		var rtErr *vm.RuntimeError
		if errors.As(err, &rtErr) {
			in.logger.Debug("runtime error",
				"message", rtErr.Message,
				"line", rtErr.Line,
				"ip", rtErr.IP,
				"op", bytecode.OpName(rtErr.Op),
				"cause", rtErr.Cause,
			)
		}
		return ResultRuntimeError
	}
	in.logger.Info("interpret",
		"result", ResultOK.String(),
		"code_bytes", chunk.Len(),
		"elapsed", time.Since(start),
	)
	return ResultOK
}

func (in *Interpreter) acquire() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.busy {
		return errBusy
	}
	in.busy = true
	return nil
}

func (in *Interpreter) release() {
	in.mu.Lock()
	in.busy = false
	in.mu.Unlock()
}
