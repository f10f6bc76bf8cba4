package vm_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/xirelogy/go-rox/internal/bytecode"
	"github.com/xirelogy/go-rox/internal/compiler"
	"github.com/xirelogy/go-rox/internal/value"
	"github.com/xirelogy/go-rox/internal/vm"
)

func newMachine() (*vm.VM, *bytes.Buffer) {
	var out bytes.Buffer
	machine := vm.New()
	machine.SetOutput(&out)
	return machine, &out
}

func compileFor(t *testing.T, machine *vm.VM, src string) *bytecode.Chunk {
	t.Helper()
	chunk, err := compiler.Compile(src, machine.Strings())
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	return chunk
}

func runSource(t *testing.T, src string) string {
	t.Helper()
	machine, out := newMachine()
	if err := machine.Run(compileFor(t, machine, src)); err != nil {
		t.Fatalf("vm run error: %v", err)
	}
	return out.String()
}

func runFailing(t *testing.T, src string) *vm.RuntimeError {
	t.Helper()
	machine, _ := newMachine()
	err := machine.Run(compileFor(t, machine, src))
	if err == nil {
		t.Fatalf("expected runtime error for %q", src)
	}
	var rtErr *vm.RuntimeError
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected RuntimeError, got %T", err)
	}
	if machine.StackDepth() != 0 {
		t.Fatalf("expected empty stack after error, got %d slots", machine.StackDepth())
	}
	return rtErr
}

func TestVMArithmetic(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"print 1 + 2;", "3\n"},
		{"print 6 / 2 * 2;", "6\n"},
		{"print 7 / 2;", "3\n"},
		{"print -7 / 2;", "-3\n"},
		{"print 2 + 3 * 4 - 1;", "13\n"},
		{"print (2 + 3) * 4;", "20\n"},
		{"print --5;", "5\n"},
		{"print 9223372036854775807 + 1;", "-9223372036854775808\n"},
	}
	for _, tc := range cases {
		if got := runSource(t, tc.src); got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.src, tc.want, got)
		}
	}
}

func TestVMComparisonAndEquality(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"print 1 < 2;", "true\n"},
		{"print 2 <= 2;", "true\n"},
		{"print 3 >= 4;", "false\n"},
		{"print 3 > 2;", "true\n"},
		{"print 1 == 1;", "true\n"},
		{"print 1 != 1;", "false\n"},
		{"print nil == nil;", "true\n"},
		{"print nil == false;", "false\n"},
		{"print 0 == false;", "false\n"},
		{`print "a" == "a";`, "true\n"},
		{`print "a" + "b" == "ab";`, "true\n"},
		{"print !nil;", "true\n"},
		{"print !0;", "false\n"},
	}
	for _, tc := range cases {
		if got := runSource(t, tc.src); got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.src, tc.want, got)
		}
	}
}

func TestVMLogicalOperatorsShortCircuit(t *testing.T) {
	src := `
var hits = 0;
false and (hits = 1);
true or (hits = 2);
print hits;
print nil or "fallback";
print 1 and 2;
`
	if got, want := runSource(t, src), "0\nfallback\n2\n"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestVMScopes(t *testing.T) {
	cases := []string{
		`var a = 1; { var a = 2; print a; } print a;`,
		`{ var a = 1; { var a = 2; print a; } print a; }`,
	}
	for _, src := range cases {
		if got, want := runSource(t, src), "2\n1\n"; got != want {
			t.Fatalf("%q: expected %q, got %q", src, want, got)
		}
	}
}

func TestVMAssignmentIsExpression(t *testing.T) {
	src := `var a; var b; a = b = 3; print a; { var c; var d = c = 4; print d; }`
	if got, want := runSource(t, src), "3\n4\n"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestVMControlFlow(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{`var i = 0; while (i < 3) { print i; i = i + 1; }`, "0\n1\n2\n"},
		{`for (var i = 0; i < 3; i = i + 1) print i;`, "0\n1\n2\n"},
		{`if (1 > 2) print "yes"; else print "no";`, "no\n"},
		{`if (nil) print "skipped"; print "after";`, "after\n"},
	}
	for _, tc := range cases {
		if got := runSource(t, tc.src); got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.src, tc.want, got)
		}
	}
}

func TestVMStringConcatenationInterns(t *testing.T) {
	machine, out := newMachine()
	src := `var greeting = "hel" + "lo"; print greeting;`
	if err := machine.Run(compileFor(t, machine, src)); err != nil {
		t.Fatalf("vm run error: %v", err)
	}
	if out.String() != "hello\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
	v, ok := machine.Global("greeting")
	if !ok {
		t.Fatalf("global greeting not defined")
	}
	if v.AsString() != machine.Strings().Intern("hello") {
		t.Fatalf("concatenated string is not the interned instance")
	}
}

func TestVMConcatenatesMixedOperands(t *testing.T) {
	machine, out := newMachine()
	src := `print "n=" + 1; print 1 + "x"; print "ok: " + true; var s = "v" + nil;`
	if err := machine.Run(compileFor(t, machine, src)); err != nil {
		t.Fatalf("vm run error: %v", err)
	}
	if got, want := out.String(), "n=1\n1x\nok: true\n"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	v, _ := machine.Global("s")
	if v.AsString() != machine.Strings().Intern("vnil") {
		t.Fatalf("mixed concatenation is not the interned instance")
	}
}

func TestVMRuntimeErrors(t *testing.T) {
	cases := []struct {
		src   string
		msg   string
		line  int
		cause error
	}{
		{`print "x" - 1;`, "Operands must be numbers.", 1, vm.ErrTypeMismatch},
		{"\nprint undefined_name;", "Undefined variable 'undefined_name'.", 2, vm.ErrUndefinedVariable},
		{"missing = 1;", "Undefined variable 'missing'.", 1, vm.ErrUndefinedVariable},
		{`print -"x";`, "Operand must be a number.", 1, vm.ErrTypeMismatch},
		{`print true + 1;`, "Operands must be two numbers or two strings.", 1, vm.ErrTypeMismatch},
		{"print nil + true;", "Operands must be two numbers or two strings.", 1, vm.ErrTypeMismatch},
		{"print 1 < true;", "Operands must be numbers.", 1, vm.ErrTypeMismatch},
		{"print 1;\n\nprint 1 / 0;", "Division by zero.", 3, vm.ErrDivisionByZero},
	}
	for _, tc := range cases {
		rtErr := runFailing(t, tc.src)
		if rtErr.Message != tc.msg {
			t.Fatalf("%q: expected message %q, got %q", tc.src, tc.msg, rtErr.Message)
		}
		if rtErr.Line != tc.line {
			t.Fatalf("%q: expected line %d, got %d", tc.src, tc.line, rtErr.Line)
		}
		if !errors.Is(rtErr, tc.cause) {
			t.Fatalf("%q: expected cause %v, got %v", tc.src, tc.cause, rtErr.Cause)
		}
	}
}

func TestVMRuntimeErrorFormat(t *testing.T) {
	rtErr := runFailing(t, "var x = 1;\nprint x + nil;")
	want := "Operands must be two numbers or two strings.\n[line 2] in script"
	if rtErr.Error() != want {
		t.Fatalf("expected %q, got %q", want, rtErr.Error())
	}
	if rtErr.Op != bytecode.OP_ADD {
		t.Fatalf("expected failing op OP_ADD, got %s", bytecode.OpName(rtErr.Op))
	}
}

func TestVMGlobalsPersistAcrossRuns(t *testing.T) {
	machine, out := newMachine()
	if err := machine.Run(compileFor(t, machine, "var count = 1;")); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := machine.Run(compileFor(t, machine, "count = count + 1; print bogus;")); err == nil {
		t.Fatalf("expected runtime error")
	}
	if err := machine.Run(compileFor(t, machine, "print count;")); err != nil {
		t.Fatalf("third run: %v", err)
	}
	if out.String() != "2\n" {
		t.Fatalf("expected globals to survive a runtime error, got %q", out.String())
	}
}

func TestVMInstructionLimit(t *testing.T) {
	machine, _ := newMachine()
	machine.SetInstructionLimit(100)
	err := machine.Run(compileFor(t, machine, "while (true) {}"))
	if !errors.Is(err, vm.ErrInstructionLimit) {
		t.Fatalf("expected instruction limit error, got %v", err)
	}
}

func TestVMStackOverflow(t *testing.T) {
	machine, _ := newMachine()
	machine.SetMaxStack(2)
	err := machine.Run(compileFor(t, machine, "print 1 + (2 + 3);"))
	if !errors.Is(err, vm.ErrStackOverflow) {
		t.Fatalf("expected stack overflow, got %v", err)
	}
}

func TestVMStackReachesMaxDepth(t *testing.T) {
	cases := []struct {
		max int
		src string
	}{
		{1, "print 1;"},
		{2, "print 1 + 2;"},
		{3, "print 1 + (2 + 3);"},
		{2, "{ var a = 1; print -a; }"},
	}
	for _, tc := range cases {
		machine, out := newMachine()
		machine.SetMaxStack(tc.max)
		if err := machine.Run(compileFor(t, machine, tc.src)); err != nil {
			t.Fatalf("%q with max %d: %v", tc.src, tc.max, err)
		}
		if out.Len() == 0 {
			t.Fatalf("%q produced no output", tc.src)
		}
	}
}

func TestVMRejectsMalformedBytecode(t *testing.T) {
	cases := []struct {
		name  string
		chunk *bytecode.Chunk
	}{
		{"unknown opcode", &bytecode.Chunk{Code: []byte{0xEE}, Lines: []int{1}}},
		{"truncated", &bytecode.Chunk{Code: []byte{bytecode.OP_CONSTANT}, Lines: []int{1}}},
		{"bad constant", &bytecode.Chunk{Code: []byte{bytecode.OP_CONSTANT, 3, bytecode.OP_RETURN}, Lines: []int{1, 1, 1}}},
		{"no return", &bytecode.Chunk{Code: []byte{bytecode.OP_NIL}, Lines: []int{1}}},
		{"bad local", &bytecode.Chunk{Code: []byte{bytecode.OP_GET_LOCAL, 4, bytecode.OP_RETURN}, Lines: []int{1, 1, 1}}},
		{"name not string", &bytecode.Chunk{
			Code:   []byte{bytecode.OP_GET_GLOBAL, 0, bytecode.OP_RETURN},
			Lines:  []int{1, 1, 1},
			Consts: []value.Value{value.Number(1)},
		}},
	}
	for _, tc := range cases {
		machine, _ := newMachine()
		if err := machine.Run(tc.chunk); !errors.Is(err, vm.ErrBadBytecode) {
			t.Fatalf("%s: expected ErrBadBytecode, got %v", tc.name, err)
		}
	}
}

func TestVMTraceHookFollowsJumps(t *testing.T) {
	machine, _ := newMachine()
	chunk := compileFor(t, machine, "var i = 0; while (i < 2) i = i + 1;")
	var ips []int
	machine.SetTraceHook(func(info vm.TraceInfo) {
		ips = append(ips, info.IP)
		if info.Chunk != chunk {
			t.Fatalf("trace chunk mismatch")
		}
	})
	if err := machine.Run(chunk); err != nil {
		t.Fatalf("vm run error: %v", err)
	}
	seen := map[int]bool{}
	for _, ip := range ips {
		if _, err := chunk.Decode(ip); err != nil {
			t.Fatalf("trace reported undecodable ip %d: %v", ip, err)
		}
		seen[ip] = true
	}
	// every ip the trace reports must be an instruction boundary the
	// disassembler also prints
	var buf bytes.Buffer
	if _, err := bytecode.NewDisassembler(&buf).DisassembleChunk("loop", chunk); err != nil {
		t.Fatalf("disassemble: %v", err)
	}
	for ip := range seen {
		if !strings.Contains(buf.String(), fmt.Sprintf("\n%04d ", ip)) {
			t.Fatalf("ip %d is not an instruction boundary in:\n%s", ip, buf.String())
		}
	}
	if ips[len(ips)-1] != len(chunk.Code)-1 {
		t.Fatalf("expected trace to end at OP_RETURN, ended at %d", ips[len(ips)-1])
	}
}

func TestStackTracerOutput(t *testing.T) {
	machine, _ := newMachine()
	var trace bytes.Buffer
	machine.SetTraceHook(vm.StackTracer(&trace))
	if err := machine.Run(compileFor(t, machine, "print 1 + 2;")); err != nil {
		t.Fatalf("vm run error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(trace.String(), "\n"), "\n")
	want := []string{
		"          ",
		"0000    1 OP_CONSTANT      0 ; const[0]=1",
		"          [ 1 ]",
		"0002    | OP_CONSTANT      1 ; const[1]=2",
		"          [ 1 ][ 2 ]",
		"0004    | OP_ADD",
		"          [ 3 ]",
		"0005    | OP_PRINT",
		"          ",
		"0006    | OP_RETURN",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d trace lines, got %d:\n%s", len(want), len(lines), trace.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("trace line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestVMDuplicate(t *testing.T) {
	machine, out := newMachine()
	if err := machine.Run(compileFor(t, machine, `var name = "rox";`)); err != nil {
		t.Fatalf("vm run error: %v", err)
	}
	dup := machine.Duplicate()
	if err := dup.Run(compileFor(t, dup, `name = name + "!"; print name == "rox!";`)); err != nil {
		t.Fatalf("duplicate run error: %v", err)
	}
	if out.String() != "true\n" {
		t.Fatalf("expected duplicate to share output writer, got %q", out.String())
	}
	if v, _ := machine.Global("name"); v.AsString().Chars != "rox" {
		t.Fatalf("original global mutated through duplicate: %v", v)
	}
	orig, _ := machine.Global("name")
	if dup.Strings().Intern("rox") != orig.AsString() {
		t.Fatalf("duplicate lost the canonical string instance")
	}
}

func TestVMDefineGlobalAndNames(t *testing.T) {
	machine, out := newMachine()
	machine.DefineGlobal("answer", value.Number(42))
	if err := machine.Run(compileFor(t, machine, "var b = answer; var a = b;print a;")); err != nil {
		t.Fatalf("vm run error: %v", err)
	}
	if out.String() != "42\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
	names := machine.GlobalNames()
	if strings.Join(names, ",") != "a,answer,b" {
		t.Fatalf("unexpected global names %v", names)
	}
	if _, ok := machine.Global("nope"); ok {
		t.Fatalf("unexpected global nope")
	}
}
