package value

import "testing"

func TestEqualRequiresMatchingKinds(t *testing.T) {
	s := NewString("1", HashString("1"))
	cases := []struct {
		a, b Value
		want bool
	}{
		{Nil(), Nil(), true},
		{Bool(true), Bool(true), true},
		{Bool(true), Bool(false), false},
		{Number(3), Number(3), true},
		{Number(3), Number(4), false},
		{Number(0), Bool(false), false},
		{Nil(), Bool(false), false},
		{Obj(s), Obj(s), true},
		{Obj(s), Number(1), false},
	}
	for i, tc := range cases {
		if got := Equal(tc.a, tc.b); got != tc.want {
			t.Fatalf("case %d: Equal(%v, %v) = %v, want %v", i, tc.a, tc.b, got, tc.want)
		}
	}
}

func TestEqualObjectsUseIdentity(t *testing.T) {
	a := NewString("same", HashString("same"))
	b := NewString("same", HashString("same"))
	if Equal(Obj(a), Obj(b)) {
		t.Fatalf("distinct string objects must not compare equal without interning")
	}
}

func TestPrint(t *testing.T) {
	cases := map[string]Value{
		"nil":   Nil(),
		"true":  Bool(true),
		"false": Bool(false),
		"-42":   Number(-42),
		"hi":    Obj(NewString("hi", HashString("hi"))),
	}
	for want, v := range cases {
		if got := v.Print(); got != want {
			t.Fatalf("Print() = %q, want %q", got, want)
		}
	}
}

func TestFalsey(t *testing.T) {
	if !Falsey(Nil()) || !Falsey(Bool(false)) {
		t.Fatalf("nil and false must be falsey")
	}
	if Falsey(Bool(true)) || Falsey(Number(0)) || Falsey(Obj(NewString("", HashString("")))) {
		t.Fatalf("true, 0 and the empty string must be truthy")
	}
}

func TestAccessorsValidateKind(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic reading number from bool")
		}
	}()
	_ = Bool(true).AsNumber()
}

func TestStringObject(t *testing.T) {
	s := NewString("x", HashString("x"))
	if got, ok := Obj(s).StringObject(); !ok || got != s {
		t.Fatalf("expected string object back")
	}
	if _, ok := Number(1).StringObject(); ok {
		t.Fatalf("number is not a string object")
	}
}

func TestHashStringFNV1a(t *testing.T) {
	// reference values for 32-bit FNV-1a
	if got := HashString(""); got != 2166136261 {
		t.Fatalf("empty hash = %d", got)
	}
	if got := HashString("a"); got != 0xe40c292c {
		t.Fatalf("hash(a) = %#x", got)
	}
}
