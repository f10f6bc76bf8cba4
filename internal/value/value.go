package value

import (
	"fmt"
	"strconv"
)

type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a runtime value. Payload fields are private; the As* accessors
// panic when called against the wrong kind.
type Value struct {
	kind Kind
	b    bool
	n    int64
	obj  Object
}

func Nil() Value { return Value{kind: KindNil} }
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}
func Number(n int64) Value {
	return Value{kind: KindNumber, n: n}
}
func Obj(o Object) Value {
	if o == nil {
		panic("value: nil object")
	}
	return Value{kind: KindObject, obj: o}
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNil() bool    { return v.kind == KindNil }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsObject() bool { return v.kind == KindObject }

// IsString reports whether v holds a string object.
func (v Value) IsString() bool {
	if v.kind != KindObject {
		return false
	}
	_, ok := v.obj.(*ObjString)
	return ok
}

func (v Value) AsBool() bool {
	v.mustBe(KindBool)
	return v.b
}

func (v Value) AsNumber() int64 {
	v.mustBe(KindNumber)
	return v.n
}

func (v Value) AsObject() Object {
	v.mustBe(KindObject)
	return v.obj
}

func (v Value) AsString() *ObjString {
	s, ok := v.AsObject().(*ObjString)
	if !ok {
		panic(fmt.Sprintf("value: object is %s, not string", v.obj.Type()))
	}
	return s
}

// StringObject returns the string object, or false if v does not hold one.
func (v Value) StringObject() (*ObjString, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	s, ok := v.obj.(*ObjString)
	return s, ok
}

func (v Value) mustBe(k Kind) {
	if v.kind != k {
		panic(fmt.Sprintf("value: expected %s, got %s", k, v.kind))
	}
}

// Falsey implements truthiness: nil and false are falsey, everything else is truthy.
func Falsey(v Value) bool {
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return !v.b
	default:
		return false
	}
}

// Equal compares tags then payloads. Objects compare by identity, which is
// sound for strings only because every string is interned.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n
	case KindObject:
		return a.obj == b.obj
	default:
		return false
	}
}

// Print renders v the way the print statement does.
func (v Value) Print() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return strconv.FormatInt(v.n, 10)
	case KindObject:
		return v.obj.Print()
	default:
		return "<invalid>"
	}
}

func (v Value) String() string { return v.Print() }

// TypeName reports the script-visible type of v for diagnostics.
func TypeName(v Value) string {
	if v.kind == KindObject {
		return v.obj.Type().String()
	}
	return v.kind.String()
}
