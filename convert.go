package rox

import (
	"fmt"
	"math"

	"github.com/xirelogy/go-rox/internal/value"
)

func toGo(v value.Value) any {
	switch v.Kind() {
	case value.KindBool:
		return v.AsBool()
	case value.KindNumber:
		return v.AsNumber()
	case value.KindObject:
		if s, ok := v.StringObject(); ok {
			return s.Chars
		}
		return v.Print()
	default:
		return nil
	}
}

func (in *Interpreter) fromGo(v any) (value.Value, error) {
	switch x := v.(type) {
	case nil:
		return value.Nil(), nil
	case bool:
		return value.Bool(x), nil
	case int:
		return value.Number(int64(x)), nil
	case int8:
		return value.Number(int64(x)), nil
	case int16:
		return value.Number(int64(x)), nil
	case int32:
		return value.Number(int64(x)), nil
	case int64:
		return value.Number(x), nil
	case uint8:
		return value.Number(int64(x)), nil
	case uint16:
		return value.Number(int64(x)), nil
	case uint32:
		return value.Number(int64(x)), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return value.Nil(), fmt.Errorf("%d overflows a rox number", x)
		}
		return value.Number(int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return value.Nil(), fmt.Errorf("%d overflows a rox number", x)
		}
		return value.Number(int64(x)), nil
	case string:
		return value.Obj(in.core.Strings().Intern(x)), nil
	default:
		return value.Nil(), fmt.Errorf("unsupported Go type %T", v)
	}
}
