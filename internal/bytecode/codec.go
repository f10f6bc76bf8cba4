package bytecode

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/xirelogy/go-rox/internal/value"
)

// FormatVersion is the current serialized chunk version.
// Increment when making incompatible changes to the wire form.
const FormatVersion uint16 = 1

// Magic prefixes every serialized chunk: "ROXC" (rox chunk).
var Magic = []byte{'R', 'O', 'X', 'C'}

// ErrBadMagic is returned when data does not start with Magic.
var ErrBadMagic = errors.New("bytecode: not a rox chunk")

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

type constTag uint8

const (
	constNil constTag = iota
	constBool
	constNumber
	constString
)

type wireConst struct {
	Tag  constTag `cbor:"1,keyasint"`
	Bool bool     `cbor:"2,keyasint,omitempty"`
	Num  int64    `cbor:"3,keyasint,omitempty"`
	Str  string   `cbor:"4,keyasint,omitempty"`
}

type wireChunk struct {
	Version uint16      `cbor:"1,keyasint"`
	Code    []byte      `cbor:"2,keyasint"`
	Lines   []int       `cbor:"3,keyasint"`
	Consts  []wireConst `cbor:"4,keyasint"`
}

// Interner canonicalizes string constants while decoding.
type Interner interface {
	Intern(chars string) *value.ObjString
}

// MarshalChunk serializes c as Magic followed by canonical CBOR.
func MarshalChunk(c *Chunk) ([]byte, error) {
	if c == nil {
		return nil, errors.New("bytecode: nil chunk")
	}
	w := wireChunk{
		Version: FormatVersion,
		Code:    c.Code,
		Lines:   c.Lines,
		Consts:  make([]wireConst, 0, len(c.Consts)),
	}
	for i, v := range c.Consts {
		wc, err := toWire(v)
		if err != nil {
			return nil, fmt.Errorf("bytecode: constant %d: %w", i, err)
		}
		w.Consts = append(w.Consts, wc)
	}
	body, err := cborEncMode.Marshal(&w)
	if err != nil {
		return nil, fmt.Errorf("bytecode: marshal chunk: %w", err)
	}
	return append(append([]byte{}, Magic...), body...), nil
}

// UnmarshalChunk deserializes a chunk, interning every string constant
// through strings so identity equality keeps working after a reload.
func UnmarshalChunk(data []byte, strings Interner) (*Chunk, error) {
	if !bytes.HasPrefix(data, Magic) {
		return nil, ErrBadMagic
	}
	var w wireChunk
	if err := cbor.Unmarshal(data[len(Magic):], &w); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal chunk: %w", err)
	}
	if w.Version != FormatVersion {
		return nil, fmt.Errorf("bytecode: unsupported version %d (want %d)", w.Version, FormatVersion)
	}
	if len(w.Lines) != len(w.Code) {
		return nil, fmt.Errorf("bytecode: line table has %d entries for %d code bytes", len(w.Lines), len(w.Code))
	}
	if len(w.Consts) > MaxConstants {
		return nil, fmt.Errorf("bytecode: %d constants exceeds limit %d", len(w.Consts), MaxConstants)
	}
	c := &Chunk{
		Code:   w.Code,
		Lines:  w.Lines,
		Consts: make([]value.Value, 0, len(w.Consts)),
	}
	for i, wc := range w.Consts {
		v, err := fromWire(wc, strings)
		if err != nil {
			return nil, fmt.Errorf("bytecode: constant %d: %w", i, err)
		}
		c.Consts = append(c.Consts, v)
	}
	return c, nil
}

func toWire(v value.Value) (wireConst, error) {
	switch v.Kind() {
	case value.KindNil:
		return wireConst{Tag: constNil}, nil
	case value.KindBool:
		return wireConst{Tag: constBool, Bool: v.AsBool()}, nil
	case value.KindNumber:
		return wireConst{Tag: constNumber, Num: v.AsNumber()}, nil
	case value.KindObject:
		if s, ok := v.StringObject(); ok {
			return wireConst{Tag: constString, Str: s.Chars}, nil
		}
	}
	return wireConst{}, fmt.Errorf("unsupported constant type %s", value.TypeName(v))
}

func fromWire(wc wireConst, strings Interner) (value.Value, error) {
	switch wc.Tag {
	case constNil:
		return value.Nil(), nil
	case constBool:
		return value.Bool(wc.Bool), nil
	case constNumber:
		return value.Number(wc.Num), nil
	case constString:
		if strings == nil {
			return value.Nil(), errors.New("string constant without intern table")
		}
		return value.Obj(strings.Intern(wc.Str)), nil
	default:
		return value.Nil(), fmt.Errorf("unknown constant tag %d", wc.Tag)
	}
}
