package value

import "hash/fnv"

type ObjectType int

const (
	ObjectString ObjectType = iota
)

func (t ObjectType) String() string {
	switch t {
	case ObjectString:
		return "string"
	default:
		return "object"
	}
}

// Object is a heap-allocated runtime value referenced by pointer.
type Object interface {
	Type() ObjectType
	Print() string
}

// ObjString is an immutable string whose hash is computed once at creation.
// Only the intern table should construct these so that equal content implies
// identical pointers.
type ObjString struct {
	Chars string
	Hash  uint32
}

// NewString allocates a string object without interning it.
func NewString(chars string, hash uint32) *ObjString {
	return &ObjString{Chars: chars, Hash: hash}
}

func (s *ObjString) Type() ObjectType { return ObjectString }
func (s *ObjString) Print() string    { return s.Chars }
func (s *ObjString) Len() int         { return len(s.Chars) }

// HashString computes the 32-bit FNV-1a hash of the UTF-8 bytes of chars.
func HashString(chars string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(chars))
	return h.Sum32()
}
