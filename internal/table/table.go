package table

import "github.com/xirelogy/go-rox/internal/value"

const (
	initialCapacity = 8
	// grow once count would exceed capacity*maxLoadNum/maxLoadDen
	maxLoadNum = 3
	maxLoadDen = 4
)

// Entry is one slot. An empty slot has a nil Key and a nil Value; a tombstone
// has a nil Key and Value true.
type Entry struct {
	Key   *value.ObjString
	Value value.Value
}

func (e *Entry) isTombstone() bool {
	return e.Key == nil && e.Value.IsBool() && e.Value.AsBool()
}

// Table is an open-addressing hash table keyed by interned strings with
// linear probing. count includes tombstones so probe sequences always end.
type Table struct {
	count   int
	entries []Entry
}

// New returns an empty table. No slots are allocated until the first Set.
func New() *Table {
	return &Table{}
}

// Len reports live entries plus tombstones.
func (t *Table) Len() int { return t.count }

// Cap reports the number of slots.
func (t *Table) Cap() int { return len(t.entries) }

// Get returns the value bound to key.
func (t *Table) Get(key *value.ObjString) (value.Value, bool) {
	if t.count == 0 || key == nil {
		return value.Nil(), false
	}
	e := findEntry(t.entries, key)
	if e.Key == nil {
		return value.Nil(), false
	}
	return e.Value, true
}

// Set binds key to v and reports whether key was newly added.
func (t *Table) Set(key *value.ObjString, v value.Value) bool {
	if key == nil {
		panic("table: nil key")
	}
	if (t.count+1)*maxLoadDen > len(t.entries)*maxLoadNum {
		t.adjustCapacity(growCapacity(len(t.entries)))
	}
	e := findEntry(t.entries, key)
	isNew := e.Key == nil
	// reusing a tombstone does not change count
	if isNew && e.Value.IsNil() {
		t.count++
	}
	e.Key = key
	e.Value = v
	return isNew
}

// Delete removes key, leaving a tombstone, and reports whether it was present.
func (t *Table) Delete(key *value.ObjString) bool {
	if t.count == 0 || key == nil {
		return false
	}
	e := findEntry(t.entries, key)
	if e.Key == nil {
		return false
	}
	e.Key = nil
	e.Value = value.Bool(true)
	return true
}

// AddAll copies every live entry of from into t.
func (t *Table) AddAll(from *Table) {
	for i := range from.entries {
		e := &from.entries[i]
		if e.Key != nil {
			t.Set(e.Key, e.Value)
		}
	}
}

// Each calls fn for every live entry in slot order.
func (t *Table) Each(fn func(key *value.ObjString, v value.Value)) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.Key != nil {
			fn(e.Key, e.Value)
		}
	}
}

// FindString looks a string up by content. Unlike Get it compares characters,
// so it can locate the canonical object before one exists for the caller.
func (t *Table) FindString(chars string, hash uint32) *value.ObjString {
	if t.count == 0 {
		return nil
	}
	capacity := uint32(len(t.entries))
	index := hash % capacity
	for {
		e := &t.entries[index]
		if e.Key == nil {
			if !e.isTombstone() {
				return nil
			}
		} else if e.Key.Hash == hash && e.Key.Chars == chars {
			return e.Key
		}
		index = (index + 1) % capacity
	}
}

// Intern returns the canonical string object for chars, allocating and
// registering a new one on first sight.
func (t *Table) Intern(chars string) *value.ObjString {
	hash := value.HashString(chars)
	if s := t.FindString(chars, hash); s != nil {
		return s
	}
	s := value.NewString(chars, hash)
	t.Set(s, value.Nil())
	return s
}

func findEntry(entries []Entry, key *value.ObjString) *Entry {
	capacity := uint32(len(entries))
	index := key.Hash % capacity
	var tombstone *Entry
	for {
		e := &entries[index]
		if e.Key == nil {
			if !e.isTombstone() {
				if tombstone != nil {
					return tombstone
				}
				return e
			}
			if tombstone == nil {
				tombstone = e
			}
		} else if e.Key == key {
			return e
		}
		index = (index + 1) % capacity
	}
}

func (t *Table) adjustCapacity(capacity int) {
	entries := make([]Entry, capacity)
	t.count = 0
	for i := range t.entries {
		e := &t.entries[i]
		if e.Key == nil {
			continue
		}
		dest := findEntry(entries, e.Key)
		dest.Key = e.Key
		dest.Value = e.Value
		t.count++
	}
	t.entries = entries
}

func growCapacity(capacity int) int {
	if capacity < initialCapacity {
		return initialCapacity
	}
	return capacity * 2
}
