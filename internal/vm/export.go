package vm

import (
	"slices"

	"github.com/xirelogy/go-rox/internal/value"
)

// DefineGlobal binds a value into the global environment.
func (vm *VM) DefineGlobal(name string, v value.Value) {
	vm.globals.Set(vm.strings.Intern(name), v)
}

// Global looks up a global by name without interning it.
func (vm *VM) Global(name string) (value.Value, bool) {
	key := vm.strings.FindString(name, value.HashString(name))
	if key == nil {
		return value.Nil(), false
	}
	return vm.globals.Get(key)
}

// GlobalNames returns the names of all defined globals in sorted order.
func (vm *VM) GlobalNames() []string {
	names := make([]string, 0, vm.globals.Len())
	vm.globals.Each(func(key *value.ObjString, _ value.Value) {
		names = append(names, key.Chars)
	})
	slices.Sort(names)
	return names
}

// StackDepth reports the number of live operand stack slots.
func (vm *VM) StackDepth() int {
	return len(vm.stack)
}
