package vm

// Duplicate returns a new VM with copied globals, interned strings and
// configuration. Execution state is reset in the duplicate.
//
// String objects are immutable, so both VMs share them; each VM owns its own
// tables, and a string interned later in one is invisible to the other.
func (vm *VM) Duplicate() *VM {
	if vm == nil {
		return nil
	}
	dup := New()
	dup.out = vm.out
	dup.maxStack = vm.maxStack
	dup.traceHook = vm.traceHook
	dup.instLimit = vm.instLimit

	dup.strings.AddAll(vm.strings)
	dup.globals.AddAll(vm.globals)
	return dup
}
