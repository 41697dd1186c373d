package mathvm

// Resource is external data addressed by index from the read and write builtins.
// Implementations decide how to treat unexpected arguments; they never fail.
type Resource interface {
	Read(args []float64) float64
	Write(args []float64)
}

// RegisterResource appends the resource and returns its index
func (vm *VM) RegisterResource(r Resource) int {
	vm.registryMutex.Lock()
	defer vm.registryMutex.Unlock()

	vm.resources = append(vm.resources, r)
	return len(vm.resources) - 1
}

func (vm *VM) GetResource(index int) (Resource, bool) {
	t := vm.registryMutex.RLock()
	defer vm.registryMutex.RUnlock(t)

	if index < 0 || index >= len(vm.resources) || vm.resources[index] == nil {
		return nil, false
	}
	return vm.resources[index], true
}

func (vm *VM) ResourceCount() int {
	t := vm.registryMutex.RLock()
	defer vm.registryMutex.RUnlock(t)

	return len(vm.resources)
}
