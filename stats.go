package mathvm

import "go.uber.org/atomic"

type stats struct {
	compilations      atomic.Uint64
	compileFailures   atomic.Uint64
	executions        atomic.Uint64
	executionFailures atomic.Uint64
}

// Stats is a point in time copy of the VM counters
type Stats struct {
	Compilations      uint64
	CompileFailures   uint64
	Executions        uint64
	ExecutionFailures uint64
}

func (vm *VM) Stats() Stats {
	return Stats{
		Compilations:      vm.stats.compilations.Load(),
		CompileFailures:   vm.stats.compileFailures.Load(),
		Executions:        vm.stats.executions.Load(),
		ExecutionFailures: vm.stats.executionFailures.Load(),
	}
}
