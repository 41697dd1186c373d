package mathvm

import (
	"errors"
	"fmt"
)

var (
	errNotEnoughOperands = errors.New("Not enough operands")
	errAssignTarget      = errors.New("Left side of assignment is not a variable")
)

// UnsetVariableError is returned when a variable is read before any assignment
type UnsetVariableError struct {
	Name string
	// index of the popped result, -1 for operands
	Result int
}

func (e *UnsetVariableError) Error() string {
	if e.Result < 0 {
		return fmt.Sprintf("Unset variable %s", e.Name)
	}
	return fmt.Sprintf("Unset variable %s for result %d", e.Name, e.Result)
}

// valueRef points either to a program token or to a value in the per-call result arena
type valueRef struct {
	index  int
	result bool
}

// CallContext is the transient state of one execution. It must not outlive the call.
type CallContext struct {
	vm        *VM
	program   *Program
	functions []*funDescriptor
	locals    map[string]float64
	local     interface{}
	stack     []valueRef
	results   []float64
	args      []float64
	locked    bool
}

func newCallContext(vm *VM, program *Program, functions []*funDescriptor, locals map[string]float64, local interface{}) *CallContext {
	return &CallContext{
		vm:        vm,
		program:   program,
		functions: functions,
		locals:    locals,
		local:     local,
		stack:     make([]valueRef, 0, 16),
		results:   make([]float64, 0, program.resultCap),
	}
}

func (ctx *CallContext) VM() *VM {
	return ctx.vm
}

// LocalContext returns the opaque value passed by the caller of ExecuteWith
func (ctx *CallContext) LocalContext() interface{} {
	return ctx.local
}

func (ctx *CallContext) LocalVariables() map[string]float64 {
	return ctx.locals
}

func (ctx *CallContext) StackLen() int {
	return len(ctx.stack)
}

func (ctx *CallContext) pop() (valueRef, bool) {
	n := len(ctx.stack)
	if n == 0 {
		return valueRef{}, false
	}
	ret := ctx.stack[n-1]
	ctx.stack = ctx.stack[:n-1]
	return ret, true
}

// resolve returns the value of a stack entry. Variables are looked up in locals first, then in globals.
func (ctx *CallContext) resolve(ref valueRef) (float64, string, bool) {
	if ref.result {
		return ctx.results[ref.index], "", true
	}
	tok := &ctx.program.tokens[ref.index]
	switch tok.Type {
	case TokenNumber:
		return tok.Value, "", true
	case TokenVariable:
		if v, ok := ctx.locals[tok.Name]; ok {
			return v, tok.Name, true
		}
		if v, ok := ctx.vm.globals.Get(tok.Name); ok {
			return v, tok.Name, true
		}
		return 0, tok.Name, false
	}
	return 0, "", false
}

// PopArgument pops one operand and resolves it to a number
func (ctx *CallContext) PopArgument() (float64, error) {
	ref, ok := ctx.pop()
	if !ok {
		return 0, errNotEnoughOperands
	}
	v, name, ok := ctx.resolve(ref)
	if !ok {
		if name != "" {
			return 0, &UnsetVariableError{Name: name, Result: -1}
		}
		return 0, fmt.Errorf("Operand is not a number")
	}
	return v, nil
}

// PopName pops one operand which must be a variable reference
func (ctx *CallContext) PopName() (string, error) {
	ref, ok := ctx.pop()
	if !ok {
		return "", errNotEnoughOperands
	}
	if ref.result {
		return "", errAssignTarget
	}
	tok := &ctx.program.tokens[ref.index]
	if tok.Type != TokenVariable {
		return "", errAssignTarget
	}
	return tok.Name, nil
}

// PushResult stores v in the result arena and pushes a reference to it
func (ctx *CallContext) PushResult(v float64) {
	ctx.results = append(ctx.results, v)
	ctx.stack = append(ctx.stack, valueRef{index: len(ctx.results) - 1, result: true})
}

// ReadResource returns 0 if there's no resource with the index
func (ctx *CallContext) ReadResource(index int, args []float64) float64 {
	r, ok := ctx.vm.GetResource(index)
	if !ok {
		return 0
	}
	return r.Read(args)
}

// WriteResource is a no-op if there's no resource with the index
func (ctx *CallContext) WriteResource(index int, args []float64) {
	r, ok := ctx.vm.GetResource(index)
	if !ok {
		return
	}
	r.Write(args)
}

func (ctx *CallContext) run() error {
	for _, st := range ctx.program.statements {
		if err := ctx.executeStatement(st); err != nil {
			return err
		}
	}
	return nil
}

func (ctx *CallContext) executeStatement(st Statement) error {
	for _, idx := range st {
		tok := &ctx.program.tokens[idx]
		switch tok.Type {
		case TokenNumber, TokenVariable:
			ctx.stack = append(ctx.stack, valueRef{index: idx})
		case TokenOperator:
			if err := operators[tok.Code].eval(ctx); err != nil {
				return err
			}
		case TokenFunction:
			if err := ctx.call(tok); err != nil {
				return err
			}
		case TokenLock:
			ctx.vm.blockMutex.Lock()
			ctx.locked = true
		case TokenUnlock:
			ctx.unlock()
		}
	}
	return nil
}

// call pops the arguments of a function in left to right order and invokes it.
// The args slice is reused between calls.
func (ctx *CallContext) call(tok *Token) error {
	n := tok.DetectedArity
	if cap(ctx.args) < n {
		ctx.args = make([]float64, n)
	}
	args := ctx.args[:n]
	for i := n - 1; i >= 0; i-- {
		v, err := ctx.PopArgument()
		if err != nil {
			return err
		}
		args[i] = v
	}
	return ctx.functions[tok.Code].eval(ctx, args)
}

func (ctx *CallContext) unlock() {
	if ctx.locked {
		ctx.locked = false
		ctx.vm.blockMutex.Unlock()
	}
}

// popResults pops n values from the final stack, last pushed first
func (ctx *CallContext) popResults(n int) ([]float64, error) {
	if n == PopAll {
		n = len(ctx.stack)
	}
	if n < 0 {
		n = 0
	}
	ret := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		ref, ok := ctx.pop()
		if !ok {
			return nil, fmt.Errorf("Unable to pop result %d", i)
		}
		v, name, ok := ctx.resolve(ref)
		if !ok {
			if name != "" {
				return nil, &UnsetVariableError{Name: name, Result: i}
			}
			return nil, fmt.Errorf("result %d is not a number", i)
		}
		ret = append(ret, v)
	}
	return ret, nil
}
